package repository

import (
	"errors"
	"fmt"
	"time"

	"fitosanitario/internal/dao"
)

// ErrNotFound update or delete matched no row
var ErrNotFound = errors.New("record not found")

// Store shared construction settings for every repository
type Store struct {
	acq  dao.Acquirer
	opts []dao.Option
}

// NewStore binds repositories to a connection source; opts are passed to every template
func NewStore(acq dao.Acquirer, opts ...dao.Option) *Store {
	return &Store{acq: acq, opts: opts}
}

func newTemplate[T any](s *Store, mapper dao.RowMapper[T]) *dao.Template[T] {
	return dao.New(s.acq, mapper, s.opts...)
}

// expectOne turns a zero-row write into ErrNotFound
func expectOne(n int64, err error, entity string, id int64) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}

// optionalID binds nil as NULL
func optionalID(id *int64) dao.Param {
	if id == nil {
		return dao.Null()
	}
	return dao.Long(*id)
}

// optionalDate binds nil as NULL
func optionalDate(t *time.Time) dao.Param {
	if t == nil {
		return dao.Null()
	}
	return dao.Date(*t)
}

// nullableID scans a nullable key column
type nullableID struct {
	v     int64
	valid bool
}

func (n *nullableID) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		n.valid = false
		return nil
	case int64:
		n.v, n.valid = x, true
		return nil
	case int32:
		n.v, n.valid = int64(x), true
		return nil
	case int:
		n.v, n.valid = int64(x), true
		return nil
	case float64:
		n.v, n.valid = int64(x), true
		return nil
	case []byte:
		_, err := fmt.Sscanf(string(x), "%d", &n.v)
		n.valid = err == nil
		return err
	default:
		return fmt.Errorf("cannot scan %T into id", src)
	}
}

func (n nullableID) ptr() *int64 {
	if !n.valid {
		return nil
	}
	v := n.v
	return &v
}
