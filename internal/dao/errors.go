package dao

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGeneratedKey insert succeeded but the backend returned no key
	ErrNoGeneratedKey = errors.New("no generated key returned")
	// ErrParamCount parameter list length differs from the placeholder count
	ErrParamCount = errors.New("parameter count does not match placeholders")
	// ErrNoMapper read operation on a template built without a row mapper
	ErrNoMapper = errors.New("template has no row mapper")
)

// Stages reported in StorageError
const (
	StageBind    = "bind"
	StageAcquire = "acquire"
	StagePrepare = "prepare"
	StageQuery   = "query"
	StageExec    = "exec"
	StageScan    = "scan"
	StageKey     = "generated_key"
)

// StorageError a failed storage call
type StorageError struct {
	Op    string
	Stage string
	Query string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed at %s: %v", e.Op, e.Stage, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err came from the storage layer
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
