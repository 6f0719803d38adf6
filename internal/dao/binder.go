package dao

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrParamType parameter value does not match its declared kind
var ErrParamType = errors.New("parameter value does not match its kind")

// Binder converts a typed parameter to a driver argument
type Binder interface {
	Bind(p Param) (any, error)
}

// BinderFunc adapts a function to Binder
type BinderFunc func(p Param) (any, error)

func (f BinderFunc) Bind(p Param) (any, error) { return f(p) }

// TypedBinder default binding strategy.
// Booleans bind as 1/0, dates as midnight of their day. Generic values
// are passed to the driver unchanged with no checks and logged at debug.
type TypedBinder struct {
	logger *zap.Logger
}

// NewTypedBinder creates the default binder
func NewTypedBinder(logger *zap.Logger) *TypedBinder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypedBinder{logger: logger}
}

var _ Binder = (*TypedBinder)(nil)

func (b *TypedBinder) Bind(p Param) (any, error) {
	switch p.Kind {
	case KindString:
		if s, ok := p.Value.(string); ok {
			return s, nil
		}
	case KindInt:
		if i, ok := p.Value.(int); ok {
			return int64(i), nil
		}
	case KindLong:
		if i, ok := p.Value.(int64); ok {
			return i, nil
		}
	case KindDouble:
		if f, ok := p.Value.(float64); ok {
			return f, nil
		}
	case KindDate:
		if t, ok := p.Value.(time.Time); ok {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
		}
	case KindTimestamp:
		if t, ok := p.Value.(time.Time); ok {
			return t, nil
		}
	case KindBool:
		if v, ok := p.Value.(bool); ok {
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case KindNull:
		return nil, nil
	case KindGeneric:
		b.logger.Debug("Binding parameter without semantic type", zap.String("go_type", fmt.Sprintf("%T", p.Value)))
		return p.Value, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", ErrParamType, p.Kind)
	}
	return nil, fmt.Errorf("%w: %s parameter holds %T", ErrParamType, p.Kind, p.Value)
}
