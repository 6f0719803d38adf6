package service

import (
	"context"
	"errors"
	"fmt"

	"fitosanitario/internal/alert"
	"fitosanitario/internal/dao"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"go.uber.org/zap"
)

// AlertRaiser raises phytosanitary alerts (alert.Service)
type AlertRaiser interface {
	Raise(ctx context.Context, kind, description, severity string, entityID int64) (*alert.Alert, error)
}

// boundary converts every error leaving a service into *Error
type boundary struct {
	logger *zap.Logger
	one    string // "lote"
	many   string // "lotes"
}

func newBoundary(logger *zap.Logger, one, many string) boundary {
	return boundary{logger: logger, one: one, many: many}
}

// wrap maps err onto the service contract. code and message describe the
// failed operation and are used for storage and lookup failures.
func (b boundary) wrap(err error, code Code, message string, params ...any) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return se
	}
	var ves validation.Errors
	if errors.As(err, &ves) {
		return &Error{Code: CodeValidation, Message: ves.Error(), Cause: err}
	}
	if ve, ok := validation.AsError(err); ok {
		return &Error{Code: CodeValidation, Message: ve.Error(), Cause: err}
	}
	if v, ok := rules.AsViolation(err); ok {
		return &Error{Code: CodeBusinessRule, Message: v.Error(), Cause: err}
	}
	if errors.Is(err, repository.ErrNotFound) {
		b.logger.Warn(message, zap.String("entity", b.one), zap.Error(err))
		return &Error{Code: code, Message: message, Params: params, Cause: err}
	}
	if dao.IsStorageError(err) {
		b.logger.Error(message, zap.String("entity", b.one), zap.Error(err))
		return &Error{Code: code, Message: message, Params: params, Cause: err}
	}

	b.logger.Error("Unexpected service failure",
		zap.String("entity", b.one), zap.String("operation", message), zap.Error(err))
	return &Error{Code: CodeUnknown, Message: message, Params: params, Cause: err}
}

func (b boundary) searchFailed(err error) error {
	return b.wrap(err, CodeSearch, "Error buscando "+b.one)
}

func (b boundary) listFailed(err error) error {
	return b.wrap(err, CodeGetAll, "Error obteniendo "+b.many)
}

func (b boundary) createFailed(err error) error {
	return b.wrap(err, CodeCreate, "Error creando "+b.one)
}

func (b boundary) updateFailed(err error) error {
	return b.wrap(err, CodeUpdate, "Error actualizando "+b.one)
}

func (b boundary) deleteFailed(err error) error {
	return b.wrap(err, CodeDelete, "Error eliminando "+b.one)
}

// getByID validates id and fetches one entity; absent is (nil, nil)
func getByID[T any](ctx context.Context, b boundary, id int64, get func(context.Context, int64) (*T, error)) (*T, error) {
	if err := validation.Positive("id", id)(); err != nil {
		return nil, b.searchFailed(err)
	}
	v, err := get(ctx, id)
	if err != nil {
		return nil, b.searchFailed(err)
	}
	return v, nil
}

// list fetches a collection; never nil on success
func list[T any](ctx context.Context, b boundary, fetch func(context.Context) ([]T, error)) ([]T, error) {
	v, err := fetch(ctx)
	if err != nil {
		return nil, b.listFailed(err)
	}
	return v, nil
}

// listBy validates the parent id and fetches its children
func listBy[T any](ctx context.Context, b boundary, field string, parentID int64, fetch func(context.Context, int64) ([]T, error)) ([]T, error) {
	if err := validation.Positive(field, parentID)(); err != nil {
		return nil, b.searchFailed(err)
	}
	v, err := fetch(ctx, parentID)
	if err != nil {
		return nil, b.searchFailed(err)
	}
	return v, nil
}

// remove validates id and hard or soft deletes
func remove(ctx context.Context, b boundary, id int64, del func(context.Context, int64) error) error {
	if err := validation.Positive("id", id)(); err != nil {
		return b.deleteFailed(err)
	}
	return b.deleteFailed(del(ctx, id))
}

// exists fails with a validation error naming field when the referenced row is absent
func exists[T any](ctx context.Context, field string, id int64, get func(context.Context, int64) (*T, error)) (*T, error) {
	v, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, validation.Fail(field, "No existe")
	}
	return v, nil
}

// stored loads the row an update targets; an absent row is ErrNotFound
func stored[T any](ctx context.Context, entity string, id int64, get func(context.Context, int64) (*T, error)) (*T, error) {
	if err := validation.Positive("id", id)(); err != nil {
		return nil, err
	}
	v, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%s %d: %w", entity, id, repository.ErrNotFound)
	}
	return v, nil
}

// keepParent an update cannot move a row to another parent. Zero means
// "unchanged" and the stored parent is returned.
func keepParent(field string, sent, current int64) (int64, error) {
	if sent != 0 && sent != current {
		return 0, validation.Fail(field, fmt.Sprintf("No se puede cambiar en una actualizacion (actual: %d)", current))
	}
	return current, nil
}
