package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fitosanitario/internal/dao"
	"fitosanitario/internal/repository"
	"fitosanitario/internal/rules"
	"fitosanitario/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestError_Format(t *testing.T) {
	err := NewError(CodeSearch, "No existe {0} con id {1}", "lote", 42)
	assert.Equal(t, "[SEARCH_ERROR] No existe lote con id 42", err.Error())

	plain := &Error{Code: CodeUnknown, Message: "sin parametros {0}"}
	assert.Equal(t, "[UNKNOWN_ERROR] sin parametros {0}", plain.Error())

	wrapped := fmt.Errorf("context: %w", err)
	assert.Equal(t, CodeSearch, CodeOf(wrapped))
	assert.Equal(t, Code(""), CodeOf(errors.New("x")))
}

func TestBoundary_Wrap(t *testing.T) {
	storageErr := &dao.StorageError{Op: dao.OpFetchOne, Stage: dao.StageQuery, Err: errors.New("connection refused")}

	tests := []struct {
		name     string
		err      error
		wantCode Code
		wantMsg  string
		logLevel zapcore.Level
		logged   bool
	}{
		{
			name:     "validation",
			err:      validation.Fail("id", "Must be positive"),
			wantCode: CodeValidation,
			wantMsg:  "[VALIDATION_ERROR] Campo 'id': Must be positive",
		},
		{
			name:     "violation",
			err:      rules.Violate("AreaLote", "Lote", "excede"),
			wantCode: CodeBusinessRule,
			wantMsg:  "[BUSINESS_RULE_VIOLATION] Regla 'AreaLote' violada en Lote: excede",
		},
		{
			name:     "storage",
			err:      storageErr,
			wantCode: CodeSearch,
			wantMsg:  "[SEARCH_ERROR] Error buscando lote",
			logLevel: zapcore.ErrorLevel,
			logged:   true,
		},
		{
			name:     "not found",
			err:      fmt.Errorf("lote 3: %w", repository.ErrNotFound),
			wantCode: CodeSearch,
			wantMsg:  "[SEARCH_ERROR] Error buscando lote",
			logLevel: zapcore.WarnLevel,
			logged:   true,
		},
		{
			name:     "unknown",
			err:      context.Canceled,
			wantCode: CodeUnknown,
			wantMsg:  "[UNKNOWN_ERROR] Error buscando lote",
			logLevel: zapcore.ErrorLevel,
			logged:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			b := newBoundary(zap.New(core), "lote", "lotes")

			err := b.searchFailed(tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, CodeOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.ErrorIs(t, err, tt.err)

			if !tt.logged {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.logLevel, entry.Level)
			assert.Contains(t, entry.ContextMap(), "error")
		})
	}
}

func TestBoundary_PassThrough(t *testing.T) {
	b := newBoundary(zap.NewNop(), "lote", "lotes")
	assert.NoError(t, b.createFailed(nil))

	inner := NewError(CodeBusinessRule, "ya envuelto")
	assert.Same(t, inner, b.updateFailed(fmt.Errorf("outer: %w", inner)))

	collected := validation.All(
		validation.NotEmpty("nombre", ""),
		validation.Positive("area", 0.0),
	)
	err := b.createFailed(collected)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Equal(t, "[VALIDATION_ERROR] Campo 'nombre': Cannot be empty; Campo 'area': Must be positive", err.Error())
}
