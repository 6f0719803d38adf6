package service

import (
	"errors"
	"fmt"
	"strings"
)

// Code machine readable service error code
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeSearch       Code = "SEARCH_ERROR"
	CodeCreate       Code = "CREATE_ERROR"
	CodeUpdate       Code = "UPDATE_ERROR"
	CodeDelete       Code = "DELETE_ERROR"
	CodeGetAll       Code = "GET_ALL_ERROR"
	CodeBusinessRule Code = "BUSINESS_RULE_VIOLATION"
	CodeUnknown      Code = "UNKNOWN_ERROR"
)

// Error the error every service method returns.
// Message may hold positional placeholders {0}, {1}... filled from Params.
type Error struct {
	Code    Code
	Message string
	Params  []any
	Cause   error
}

func NewError(code Code, message string, params ...any) *Error {
	return &Error{Code: code, Message: message, Params: params}
}

func (e *Error) Error() string {
	msg := e.Message
	for i, p := range e.Params {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%d}", i), fmt.Sprint(p))
	}
	return "[" + string(e.Code) + "] " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf returns the service code carried by err, or "" if err is not a service error
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
