package response

import (
	"errors"

	"github.com/racebio/promoter/pkg/apperr"
)

type APIResponseCode int

const (
	APIResponseCodeOK           APIResponseCode = 0
	APIResponseCodeBadRequest   APIResponseCode = 40000
	APIResponseCodeUnauthorized APIResponseCode = 40100
	APIResponseCodeNotFound     APIResponseCode = 40400
	APIResponseCodeConflict     APIResponseCode = 40900
	APIResponseCodeError        APIResponseCode = 50000
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:           "ok",
	APIResponseCodeBadRequest:   "bad request",
	APIResponseCodeUnauthorized: "unauthorized",
	APIResponseCodeNotFound:     "not found",
	APIResponseCodeConflict:     "conflict",
	APIResponseCodeError:        "unexpected error",
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT / FromError helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with a code and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}

// CodeOf maps an error to its envelope code via the apperr kind sentinels.
func CodeOf(err error) APIResponseCode {
	switch {
	case err == nil:
		return APIResponseCodeOK
	case errors.Is(err, apperr.ErrValidation):
		return APIResponseCodeBadRequest
	case errors.Is(err, apperr.ErrAuthorization):
		return APIResponseCodeUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return APIResponseCodeNotFound
	case errors.Is(err, apperr.ErrConflict):
		return APIResponseCodeConflict
	default:
		return APIResponseCodeError
	}
}

// FromError builds an error envelope carrying the error message as data.
func FromError(err error) *APIResponse[any] {
	return &APIResponse[any]{Code: CodeOf(err), Message: codeToMsg[CodeOf(err)], Data: err.Error()}
}
