package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes returned in the response envelope.
const (
	CodeUserAlreadyExists      = "USER_ALREADY_EXISTS"
	CodeIdentityCreationFailed = "IDENTITY_CREATION_FAILED"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeAccountDisabled        = "ACCOUNT_DISABLED"
	CodeWrongTokenType         = "WRONG_TOKEN_TYPE"
	CodeTokenNotFound          = "TOKEN_NOT_FOUND"
	CodeTokenUserMismatch      = "TOKEN_USER_MISMATCH"
	CodeTokenExpired           = "TOKEN_EXPIRED"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeNotFound               = "NOT_FOUND"
	CodeValidation             = "VALIDATION_ERROR"
	CodeInternal               = "INTERNAL_ERROR"
)

// APIError is the error half of the response envelope.
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

var errorTable = []struct {
	err    error
	code   string
	status int
}{
	{common.ErrUserAlreadyExists, CodeUserAlreadyExists, http.StatusConflict},
	{common.ErrInvalidCredentials, CodeInvalidCredentials, http.StatusUnauthorized},
	{common.ErrAccountDisabled, CodeAccountDisabled, http.StatusForbidden},
	{common.ErrWrongTokenType, CodeWrongTokenType, http.StatusBadRequest},
	{common.ErrTokenNotFound, CodeTokenNotFound, http.StatusUnauthorized},
	{common.ErrTokenUserMismatch, CodeTokenUserMismatch, http.StatusUnauthorized},
	{common.ErrTokenExpired, CodeTokenExpired, http.StatusUnauthorized},
	{common.ErrInvalidToken, CodeInvalidToken, http.StatusUnauthorized},
	{common.ErrorNotFound, CodeNotFound, http.StatusNotFound},
}

// FromError classifies err. Unknown errors become a 500 without leaking
// their text to the client.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, common.ErrIdentityCreationFailed) {
		code := http.StatusBadRequest
		switch status.Code(err) {
		case codes.Unavailable, codes.DeadlineExceeded:
			code = http.StatusBadGateway
		}
		return &APIError{Code: CodeIdentityCreationFailed, Message: common.ErrIdentityCreationFailed.Error(), Status: code, Err: err}
	}

	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return &APIError{Code: e.code, Message: e.err.Error(), Status: e.status, Err: err}
		}
	}
	return &APIError{Code: CodeInternal, Message: "internal server error", Status: http.StatusInternalServerError, Err: err}
}
