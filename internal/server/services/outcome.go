package services

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var outcomes = []struct {
	err   error
	label string
}{
	{common.ErrUserAlreadyExists, "user_already_exists"},
	{common.ErrIdentityCreationFailed, "identity_creation_failed"},
	{common.ErrInvalidCredentials, "invalid_credentials"},
	{common.ErrAccountDisabled, "account_disabled"},
	{common.ErrWrongTokenType, "wrong_token_type"},
	{common.ErrTokenNotFound, "token_not_found"},
	{common.ErrTokenUserMismatch, "token_user_mismatch"},
	{common.ErrTokenExpired, "token_expired"},
	{common.ErrInvalidToken, "invalid_token"},
}

// Outcome maps a lifecycle error onto a low-cardinality label.
// Unclassified errors are OutcomeError.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return OutcomeError
}
