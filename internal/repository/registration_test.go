package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

func uniqueViolationOn(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint}
}

func TestIsUniqueViolation(t *testing.T) {
	err := uniqueViolationOn("registrations_token_key")
	assert.True(t, isUniqueViolation(err, "registrations_token_key"))
	assert.True(t, isUniqueViolation(err, ""))
	assert.False(t, isUniqueViolation(err, "registrations_code_key"))
	assert.False(t, isUniqueViolation(errors.New("timeout"), ""))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
}

func TestRetryCredentialCollisionsSucceedsFirstTry(t *testing.T) {
	reg := &model.Registration{Token: "tok", Code: "EVT-AAAAAA"}

	attempts := 0
	err := retryCredentialCollisions(reg, func(*model.Registration) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, "tok", reg.Token)
	assert.Equal(t, "EVT-AAAAAA", reg.Code)
}

func TestRetryCredentialCollisionsRegeneratesOnTokenCollision(t *testing.T) {
	reg := &model.Registration{Token: "tok", Code: "EVT-AAAAAA"}

	attempts := 0
	err := retryCredentialCollisions(reg, func(r *model.Registration) error {
		attempts++
		if attempts == 1 {
			return uniqueViolationOn("registrations_token_key")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NotEqual(t, "tok", reg.Token)
	assert.NotEqual(t, "EVT-AAAAAA", reg.Code)
	assert.Len(t, reg.Token, 64)
	assert.Regexp(t, `^EVT-[0-9A-Z]{6}$`, reg.Code)
}

func TestRetryCredentialCollisionsRegeneratesOnCodeCollision(t *testing.T) {
	reg := &model.Registration{Token: "tok", Code: "EVT-AAAAAA"}

	attempts := 0
	err := retryCredentialCollisions(reg, func(*model.Registration) error {
		attempts++
		if attempts == 1 {
			return uniqueViolationOn("registrations_code_key")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NotEqual(t, "EVT-AAAAAA", reg.Code)
}

func TestRetryCredentialCollisionsDuplicateRegistrationIsTerminal(t *testing.T) {
	reg := &model.Registration{Token: "tok", Code: "EVT-AAAAAA"}

	attempts := 0
	err := retryCredentialCollisions(reg, func(*model.Registration) error {
		attempts++
		return uniqueViolationOn("registrations_user_event_key")
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 1, attempts)
	assert.Equal(t, "tok", reg.Token)
}

func TestRetryCredentialCollisionsOtherErrorsAreTerminal(t *testing.T) {
	reg := &model.Registration{Token: "tok", Code: "EVT-AAAAAA"}
	cause := errors.New("connection reset")

	attempts := 0
	err := retryCredentialCollisions(reg, func(*model.Registration) error {
		attempts++
		return cause
	})
	require.ErrorIs(t, err, cause)
	assert.Equal(t, 1, attempts)
}

func TestRetryCredentialCollisionsGivesUpAfterBound(t *testing.T) {
	reg := &model.Registration{Token: "tok", Code: "EVT-AAAAAA"}

	attempts := 0
	err := retryCredentialCollisions(reg, func(*model.Registration) error {
		attempts++
		return uniqueViolationOn("registrations_token_key")
	})
	require.Error(t, err)
	assert.Equal(t, credentialRetries, attempts)
	assert.Contains(t, err.Error(), "credential collision")
}
