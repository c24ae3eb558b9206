package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpersCarryKindAndMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		want string
	}{
		{"validation", Validationf("amount %v out of range", -1), ErrValidation, "validation error: amount -1 out of range"},
		{"not found", NotFoundf("promo code %s", "SAM20"), ErrNotFound, "not found: promo code SAM20"},
		{"authorization", Authorizationf("admin role required"), ErrAuthorization, "authorization error: admin role required"},
		{"conflict", Conflictf("email %s taken", "a@b.com"), ErrConflict, "conflict: email a@b.com taken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFoundf("ambassador %s", "abc")
	wrapped := fmt.Errorf("load owner: %w", inner)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrValidation)
}

func TestPersistence(t *testing.T) {
	assert.NoError(t, Persistence(nil))

	cause := errors.New("connection refused")
	err := Persistence(fmt.Errorf("create usage: %w", cause))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "connection refused")
}
