package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Invalid("amount", "must be positive"), http.StatusBadRequest},
		{"not found wrapped", fmt.Errorf("lecture 7: %w", ErrNotFound), http.StatusNotFound},
		{"insufficient", ErrInsufficientBalance, http.StatusPaymentRequired},
		{"conflict", fmt.Errorf("already purchased: %w", ErrConflict), http.StatusConflict},
		{"aborted", ErrTransactionAborted, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "not enough points", Message(fmt.Errorf("debit: %w", ErrInsufficientBalance)))
	assert.Equal(t, "resource already exists or was already used", Message(fmt.Errorf("already purchased: %w", ErrConflict)))
	assert.Equal(t, "resource not found", Message(fmt.Errorf("lecture 7: %w", ErrNotFound)))
	assert.Equal(t, "internal error", Message(errors.New("pq: connection refused")))
}

func TestMessage_HidesStorageDetail(t *testing.T) {
	fk := fmt.Errorf("%w: %s", ErrNotFound, `Key (lecturer_id)=(9) is not present in table "users".`)
	dup := fmt.Errorf("%w: duplicate %s", ErrConflict, "container_purchases_student_container_key")

	for _, err := range []error{fk, dup} {
		msg := Message(err)
		assert.NotContains(t, msg, "users")
		assert.NotContains(t, msg, "_key")
		assert.NotContains(t, msg, "Key (")
	}
}

func TestValidationError(t *testing.T) {
	v := &ValidationError{}
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.OrNil())

	v.Add("points_amount", "must be positive")
	v.Add("lecturer_id", "required for specific codes")

	assert.True(t, v.HasErrors())
	assert.Equal(t, "validation failed: lecturer_id: required for specific codes; points_amount: must be positive", v.Error())
	assert.True(t, IsValidation(fmt.Errorf("issue: %w", v.OrNil())))
}
