package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"invalid date", WrapInvalidDate("registrationDate", "2024-13-01"), ErrInvalidDate},
		{"unsupported type", WrapUnsupportedMembershipType("WEEKLY"), ErrUnsupportedMembershipType},
		{"conflict", WrapConcurrentModification("member", "abc"), ErrConcurrentModification},
		{"member not found", WrapMemberNotFound("abc"), ErrMemberNotFound},
		{"wrapped twice", fmt.Errorf("post payment: %w", WrapPaymentNotFound("p1")), ErrPaymentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.target))
		})
	}
}

func TestWrapStoreUnavailable_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := WrapStoreUnavailable(cause)

	assert.True(t, stderrors.Is(err, ErrStoreUnavailable))
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), ErrCodeStoreUnavailable)
}

func TestBusinessError_ErrorString(t *testing.T) {
	err := NewBusinessError("CODE", "message", nil)
	assert.Equal(t, "CODE: message", err.Error())

	err = NewBusinessError("CODE", "message", stderrors.New("boom"))
	assert.Equal(t, "CODE: message (boom)", err.Error())
}
