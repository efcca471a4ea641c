package repository

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &ValidationError{Field: "data", Message: "blank"}, http.StatusBadRequest, "invalid_input"},
		{"not found", &NotFoundError{Key: 1}, http.StatusNotFound, "not_found"},
		{"conflict", &ConflictError{Data: "x", ExistingKey: 2}, http.StatusConflict, "conflict"},
		{"precondition", &PreconditionFailedError{Key: 3}, http.StatusPreconditionFailed, "precondition_failed"},
		{"race lost", &RaceLostError{Key: 3}, http.StatusPreconditionFailed, "precondition_failed"},
		{"internal", &InternalError{Op: "post", Key: 4}, http.StatusInternalServerError, "internal_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"wrapped", fmt.Errorf("replace: %w", &NotFoundError{Key: 5}), http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusCode(tt.err))
			resp := ToErrorResponse(tt.err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.err.Error(), resp.Message)
		})
	}
}

func TestToErrorResponse_HintAndField(t *testing.T) {
	resp := ToErrorResponse(&ValidationError{Field: "data", Message: "blank"})
	assert.Equal(t, "data", resp.Field)
	assert.NotEmpty(t, resp.Hint)

	resp = ToErrorResponse(errors.New("boom"))
	assert.Empty(t, resp.Hint)
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, IsPreconditionFailed(&PreconditionFailedError{}))
	assert.True(t, IsPreconditionFailed(fmt.Errorf("x: %w", &RaceLostError{})))
	assert.False(t, IsPreconditionFailed(&ConflictError{}))
	assert.False(t, IsPreconditionFailed(nil))
}
