package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("invalid identifier: %s", "a b"), http.StatusUnprocessableEntity},
		{"unauthorized", Unauthorized("Incorrect username or password"), http.StatusUnauthorized},
		{"conflict", Conflict("Already exists"), http.StatusConflict},
		{"not found", NotFound("person", "42"), http.StatusNotFound},
		{"nothing to update", NothingToUpdate("person", "42"), http.StatusNotFound},
		{"partial failure", PartialFailure("person"), http.StatusNotFound},
		{"wrapped", fmt.Errorf("lookup: %w", NotFound("user", "7")), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestNothingToUpdateIsAlsoNotFound(t *testing.T) {
	err := NothingToUpdate("person", "42")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrNothingToUpdate)
	assert.NotErrorIs(t, NotFound("person", "42"), ErrNothingToUpdate)
	assert.Equal(t, NotFound("person", "42").Error(), err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "persons not complete updated", Message(PartialFailure("person")))
	assert.Equal(t, "person not found", Message(EntityNotFound("person")))
	assert.Equal(t, "internal server error", Message(errors.New("socket closed")))
}
