package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/connectapp/connect-server/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	assert.Equal(t, "resource not found", store.ErrNotFound.Error())

	err := store.ErrNotFound.WithCause(errors.New("user 7"))
	assert.Equal(t, "resource not found: user 7", err.Error())
}

func TestError_HTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, store.ErrNotFound.HTTPCode())
	assert.Equal(t, http.StatusConflict, store.ErrAlreadyExists.HTTPCode())
}

func TestError_IsWithCause(t *testing.T) {
	cause := errors.New("FOREIGN KEY constraint failed")
	err := fmt.Errorf("save profile: %w", store.ErrNotFound.WithCause(cause))

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
}

func TestError_WithCauseDoesNotMutateSentinel(t *testing.T) {
	_ = store.ErrAlreadyExists.WithCause(errors.New("x"))
	assert.Nil(t, store.ErrAlreadyExists.Unwrap())
}
