package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	assert.Equal(t, "product not found", NewNotFoundError("product", "").Error())
	assert.Equal(t, "no such intake", NewNotFoundError("intake", "no such intake").Error())
	assert.Equal(t, "resource not found", (&NotFoundError{}).Error())

	wrapped := fmt.Errorf("failed to get product: %w", NewNotFoundError("product", ""))
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrValidation)
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "validation failed for field: skin_type", NewValidationError("skin_type", "").Error())
	assert.ErrorIs(t, fmt.Errorf("intake: %w", NewValidationError("sensitive", "bad")), ErrValidation)
}

func TestRetrievalError(t *testing.T) {
	storeErr := errors.New("connection refused")
	err := fmt.Errorf("retrieve: %w", NewRetrievalError("skin_type", storeErr))

	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrNotFound)

	var re *RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "skin_type", re.Stage)
	assert.Equal(t, "retrieval failed at stage skin_type: connection refused", re.Error())

	assert.Equal(t, "retrieval failed", (&RetrievalError{}).Error())
	assert.Equal(t, "retrieval failed: x", (&RetrievalError{Err: errors.New("x")}).Error())
}
