package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("place order: %w", New(EmptyBasket, "basket is empty"))

	assert.Equal(t, EmptyBasket, KindOf(wrapped))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.True(t, IsKind(wrapped, EmptyBasket))
	assert.False(t, IsKind(nil, EmptyBasket))
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("create: %w", New(AlreadyExists, "username already taken"))

	assert.True(t, errors.Is(err, &Error{Kind: AlreadyExists}))
	assert.True(t, errors.Is(err, New(AlreadyExists, "username already taken")))
	assert.False(t, errors.Is(err, New(AlreadyExists, "email already registered")))
	assert.False(t, errors.Is(err, &Error{Kind: NotFound}))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("driver failure")
	err := Wrap(Internal, cause, "load basket")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load basket: driver failure", err.Error())
}

func TestValidationMessageIsStable(t *testing.T) {
	err := Validation(map[string]string{
		"Password": "Minimum length is 8",
		"Email":    "Invalid email format",
	})

	require.Equal(t, InvalidInput, err.Kind)
	assert.Equal(t, "validation failed: Email: Invalid email format; Password: Minimum length is 8", err.Message)
	assert.Len(t, err.Fields, 2)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "empty_basket", EmptyBasket.String())
	assert.Equal(t, "internal", Kind(99).String())
}
