package resource_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/podstore/pkg/resource"
)

func TestStoreError_Error(t *testing.T) {
	t.Parallel()

	err := resource.NewNotFoundError("http://example.com/store/a")
	assert.Contains(t, err.Error(), "NotFound")
	assert.Contains(t, err.Error(), "http://example.com/store/a")

	err = resource.NewUnsupportedMediaTypeError("only binary data is supported")
	assert.Contains(t, err.Error(), "UnsupportedMediaType")
}

func TestStoreError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("parse failure at line 3")
	err := resource.NewBadRequestError("invalid RDF body", cause)

	assert.ErrorIs(t, err, cause)
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, resource.IsNotFoundError(resource.NewNotFoundError("x")))
	assert.True(t, resource.IsConflictError(resource.NewConflictError("x", "boom")))
	assert.True(t, resource.IsUnsupportedMediaTypeError(resource.NewUnsupportedMediaTypeError("boom")))
	assert.True(t, resource.IsMethodNotAllowedError(resource.NewMethodNotAllowedError("x", "boom")))
	assert.True(t, resource.IsNotImplementedError(resource.NewNotImplementedError("modify")))

	assert.False(t, resource.IsNotFoundError(resource.NewConflictError("x", "boom")))
	assert.False(t, resource.IsNotFoundError(errors.New("plain")))
	assert.False(t, resource.IsNotFoundError(nil))
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("while reading: %w", resource.NewNotFoundError("x"))
	assert.True(t, resource.IsNotFoundError(wrapped))

	var storeErr *resource.StoreError
	require.True(t, errors.As(wrapped, &storeErr))
	assert.Equal(t, resource.ErrNotFound, storeErr.Code)
}
