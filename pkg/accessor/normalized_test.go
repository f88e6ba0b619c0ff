package accessor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/podstore/pkg/accessor"
	"github.com/marmos91/podstore/pkg/resource"
)

func TestNormalizedMetadata_DirectHit(t *testing.T) {
	t.Parallel()

	id := resource.ID("http://example.com/store/doc")
	var calls []resource.Identifier

	meta, err := accessor.NormalizedMetadata(context.Background(), id,
		func(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
			calls = append(calls, id)
			return resource.NewMetadata(id), nil
		})

	require.NoError(t, err)
	assert.Equal(t, id, meta.Identifier())
	assert.Equal(t, []resource.Identifier{id}, calls)
}

func TestNormalizedMetadata_RetriesToggledSlashOnNotFound(t *testing.T) {
	t.Parallel()

	id := resource.ID("http://example.com/store/c")
	toggled := id.ToggleSlash()

	meta, err := accessor.NormalizedMetadata(context.Background(), id,
		func(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
			if id == toggled {
				return resource.NewMetadata(id), nil
			}
			return nil, resource.NewNotFoundError(id.Path)
		})

	require.NoError(t, err)
	assert.Equal(t, toggled, meta.Identifier())
}

func TestNormalizedMetadata_RetryFailureIsFinal(t *testing.T) {
	t.Parallel()

	var calls int

	_, err := accessor.NormalizedMetadata(context.Background(),
		resource.ID("http://example.com/store/missing"),
		func(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
			calls++
			return nil, resource.NewNotFoundError(id.Path)
		})

	assert.True(t, resource.IsNotFoundError(err))
	assert.Equal(t, 2, calls)
}

func TestNormalizedMetadata_OtherFailuresPropagateImmediately(t *testing.T) {
	t.Parallel()

	var calls int
	boom := errors.New("disk on fire")

	_, err := accessor.NormalizedMetadata(context.Background(),
		resource.ID("http://example.com/store/doc"),
		func(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
			calls++
			return nil, boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
