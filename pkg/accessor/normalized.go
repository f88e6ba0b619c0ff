package accessor

import (
	"context"

	"github.com/marmos91/podstore/pkg/resource"
)

// MetadataFunc is a backend's raw GetMetadata operation.
type MetadataFunc func(ctx context.Context, id resource.Identifier) (*resource.Metadata, error)

// NormalizedMetadata implements GetNormalizedMetadata for any backend: it
// tries the raw lookup as given and, on a NotFound failure specifically,
// retries once with the identifier's trailing slash toggled. Any other
// failure propagates immediately; the retry's outcome is final.
func NormalizedMetadata(ctx context.Context, id resource.Identifier, get MetadataFunc) (*resource.Metadata, error) {
	meta, err := get(ctx, id)
	if err == nil {
		return meta, nil
	}
	if !resource.IsNotFoundError(err) {
		return nil, err
	}
	return get(ctx, id.ToggleSlash())
}
