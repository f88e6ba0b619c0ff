// Package accessor defines the backend-agnostic contract for raw resource
// storage. A DataAccessor stores and retrieves the bytes and metadata of a
// single identifier; namespace semantics (containment, conflict detection,
// ancestor creation) live in the store layered on top.
package accessor

import (
	"context"
	"io"

	"github.com/marmos91/podstore/pkg/resource"
)

// DataAccessor is the contract every storage backend implements.
//
// All operations are identifier-addressed. Read operations fail NotFound when
// the identifier does not resolve to an existing entry of the kind implied by
// its trailing-slash shape.
type DataAccessor interface {
	// CanHandle fails with an UnsupportedMediaType condition if the
	// representation's encoding is incompatible with the backend.
	CanHandle(repr *resource.Representation) error

	// GetData returns the raw byte stream of a data resource.
	GetData(ctx context.Context, id resource.Identifier) (io.ReadCloser, error)

	// GetMetadata returns the metadata of the entry at id. The trailing-slash
	// shape of id must agree exactly with the entry's actual kind.
	GetMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error)

	// GetNormalizedMetadata behaves as GetMetadata, but on a NotFound caused
	// by a slash-shape mismatch it retries once with the opposite shape.
	GetNormalizedMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error)

	// WriteDataResource stores data and metadata as the new, complete content
	// of id, fully replacing any prior content.
	WriteDataResource(ctx context.Context, id resource.Identifier, data io.ReadCloser, meta *resource.Metadata) error

	// WriteContainer ensures id exists as a container and stores its metadata.
	// Idempotent if the container already exists.
	WriteContainer(ctx context.Context, id resource.Identifier, meta *resource.Metadata) error

	// ModifyResource applies a partial update. Neither reference backend
	// implements patch semantics; both fail NotImplemented.
	ModifyResource(ctx context.Context, id resource.Identifier, patch *resource.Representation) error

	// DeleteResource removes the entry at id, with slash-shape agreement
	// required as in GetMetadata.
	DeleteResource(ctx context.Context, id resource.Identifier) error
}

// IdentifierMapper is the bidirectional mapping between resource identifiers
// and backend file paths, consumed by the filesystem backend only.
type IdentifierMapper interface {
	// MapIdentifier resolves an identifier to a backend file path.
	MapIdentifier(id resource.Identifier) (string, error)

	// MapPath resolves a backend file path back to an identifier.
	MapPath(path string, isContainer bool) (resource.Identifier, error)

	// ContentType infers a content type from a path's extension.
	ContentType(path string) string
}
