// Package store implements the resource-store orchestrator: it sits on top of
// a backend-agnostic DataAccessor and turns raw storage operations into
// namespace-consistent create/read/update/delete semantics with containment
// bookkeeping, conflict detection, and recursive container creation.
package store

import (
	"context"

	"github.com/marmos91/podstore/pkg/resource"
)

// ResourceStore is the full create/read/update/delete contract over the
// container/resource namespace.
type ResourceStore interface {
	// GetRepresentation returns the representation of the resource at id.
	// A container's body is its own metadata materialized as quads.
	GetRepresentation(ctx context.Context, id resource.Identifier) (*resource.Representation, error)

	// AddResource creates a new resource inside the given container and
	// returns its identifier. The client-suggested name is honored unless it
	// collides with an existing child.
	AddResource(ctx context.Context, container resource.Identifier, repr *resource.Representation) (resource.Identifier, error)

	// SetRepresentation creates or fully replaces the resource at id,
	// materializing missing ancestor containers as needed.
	SetRepresentation(ctx context.Context, id resource.Identifier, repr *resource.Representation) error

	// ModifyResource applies a partial update, if the backend supports it.
	ModifyResource(ctx context.Context, id resource.Identifier, patch *resource.Representation) error

	// DeleteResource removes the resource at id. Only empty containers may
	// be deleted; the root container never can.
	DeleteResource(ctx context.Context, id resource.Identifier) error

	// HasResource reports whether id resolves to an existing resource, under
	// slash normalization.
	HasResource(ctx context.Context, id resource.Identifier) (bool, error)
}

// ContainerManager resolves the logical parent container of an identifier.
type ContainerManager interface {
	// Parent returns the identifier of id's direct parent container. It fails
	// when id is the base itself or falls outside it.
	Parent(id resource.Identifier) (resource.Identifier, error)
}
