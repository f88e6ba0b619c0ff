package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/geoknoesis/rdf-go/rdf"
	"github.com/google/uuid"

	"github.com/marmos91/podstore/internal/logger"
	"github.com/marmos91/podstore/pkg/accessor"
	"github.com/marmos91/podstore/pkg/metrics"
	"github.com/marmos91/podstore/pkg/rdfio"
	"github.com/marmos91/podstore/pkg/resource"
)

// Config holds configuration for an AccessorStore.
type Config struct {
	// Accessor is the storage backend.
	Accessor accessor.DataAccessor

	// Containers resolves parent containers. Defaults to a
	// BaseContainerManager over Base.
	Containers ContainerManager

	// Base is the store's base identifier. Every identifier the store accepts
	// must fall under it; the base container is asserted to always exist.
	Base string

	// Metrics records operation counts and latencies. Optional.
	Metrics *metrics.StoreMetrics

	// NameGenerator produces unique names for resources created without a
	// usable client-suggested name. Defaults to UUIDs.
	NameGenerator func() string
}

// AccessorStore implements ResourceStore on top of a DataAccessor.
type AccessorStore struct {
	accessor   accessor.DataAccessor
	containers ContainerManager
	base       string
	metrics    *metrics.StoreMetrics
	newName    func() string
}

// New creates an AccessorStore with the given configuration.
func New(cfg Config) (*AccessorStore, error) {
	if cfg.Accessor == nil {
		return nil, errors.New("data accessor is required")
	}
	if cfg.Base == "" {
		return nil, errors.New("base identifier is required")
	}
	base := cfg.Base
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if cfg.Containers == nil {
		cfg.Containers = NewBaseContainerManager(base)
	}
	if cfg.NameGenerator == nil {
		cfg.NameGenerator = uuid.NewString
	}
	return &AccessorStore{
		accessor:   cfg.Accessor,
		containers: cfg.Containers,
		base:       base,
		metrics:    cfg.Metrics,
		newName:    cfg.NameGenerator,
	}, nil
}

// validate rejects identifiers outside the store's base. The violation is a
// NotFound condition, not a validation error, so namespace structure is not
// leaked to callers probing outside it.
func (s *AccessorStore) validate(id resource.Identifier) error {
	if !id.InScope(s.base) {
		return resource.NewNotFoundError(id.Path)
	}
	return nil
}

// GetRepresentation returns the representation of the resource at id.
//
// For an existing container, the body is synthesized lazily from the
// container's own metadata quads, so additions made to the metadata before
// the body is consumed are still reflected. Its content type is fixed to
// internal quads; a data resource's content type comes from its metadata.
func (s *AccessorStore) GetRepresentation(ctx context.Context, id resource.Identifier) (_ *resource.Representation, err error) {
	defer s.observe("get", time.Now(), &err)

	if err := s.validate(id); err != nil {
		return nil, err
	}
	meta, err := s.accessor.GetMetadata(ctx, id)
	if err != nil {
		return nil, err
	}

	if meta.IsContainer() {
		meta.SetContentType(resource.ContentTypeQuads)
		return &resource.Representation{
			Metadata: meta,
			Data:     &quadBody{meta: meta},
			Binary:   false,
		}, nil
	}

	data, err := s.accessor.GetData(ctx, id)
	if err != nil {
		return nil, err
	}
	return resource.NewRepresentation(meta, data), nil
}

// AddResource creates a new resource inside container and returns its
// identifier. The client-suggested name is honored unless it collides with an
// existing containment edge, in which case a fresh unique name is generated.
func (s *AccessorStore) AddResource(ctx context.Context, container resource.Identifier, repr *resource.Representation) (_ resource.Identifier, err error) {
	defer s.observe("add", time.Now(), &err)

	if err := s.validate(container); err != nil {
		return resource.Identifier{}, err
	}
	if err := s.accessor.CanHandle(repr); err != nil {
		return resource.Identifier{}, err
	}
	if repr.Metadata == nil {
		repr.Metadata = resource.NewMetadata(container)
	}

	// Target kind comes from the representation's own declared type, falling
	// back to whether the suggested name ends in a slash.
	slug := slugOf(repr.Metadata)
	isContainer, known := declaredKind(repr.Metadata)
	if !known {
		isContainer = strings.HasSuffix(slug, "/")
	}

	newID := s.candidateID(container, slug, isContainer)

	// The suggested name is request-only metadata, never persisted.
	repr.Metadata.RemoveAll(resource.SlugHint)

	parentMeta, err := s.tolerantMetadata(ctx, container)
	if err != nil {
		return resource.Identifier{}, err
	}
	if parentMeta != nil && !parentMeta.IsContainer() {
		return resource.Identifier{}, resource.NewMethodNotAllowedError(container.Path,
			"cannot create resources inside a data resource")
	}
	if parentMeta != nil && parentMeta.Contains(newID) {
		// Never overwrite an existing child through a suggested name.
		newID = s.candidateID(container, "", isContainer)
	}

	if err := s.writeData(ctx, newID, repr, isContainer, parentMeta == nil); err != nil {
		return resource.Identifier{}, err
	}
	logger.Debug("added resource", "id", newID.Path, "container", container.Path)
	return newID, nil
}

// SetRepresentation creates or fully replaces the resource at id,
// materializing missing ancestors when the resource did not previously exist.
func (s *AccessorStore) SetRepresentation(ctx context.Context, id resource.Identifier, repr *resource.Representation) (err error) {
	defer s.observe("set", time.Now(), &err)

	if err := s.validate(id); err != nil {
		return err
	}
	if err := s.accessor.CanHandle(repr); err != nil {
		return err
	}
	if repr.Metadata == nil {
		repr.Metadata = resource.NewMetadata(id)
	}

	oldMeta, err := s.safeMetadata(ctx, id)
	if err != nil {
		return err
	}
	// Slash normalization may resolve the lookup to a different canonical
	// identifier; writing through the wrong shape is a conflict.
	if oldMeta != nil && oldMeta.Identifier() != id {
		return resource.NewConflictError(id.Path, "identifier resolves to "+oldMeta.Identifier().Path)
	}

	isContainer, known := declaredKind(repr.Metadata)
	if !known {
		isContainer = id.IsContainer()
	}
	if oldMeta != nil && oldMeta.IsContainer() != isContainer {
		return resource.NewConflictError(id.Path, "cannot change the kind of an existing resource")
	}
	if isContainer != id.IsContainer() {
		return resource.NewUnsupportedKindError(id.Path,
			"declared resource kind disagrees with the identifier's trailing slash")
	}

	if err := s.writeData(ctx, id, repr, isContainer, oldMeta == nil); err != nil {
		return err
	}
	logger.Debug("set representation", "id", id.Path, "created", oldMeta == nil)
	return nil
}

// ModifyResource delegates patch semantics to the backend, which may or may
// not implement them. Neither reference backend does.
func (s *AccessorStore) ModifyResource(ctx context.Context, id resource.Identifier, patch *resource.Representation) (err error) {
	defer s.observe("modify", time.Now(), &err)

	if err := s.validate(id); err != nil {
		return err
	}
	return s.accessor.ModifyResource(ctx, id, patch)
}

// DeleteResource removes the resource at id. The root container can never be
// deleted, and containers must be empty.
func (s *AccessorStore) DeleteResource(ctx context.Context, id resource.Identifier) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if err := s.validate(id); err != nil {
		return err
	}
	if id.IsRoot(s.base) {
		return resource.NewMethodNotAllowedError(id.Path, "cannot delete the root container")
	}
	meta, err := s.accessor.GetMetadata(ctx, id)
	if err != nil {
		return err
	}
	if len(meta.ContainedResources()) > 0 {
		return resource.NewConflictError(id.Path, "container is not empty")
	}
	if err := s.accessor.DeleteResource(ctx, id); err != nil {
		return err
	}
	logger.Debug("deleted resource", "id", id.Path)
	return nil
}

// HasResource reports whether id resolves to an existing resource under slash
// normalization.
func (s *AccessorStore) HasResource(ctx context.Context, id resource.Identifier) (bool, error) {
	if err := s.validate(id); err != nil {
		return false, err
	}
	_, err := s.accessor.GetNormalizedMetadata(ctx, id)
	if err != nil {
		if resource.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// safeMetadata looks up normalized metadata, treating NotFound as a nil result.
func (s *AccessorStore) safeMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	meta, err := s.accessor.GetNormalizedMetadata(ctx, id)
	if err != nil {
		if resource.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return meta, nil
}

// tolerantMetadata looks up normalized metadata for a parent, treating NotFound
// as a nil result only when the identifier is container-shaped. A missing
// non-container parent stays a hard NotFound: creation under a non-container
// is invalid.
func (s *AccessorStore) tolerantMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	if !id.IsContainer() {
		return s.accessor.GetNormalizedMetadata(ctx, id)
	}
	return s.safeMetadata(ctx, id)
}

// candidateID builds the identifier for a new child of container: the trimmed
// suggested name when one was given, a generated unique name otherwise, with
// the container suffix re-added for container kinds.
func (s *AccessorStore) candidateID(container resource.Identifier, slug string, isContainer bool) resource.Identifier {
	name := strings.Trim(slug, "/")
	if name == "" {
		name = s.newName()
	}
	path := container.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	path += name
	if isContainer {
		path += "/"
	}
	return resource.ID(path)
}

// writeData is the shared write logic behind AddResource, SetRepresentation,
// and recursive container materialization.
func (s *AccessorStore) writeData(ctx context.Context, id resource.Identifier, repr *resource.Representation, isContainer, createAncestors bool) error {
	if isContainer {
		if err := s.foldContainerBody(ctx, repr, id); err != nil {
			return err
		}
	}

	meta := repr.Metadata
	meta.SetIdentifier(id)
	meta.RemoveAll(resource.RDFType)
	meta.AddResourceType(isContainer)

	if createAncestors {
		if parent, err := s.containers.Parent(id); err == nil {
			if err := s.ensureContainer(ctx, parent); err != nil {
				return err
			}
		}
	}

	if isContainer {
		return s.accessor.WriteContainer(ctx, id, meta)
	}
	return s.accessor.WriteDataResource(ctx, id, repr.Data, meta)
}

// foldContainerBody validates that an incoming container body parses as RDF
// and authors no containment edges, then folds the parsed quads into the
// representation's metadata. Containers have no independent content type.
func (s *AccessorStore) foldContainerBody(ctx context.Context, repr *resource.Representation, id resource.Identifier) error {
	defer repr.Data.Close()

	quads, err := rdfio.ParseQuads(ctx, repr.Data, repr.Metadata.ContentType())
	if err != nil {
		return err
	}
	for _, q := range quads {
		if q.P == resource.LDPContains {
			return resource.NewConflictError(id.Path, "containment triples may not be authored directly")
		}
	}
	repr.Metadata.SetContentType("")
	repr.Metadata.AddQuads(quads)
	return nil
}

// ensureContainer recursively materializes the ancestor chain of a container.
// Recursion terminates because the chain strictly decreases in depth and the
// base container always exists.
func (s *AccessorStore) ensureContainer(ctx context.Context, id resource.Identifier) error {
	meta, err := s.accessor.GetNormalizedMetadata(ctx, id)
	if err == nil {
		if !meta.IsContainer() {
			return resource.NewConflictError(id.Path, "expected a container on the ancestor path")
		}
		return nil
	}
	if !resource.IsNotFoundError(err) {
		return err
	}

	if parent, perr := s.containers.Parent(id); perr == nil {
		if err := s.ensureContainer(ctx, parent); err != nil {
			return err
		}
	}

	logger.Debug("materializing missing container", "id", id.Path)
	empty := resource.NewMetadata(id)
	empty.AddResourceType(true)
	return s.accessor.WriteContainer(ctx, id, empty)
}

// observe records the outcome of one public operation.
func (s *AccessorStore) observe(operation string, start time.Time, err *error) {
	s.metrics.Observe(operation, start, *err)
}

// slugOf extracts the client-suggested name hint, if any.
func slugOf(meta *resource.Metadata) string {
	term, ok := meta.Get(resource.SlugHint)
	if !ok {
		return ""
	}
	if lit, isLit := term.(rdf.Literal); isLit {
		return lit.Lexical
	}
	return ""
}

// declaredKind reports the resource kind declared by the representation's own
// RDF types, and whether any type was declared at all.
func declaredKind(meta *resource.Metadata) (isContainer, known bool) {
	if len(meta.All(resource.RDFType)) == 0 {
		return false, false
	}
	return meta.IsContainer(), true
}

// quadBody materializes a container's metadata as its body on first read.
// Serialization is deferred so metadata added after the representation was
// produced, but before the body is consumed, is still reflected.
type quadBody struct {
	meta *resource.Metadata
	r    *bytes.Reader
}

func (b *quadBody) Read(p []byte) (int, error) {
	if b.r == nil {
		data, err := rdfio.SerializeQuadsToBytes(context.Background(), b.meta.Quads())
		if err != nil {
			return 0, err
		}
		b.r = bytes.NewReader(data)
	}
	return b.r.Read(p)
}

func (b *quadBody) Close() error { return nil }

var _ io.ReadCloser = (*quadBody)(nil)

// Ensure AccessorStore implements ResourceStore.
var _ ResourceStore = (*AccessorStore)(nil)
