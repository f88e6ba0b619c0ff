// Package memory provides an in-memory implementation of accessor.DataAccessor.
// Resources live in a single container-entry tree rooted at the configured
// base identifier.
package memory

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/marmos91/podstore/internal/logger"
	"github.com/marmos91/podstore/pkg/accessor"
	"github.com/marmos91/podstore/pkg/rdfio"
	"github.com/marmos91/podstore/pkg/resource"
)

// entry is a node of the in-memory tree. It is a closed sum: an entry is
// either a dataEntry or a containerEntry, never both.
type entry interface {
	isEntry()
}

// dataEntry holds an owned, re-readable byte sequence plus optional metadata.
type dataEntry struct {
	data []byte
	meta *resource.Metadata
}

// containerEntry holds a child map plus optional metadata.
type containerEntry struct {
	children map[string]entry
	meta     *resource.Metadata
}

func (*dataEntry) isEntry()      {}
func (*containerEntry) isEntry() {}

// Accessor is an in-memory implementation of accessor.DataAccessor.
//
// The tree is process-wide shared mutable state guarded by a single RWMutex.
// Individual operations are atomic with respect to each other, but two
// concurrent writers to the same identifier can still interleave their
// check-then-act sequences across separate calls.
type Accessor struct {
	mu   sync.RWMutex
	base string
	root *containerEntry
}

// New creates an in-memory accessor rooted at the given base identifier.
// The base container exists from the start, pre-populated with its own
// structural metadata.
func New(base string) *Accessor {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	rootID := resource.ID(base)
	meta := resource.NewMetadata(rootID)
	meta.AddQuads(rdfio.ResourceQuads(rootID, true))

	return &Accessor{
		base: base,
		root: &containerEntry{
			children: make(map[string]entry),
			meta:     meta,
		},
	}
}

// segments splits the identifier's path below the base. The trailing slash is
// not a segment: "base/a/b" and "base/a/b/" both resolve to ["a", "b"].
func (a *Accessor) segments(id resource.Identifier) ([]string, error) {
	if !strings.HasPrefix(id.Path, a.base) {
		return nil, resource.NewNotFoundError(id.Path)
	}
	rel := strings.TrimSuffix(strings.TrimPrefix(id.Path, a.base), "/")
	if rel == "" {
		return nil, nil
	}
	return strings.Split(rel, "/"), nil
}

// parent resolves all but the last segment, traversing container entries only.
// A data entry encountered mid-path is a NotFound condition, never a type error.
func (a *Accessor) parent(id resource.Identifier, segs []string) (*containerEntry, error) {
	cur := a.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := cur.children[seg]
		if !ok {
			return nil, resource.NewNotFoundError(id.Path)
		}
		container, ok := child.(*containerEntry)
		if !ok {
			return nil, resource.NewNotFoundError(id.Path)
		}
		cur = container
	}
	return cur, nil
}

// lookup resolves the full identifier to its entry.
func (a *Accessor) lookup(id resource.Identifier) (entry, error) {
	segs, err := a.segments(id)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return a.root, nil
	}
	parent, err := a.parent(id, segs)
	if err != nil {
		return nil, err
	}
	child, ok := parent.children[segs[len(segs)-1]]
	if !ok {
		return nil, resource.NewNotFoundError(id.Path)
	}
	return child, nil
}

// CanHandle accepts binary representations only.
func (a *Accessor) CanHandle(repr *resource.Representation) error {
	if !repr.Binary {
		return resource.NewUnsupportedMediaTypeError("only binary data is supported")
	}
	return nil
}

// GetData returns an independent copy of the entry's byte sequence. The entry
// retains its own copy, so concurrent or repeated reads each see the full
// content without draining one another.
func (a *Accessor) GetData(ctx context.Context, id resource.Identifier) (io.ReadCloser, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	data, ok := e.(*dataEntry)
	if !ok {
		return nil, resource.NewNotFoundError(id.Path)
	}

	buf := make([]byte, len(data.data))
	copy(buf, data.data)
	return io.NopCloser(bytes.NewReader(buf)), nil
}

// GetMetadata reconstructs metadata from the entry's stored metadata plus, for
// containers, one containment edge per direct child.
func (a *Accessor) GetMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}

	switch e := e.(type) {
	case *dataEntry:
		if id.IsContainer() {
			return nil, resource.NewNotFoundError(id.Path)
		}
		return cloneMetadata(e.meta, id), nil
	case *containerEntry:
		if !id.IsContainer() {
			return nil, resource.NewNotFoundError(id.Path)
		}
		meta := cloneMetadata(e.meta, id)
		meta.AddQuads(rdfio.ContainsQuads(id, childIdentifiers(id, e)))
		return meta, nil
	default:
		return nil, resource.NewNotFoundError(id.Path)
	}
}

// GetNormalizedMetadata retries GetMetadata with the opposite slash shape on
// a NotFound.
func (a *Accessor) GetNormalizedMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	return accessor.NormalizedMetadata(ctx, id, a.GetMetadata)
}

// WriteDataResource fully drains data into an owned buffer and stores it as a
// new data entry, replacing whatever previously existed at that name.
func (a *Accessor) WriteDataResource(ctx context.Context, id resource.Identifier, data io.ReadCloser, meta *resource.Metadata) error {
	buf, err := io.ReadAll(data)
	closeErr := data.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	segs, err := a.segments(id)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return resource.NewConflictError(id.Path, "cannot write data to the root container")
	}
	parent, err := a.parent(id, segs)
	if err != nil {
		return err
	}

	logger.Debug("writing data resource", "id", id.Path, "size", len(buf))
	parent.children[segs[len(segs)-1]] = &dataEntry{
		data: buf,
		meta: cloneMetadata(meta, id),
	}
	return nil
}

// WriteContainer replaces (or creates) a container entry with an empty child
// map and the given metadata.
func (a *Accessor) WriteContainer(ctx context.Context, id resource.Identifier, meta *resource.Metadata) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	segs, err := a.segments(id)
	if err != nil {
		return err
	}

	container := &containerEntry{
		children: make(map[string]entry),
		meta:     cloneMetadata(meta, id),
	}

	logger.Debug("writing container", "id", id.Path)
	if len(segs) == 0 {
		a.root = container
		return nil
	}
	parent, err := a.parent(id, segs)
	if err != nil {
		return err
	}
	parent.children[segs[len(segs)-1]] = container
	return nil
}

// ModifyResource is not implemented by this backend.
func (a *Accessor) ModifyResource(ctx context.Context, id resource.Identifier, patch *resource.Representation) error {
	return resource.NewNotImplementedError("modify")
}

// DeleteResource removes the entry at id, recursively discarding any subtree.
func (a *Accessor) DeleteResource(ctx context.Context, id resource.Identifier) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	segs, err := a.segments(id)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return resource.NewNotFoundError(id.Path)
	}
	parent, err := a.parent(id, segs)
	if err != nil {
		return err
	}

	name := segs[len(segs)-1]
	child, ok := parent.children[name]
	if !ok {
		return resource.NewNotFoundError(id.Path)
	}
	if _, isContainer := child.(*containerEntry); isContainer != id.IsContainer() {
		return resource.NewNotFoundError(id.Path)
	}

	logger.Debug("deleting resource", "id", id.Path)
	delete(parent.children, name)
	return nil
}

// childIdentifiers lists the identifiers of a container's direct children,
// suffixing "/" iff the child is itself a container entry.
func childIdentifiers(id resource.Identifier, container *containerEntry) []resource.Identifier {
	children := make([]resource.Identifier, 0, len(container.children))
	for name, child := range container.children {
		path := id.Path + name
		if _, ok := child.(*containerEntry); ok {
			path += "/"
		}
		children = append(children, resource.ID(path))
	}
	return children
}

// cloneMetadata copies stored metadata re-keyed to id, or returns fresh empty
// metadata when none was stored. Callers own the returned value.
func cloneMetadata(meta *resource.Metadata, id resource.Identifier) *resource.Metadata {
	if meta == nil {
		return resource.NewMetadata(id)
	}
	clone := meta.Clone()
	clone.SetIdentifier(id)
	return clone
}

// Ensure Accessor implements accessor.DataAccessor.
var _ accessor.DataAccessor = (*Accessor)(nil)
