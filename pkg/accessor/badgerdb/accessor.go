// Package badgerdb provides a BadgerDB-backed implementation of
// accessor.DataAccessor. Entries live under two key spaces: "e:" holds the
// kind, stat properties, and non-structural metadata of every resource, and
// "d:" holds the raw content of data resources.
//
// Containers are keyed with their trailing slash, so slash-shape agreement
// falls out of exact key lookup.
package badgerdb

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/podstore/internal/logger"
	"github.com/marmos91/podstore/pkg/accessor"
	"github.com/marmos91/podstore/pkg/rdfio"
	"github.com/marmos91/podstore/pkg/resource"
)

// Config holds configuration for the Badger accessor.
type Config struct {
	// Base is the store's base identifier. The base container is created at
	// startup if missing.
	Base string

	// Path is the on-disk database directory. Ignored when InMemory is set.
	Path string

	// InMemory runs Badger without persistence, for tests and ephemeral pods.
	InMemory bool
}

// Accessor is a BadgerDB-backed implementation of accessor.DataAccessor.
type Accessor struct {
	db   *badger.DB
	base string
}

// New opens the database and ensures the base container exists.
func New(cfg Config) (*Accessor, error) {
	base := cfg.Base
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	opts := badger.DefaultOptions(cfg.Path).WithInMemory(cfg.InMemory).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	a := &Accessor{db: db, base: base}
	if err := a.ensureBase(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the underlying database.
func (a *Accessor) Close() error {
	return a.db.Close()
}

func entryKey(path string) []byte { return append([]byte("e:"), path...) }
func dataKey(path string) []byte  { return append([]byte("d:"), path...) }

func (a *Accessor) ensureBase() error {
	return a.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(entryKey(a.base))
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(entryKey(a.base), encodeEntry(entryValue{
			kind:  kindContainer,
			mtime: time.Now(),
		}))
	})
}

// CanHandle accepts binary representations only.
func (a *Accessor) CanHandle(repr *resource.Representation) error {
	if !repr.Binary {
		return resource.NewUnsupportedMediaTypeError("only binary data is supported")
	}
	return nil
}

func (a *Accessor) inScope(id resource.Identifier) error {
	if !strings.HasPrefix(id.Path, a.base) && id.Path+"/" != a.base {
		return resource.NewNotFoundError(id.Path)
	}
	return nil
}

// GetData returns an independent copy of the stored content of a data resource.
func (a *Accessor) GetData(ctx context.Context, id resource.Identifier) (io.ReadCloser, error) {
	if err := a.inScope(id); err != nil {
		return nil, err
	}
	if id.IsContainer() {
		return nil, resource.NewNotFoundError(id.Path)
	}

	var data []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey(id.Path))
		if err == badger.ErrKeyNotFound {
			return resource.NewNotFoundError(id.Path)
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// GetMetadata synthesizes metadata from the stored entry value and, for
// containers, the direct children found by prefix scan.
func (a *Accessor) GetMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	if err := a.inScope(id); err != nil {
		return nil, err
	}

	meta := resource.NewMetadata(id)
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(id.Path))
		if err == badger.ErrKeyNotFound {
			return resource.NewNotFoundError(id.Path)
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		e, err := decodeEntry(val)
		if err != nil {
			return err
		}

		if len(e.metadata) > 0 {
			quads, err := rdfio.ParseQuads(ctx, bytes.NewReader(e.metadata), "")
			if err != nil {
				return err
			}
			meta.AddQuads(quads)
		}

		isContainer := e.kind == kindContainer
		meta.AddQuads(rdfio.ResourceQuads(id, isContainer))
		meta.AddQuads(rdfio.PosixStatQuads(id, e.size, e.mtime))
		if !isContainer {
			meta.SetContentType(e.contentType)
			return nil
		}
		return a.addChildren(txn, id, meta)
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// addChildren appends per-child structural quads plus the aggregated
// containment edges for every direct child of the container.
func (a *Accessor) addChildren(txn *badger.Txn, id resource.Identifier, meta *resource.Metadata) error {
	prefix := entryKey(id.Path)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var children []resource.Identifier
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		rel := string(item.Key()[len(prefix):])
		if rel == "" || strings.Contains(strings.TrimSuffix(rel, "/"), "/") {
			continue
		}

		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		e, err := decodeEntry(val)
		if err != nil {
			return err
		}

		childID := resource.ID(id.Path + rel)
		isContainer := e.kind == kindContainer
		meta.AddQuads(rdfio.ResourceQuads(childID, isContainer))
		meta.AddQuads(rdfio.PosixStatQuads(childID, e.size, e.mtime))
		children = append(children, childID)
	}

	meta.AddQuads(rdfio.ContainsQuads(id, children))
	return nil
}

// GetNormalizedMetadata retries GetMetadata with the opposite slash shape on
// a NotFound.
func (a *Accessor) GetNormalizedMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	return accessor.NormalizedMetadata(ctx, id, a.GetMetadata)
}

// serializeMetadata strips backend-derived RDF-type assertions and serializes
// whatever remains, or nil if nothing remains.
func serializeMetadata(ctx context.Context, meta *resource.Metadata) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	stripped := meta.Clone()
	stripped.RemoveAll(resource.RDFType)
	if stripped.Empty() {
		return nil, nil
	}
	return rdfio.SerializeQuadsToBytes(ctx, stripped.Quads())
}

// WriteDataResource fully drains the incoming stream and stores it, together
// with the entry value, in one transaction.
func (a *Accessor) WriteDataResource(ctx context.Context, id resource.Identifier, data io.ReadCloser, meta *resource.Metadata) error {
	if err := a.inScope(id); err != nil {
		return err
	}
	if id.IsContainer() {
		return resource.NewNotFoundError(id.Path)
	}

	buf, err := io.ReadAll(data)
	closeErr := data.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	serialized, err := serializeMetadata(ctx, meta)
	if err != nil {
		return err
	}
	var contentType string
	if meta != nil {
		contentType = meta.ContentType()
	}

	logger.Debug("writing data resource", "id", id.Path, "size", len(buf))
	return a.db.Update(func(txn *badger.Txn) error {
		value := encodeEntry(entryValue{
			kind:        kindData,
			mtime:       time.Now(),
			size:        int64(len(buf)),
			contentType: contentType,
			metadata:    serialized,
		})
		if err := txn.Set(entryKey(id.Path), value); err != nil {
			return err
		}
		return txn.Set(dataKey(id.Path), buf)
	})
}

// WriteContainer ensures the container entry exists and stores its metadata.
// Existing children are unaffected.
func (a *Accessor) WriteContainer(ctx context.Context, id resource.Identifier, meta *resource.Metadata) error {
	if err := a.inScope(id); err != nil {
		return err
	}
	if !id.IsContainer() {
		id = resource.ID(id.Path + "/")
	}

	serialized, err := serializeMetadata(ctx, meta)
	if err != nil {
		return err
	}

	logger.Debug("writing container", "id", id.Path)
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(id.Path), encodeEntry(entryValue{
			kind:     kindContainer,
			mtime:    time.Now(),
			metadata: serialized,
		}))
	})
}

// ModifyResource is not implemented by this backend.
func (a *Accessor) ModifyResource(ctx context.Context, id resource.Identifier, patch *resource.Representation) error {
	return resource.NewNotImplementedError("modify")
}

// DeleteResource removes the entry and any content at id.
func (a *Accessor) DeleteResource(ctx context.Context, id resource.Identifier) error {
	if err := a.inScope(id); err != nil {
		return err
	}

	logger.Debug("deleting resource", "id", id.Path)
	return a.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(entryKey(id.Path)); err == badger.ErrKeyNotFound {
			return resource.NewNotFoundError(id.Path)
		} else if err != nil {
			return err
		}
		if err := txn.Delete(entryKey(id.Path)); err != nil {
			return err
		}
		return txn.Delete(dataKey(id.Path))
	})
}

// Ensure Accessor implements accessor.DataAccessor.
var _ accessor.DataAccessor = (*Accessor)(nil)
