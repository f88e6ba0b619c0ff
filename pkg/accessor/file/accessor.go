// Package file provides a filesystem-backed implementation of
// accessor.DataAccessor. Data resources map to plain files and containers map
// to directories; non-structural metadata lives in a sidecar file next to the
// primary path.
package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marmos91/podstore/internal/logger"
	"github.com/marmos91/podstore/pkg/accessor"
	"github.com/marmos91/podstore/pkg/rdfio"
	"github.com/marmos91/podstore/pkg/resource"
)

// DefaultMetadataSuffix is appended to a primary backend path to name its
// sidecar metadata file.
const DefaultMetadataSuffix = ".meta"

// Config holds configuration for the filesystem accessor.
type Config struct {
	// Mapper translates between identifiers and backend paths.
	Mapper accessor.IdentifierMapper

	// Root is the backing directory. Created at construction when CreateDir
	// is set; the base container is asserted to always exist.
	Root string

	// CreateDir creates the root directory if it doesn't exist.
	// Default: true
	CreateDir bool

	// MetadataSuffix names sidecar files. Default: ".meta"
	MetadataSuffix string

	// DirMode is the permission mode for created directories.
	// Default: 0755
	DirMode os.FileMode

	// FileMode is the permission mode for created files.
	// Default: 0644
	FileMode os.FileMode
}

// DefaultConfig returns the default configuration for the given mapper and root.
func DefaultConfig(mapper accessor.IdentifierMapper, root string) Config {
	return Config{
		Mapper:         mapper,
		Root:           root,
		CreateDir:      true,
		MetadataSuffix: DefaultMetadataSuffix,
		DirMode:        0755,
		FileMode:       0644,
	}
}

// Accessor is a filesystem-backed implementation of accessor.DataAccessor.
type Accessor struct {
	mapper   accessor.IdentifierMapper
	suffix   string
	dirMode  os.FileMode
	fileMode os.FileMode
}

// New creates a filesystem accessor with the given configuration.
func New(cfg Config) (*Accessor, error) {
	if cfg.Mapper == nil {
		return nil, errors.New("identifier mapper is required")
	}
	if cfg.MetadataSuffix == "" {
		cfg.MetadataSuffix = DefaultMetadataSuffix
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	if cfg.Root != "" && cfg.CreateDir {
		if err := os.MkdirAll(cfg.Root, cfg.DirMode); err != nil {
			return nil, err
		}
	}

	return &Accessor{
		mapper:   cfg.Mapper,
		suffix:   cfg.MetadataSuffix,
		dirMode:  cfg.DirMode,
		fileMode: cfg.FileMode,
	}, nil
}

// CanHandle accepts binary representations only.
func (a *Accessor) CanHandle(repr *resource.Representation) error {
	if !repr.Binary {
		return resource.NewUnsupportedMediaTypeError("only binary data is supported")
	}
	return nil
}

// GetData returns the byte stream of the file at id. Directories and missing
// paths fail NotFound.
func (a *Accessor) GetData(ctx context.Context, id resource.Identifier) (io.ReadCloser, error) {
	path, err := a.mapper.MapIdentifier(id)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, resource.NewNotFoundError(id.Path)
		}
		return nil, err
	}
	if !info.Mode().IsRegular() || id.IsContainer() {
		return nil, resource.NewNotFoundError(id.Path)
	}
	return os.Open(path)
}

// GetMetadata synthesizes metadata from the sidecar file, backend-derived
// structural properties, and, for containers, the direct children.
func (a *Accessor) GetMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	path, err := a.mapper.MapIdentifier(id)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, resource.NewNotFoundError(id.Path)
		}
		return nil, err
	}
	// Slash shape must agree with the entry's actual kind exactly.
	if info.IsDir() != id.IsContainer() {
		return nil, resource.NewNotFoundError(id.Path)
	}

	meta, err := a.readSidecar(ctx, id, path)
	if err != nil {
		return nil, err
	}

	meta.AddQuads(rdfio.ResourceQuads(id, info.IsDir()))
	size := info.Size()
	if info.IsDir() {
		size = 0
	}
	meta.AddQuads(rdfio.PosixStatQuads(id, size, info.ModTime()))

	if info.IsDir() {
		if err := a.addChildren(id, path, meta); err != nil {
			return nil, err
		}
	} else {
		meta.SetContentType(a.mapper.ContentType(path))
	}
	return meta, nil
}

// GetNormalizedMetadata retries GetMetadata with the opposite slash shape on
// a NotFound.
func (a *Accessor) GetNormalizedMetadata(ctx context.Context, id resource.Identifier) (*resource.Metadata, error) {
	return accessor.NormalizedMetadata(ctx, id, a.GetMetadata)
}

// WriteDataResource writes the sidecar first and then streams the body to the
// primary file. If the primary write fails after the sidecar was persisted,
// the sidecar is deleted before the failure is re-signaled.
func (a *Accessor) WriteDataResource(ctx context.Context, id resource.Identifier, data io.ReadCloser, meta *resource.Metadata) error {
	defer data.Close()

	path, err := a.mapper.MapIdentifier(id)
	if err != nil {
		return err
	}
	// A path carrying the sidecar suffix is never a valid content target.
	if strings.HasSuffix(path, a.suffix) {
		return resource.NewConflictError(id.Path, "path is reserved for metadata")
	}

	wroteSidecar, err := a.writeSidecar(ctx, path, meta)
	if err != nil {
		return err
	}

	logger.Debug("writing data resource", "id", id.Path, "path", path)
	if err := a.writeFile(path, data); err != nil {
		if wroteSidecar {
			if removeErr := os.Remove(path + a.suffix); removeErr != nil && !os.IsNotExist(removeErr) {
				logger.Warn("failed to roll back sidecar", "path", path+a.suffix, "error", removeErr)
			}
		}
		return err
	}
	return nil
}

// WriteContainer creates the backend directory, tolerating an already-existing
// one, and persists the remaining metadata to the sidecar.
func (a *Accessor) WriteContainer(ctx context.Context, id resource.Identifier, meta *resource.Metadata) error {
	path, err := a.mapper.MapIdentifier(id)
	if err != nil {
		return err
	}
	if err := os.Mkdir(path, a.dirMode); err != nil && !os.IsExist(err) {
		return err
	}
	logger.Debug("writing container", "id", id.Path, "path", path)
	_, err = a.writeSidecar(ctx, path, meta)
	return err
}

// ModifyResource is not implemented by this backend.
func (a *Accessor) ModifyResource(ctx context.Context, id resource.Identifier, patch *resource.Representation) error {
	return resource.NewNotImplementedError("modify")
}

// DeleteResource removes the sidecar first, tolerating a missing one, then
// removes the primary file or the now-expected-empty directory.
func (a *Accessor) DeleteResource(ctx context.Context, id resource.Identifier) error {
	path, err := a.mapper.MapIdentifier(id)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return resource.NewNotFoundError(id.Path)
		}
		return err
	}
	if info.IsDir() != id.IsContainer() {
		return resource.NewNotFoundError(id.Path)
	}

	if err := os.Remove(path + a.suffix); err != nil && !os.IsNotExist(err) {
		return err
	}
	logger.Debug("deleting resource", "id", id.Path, "path", path)
	return os.Remove(path)
}

// readSidecar parses the sidecar file into metadata keyed to id. A missing
// sidecar yields an empty contribution, not an error.
func (a *Accessor) readSidecar(ctx context.Context, id resource.Identifier, path string) (*resource.Metadata, error) {
	meta := resource.NewMetadata(id)
	f, err := os.Open(path + a.suffix)
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return nil, err
	}
	defer f.Close()

	quads, err := rdfio.ParseQuads(ctx, f, "")
	if err != nil {
		return nil, err
	}
	meta.AddQuads(quads)
	return meta, nil
}

// writeSidecar persists the non-structural metadata next to path. RDF-type
// assertions are backend-derived and stripped before persisting; if nothing
// remains, any stale sidecar is removed and none is created. Returns whether
// a sidecar file was written.
func (a *Accessor) writeSidecar(ctx context.Context, path string, meta *resource.Metadata) (bool, error) {
	var quads *resource.Metadata
	if meta != nil {
		quads = meta.Clone()
		quads.RemoveAll(resource.RDFType)
	}

	if quads == nil || quads.Empty() {
		if err := os.Remove(path + a.suffix); err != nil && !os.IsNotExist(err) {
			return false, err
		}
		return false, nil
	}

	serialized, err := rdfio.SerializeQuadsToBytes(ctx, quads.Quads())
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path+a.suffix, serialized, a.fileMode); err != nil {
		return false, err
	}
	return true, nil
}

// writeFile streams data into the primary file at path.
func (a *Accessor) writeFile(path string, data io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, a.fileMode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// addChildren appends per-child structural quads plus the aggregated
// containment edges for every direct child of the directory at path.
// Children are disambiguated from data children solely by entry kind;
// unknown filesystem object kinds are silently skipped.
func (a *Accessor) addChildren(id resource.Identifier, path string, meta *resource.Metadata) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	var children []resource.Identifier
	for _, entry := range entries {
		// Sidecar files are backend-internal, never children.
		if strings.HasSuffix(entry.Name(), a.suffix) {
			continue
		}
		if !entry.IsDir() && !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		childID, err := a.mapper.MapPath(filepath.Join(path, entry.Name()), entry.IsDir())
		if err != nil {
			return err
		}

		meta.AddQuads(rdfio.ResourceQuads(childID, entry.IsDir()))
		size := info.Size()
		if entry.IsDir() {
			size = 0
		}
		meta.AddQuads(rdfio.PosixStatQuads(childID, size, info.ModTime()))
		children = append(children, childID)
	}

	meta.AddQuads(rdfio.ContainsQuads(id, children))
	return nil
}

// Ensure Accessor implements accessor.DataAccessor.
var _ accessor.DataAccessor = (*Accessor)(nil)
