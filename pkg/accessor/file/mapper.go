package file

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/marmos91/podstore/pkg/accessor"
	"github.com/marmos91/podstore/pkg/resource"
)

// ExtensionMapper is the reference accessor.IdentifierMapper: identifiers map
// to paths under a root directory by simple prefix substitution, and content
// types are inferred from the path's extension.
type ExtensionMapper struct {
	base string
	root string
}

// NewExtensionMapper creates a mapper between identifiers under base and
// filesystem paths under root.
func NewExtensionMapper(base, root string) *ExtensionMapper {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &ExtensionMapper{
		base: base,
		root: filepath.Clean(root),
	}
}

// MapIdentifier resolves an identifier to a backend file path. Identifiers
// outside the base, or containing parent-directory segments, fail NotFound.
func (m *ExtensionMapper) MapIdentifier(id resource.Identifier) (string, error) {
	if !strings.HasPrefix(id.Path, m.base) && id.Path+"/" != m.base {
		return "", resource.NewNotFoundError(id.Path)
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(id.Path, m.base), "/")
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", resource.NewNotFoundError(id.Path)
		}
	}
	return filepath.Join(m.root, filepath.FromSlash(rel)), nil
}

// MapPath resolves a backend file path back to an identifier. Container
// identifiers get their trailing slash re-added, since the filesystem path
// never carries one.
func (m *ExtensionMapper) MapPath(path string, isContainer bool) (resource.Identifier, error) {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return resource.Identifier{}, resource.NewNotFoundError(path)
	}
	if rel == "." {
		return resource.ID(m.base), nil
	}
	id := m.base + filepath.ToSlash(rel)
	if isContainer {
		id += "/"
	}
	return resource.ID(id), nil
}

// ContentType infers a content type from the path's extension, defaulting to
// application/octet-stream.
func (m *ExtensionMapper) ContentType(path string) string {
	if contentType := mime.TypeByExtension(filepath.Ext(path)); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

// Ensure ExtensionMapper implements accessor.IdentifierMapper.
var _ accessor.IdentifierMapper = (*ExtensionMapper)(nil)
