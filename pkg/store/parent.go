package store

import (
	"fmt"
	"strings"

	"github.com/marmos91/podstore/pkg/resource"
)

// BaseContainerManager resolves parents by path truncation under a base
// identifier: the parent of "base/a/b/c" (or "base/a/b/c/") is "base/a/b/".
type BaseContainerManager struct {
	base string
}

// NewBaseContainerManager creates a container manager scoped to base.
func NewBaseContainerManager(base string) *BaseContainerManager {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &BaseContainerManager{base: base}
}

// Parent returns the direct parent container of id.
func (m *BaseContainerManager) Parent(id resource.Identifier) (resource.Identifier, error) {
	if !strings.HasPrefix(id.Path, m.base) {
		return resource.Identifier{}, fmt.Errorf("identifier %q is outside base %q", id.Path, m.base)
	}
	if id.Path == m.base {
		return resource.Identifier{}, fmt.Errorf("the base container %q has no parent", m.base)
	}
	trimmed := strings.TrimSuffix(id.Path, "/")
	return resource.ID(trimmed[:strings.LastIndex(trimmed, "/")+1]), nil
}

// Ensure BaseContainerManager implements ContainerManager.
var _ ContainerManager = (*BaseContainerManager)(nil)
