// Package resource defines the core data model of the store: identifiers,
// representations, metadata, and the shared error taxonomy.
//
// An identifier is an opaque path under a configured base. The trailing slash
// is the sole discriminant between containers and data resources: paths
// ending in "/" name containers, everything else names data resources.
package resource

import "strings"

// Identifier names a single resource in the store's namespace.
type Identifier struct {
	// Path is the full identifier, including the store's base.
	Path string
}

// ID is a convenience constructor for an Identifier.
func ID(path string) Identifier {
	return Identifier{Path: path}
}

// IsContainer reports whether the identifier names a container.
func (i Identifier) IsContainer() bool {
	return strings.HasSuffix(i.Path, "/")
}

// ToggleSlash returns the identifier with its trailing-slash shape flipped.
func (i Identifier) ToggleSlash() Identifier {
	if i.IsContainer() {
		return Identifier{Path: strings.TrimSuffix(i.Path, "/")}
	}
	return Identifier{Path: i.Path + "/"}
}

// EqualIgnoringSlash reports whether two identifiers name the same path when
// the trailing-slash discriminant is ignored.
func (i Identifier) EqualIgnoringSlash(other Identifier) bool {
	return strings.TrimSuffix(i.Path, "/") == strings.TrimSuffix(other.Path, "/")
}

// IsRoot reports whether the identifier is the given base itself.
func (i Identifier) IsRoot(base string) bool {
	return i.Path == base || i.Path+"/" == base
}

// InScope reports whether the identifier falls under the given base path.
func (i Identifier) InScope(base string) bool {
	return strings.HasPrefix(i.Path, base)
}

func (i Identifier) String() string {
	return i.Path
}
