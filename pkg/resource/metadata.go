package resource

import "github.com/geoknoesis/rdf-go/rdf"

// Metadata is an unordered multimap of RDF quads describing one resource.
// Most quads carry the resource's own identifier as subject; containment
// bookkeeping for containers additionally describes child subjects.
//
// Structural facts (kind, size, modification time, containment) are
// regenerated by the backends on every read and are never persisted verbatim.
type Metadata struct {
	id          Identifier
	contentType string
	quads       []rdf.Quad
}

// NewMetadata creates empty metadata keyed to the given identifier.
func NewMetadata(id Identifier) *Metadata {
	return &Metadata{id: id}
}

// Identifier returns the subject identifier this metadata describes.
func (m *Metadata) Identifier() Identifier {
	return m.id
}

// SetIdentifier re-stamps the metadata to a new canonical subject. Quads whose
// subject was the previous identifier are rewritten to the new one.
func (m *Metadata) SetIdentifier(id Identifier) {
	old := rdf.IRI{Value: m.id.Path}
	subject := rdf.IRI{Value: id.Path}
	for i, q := range m.quads {
		if s, ok := q.S.(rdf.IRI); ok && s == old {
			m.quads[i].S = subject
		}
	}
	m.id = id
}

// ContentType returns the representation's content type, if known.
func (m *Metadata) ContentType() string {
	return m.contentType
}

// SetContentType records the representation's content type.
func (m *Metadata) SetContentType(contentType string) {
	m.contentType = contentType
}

func (m *Metadata) subject() rdf.IRI {
	return rdf.IRI{Value: m.id.Path}
}

// Add appends a (subject, predicate, object) fact about this resource.
func (m *Metadata) Add(predicate rdf.IRI, object rdf.Term) {
	m.quads = append(m.quads, rdf.Quad{S: m.subject(), P: predicate, O: object})
}

// AddQuad appends a raw quad, preserving its own subject.
func (m *Metadata) AddQuad(q rdf.Quad) {
	m.quads = append(m.quads, q)
}

// AddQuads appends raw quads, preserving their own subjects.
func (m *Metadata) AddQuads(quads []rdf.Quad) {
	m.quads = append(m.quads, quads...)
}

// Get returns the first object for the given predicate on this resource's
// subject, or false if none exists.
func (m *Metadata) Get(predicate rdf.IRI) (rdf.Term, bool) {
	subject := m.subject()
	for _, q := range m.quads {
		if q.P == predicate && q.S == subject {
			return q.O, true
		}
	}
	return nil, false
}

// All returns every object for the given predicate on this resource's subject.
func (m *Metadata) All(predicate rdf.IRI) []rdf.Term {
	subject := m.subject()
	var objects []rdf.Term
	for _, q := range m.quads {
		if q.P == predicate && q.S == subject {
			objects = append(objects, q.O)
		}
	}
	return objects
}

// RemoveAll drops every fact with the given predicate on this resource's
// subject, regardless of object.
func (m *Metadata) RemoveAll(predicate rdf.IRI) {
	subject := m.subject()
	kept := m.quads[:0]
	for _, q := range m.quads {
		if q.P == predicate && q.S == subject {
			continue
		}
		kept = append(kept, q)
	}
	m.quads = kept
}

// Clone returns a deep copy of the metadata. Callers own the copy.
func (m *Metadata) Clone() *Metadata {
	clone := NewMetadata(m.id)
	clone.contentType = m.contentType
	clone.quads = make([]rdf.Quad, len(m.quads))
	copy(clone.quads, m.quads)
	return clone
}

// Quads returns a copy of every quad held by the metadata.
func (m *Metadata) Quads() []rdf.Quad {
	out := make([]rdf.Quad, len(m.quads))
	copy(out, m.quads)
	return out
}

// Empty reports whether the metadata carries no quads at all.
func (m *Metadata) Empty() bool {
	return len(m.quads) == 0
}

// IsContainer reports whether the metadata marks the resource as a container.
func (m *Metadata) IsContainer() bool {
	for _, t := range m.All(RDFType) {
		if iri, ok := t.(rdf.IRI); ok && (iri == LDPContainer || iri == LDPBasicContainer) {
			return true
		}
	}
	return false
}

// AddResourceType stamps the RDF-type markers for the given kind.
func (m *Metadata) AddResourceType(isContainer bool) {
	m.Add(RDFType, LDPResource)
	if isContainer {
		m.Add(RDFType, LDPContainer)
		m.Add(RDFType, LDPBasicContainer)
	}
}

// ContainedResources returns the identifiers of every containment edge held
// by the metadata.
func (m *Metadata) ContainedResources() []Identifier {
	var children []Identifier
	for _, t := range m.All(LDPContains) {
		if iri, ok := t.(rdf.IRI); ok {
			children = append(children, Identifier{Path: iri.Value})
		}
	}
	return children
}

// Contains reports whether the metadata holds a containment edge for the
// given identifier, ignoring the trailing-slash discriminant.
func (m *Metadata) Contains(id Identifier) bool {
	for _, child := range m.ContainedResources() {
		if child.EqualIgnoringSlash(id) {
			return true
		}
	}
	return false
}
