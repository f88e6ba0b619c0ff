package rdfio

import (
	"time"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/marmos91/podstore/pkg/resource"
)

// ResourceQuads generates the RDF-type markers for a resource of the given
// kind. Containers are marked as both ldp:Container and ldp:BasicContainer.
func ResourceQuads(subject resource.Identifier, isContainer bool) []rdf.Quad {
	s := rdf.IRI{Value: subject.Path}
	quads := []rdf.Quad{
		{S: s, P: resource.RDFType, O: resource.LDPResource},
	}
	if isContainer {
		quads = append(quads,
			rdf.Quad{S: s, P: resource.RDFType, O: resource.LDPContainer},
			rdf.Quad{S: s, P: resource.RDFType, O: resource.LDPBasicContainer},
		)
	}
	return quads
}

// ContainsQuads generates one containment edge per direct child of a container.
func ContainsQuads(subject resource.Identifier, children []resource.Identifier) []rdf.Quad {
	s := rdf.IRI{Value: subject.Path}
	quads := make([]rdf.Quad, 0, len(children))
	for _, child := range children {
		quads = append(quads, rdf.Quad{S: s, P: resource.LDPContains, O: rdf.IRI{Value: child.Path}})
	}
	return quads
}

// PosixStatQuads generates the backend-derived size and modification time
// facts: a POSIX byte size, a POSIX epoch-seconds mtime, and an ISO-8601
// dc:modified timestamp.
func PosixStatQuads(subject resource.Identifier, size int64, mtime time.Time) []rdf.Quad {
	s := rdf.IRI{Value: subject.Path}
	return []rdf.Quad{
		{S: s, P: resource.POSIXSize, O: resource.IntLiteral(size)},
		{S: s, P: resource.POSIXMTime, O: resource.IntLiteral(mtime.Unix())},
		{S: s, P: resource.DCModified, O: resource.DateTimeLiteral(mtime)},
	}
}
