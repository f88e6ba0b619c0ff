package resource

import (
	"strconv"
	"time"

	"github.com/geoknoesis/rdf-go/rdf"
)

// Namespaces of the vocabularies the store emits and consumes.
const (
	RDFNamespace   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	LDPNamespace   = "http://www.w3.org/ns/ldp#"
	POSIXNamespace = "http://www.w3.org/ns/posix/stat#"
	XSDNamespace   = "http://www.w3.org/2001/XMLSchema#"
	DCNamespace    = "http://purl.org/dc/terms/"

	// RequestNamespace holds request-scoped hints that must never be persisted.
	RequestNamespace = "urn:podstore:request:"
)

// Predicates and classes used by the structural metadata. The exact IRIs are
// part of the interop surface and must not change.
var (
	RDFType = rdf.IRI{Value: RDFNamespace + "type"}

	LDPResource       = rdf.IRI{Value: LDPNamespace + "Resource"}
	LDPContainer      = rdf.IRI{Value: LDPNamespace + "Container"}
	LDPBasicContainer = rdf.IRI{Value: LDPNamespace + "BasicContainer"}
	LDPContains       = rdf.IRI{Value: LDPNamespace + "contains"}

	POSIXSize  = rdf.IRI{Value: POSIXNamespace + "size"}
	POSIXMTime = rdf.IRI{Value: POSIXNamespace + "mtime"}

	DCModified = rdf.IRI{Value: DCNamespace + "modified"}

	XSDInteger  = rdf.IRI{Value: XSDNamespace + "integer"}
	XSDDateTime = rdf.IRI{Value: XSDNamespace + "dateTime"}

	// SlugHint carries the client-suggested name for a new resource. It is
	// request-only metadata: the store strips it before anything is written.
	SlugHint = rdf.IRI{Value: RequestNamespace + "slug"}
)

// ContentTypeQuads is the content type of the synthesized representation of a
// container, whose body is its own metadata as quads.
const ContentTypeQuads = "internal/quads"

// IntLiteral returns an xsd:integer literal term.
func IntLiteral(v int64) rdf.Literal {
	return rdf.Literal{Lexical: strconv.FormatInt(v, 10), Datatype: XSDInteger}
}

// DateTimeLiteral returns an xsd:dateTime literal in ISO-8601 form (UTC).
func DateTimeLiteral(t time.Time) rdf.Literal {
	return rdf.Literal{Lexical: t.UTC().Format(time.RFC3339), Datatype: XSDDateTime}
}

// StringLiteral returns a plain string literal term.
func StringLiteral(v string) rdf.Literal {
	return rdf.Literal{Lexical: v}
}
