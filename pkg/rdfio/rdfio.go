// Package rdfio is the metadata facade of the store: it generates the
// structural quads the backends synthesize on every read, and it parses and
// serializes quad streams for sidecar files and container bodies.
//
// Parsing and serialization are delegated to github.com/geoknoesis/rdf-go.
package rdfio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/geoknoesis/rdf-go/rdf"

	"github.com/marmos91/podstore/pkg/resource"
)

// DefaultFormat is the wire format used when no content type is given, for
// sidecar files, and for materialized quad bodies.
const DefaultFormat = "nquads"

func formatFor(contentType string) (rdf.Format, error) {
	if contentType == "" || contentType == resource.ContentTypeQuads {
		format, ok := rdf.ParseFormat(DefaultFormat)
		if !ok {
			return "", fmt.Errorf("unknown format: %s", DefaultFormat)
		}
		return format, nil
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "text/turtle":
		return rdf.FormatTurtle, nil
	case "application/n-triples":
		return rdf.FormatNTriples, nil
	case "application/trig":
		return rdf.FormatTriG, nil
	case "application/n-quads":
		return rdf.FormatNQuads, nil
	case "application/rdf+xml", "application/xml", "text/xml":
		return rdf.FormatRDFXML, nil
	case "application/ld+json":
		return rdf.FormatJSONLD, nil
	default:
		return "", fmt.Errorf("unknown content type: %s", contentType)
	}
}

// ParseQuads reads the full stream and parses it as RDF in the format implied
// by contentType. Malformed input fails with a BadRequest condition.
func ParseQuads(ctx context.Context, r io.Reader, contentType string) ([]rdf.Quad, error) {
	format, err := formatFor(contentType)
	if err != nil {
		return nil, resource.NewUnsupportedMediaTypeError(err.Error())
	}
	var quads []rdf.Quad
	err = rdf.Parse(ctx, r, format, func(st rdf.Statement) error {
		quads = append(quads, st.AsQuad())
		return nil
	})
	if err != nil {
		return nil, resource.NewBadRequestError("invalid RDF body", err)
	}
	return quads, nil
}

// SerializeQuads writes quads to w in the format implied by contentType.
func SerializeQuads(ctx context.Context, w io.Writer, quads []rdf.Quad, contentType string) error {
	format, err := formatFor(contentType)
	if err != nil {
		return resource.NewUnsupportedMediaTypeError(err.Error())
	}
	writer, err := rdf.NewWriter(w, format, rdf.OptContext(ctx))
	if err != nil {
		return err
	}
	for _, q := range quads {
		if err := writer.Write(q.ToStatement()); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}

// SerializeQuadsToBytes serializes quads into an owned buffer in DefaultFormat.
func SerializeQuadsToBytes(ctx context.Context, quads []rdf.Quad) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeQuads(ctx, &buf, quads, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
