package resource

import (
	"bytes"
	"io"
)

// Representation pairs a resource's byte content with its metadata.
//
// Data is a lazy, single-consumption stream. The producer hands off exclusive
// ownership to the consumer for the duration of one write; the consumer must
// fully drain and close it exactly once.
type Representation struct {
	// Metadata describes the resource the bytes belong to.
	Metadata *Metadata

	// Data is the resource's byte content.
	Data io.ReadCloser

	// Binary is true for raw byte content and false for a materialized quad
	// body (the synthesized representation of a container).
	Binary bool
}

// NewRepresentation creates a binary representation over the given stream.
func NewRepresentation(meta *Metadata, data io.ReadCloser) *Representation {
	return &Representation{Metadata: meta, Data: data, Binary: true}
}

// BytesRepresentation creates a binary representation over an owned byte slice.
func BytesRepresentation(meta *Metadata, data []byte) *Representation {
	return NewRepresentation(meta, io.NopCloser(bytes.NewReader(data)))
}

// EmptyRepresentation creates a binary representation with no content, as used
// when materializing missing ancestor containers.
func EmptyRepresentation(meta *Metadata) *Representation {
	return BytesRepresentation(meta, nil)
}
