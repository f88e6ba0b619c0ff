package badgerdb

import (
	"encoding/binary"
	"errors"
	"time"
)

// Entry value layout, in order:
//
//	kind         1 byte  ('c' container, 'd' data resource)
//	mtime        8 bytes (big-endian unix seconds)
//	size         8 bytes (big-endian byte count, 0 for containers)
//	content type 2-byte big-endian length + bytes
//	metadata     remaining bytes (serialized non-structural quads)
const (
	kindContainer = 'c'
	kindData      = 'd'
)

type entryValue struct {
	kind        byte
	mtime       time.Time
	size        int64
	contentType string
	metadata    []byte
}

func encodeEntry(e entryValue) []byte {
	buf := make([]byte, 0, 19+len(e.contentType)+len(e.metadata))
	buf = append(buf, e.kind)
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.mtime.Unix()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.size))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(e.contentType)))
	buf = append(buf, e.contentType...)
	buf = append(buf, e.metadata...)
	return buf
}

func decodeEntry(val []byte) (entryValue, error) {
	if len(val) < 19 {
		return entryValue{}, errors.New("entry value too short")
	}
	e := entryValue{
		kind:  val[0],
		mtime: time.Unix(int64(binary.BigEndian.Uint64(val[1:9])), 0),
		size:  int64(binary.BigEndian.Uint64(val[9:17])),
	}
	ctLen := int(binary.BigEndian.Uint16(val[17:19]))
	if len(val) < 19+ctLen {
		return entryValue{}, errors.New("entry value truncated")
	}
	e.contentType = string(val[19 : 19+ctLen])
	e.metadata = val[19+ctLen:]
	return e, nil
}
