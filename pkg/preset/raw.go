package preset

// RawBytes is an immutable byte sequence with an optional origin label
// (typically the source path). The constructor copies its input; Bytes
// returns the backing slice for zero-copy decoding and callers must treat
// it as read-only.
type RawBytes struct {
	data   []byte
	origin string
}

// NewRawBytes copies data into a new RawBytes.
func NewRawBytes(data []byte, origin string) *RawBytes {
	return &RawBytes{data: append([]byte(nil), data...), origin: origin}
}

// Bytes returns the underlying bytes. Read-only.
func (r *RawBytes) Bytes() []byte { return r.data }

// Len returns the buffer length.
func (r *RawBytes) Len() int { return len(r.data) }

// Origin returns the origin label, or "" when none was recorded.
func (r *RawBytes) Origin() string { return r.origin }
