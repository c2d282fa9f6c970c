package resp

import "bytes"

// Value is one decoded RESP frame.
//
// Values are produced by Decode and are not meant to be mutated afterwards.
// Data aliases the buffer the value was decoded from: a Value must not
// outlive that buffer, and the buffer must not be mutated while the Value
// is in use. Callers that need a decoupled lifetime use Clone.
type Value struct {
	// Type is the frame's tag byte.
	Type Type

	// Null marks a null bulk string or null array (wire length -1).
	// A null value is distinct from a present, zero-length one.
	Null bool

	// Data is the payload of simple string, error and bulk string frames.
	// Bulk string payloads are binary-safe and may contain CR or LF.
	Data []byte

	// Int is the payload of integer frames.
	Int int64

	// Elems holds the elements of array frames, which may themselves be
	// arrays to arbitrary depth.
	Elems []Value
}

// Text returns the payload as a string. Meaningful for simple string,
// error and bulk string values.
func (v Value) Text() string {
	return string(v.Data)
}

// IsNull reports whether v is a null bulk string or null array.
func (v Value) IsNull() bool {
	return v.Null
}

// Clone returns a deep copy of v whose payloads no longer alias the
// buffer v was decoded from.
func (v Value) Clone() Value {
	c := v
	if v.Data != nil {
		c.Data = append([]byte(nil), v.Data...)
	}
	if v.Elems != nil {
		c.Elems = make([]Value, len(v.Elems))
		for i, elem := range v.Elems {
			c.Elems[i] = elem.Clone()
		}
	}
	return c
}

// Equal reports whether two values decode to the same frame, including the
// null versus present-but-empty distinction.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type || v.Null != o.Null || v.Int != o.Int {
		return false
	}
	if !bytes.Equal(v.Data, o.Data) {
		return false
	}
	if len(v.Elems) != len(o.Elems) {
		return false
	}
	for i := range v.Elems {
		if !v.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}
