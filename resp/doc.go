// Package resp implements the RESP2 wire format spoken by Redis-compatible
// servers: five frame kinds identified by their leading tag byte, each
// component terminated by CRLF.
//
// Decode consumes exactly one frame from a byte buffer and returns the
// decoded value together with the unconsumed remainder, so a transport can
// call it in a loop over whatever it has buffered. Decoding is zero-copy:
// payloads alias the input buffer.
//
// Failures that more input could cure (the buffer ends mid-frame) are
// distinguished from malformed input via ErrIncomplete, which lets callers
// implement incremental decoding across partial network reads. See
// IsIncomplete.
package resp
