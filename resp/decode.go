package resp

import (
	"bytes"
	"strconv"
)

// DefaultMaxDepth bounds array nesting for Decode. Nesting drives call-stack
// depth and input is attacker-controlled in networked use, so decoding stops
// with ErrMaxDepth past this limit instead of risking stack exhaustion.
const DefaultMaxDepth = 128

// arrayCapHint caps the initial element allocation for arrays. The declared
// count is attacker-controlled; elements still have to be present in the
// buffer before they take up memory.
const arrayCapHint = 1024

// Decode decodes exactly one frame from the start of buf.
//
// On success it returns the value and the unconsumed remainder of buf.
// On failure no partial value is returned and buf is left untouched; if
// the failure is curable by more input the error matches ErrIncomplete.
//
// The returned Value aliases buf (zero copy, see Value). Decode keeps no
// state between calls and is safe for concurrent use on separate buffers.
func Decode(buf []byte) (Value, []byte, error) {
	return DecodeDepth(buf, DefaultMaxDepth)
}

// DecodeDepth is Decode with a caller-chosen limit on array nesting.
func DecodeDepth(buf []byte, maxDepth int) (Value, []byte, error) {
	return decodeAny(buf, maxDepth)
}

// decodeAny dispatches on the leading tag byte. The five tags are disjoint,
// so this is a plain switch rather than a trial of the five decoders.
func decodeAny(buf []byte, depth int) (Value, []byte, error) {
	if len(buf) == 0 {
		return Value{}, nil, incomplete(ErrEmptyInput)
	}
	switch Type(buf[0]) {
	case TypeSimpleString:
		return decodeSimpleString(buf)
	case TypeError:
		return decodeError(buf)
	case TypeInteger:
		return decodeInteger(buf)
	case TypeBulkString:
		return decodeBulkString(buf)
	case TypeArray:
		return decodeArray(buf, depth)
	}
	return Value{}, nil, ErrUnknownType
}

func decodeSimpleString(buf []byte) (Value, []byte, error) {
	line, rest, err := readLine(buf[1:])
	if err != nil {
		return Value{}, nil, err
	}
	return Value{Type: TypeSimpleString, Data: line}, rest, nil
}

func decodeError(buf []byte) (Value, []byte, error) {
	line, rest, err := readLine(buf[1:])
	if err != nil {
		return Value{}, nil, err
	}
	return Value{Type: TypeError, Data: line}, rest, nil
}

func decodeInteger(buf []byte) (Value, []byte, error) {
	line, rest, err := readLine(buf[1:])
	if err != nil {
		return Value{}, nil, err
	}
	n, err := parseInt64(line)
	if err != nil {
		return Value{}, nil, err
	}
	return Value{Type: TypeInteger, Int: n}, rest, nil
}

func decodeBulkString(buf []byte) (Value, []byte, error) {
	n, rest, err := readLength(buf[1:])
	if err != nil {
		return Value{}, nil, err
	}
	if n == -1 {
		// The null form is exactly "$-1\r\n"; no payload follows.
		return Value{Type: TypeBulkString, Null: true}, rest, nil
	}
	if int64(len(rest)) < n {
		return Value{}, nil, incomplete(ErrTruncated)
	}
	payload, tail := rest[:n], rest[n:]
	if len(tail) < len(crlfBytes) {
		return Value{}, nil, incomplete(ErrMissingTerminator)
	}
	if !bytes.HasPrefix(tail, crlfBytes) {
		return Value{}, nil, ErrMissingTerminator
	}
	return Value{Type: TypeBulkString, Data: payload}, tail[len(crlfBytes):], nil
}

func decodeArray(buf []byte, depth int) (Value, []byte, error) {
	if depth <= 0 {
		return Value{}, nil, ErrMaxDepth
	}
	n, rest, err := readLength(buf[1:])
	if err != nil {
		return Value{}, nil, err
	}
	if n == -1 {
		return Value{Type: TypeArray, Null: true}, rest, nil
	}

	capHint := int(n)
	if capHint > arrayCapHint {
		capHint = arrayCapHint
	}
	elems := make([]Value, 0, capHint)
	for i := int64(0); i < n; i++ {
		var elem Value
		elem, rest, err = decodeAny(rest, depth-1)
		if err != nil {
			// The first failing element aborts the whole array.
			return Value{}, nil, err
		}
		elems = append(elems, elem)
	}
	// No trailing terminator: the array ends when the count is satisfied.
	return Value{Type: TypeArray, Elems: elems}, rest, nil
}

// readLine splits buf at the first CRLF, returning the bytes before it and
// the remainder after it. Line payloads are everything up to the first
// terminator; producers guarantee they contain none.
func readLine(buf []byte) (line, rest []byte, err error) {
	i := bytes.Index(buf, crlfBytes)
	if i < 0 {
		return nil, nil, incomplete(ErrMissingTerminator)
	}
	return buf[:i], buf[i+len(crlfBytes):], nil
}

// readLength parses the signed-decimal-length-then-CRLF header shared by
// bulk string and array frames. The only legal negative length is -1.
func readLength(buf []byte) (n int64, rest []byte, err error) {
	line, rest, err := readLine(buf)
	if err != nil {
		return 0, nil, err
	}
	n, perr := parseInt64(line)
	if perr != nil || n < -1 {
		return 0, nil, ErrInvalidLength
	}
	return n, rest, nil
}

// parseInt64 parses an optional minus sign followed by decimal digits.
// strconv does the digit and range checking; the leading '+' it would
// accept is not part of the grammar and is rejected up front.
func parseInt64(b []byte) (int64, error) {
	if len(b) == 0 || b[0] == '+' {
		return 0, ErrInvalidInteger
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, ErrInvalidInteger
	}
	return n, nil
}
