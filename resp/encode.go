package resp

import "strconv"

// AppendCommand appends the wire form of a client command to dst: an array
// of bulk strings, one per argument. Bulk strings keep arguments binary-safe
// regardless of their content.
func AppendCommand(dst []byte, args ...[]byte) []byte {
	dst = appendHeader(dst, TypeArray, int64(len(args)))
	for _, arg := range args {
		dst = appendBulk(dst, arg)
	}
	return dst
}

// AppendValue appends the wire form of v to dst. It is the inverse of Decode.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeSimpleString, TypeError:
		dst = append(dst, byte(v.Type))
		dst = append(dst, v.Data...)
		return append(dst, CRLF...)
	case TypeInteger:
		dst = append(dst, byte(TypeInteger))
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, CRLF...)
	case TypeBulkString:
		if v.Null {
			return appendHeader(dst, TypeBulkString, -1)
		}
		return appendBulk(dst, v.Data)
	case TypeArray:
		if v.Null {
			return appendHeader(dst, TypeArray, -1)
		}
		dst = appendHeader(dst, TypeArray, int64(len(v.Elems)))
		for _, elem := range v.Elems {
			dst = AppendValue(dst, elem)
		}
		return dst
	}
	return dst
}

func appendHeader(dst []byte, t Type, n int64) []byte {
	dst = append(dst, byte(t))
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, CRLF...)
}

func appendBulk(dst []byte, payload []byte) []byte {
	dst = appendHeader(dst, TypeBulkString, int64(len(payload)))
	dst = append(dst, payload...)
	return append(dst, CRLF...)
}
