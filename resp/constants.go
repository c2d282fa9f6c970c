package resp

// Type is a frame's tag byte, the first byte on the wire.
type Type byte

// The five RESP2 frame kinds.
const (
	TypeSimpleString Type = '+' // +<text>\r\n
	TypeError        Type = '-' // -<text>\r\n
	TypeInteger      Type = ':' // :[-]<digits>\r\n
	TypeBulkString   Type = '$' // $<length>\r\n<bytes>\r\n, or $-1\r\n for null
	TypeArray        Type = '*' // *<length>\r\n<frames...>, or *-1\r\n for null
)

// CRLF terminates every frame component.
const CRLF = "\r\n"

var crlfBytes = []byte(CRLF)

func (t Type) String() string {
	switch t {
	case TypeSimpleString:
		return "simple string"
	case TypeError:
		return "error"
	case TypeInteger:
		return "integer"
	case TypeBulkString:
		return "bulk string"
	case TypeArray:
		return "array"
	}
	return "unknown"
}
