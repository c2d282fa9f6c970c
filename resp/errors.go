package resp

import "errors"

// Decode failures are sentinel errors so callers can branch with errors.Is.
// The decoder returns them as-is: it never logs, retries, or substitutes a
// default, and a failure from a nested array element propagates verbatim as
// the array's own failure.
var (
	// ErrEmptyInput: decode attempted on a zero-length buffer.
	ErrEmptyInput = errors.New("resp: empty input")

	// ErrUnknownType: the leading byte matches none of the five tags.
	ErrUnknownType = errors.New("resp: unknown frame type byte")

	// ErrMissingTerminator: no CRLF where the grammar requires one.
	ErrMissingTerminator = errors.New("resp: missing CRLF terminator")

	// ErrInvalidLength: a length prefix is not a valid integer, or is
	// negative without being exactly -1.
	ErrInvalidLength = errors.New("resp: invalid length prefix")

	// ErrTruncated: a declared payload length exceeds the available input.
	ErrTruncated = errors.New("resp: truncated payload")

	// ErrInvalidInteger: an integer frame body is empty, non-numeric, or
	// outside the signed 64-bit range.
	ErrInvalidInteger = errors.New("resp: invalid integer")

	// ErrMaxDepth: array nesting exceeds the decoder's depth limit.
	ErrMaxDepth = errors.New("resp: array nesting too deep")

	// ErrIncomplete marks failures that may resolve once more input
	// arrives. It never surfaces on its own: failures that a longer buffer
	// could cure additionally match ErrIncomplete under errors.Is, on top
	// of their primary sentinel.
	ErrIncomplete = errors.New("resp: incomplete frame")
)

// incompleteError tags a sentinel as curable by more input.
type incompleteError struct {
	cause error
}

func incomplete(cause error) error {
	return &incompleteError{cause: cause}
}

func (e *incompleteError) Error() string {
	return e.cause.Error() + " (incomplete input)"
}

func (e *incompleteError) Unwrap() error { return e.cause }

func (e *incompleteError) Is(target error) bool { return target == ErrIncomplete }

// IsIncomplete reports whether err means the buffer ended before the end of
// a frame, as opposed to the frame being malformed. Transports use it to
// decide between reading more bytes and closing the connection.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}
