package redis

import "errors"

var (
	ErrConnectionClosed = errors.New("redis: connection closed")
	ErrNoServers        = errors.New("redis: no servers available")

	// ErrNotStored is returned by Add when the key already exists.
	ErrNotStored = errors.New("redis: not stored")
)

// ServerError is an error reply from the server (an error-tagged frame,
// e.g. "-ERR unknown command"). It means the command failed, not that the
// connection broke: the reply was well-formed and the stream stays in sync.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "redis: " + e.Message
}

// ShouldCloseConnection reports whether err leaves a connection unusable.
//
// Server error replies keep protocol state intact, so the connection can be
// reused. Any other failure means the stream can no longer be trusted, and
// the decoder offers no resynchronization, so the connection must be dropped.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}
	var se *ServerError
	return !errors.As(err, &se)
}
