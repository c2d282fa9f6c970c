package redis

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pior/redis/resp"
)

// readChunkSize is the minimum spare capacity kept in the read buffer
// before each read from the socket.
const readChunkSize = 4096

// Connection is a single connection to a server.
//
// It is safe for concurrent use: calls are serialized, and each call
// pipelines its commands and reads the replies back in order.
type Connection struct {
	conn net.Conn

	mu       sync.Mutex
	rbuf     []byte // read buffer; decoded replies alias it
	roff     int    // start of unconsumed bytes in rbuf
	inFlight int
	lastUsed time.Time
	closed   bool
}

// NewConnection wraps an established network connection.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		conn:     conn,
		lastUsed: time.Now(),
	}
}

// Do sends one command and returns its reply.
//
// The returned value aliases the connection's read buffer and is only valid
// until the next call on this connection; callers that retain it must use
// Value.Clone. An error-tagged reply is returned as a value, not an error.
func (c *Connection) Do(ctx context.Context, cmd Cmd) (resp.Value, error) {
	values, err := c.Pipeline(ctx, []Cmd{cmd})
	if err != nil {
		return resp.Value{}, err
	}
	return values[0], nil
}

// Pipeline sends all commands in one write and reads their replies back in
// order. On any transport or decode failure the connection is closed and no
// replies are returned.
//
// Like Do, the returned values alias the connection's read buffer and are
// only valid until the next call on this connection.
func (c *Connection) Pipeline(ctx context.Context, cmds []Cmd) ([]resp.Value, error) {
	if len(cmds) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	c.inFlight += len(cmds)
	defer func() { c.inFlight -= len(cmds) }()

	// Reclaim buffer space held by the previous call's replies. This is
	// what invalidates values returned earlier.
	c.resetRead()

	buf := getWriteBuf()
	for _, cmd := range cmds {
		*buf = resp.AppendCommand(*buf, cmd...)
	}
	_, err := c.conn.Write(*buf)
	putWriteBuf(buf)
	if err != nil {
		c.markClosed()
		return nil, err
	}

	values := make([]resp.Value, len(cmds))
	for i := range cmds {
		v, err := c.readReply()
		if err != nil {
			c.markClosed()
			return nil, err
		}
		values[i] = v
	}

	c.lastUsed = time.Now()
	return values, nil
}

// readReply decodes the next frame from the read buffer, reading more bytes
// from the socket for as long as the decoder reports the frame incomplete.
// Any other decode failure is final: the stream cannot be resynchronized.
func (c *Connection) readReply() (resp.Value, error) {
	for {
		if c.roff < len(c.rbuf) {
			v, rest, err := resp.Decode(c.rbuf[c.roff:])
			if err == nil {
				c.roff = len(c.rbuf) - len(rest)
				return v, nil
			}
			if !resp.IsIncomplete(err) {
				return resp.Value{}, err
			}
		}
		if err := c.fill(); err != nil {
			return resp.Value{}, err
		}
	}
}

// fill appends one socket read to the buffer, growing it as needed. Growth
// allocates a fresh array, so replies already handed out this call keep
// aliasing the old one untouched.
func (c *Connection) fill() error {
	if cap(c.rbuf)-len(c.rbuf) < readChunkSize {
		grown := make([]byte, len(c.rbuf), 2*cap(c.rbuf)+readChunkSize)
		copy(grown, c.rbuf)
		c.rbuf = grown
	}
	n, err := c.conn.Read(c.rbuf[len(c.rbuf):cap(c.rbuf)])
	c.rbuf = c.rbuf[:len(c.rbuf)+n]
	if n == 0 && err != nil {
		return err
	}
	return nil
}

// resetRead moves unconsumed bytes (replies that arrived early) to the
// front of the read buffer. Must be called with the lock held, before any
// reply for the current call has been decoded.
func (c *Connection) resetRead() {
	if c.roff == 0 {
		return
	}
	n := copy(c.rbuf, c.rbuf[c.roff:])
	c.rbuf = c.rbuf[:n]
	c.roff = 0
}

// Ping checks that the connection can complete a round trip.
func (c *Connection) Ping(ctx context.Context) error {
	v, err := c.Do(ctx, Command("PING"))
	if err != nil {
		return err
	}
	if err := replyError(v); err != nil {
		return err
	}
	return nil
}

// InFlight returns the number of commands currently in flight.
func (c *Connection) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastUsed returns when the connection last completed a call.
func (c *Connection) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// IsClosed reports whether the connection has been closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Addr returns the remote address.
func (c *Connection) Addr() string {
	return c.conn.RemoteAddr().String()
}

// Close closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	return c.markClosed()
}

// markClosed marks the connection as unusable and closes the socket
// (must be called with lock held).
func (c *Connection) markClosed() error {
	c.closed = true
	return c.conn.Close()
}
