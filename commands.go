package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pior/redis/resp"
)

// Cmd is one command's argument list, encoded on the wire as an array of
// bulk strings (so arguments are binary-safe).
type Cmd [][]byte

// Command builds a Cmd from string arguments.
func Command(args ...string) Cmd {
	cmd := make(Cmd, len(args))
	for i, a := range args {
		cmd[i] = []byte(a)
	}
	return cmd
}

// Arg appends a binary argument.
func (c Cmd) Arg(a []byte) Cmd {
	return append(c, a)
}

// ArgString appends a string argument.
func (c Cmd) ArgString(s string) Cmd {
	return append(c, []byte(s))
}

// ArgInt appends an integer argument in its decimal form.
func (c Cmd) ArgInt(n int64) Cmd {
	return append(c, strconv.AppendInt(nil, n, 10))
}

// NoTTL means no expiration.
const NoTTL = 0

// Item is a key/value entry.
type Item struct {
	Key   string
	Value []byte
	TTL   time.Duration
	Found bool // whether the key existed
}

// Querier is the command surface of Client.
type Querier interface {
	Get(ctx context.Context, key string) (Item, error)
	Set(ctx context.Context, item Item) error
	Add(ctx context.Context, item Item) error
	Delete(ctx context.Context, key string) error
	Increment(ctx context.Context, key string, delta int64) (int64, error)
}

var _ Querier = (*Client)(nil)

// replyError converts an error-tagged reply into a *ServerError.
// Returns nil for every other reply kind.
func replyError(v resp.Value) error {
	if v.Type == resp.TypeError {
		return &ServerError{Message: v.Text()}
	}
	return nil
}

// Get retrieves a single item. A missing key is not an error: the returned
// item has Found set to false.
func (c *Client) Get(ctx context.Context, key string) (Item, error) {
	v, err := c.Do(ctx, key, Command("GET", key))
	if err != nil {
		return Item{}, err
	}
	if err := replyError(v); err != nil {
		c.stats.recordError()
		return Item{}, err
	}

	// A null bulk string is the protocol's miss marker, distinct from a
	// present empty value.
	if v.Null {
		c.stats.recordGet(false)
		return Item{Key: key, Found: false}, nil
	}
	if v.Type != resp.TypeBulkString {
		c.stats.recordError()
		return Item{}, fmt.Errorf("redis: unexpected reply to GET: %s", v.Type)
	}

	c.stats.recordGet(true)
	return Item{Key: key, Value: v.Data, Found: true}, nil
}

// Set stores an item, with an expiration when item.TTL is set.
func (c *Client) Set(ctx context.Context, item Item) error {
	cmd := Command("SET", item.Key).Arg(item.Value)
	if item.TTL > 0 {
		cmd = cmd.ArgString("PX").ArgInt(item.TTL.Milliseconds())
	}

	v, err := c.Do(ctx, item.Key, cmd)
	if err != nil {
		return err
	}
	if err := replyError(v); err != nil {
		c.stats.recordError()
		return err
	}
	if v.Type != resp.TypeSimpleString || v.Text() != "OK" {
		c.stats.recordError()
		return fmt.Errorf("redis: unexpected reply to SET: %s", v.Type)
	}

	c.stats.recordSet()
	return nil
}

// Add stores an item only if the key does not already exist.
// Returns ErrNotStored when it does.
func (c *Client) Add(ctx context.Context, item Item) error {
	cmd := Command("SET", item.Key).Arg(item.Value).ArgString("NX")
	if item.TTL > 0 {
		cmd = cmd.ArgString("PX").ArgInt(item.TTL.Milliseconds())
	}

	v, err := c.Do(ctx, item.Key, cmd)
	if err != nil {
		return err
	}
	if err := replyError(v); err != nil {
		c.stats.recordError()
		return err
	}

	// SET ... NX replies with a null bulk string when the key exists.
	if v.Null {
		return ErrNotStored
	}
	if v.Type != resp.TypeSimpleString || v.Text() != "OK" {
		c.stats.recordError()
		return fmt.Errorf("redis: unexpected reply to SET NX: %s", v.Type)
	}

	c.stats.recordAdd()
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	v, err := c.Do(ctx, key, Command("DEL", key))
	if err != nil {
		return err
	}
	if err := replyError(v); err != nil {
		c.stats.recordError()
		return err
	}
	if v.Type != resp.TypeInteger {
		c.stats.recordError()
		return fmt.Errorf("redis: unexpected reply to DEL: %s", v.Type)
	}

	c.stats.recordDelete()
	return nil
}

// Increment adjusts the counter at key by delta and returns the new value.
// A missing key counts from zero. Negative deltas decrement.
func (c *Client) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	var cmd Cmd
	if delta >= 0 {
		cmd = Command("INCRBY", key).ArgInt(delta)
	} else {
		cmd = Command("DECRBY", key).ArgInt(-delta)
	}

	v, err := c.Do(ctx, key, cmd)
	if err != nil {
		return 0, err
	}
	if err := replyError(v); err != nil {
		c.stats.recordError()
		return 0, err
	}
	if v.Type != resp.TypeInteger {
		c.stats.recordError()
		return 0, fmt.Errorf("redis: unexpected reply to INCRBY: %s", v.Type)
	}

	c.stats.recordIncrement()
	return v.Int, nil
}

// Ping checks connectivity to the server that would handle key "".
func (c *Client) Ping(ctx context.Context) error {
	v, err := c.Do(ctx, "", Command("PING"))
	if err != nil {
		return err
	}
	return replyError(v)
}
