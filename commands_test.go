package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/redis/resp"
)

func TestSetGetRoundTrip(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	err := client.Set(ctx, Item{Key: "greeting", Value: []byte("hello")})
	require.NoError(t, err)

	item, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, item.Found)
	assert.Equal(t, []byte("hello"), item.Value)
}

func TestGetMiss(t *testing.T) {
	client := newTestClient(t, newTestServer(t))

	item, err := client.Get(context.Background(), "never-set")
	require.NoError(t, err, "a miss is not an error")
	assert.False(t, item.Found)
	assert.Nil(t, item.Value)
}

func TestSetGetBinaryValue(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	// Bulk strings are length-prefixed, so values containing the frame
	// terminator survive the round trip.
	value := []byte("line one\r\nline two\r\n\x00binary")
	require.NoError(t, client.Set(ctx, Item{Key: "bin", Value: value}))

	item, err := client.Get(ctx, "bin")
	require.NoError(t, err)
	assert.Equal(t, value, item.Value)
}

func TestSetGetEmptyValue(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, Item{Key: "empty", Value: []byte{}}))

	item, err := client.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, item.Found, "empty value is present, not a miss")
	assert.Empty(t, item.Value)
}

func TestSetWithTTL(t *testing.T) {
	client := newTestClient(t, newTestServer(t))

	err := client.Set(context.Background(), Item{
		Key:   "ephemeral",
		Value: []byte("v"),
		TTL:   time.Minute,
	})
	require.NoError(t, err)
}

func TestAdd(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	require.NoError(t, client.Add(ctx, Item{Key: "once", Value: []byte("first")}))

	err := client.Add(ctx, Item{Key: "once", Value: []byte("second")})
	assert.ErrorIs(t, err, ErrNotStored)

	item, err := client.Get(ctx, "once")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), item.Value)
}

func TestDelete(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, Item{Key: "doomed", Value: []byte("v")}))
	require.NoError(t, client.Delete(ctx, "doomed"))

	item, err := client.Get(ctx, "doomed")
	require.NoError(t, err)
	assert.False(t, item.Found)

	// Deleting a missing key is fine.
	require.NoError(t, client.Delete(ctx, "doomed"))
}

func TestIncrement(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	n, err := client.Increment(ctx, "counter", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = client.Increment(ctx, "counter", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	n, err = client.Increment(ctx, "counter", -3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestIncrementNonNumeric(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, Item{Key: "word", Value: []byte("abc")}))

	_, err := client.Increment(ctx, "word", 1)
	require.Error(t, err)

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "not an integer")
	assert.False(t, ShouldCloseConnection(err), "server error replies keep the connection usable")
}

func TestPing(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	require.NoError(t, client.Ping(context.Background()))
}

func TestDoGeneric(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	v, err := client.Do(ctx, "k", Command("SET", "k", "v"))
	require.NoError(t, err)
	assert.Equal(t, "OK", v.Text())

	v, err = client.Do(ctx, "k", Command("GET", "k"))
	require.NoError(t, err)
	assert.Equal(t, resp.TypeBulkString, v.Type)
	assert.Equal(t, "v", v.Text())

	// Unknown commands come back as error-tagged values.
	v, err = client.Do(ctx, "k", Command("FLY"))
	require.NoError(t, err)
	assert.Equal(t, resp.TypeError, v.Type)
}

func TestClientStats(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, Item{Key: "k", Value: []byte("v")}))

	item, err := client.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, item.Found)

	_, err = client.Get(ctx, "absent")
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, "k"))
	_, err = client.Increment(ctx, "n", 1)
	require.NoError(t, err)

	stats := client.Stats()
	assert.Equal(t, uint64(2), stats.Gets)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Sets)
	assert.Equal(t, uint64(1), stats.Deletes)
	assert.Equal(t, uint64(1), stats.Increments)
	assert.Equal(t, uint64(0), stats.Errors)
}
