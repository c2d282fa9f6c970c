package redis

import (
	"context"
	"time"
)

// Pool manages connections to a single server.
type Pool interface {
	// Acquire returns a connection, waiting for one if the pool is full.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle removes and returns all idle connections, for health
	// sweeps. Each must be released or destroyed by the caller.
	AcquireAllIdle() []Resource

	// Stats returns a snapshot of pool statistics.
	Stats() PoolStats

	// Close destroys all connections in the pool.
	Close()
}

// Resource is one pooled connection. Satisfied by *puddle.Resource.
type Resource interface {
	Value() *Connection
	Release()
	ReleaseUnused()
	Destroy()
	CreationTime() time.Time
	IdleDuration() time.Duration
}
