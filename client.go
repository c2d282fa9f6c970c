package redis

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pior/redis/resp"
)

// Config holds configuration for the client connection pools.
type Config struct {
	// MaxSize is the maximum number of connections per server pool.
	// Required: must be > 0.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle
	// before being closed. Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often to check idle connections for
	// health. Zero disables health checks.
	HealthCheckInterval time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Pool is the connection pool factory.
	// If nil, the puddle-based pool is used.
	Pool func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)

	// SelectServer picks which server handles a key.
	// If nil, DefaultSelectServer is used (xxh3 + jump hash).
	SelectServer SelectServerFunc

	// NewCircuitBreaker creates a circuit breaker for a server. Called
	// once per server address when its pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) CircuitBreaker

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

// serverPool wraps a pool with its server address.
type serverPool struct {
	addr           string
	pool           Pool
	circuitBreaker CircuitBreaker // nil if not configured
}

// poolConfig holds the pool configuration extracted from Config.
type poolConfig struct {
	maxSize             int32
	maxConnLifetime     time.Duration
	maxConnIdleTime     time.Duration
	healthCheckInterval time.Duration
	dialer              *net.Dialer
	poolFactory         func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)
	newCircuitBreaker   func(serverAddr string) CircuitBreaker
	constructor         func(ctx context.Context) (*Connection, error)
}

// Client implements Querier over one or more servers, with a connection
// pool per server.
type Client struct {
	servers      Servers
	selectServer SelectServerFunc

	mu    sync.RWMutex
	pools map[string]*serverPool

	poolConfig poolConfig

	stopHealthCheck chan struct{}

	stats *clientStatsCollector
}

// NewClient creates a client for the given servers.
// For a single server, use: NewClient(NewStaticServers("host:6379"), config)
func NewClient(servers Servers, config Config) (*Client, error) {
	if config.MaxSize <= 0 {
		return nil, fmt.Errorf("redis: config.MaxSize must be > 0")
	}
	if len(servers.List()) == 0 {
		return nil, ErrNoServers
	}

	selectServer := config.SelectServer
	if selectServer == nil {
		selectServer = DefaultSelectServer
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	poolFactory := config.Pool
	if poolFactory == nil {
		poolFactory = NewPuddlePool
	}

	client := &Client{
		servers:      servers,
		selectServer: selectServer,
		pools:        make(map[string]*serverPool),
		poolConfig: poolConfig{
			maxSize:             config.MaxSize,
			maxConnLifetime:     config.MaxConnLifetime,
			maxConnIdleTime:     config.MaxConnIdleTime,
			healthCheckInterval: config.HealthCheckInterval,
			dialer:              dialer,
			poolFactory:         poolFactory,
			newCircuitBreaker:   config.NewCircuitBreaker,
			constructor:         config.constructor,
		},
		stopHealthCheck: make(chan struct{}),
		stats:           newClientStatsCollector(),
	}

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close closes the client and destroys all connections in all pools.
func (c *Client) Close() {
	if c.poolConfig.healthCheckInterval > 0 {
		close(c.stopHealthCheck)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sp := range c.pools {
		sp.pool.Close()
	}
}

// Do sends an arbitrary command to the server selected for key and returns
// its reply. The value is an owned copy, safe to retain. An error-tagged
// reply is returned as a value; use replies' Type to distinguish.
func (c *Client) Do(ctx context.Context, key string, cmd Cmd) (resp.Value, error) {
	sp, err := c.getPoolForKey(key)
	if err != nil {
		c.stats.recordError()
		return resp.Value{}, err
	}
	return c.execCommand(ctx, sp, cmd)
}

// getPoolForKey returns the pool for the server that should handle key,
// creating it lazily.
func (c *Client) getPoolForKey(key string) (*serverPool, error) {
	addr, err := c.selectServer(key, c.servers.List())
	if err != nil {
		return nil, err
	}
	return c.getOrCreatePool(addr)
}

func (c *Client) getOrCreatePool(addr string) (*serverPool, error) {
	c.mu.RLock()
	sp, exists := c.pools[addr]
	c.mu.RUnlock()
	if exists {
		return sp, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring the write lock.
	if sp, exists := c.pools[addr]; exists {
		return sp, nil
	}

	pool, cb, err := c.createPool(addr)
	if err != nil {
		return nil, err
	}

	sp = &serverPool{
		addr:           addr,
		pool:           pool,
		circuitBreaker: cb,
	}
	c.pools[addr] = sp
	return sp, nil
}

func (c *Client) createPool(addr string) (Pool, CircuitBreaker, error) {
	constructor := c.poolConfig.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Connection, error) {
			netConn, err := c.poolConfig.dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, err
			}
			return NewConnection(netConn), nil
		}
	}

	pool, err := c.poolConfig.poolFactory(constructor, c.poolConfig.maxSize)
	if err != nil {
		return nil, nil, err
	}

	var cb CircuitBreaker
	if c.poolConfig.newCircuitBreaker != nil {
		cb = c.poolConfig.newCircuitBreaker(addr)
	}

	return pool, cb, nil
}

// execCommand executes one command with proper connection management,
// wrapped with the server's circuit breaker when one is configured.
func (c *Client) execCommand(ctx context.Context, sp *serverPool, cmd Cmd) (resp.Value, error) {
	if sp.circuitBreaker != nil {
		v, err := sp.circuitBreaker.Execute(func() (resp.Value, error) {
			return c.execCommandDirect(ctx, sp.pool, cmd)
		})
		if err != nil {
			c.stats.recordError()
			return resp.Value{}, err
		}
		return v, nil
	}

	return c.execCommandDirect(ctx, sp.pool, cmd)
}

// execCommandDirect acquires a connection, runs the command, and releases or
// destroys the connection depending on the failure mode.
func (c *Client) execCommandDirect(ctx context.Context, pool Pool, cmd Cmd) (resp.Value, error) {
	resource, err := pool.Acquire(ctx)
	if err != nil {
		c.stats.recordError()
		return resp.Value{}, err
	}

	v, err := resource.Value().Do(ctx, cmd)
	if err != nil {
		c.stats.recordError()
		if ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return resp.Value{}, err
	}

	// The reply aliases the connection's read buffer; copy it before the
	// connection can be reused.
	v = v.Clone()
	resource.Release()
	return v, nil
}

// healthCheckLoop periodically checks idle connections for health and
// lifecycle limits.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.poolConfig.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*serverPool, 0, len(c.pools))
	for _, sp := range c.pools {
		pools = append(pools, sp)
	}
	c.mu.RUnlock()

	for _, sp := range pools {
		c.checkPoolConnections(sp.pool)
	}
}

// checkPoolConnections destroys idle connections that are stale, past their
// lifetime, or failing a PING round trip.
func (c *Client) checkPoolConnections(pool Pool) {
	now := time.Now()

	for _, res := range pool.AcquireAllIdle() {
		if c.poolConfig.maxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.poolConfig.maxConnLifetime {
			res.Destroy()
			continue
		}

		if c.poolConfig.maxConnIdleTime > 0 && res.IdleDuration() > c.poolConfig.maxConnIdleTime {
			res.Destroy()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := res.Value().Ping(ctx)
		cancel()
		if err != nil {
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// ServerPoolStats contains stats for a single server pool.
type ServerPoolStats struct {
	Addr                string
	PoolStats           PoolStats
	CircuitBreakerState string
}

// AllPoolStats returns stats for all server pools created so far.
func (c *Client) AllPoolStats() []ServerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]ServerPoolStats, 0, len(c.pools))
	for _, sp := range c.pools {
		s := ServerPoolStats{
			Addr:      sp.addr,
			PoolStats: sp.pool.Stats(),
		}
		if sp.circuitBreaker != nil {
			s.CircuitBreakerState = sp.circuitBreaker.State()
		}
		stats = append(stats, s)
	}
	return stats
}
