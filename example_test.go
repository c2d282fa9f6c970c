package redis_test

import (
	"context"
	"fmt"
	"time"

	"github.com/pior/redis"
)

func ExampleNewClient() {
	servers := redis.NewStaticServers("localhost:6379", "localhost:6380")

	client, err := redis.NewClient(servers, redis.Config{
		MaxSize:             10,
		MaxConnLifetime:     time.Hour,
		HealthCheckInterval: 30 * time.Second,
		NewCircuitBreaker:   redis.NewCircuitBreakerConfig(3, time.Minute, 10*time.Second),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	ctx := context.Background()

	// Keys are spread over the servers with consistent hashing.
	err = client.Set(ctx, redis.Item{Key: "user:123", Value: []byte("John"), TTL: time.Hour})
	if err != nil {
		panic(err)
	}

	item, err := client.Get(ctx, "user:123")
	if err != nil {
		panic(err)
	}
	if item.Found {
		fmt.Printf("user:123 = %s\n", item.Value)
	}
}

func ExampleClient_Stats() {
	client, err := redis.NewClient(redis.NewStaticServers("localhost:6379"), redis.Config{
		MaxSize: 10,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	ctx := context.Background()

	_ = client.Set(ctx, redis.Item{Key: "user:123", Value: []byte("John")})
	_, _ = client.Get(ctx, "user:123")
	_, _ = client.Get(ctx, "user:456") // miss

	stats := client.Stats()
	fmt.Printf("gets=%d hits=%d misses=%d\n", stats.Gets, stats.Hits, stats.Misses)

	for _, ps := range client.AllPoolStats() {
		fmt.Printf("%s: total=%d idle=%d\n", ps.Addr, ps.PoolStats.TotalConns, ps.PoolStats.IdleConns)
	}
}

func ExampleClient_Do() {
	client, err := redis.NewClient(redis.NewStaticServers("localhost:6379"), redis.Config{
		MaxSize: 10,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Commands without a typed method go through Do.
	v, err := client.Do(context.Background(), "visits", redis.Command("INCRBY", "visits", "1"))
	if err != nil {
		panic(err)
	}
	fmt.Println(v.Int)
}
