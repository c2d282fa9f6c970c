package redis

import (
	"github.com/pior/redis/internal"
	"github.com/zeebo/xxh3"
)

// SelectServerFunc picks the server for a key from the current server list.
type SelectServerFunc func(key string, servers []string) (string, error)

// DefaultSelectServer hashes the key with xxh3 and places it with Jump
// consistent hashing, which minimizes key movement when the server list
// grows or shrinks.
func DefaultSelectServer(key string, servers []string) (string, error) {
	switch len(servers) {
	case 0:
		return "", ErrNoServers
	case 1:
		return servers[0], nil
	}
	return servers[internal.JumpHash(xxh3.HashString(key), len(servers))], nil
}

// staticSelector is used in tests to always select a specific server.
func staticSelector(index int) SelectServerFunc {
	return func(key string, servers []string) (string, error) {
		if len(servers) == 0 {
			return "", ErrNoServers
		}
		return servers[index%len(servers)], nil
	}
}
