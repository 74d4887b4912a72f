// The redisutils package simplifies and automates recurring operations like
// connecting to, formatting for, and parsing from Redis.
package redisutils

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Addrs() joins every host of the comma-separated list with port.
// Empty entries are skipped.
func Addrs(hosts string, port int) []string {
	addrs := make([]string, 0, strings.Count(hosts, ",")+1)
	for _, host := range strings.Split(hosts, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		addrs = append(addrs, net.JoinHostPort(host, strconv.Itoa(port)))
	}
	return addrs
}

// NewClient() returns a client for the given addresses. With a single address
// it is a plain client, with more it is a cluster client. poolSize bounds the
// connections opened towards each node.
func NewClient(addrs []string, poolSize int) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		PoolSize: poolSize,
	})
}

// CleanupRedis() cleans up the Redis database between tests to ensure isolation.
func CleanupRedis(client redis.UniversalClient) {
	client.FlushAll(context.Background())
}
