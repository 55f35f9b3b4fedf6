// Package leaderboard keeps the deepest level reached by any player in Redis,
// so several machines (or every session on one ssh server) share one global
// record.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
)

// EnvAddr names the environment variable holding the Redis address.
const EnvAddr = "TRIPLESTACK_REDIS_ADDR"

const (
	keyPrefix      = "triplestack:best:"
	defaultTimeout = 2 * time.Second
)

// ErrUnavailable wraps every failure to reach Redis.
var ErrUnavailable = errors.New("leaderboard: unavailable")

// raiseScript stores ARGV[1] only if it beats the current value.
var raiseScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local next = tonumber(ARGV[1])
if next > cur then
  redis.call("SET", KEYS[1], next)
  return next
end
return cur
`)

// Options configures a GlobalStore.
type Options struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration // Per-call deadline; defaults to 2s
}

// GlobalStore is an engine.ScoreStore backed by one Redis key per game.
type GlobalStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, gameID string, opts Options) (*GlobalStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("%w: no address", ErrUnavailable)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	g := newGlobalStore(client, gameID, opts.Timeout)
	if err := g.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return g, nil
}

func newGlobalStore(client *redis.Client, gameID string, timeout time.Duration) *GlobalStore {
	return &GlobalStore{client: client, key: keyPrefix + gameID, timeout: timeout}
}

// ForGame returns a store for another game sharing this connection.
func (g *GlobalStore) ForGame(gameID string) *GlobalStore {
	return newGlobalStore(g.client, gameID, g.timeout)
}

// Ping checks the connection.
func (g *GlobalStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	return nil
}

// ReadBest returns the global record level, 0 when none is stored.
func (g *GlobalStore) ReadBest() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	val, err := g.client.Get(ctx, g.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get %s: %w", ErrUnavailable, g.key, err)
	}

	level, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("leaderboard: corrupt value at %s: %w", g.key, err)
	}
	return level, nil
}

// WriteBest raises the global record to level. A lower level is ignored, so
// concurrent writers cannot lower the record.
func (g *GlobalStore) WriteBest(level int) error {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	if err := raiseScript.Run(ctx, g.client, []string{g.key}, level).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrUnavailable, g.key, err)
	}
	return nil
}

// Reset deletes the record for this game.
func (g *GlobalStore) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.client.Del(ctx, g.key).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %w", ErrUnavailable, g.key, err)
	}
	return nil
}

// Close closes the underlying client. Stores obtained with ForGame share it.
func (g *GlobalStore) Close() error {
	return g.client.Close()
}

var _ engine.ScoreStore = (*GlobalStore)(nil)
