package redis

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tacore/internal/model"
)

const (
	defaultSnapshotTTL = 24 * time.Hour
	defaultLatestTTL   = 30 * time.Minute
	// ~3h of results at the given TF, with a floor for slow timeframes.
	streamWindow    = 10800
	streamMinMaxLen = 200
)

// Config configures the Redis store.
type Config struct {
	Addr        string
	Password    string
	DB          int
	SnapshotKey string
	SnapshotTTL time.Duration
}

var _ model.SnapshotStore = (*Store)(nil)

// Store persists stepper checkpoints and publishes indicator results.
// Every call goes through a circuit breaker so a dead Redis fails fast.
type Store struct {
	client  *goredis.Client
	breaker *CircuitBreaker
	key     string
	ttl     time.Duration
}

// New connects and pings the server.
func New(cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "redis ping %s", cfg.Addr)
	}

	zap.L().Info("redis connected", zap.String("addr", cfg.Addr))
	return newStore(client, cfg), nil
}

func newStore(client *goredis.Client, cfg Config) *Store {
	s := &Store{
		client:  client,
		breaker: NewCircuitBreaker(5, 10*time.Second),
		key:     cfg.SnapshotKey,
		ttl:     cfg.SnapshotTTL,
	}
	if s.key == "" {
		s.key = "tacore:snapshot"
	}
	if s.ttl <= 0 {
		s.ttl = defaultSnapshotTTL
	}
	s.breaker.OnStateChange = func(from, to State) {
		zap.L().Warn("redis circuit breaker", zap.Stringer("from", from), zap.Stringer("to", to))
	}
	return s
}

// Client returns the underlying client for health checks.
func (s *Store) Client() *goredis.Client { return s.client }

// Breaker exposes the circuit breaker state.
func (s *Store) Breaker() *CircuitBreaker { return s.breaker }

// SaveSnapshotJSON writes the checkpoint under the snapshot key with a TTL.
// SQLite holds the durable copy.
func (s *Store) SaveSnapshotJSON(ctx context.Context, data []byte) error {
	return s.breaker.Execute(func() error {
		return errors.Wrap(s.client.Set(ctx, s.key, data, s.ttl).Err(), "redis set snapshot")
	})
}

// ReadLatestSnapshotJSON returns nil, nil when no checkpoint exists.
func (s *Store) ReadLatestSnapshotJSON(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.breaker.Execute(func() error {
		b, err := s.client.Get(ctx, s.key).Bytes()
		if err == goredis.Nil {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "redis get snapshot")
		}
		data = b
		return nil
	})
	return data, err
}

// LatestKey is where the newest value of a result's output series lives.
func LatestKey(r *model.IndicatorResult) string {
	return "ind:" + r.Name + "." + r.Output + ":" + strconv.Itoa(r.TF) + "s:latest:" + r.Key
}

// Channel is the pub/sub channel a result is published on.
func Channel(r *model.IndicatorResult) string {
	return "pub:" + r.StreamKey()
}

func streamMaxLen(tf int) int64 {
	if tf <= 0 {
		return streamMinMaxLen
	}
	n := int64(streamWindow/tf) + 100
	if n < streamMinMaxLen {
		n = streamMinMaxLen
	}
	return n
}

// WriteResults publishes ready results in a single pipeline: XADD to the
// output stream, SET latest, PUBLISH. Results inside the lookback prefix
// are skipped.
func (s *Store) WriteResults(ctx context.Context, results []model.IndicatorResult) error {
	pipe := s.client.Pipeline()
	n := 0
	for i := range results {
		r := &results[i]
		if !r.Ready {
			continue
		}
		data := string(r.JSON())
		pipe.XAdd(ctx, &goredis.XAddArgs{
			Stream: r.StreamKey(),
			MaxLen: streamMaxLen(r.TF),
			Approx: true,
			Values: map[string]interface{}{"data": data},
		})
		pipe.Set(ctx, LatestKey(r), data, defaultLatestTTL)
		pipe.Publish(ctx, Channel(r), data)
		n++
	}
	if n == 0 {
		return nil
	}

	return s.breaker.Execute(func() error {
		if _, err := pipe.Exec(ctx); err != nil {
			return errors.Wrapf(err, "redis results pipeline (%d results)", n)
		}
		return nil
	})
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
