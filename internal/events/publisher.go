package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultStream is the stream key used when none is configured.
	DefaultStream = "speecheval:evaluations"

	defaultMaxLen = 10000
)

// Publisher announces evaluation events to other services.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }

// RedisPublisher appends events to a Redis stream capped at roughly maxLen entries.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// RedisOption configures a RedisPublisher.
type RedisOption func(*RedisPublisher)

// WithStream sets the stream key.
func WithStream(stream string) RedisOption {
	return func(p *RedisPublisher) {
		if stream != "" {
			p.stream = stream
		}
	}
}

// WithMaxLen bounds the stream history.
func WithMaxLen(n int64) RedisOption {
	return func(p *RedisPublisher) {
		if n > 0 {
			p.maxLen = n
		}
	}
}

func NewRedisPublisher(client *redis.Client, opts ...RedisOption) *RedisPublisher {
	p := &RedisPublisher{client: client, stream: DefaultStream, maxLen: defaultMaxLen}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ConnectRedis creates a client and checks the connection.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"type": event.Type, "data": string(data)},
		MaxLen: p.maxLen,
		Approx: true,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
