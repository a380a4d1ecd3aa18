package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/arkham-companion/internal/notify"
)

// Bus relays notifications between server instances over Redis pub/sub.
// Deliver publishes; Subscribe feeds every published message into a local sink.
type Bus struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// Ensure Bus is a notification sink
var _ notify.Sink = (*Bus)(nil)

// New connects to Redis and verifies the connection
func New(cfg Config, logger *slog.Logger) (*Bus, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a Bus with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Bus {
	return &Bus{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "redisbus")),
	}
}

// Close closes the Redis connection
func (b *Bus) Close() error {
	return b.client.Close()
}

// Deliver publishes msg on the session's channel. Failures are logged and dropped.
func (b *Bus) Deliver(ctx context.Context, msg notify.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Warn("failed to encode notification", slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, b.cfg.channel(msg.Session), data).Err(); err != nil {
		b.logger.Warn("failed to publish notification",
			slog.String("game_session", string(msg.Session)),
			slog.String("event", string(msg.Event)),
			slog.Any("error", err))
	}
}

// Relay is a running subscription
type Relay struct {
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// Subscribe listens on every session channel and hands decoded messages to local.
// It returns once the subscription is confirmed.
func (b *Bus) Subscribe(ctx context.Context, local notify.Sink) (*Relay, error) {
	pubsub := b.client.PSubscribe(ctx, b.cfg.pattern())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("psubscribe: %w", err)
	}

	r := &Relay{pubsub: pubsub}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for m := range pubsub.Channel() {
			b.relay(ctx, m, local)
		}
	}()

	b.logger.Info("redis relay subscribed", slog.String("pattern", b.cfg.pattern()))
	return r, nil
}

func (b *Bus) relay(ctx context.Context, m *redis.Message, local notify.Sink) {
	var msg notify.Message
	if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
		b.logger.Warn("discarding malformed notification",
			slog.String("channel", m.Channel),
			slog.Any("error", err))
		return
	}
	if session, ok := b.cfg.sessionFromChannel(m.Channel); ok && msg.Session == "" {
		msg.Session = session
	}
	local.Deliver(ctx, msg)
}

// Close stops the subscription and waits for the relay loop to exit
func (r *Relay) Close() error {
	err := r.pubsub.Close()
	r.wg.Wait()
	return err
}
