// Package publisher announces due schedules on a Redis stream. It never runs work itself.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/sinclairt/schedulable/pkg/common"
	"github.com/sinclairt/schedulable/pkg/logger"
)

const (
	defaultMaxFailures = 5
	defaultTimeout     = 30 * time.Second
	defaultInterval    = time.Minute
)

// DueEvent is the message body written for every occurrence the poller picks up.
type DueEvent struct {
	EventID         string    `json:"event_id"`
	Type            string    `json:"type"`
	ScheduleID      uint      `json:"schedule_id"`
	SchedulableType string    `json:"schedulable_type"`
	SchedulableID   uint      `json:"schedulable_id"`
	Category        string    `json:"category"`
	Expression      string    `json:"expression"`
	ScheduledFor    time.Time `json:"scheduled_for"`
	PublishedAt     time.Time `json:"published_at"`
}

// Publisher delivers due events.
type Publisher interface {
	Publish(ctx context.Context, event *DueEvent) error
}

// StreamAdder is the part of *redis.Client the publisher uses.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Config tunes stream trimming, throughput and the circuit breaker.
type Config struct {
	Stream        string
	MaxLen        int64
	RatePerSecond float64
	Burst         int
	MaxFailures   uint32
	Timeout       time.Duration
	Interval      time.Duration
}

// NewRedisPublisher creates a publisher writing to a Redis stream. Writes are
// rate limited and go through a circuit breaker that opens after MaxFailures
// consecutive errors.
func NewRedisPublisher(client StreamAdder, cfg Config, log *logger.Logger) Publisher {
	if cfg.Stream == "" {
		cfg.Stream = common.RedisStreamScheduleDue
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Interval == 0 {
		cfg.Interval = defaultInterval
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	maxFailures := cfg.MaxFailures
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "redis:" + cfg.Stream,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				logger.Field("breaker", name),
				logger.Field("from", from.String()),
				logger.Field("to", to.String()),
			)
		},
	})

	return &redisPublisher{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
		breaker: cb,
		logger:  log,
	}
}

type redisPublisher struct {
	client  StreamAdder
	cfg     Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	logger  *logger.Logger
}

// Publish appends event to the stream and returns once Redis acknowledged it.
func (p *redisPublisher) Publish(ctx context.Context, event *DueEvent) error {
	if event.Type == "" {
		event.Type = common.ScheduleEventDue
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal due event: %w", err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("publish rate limit: %w", err)
	}

	id, err := p.breaker.Execute(func() (string, error) {
		return p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: p.cfg.Stream,
			MaxLen: p.cfg.MaxLen,
			Approx: p.cfg.MaxLen > 0,
			Values: map[string]interface{}{
				"event_id": event.EventID,
				"type":     event.Type,
				"payload":  payload,
			},
		}).Result()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("stream %q circuit open: %w", p.cfg.Stream, err)
		}
		return fmt.Errorf("failed to publish due event %s: %w", event.EventID, err)
	}

	p.logger.Debug("Due event published",
		logger.Field("stream", p.cfg.Stream),
		logger.Field("message_id", id),
		logger.Field("event_id", event.EventID),
		logger.Field("schedule_id", event.ScheduleID),
	)
	return nil
}
