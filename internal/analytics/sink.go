// internal/analytics/sink.go
//
// Event sinks.
//
// Context
// -------
// RedisSink keeps a queryable event timeline:
//
//   analytics:event:<id>        JSON event, expires after the configured TTL
//   analytics:timeline          sorted set of ids scored by unix time
//   analytics:type:<event>      per-event-name sorted set
//
// All writes for one event go through a single pipeline.  LogSink writes the
// event to the structured log and is used when no Redis address is
// configured.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyEvent    = "analytics:event:"
	keyTimeline = "analytics:timeline"
	keyType     = "analytics:type:"
)

// RedisSink stores events in Redis.
type RedisSink struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisSink wraps an existing client.  ttl 0 keeps events forever.
func NewRedisSink(rdb redis.Cmdable, ttl time.Duration) *RedisSink {
	return &RedisSink{rdb: rdb, ttl: ttl}
}

// Deliver implements Sink.
func (s *RedisSink) Deliver(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	score := float64(ev.Timestamp.Unix())

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, keyEvent+ev.ID, body, s.ttl)
	pipe.ZAdd(ctx, keyTimeline, redis.Z{Score: score, Member: ev.ID})
	pipe.ZAdd(ctx, keyType+ev.Name, redis.Z{Score: score, Member: ev.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest events, newest first.  Expired
// events still listed in the timeline are skipped.
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]Event, error) {
	ids, err := s.rdb.ZRevRange(ctx, keyTimeline, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyEvent + id
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(str), &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// LogSink writes events to a zap logger.
type LogSink struct {
	log *zap.SugaredLogger
}

// NewLogSink returns a sink logging through l (nil means the global logger).
func NewLogSink(l *zap.SugaredLogger) *LogSink {
	if l == nil {
		l = zap.S()
	}
	return &LogSink{log: l}
}

// Deliver implements Sink.
func (s *LogSink) Deliver(_ context.Context, ev Event) error {
	s.log.Infow("analytics event", "id", ev.ID, "event", ev.Name, "data", ev.Payload)
	return nil
}
