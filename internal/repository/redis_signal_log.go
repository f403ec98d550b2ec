package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
)

// Redis key layout for the forecast log.
const (
	signalItemPrefix   = "simpulse:signals:item:"
	signalPendingKey   = "simpulse:signals:pending"  // set of unresolved ids
	signalResolvedKey  = "simpulse:signals:resolved" // list, newest first
	signalResolvedMax  = 500
	signalItemTTL      = 48 * time.Hour
)

// RedisSignalLog persists forecast entries. Entries live under individual
// keys with a TTL; membership moves from the pending set to the resolved
// list exactly once, on settlement.
type RedisSignalLog struct {
	cli *redis.Client
}

func NewRedisSignalLog(cli *redis.Client) domrepo.SignalLog {
	return &RedisSignalLog{cli: cli}
}

func (s *RedisSignalLog) Append(ctx context.Context, e *models.SignalLogEntry) error {
	if e.ID == "" {
		return fmt.Errorf("signal entry id empty")
	}
	if err := s.save(ctx, e); err != nil {
		return err
	}
	return s.cli.SAdd(ctx, signalPendingKey, e.ID).Err()
}

// Unresolved loads every pending entry created before the cutoff. Ids whose
// records expired are dropped from the pending set as a side effect.
func (s *RedisSignalLog) Unresolved(ctx context.Context, before time.Time) ([]*models.SignalLogEntry, error) {
	ids, err := s.cli.SMembers(ctx, signalPendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("signal pending scan: %w", err)
	}
	out := make([]*models.SignalLogEntry, 0, len(ids))
	for _, id := range ids {
		e, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if e == nil {
			s.cli.SRem(ctx, signalPendingKey, id)
			continue
		}
		if e.ResolvedAt == nil && e.CreatedAt.Before(before) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *RedisSignalLog) Resolve(ctx context.Context, e *models.SignalLogEntry) error {
	if e.ResolvedAt == nil {
		return fmt.Errorf("entry %s not resolved", e.ID)
	}
	if err := s.save(ctx, e); err != nil {
		return err
	}
	pipe := s.cli.Pipeline()
	pipe.SRem(ctx, signalPendingKey, e.ID)
	pipe.LPush(ctx, signalResolvedKey, e.ID)
	pipe.LTrim(ctx, signalResolvedKey, 0, signalResolvedMax-1)
	_, err := pipe.Exec(ctx)
	return err
}

// RecentResolved returns up to limit resolved entries, newest first.
func (s *RedisSignalLog) RecentResolved(ctx context.Context, limit int) ([]*models.SignalLogEntry, error) {
	if limit <= 0 || limit > signalResolvedMax {
		limit = signalResolvedMax
	}
	ids, err := s.cli.LRange(ctx, signalResolvedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("signal resolved scan: %w", err)
	}
	out := make([]*models.SignalLogEntry, 0, len(ids))
	for _, id := range ids {
		e, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *RedisSignalLog) Close() error {
	return s.cli.Close()
}

func (s *RedisSignalLog) save(ctx context.Context, e *models.SignalLogEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("signal encode: %w", err)
	}
	if err := s.cli.Set(ctx, signalItemPrefix+e.ID, b, signalItemTTL).Err(); err != nil {
		return fmt.Errorf("signal set: %w", err)
	}
	return nil
}

func (s *RedisSignalLog) load(ctx context.Context, id string) (*models.SignalLogEntry, error) {
	b, err := s.cli.Get(ctx, signalItemPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("signal get: %w", err)
	}
	var e models.SignalLogEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("signal decode: %w", err)
	}
	return &e, nil
}
