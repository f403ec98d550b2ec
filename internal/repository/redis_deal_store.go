package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
)

// Redis key layout for the deal store.
const (
	dealItemPrefix = "simpulse:deals:item:"
	dealDueKey     = "simpulse:deals:scheduled" // zset, score = StartAt unix
	dealRecentKey  = "simpulse:deals:recent"    // list, newest first
	dealRecentMax  = 200
)

// RedisDealStore keeps scheduled scenarios in Redis. Due deals sit in a
// sorted set scored by start time; ZRem on the candidate id is the atomic
// claim, so concurrent watchers can never both adopt the same deal.
type RedisDealStore struct {
	cli *redis.Client
}

func NewRedisDealStore(cli *redis.Client) domrepo.DealStore {
	return &RedisDealStore{cli: cli}
}

func (s *RedisDealStore) Schedule(ctx context.Context, d *models.Deal) error {
	if d.ID == "" {
		return fmt.Errorf("deal id empty")
	}
	d.Status = models.DealScheduled
	if err := s.save(ctx, d); err != nil {
		return err
	}
	if err := s.cli.ZAdd(ctx, dealDueKey, redis.Z{
		Score:  float64(d.StartAt.Unix()),
		Member: d.ID,
	}).Err(); err != nil {
		return fmt.Errorf("deal zadd: %w", err)
	}
	pipe := s.cli.Pipeline()
	pipe.LPush(ctx, dealRecentKey, d.ID)
	pipe.LTrim(ctx, dealRecentKey, 0, dealRecentMax-1)
	_, err := pipe.Exec(ctx)
	return err
}

// ClaimDue pops the earliest due deal. ZRem is the linearization point: only
// the caller whose removal returns 1 owns the deal.
func (s *RedisDealStore) ClaimDue(ctx context.Context, now time.Time) (*models.Deal, error) {
	ids, err := s.cli.ZRangeByScore(ctx, dealDueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: 1,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("deal due scan: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	removed, err := s.cli.ZRem(ctx, dealDueKey, ids[0]).Result()
	if err != nil {
		return nil, fmt.Errorf("deal claim: %w", err)
	}
	if removed == 0 {
		return nil, nil // someone else claimed it first
	}
	d, err := s.Get(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("claimed deal %s has no record", ids[0])
	}
	d.Status = models.DealRunning
	d.ClaimedAt = now
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *RedisDealStore) Finish(ctx context.Context, id string, at time.Time) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("deal %s not found", id)
	}
	d.Status = models.DealFinished
	d.FinishedAt = at
	return s.save(ctx, d)
}

func (s *RedisDealStore) Get(ctx context.Context, id string) (*models.Deal, error) {
	b, err := s.cli.Get(ctx, dealItemPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("deal get: %w", err)
	}
	var d models.Deal
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("deal decode: %w", err)
	}
	return &d, nil
}

func (s *RedisDealStore) List(ctx context.Context, limit int) ([]*models.Deal, error) {
	if limit <= 0 || limit > dealRecentMax {
		limit = dealRecentMax
	}
	ids, err := s.cli.LRange(ctx, dealRecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("deal list: %w", err)
	}
	out := make([]*models.Deal, 0, len(ids))
	for _, id := range ids {
		d, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *RedisDealStore) Close() error {
	return s.cli.Close()
}

func (s *RedisDealStore) save(ctx context.Context, d *models.Deal) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("deal encode: %w", err)
	}
	if err := s.cli.Set(ctx, dealItemPrefix+d.ID, b, 0).Err(); err != nil {
		return fmt.Errorf("deal set: %w", err)
	}
	return nil
}
