package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
)

const engineConfigKey = "simpulse:engine:config"

// RedisConfigStore persists the operator selections in a single JSON row.
type RedisConfigStore struct {
	cli *redis.Client
}

func NewRedisConfigStore(cli *redis.Client) domrepo.ConfigStore {
	return &RedisConfigStore{cli: cli}
}

// Load returns (nil, nil) when no row exists yet; the engine falls back to
// defaults.
func (s *RedisConfigStore) Load(ctx context.Context) (*models.EngineConfig, error) {
	b, err := s.cli.Get(ctx, engineConfigKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("engine config get: %w", err)
	}
	var c models.EngineConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("engine config decode: %w", err)
	}
	return &c, nil
}

func (s *RedisConfigStore) Save(ctx context.Context, c *models.EngineConfig) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("engine config encode: %w", err)
	}
	if err := s.cli.Set(ctx, engineConfigKey, b, 0).Err(); err != nil {
		return fmt.Errorf("engine config set: %w", err)
	}
	return nil
}

func (s *RedisConfigStore) Close() error {
	return s.cli.Close()
}
