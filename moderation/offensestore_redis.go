package moderation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var redisOffensePrefix string = "offense/"

// RedisOffenseStore keeps offense state as a JSON value per user, with no
// expiration: bans persist until explicitly reset.
type RedisOffenseStore struct {
	Client *redis.Client
}

func NewRedisOffenseStore(redisURL string) (*RedisOffenseStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisOffenseStore{Client: rdb}, nil
}

func (s *RedisOffenseStore) Get(ctx context.Context, userID string) (*OffenseState, error) {
	raw, err := s.Client.Get(ctx, redisOffensePrefix+userID).Bytes()
	if err == redis.Nil {
		return &OffenseState{}, nil
	} else if err != nil {
		return nil, err
	}
	var st OffenseState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("parsing offense state JSON: %w", err)
	}
	return &st, nil
}

func (s *RedisOffenseStore) Set(ctx context.Context, userID string, state *OffenseState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, redisOffensePrefix+userID, raw, 0).Err()
}
