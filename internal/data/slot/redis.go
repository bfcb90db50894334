package slot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

type redisSlot struct {
	rdb goredis.UniversalClient
	key string
}

func NewRedis(rdb goredis.UniversalClient, key string) (Slot, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	return &redisSlot{rdb: rdb, key: key}, nil
}

func (s *redisSlot) Load(ctx context.Context) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %q: %w", s.key, err)
	}
	return b, nil
}

// Save sets the key with no expiry; the log lives as long as the profile.
func (s *redisSlot) Save(ctx context.Context, value []byte) error {
	if err := s.rdb.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", s.key, err)
	}
	return nil
}

func (s *redisSlot) Close() error {
	return s.rdb.Close()
}
