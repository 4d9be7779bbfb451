// Package redis implements the domain.UsageLogStore interface on Redis.
// Entries are append-only: each token-consuming generation attempt RPUSHes
// one JSON-encoded row onto a per-user list, and the quota count query is an
// LLEN over the same list. No TTL is set because the quota is lifetime.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/quizforge/internal/domain"
)

const keyPrefix = "usage:log:"

// UsageLog stores usage-log entries in Redis.
type UsageLog struct {
	client *redis.Client
}

// NewUsageLog creates a new Redis-backed usage log store.
func NewUsageLog(client *redis.Client) (*UsageLog, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	return &UsageLog{
		client: client,
	}, nil
}

// Append writes one usage-log entry for a user.
func (s *UsageLog) Append(ctx context.Context, entry *domain.UsageLogEntry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	if entry.UserID == "" {
		return errors.New("entry user ID cannot be empty")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal usage log entry: %w", err)
	}

	if err := s.client.RPush(ctx, userKey(entry.UserID), data).Err(); err != nil {
		return fmt.Errorf("failed to append usage log entry: %w", err)
	}

	return nil
}

// CountByUser returns the number of usage-log entries recorded for a user.
func (s *UsageLog) CountByUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("user ID cannot be empty")
	}

	count, err := s.client.LLen(ctx, userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count usage log entries: %w", err)
	}

	return int(count), nil
}

func userKey(userID string) string {
	return keyPrefix + userID
}
