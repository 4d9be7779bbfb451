package domain

import (
	"context"
	"errors"
	"fmt"
)

// QuotaService enforces the lifetime cap on generation attempts per user.
// The limit is read once from configuration at startup and is immutable for
// the process lifetime; usage is derived on each check from the usage log.
type QuotaService struct {
	store UsageLogStore
	limit int
}

// NewQuotaService creates a new quota service.
func NewQuotaService(store UsageLogStore, limit int) (*QuotaService, error) {
	if store == nil {
		return nil, errors.New("usage log store cannot be nil")
	}
	if limit < 0 {
		return nil, fmt.Errorf("quota limit cannot be negative, got %d", limit)
	}

	return &QuotaService{
		store: store,
		limit: limit,
	}, nil
}

// GetQuota computes the current quota view for a user from a count query over
// usage-log rows. There is no date window: the limit is lifetime.
func (s *QuotaService) GetQuota(ctx context.Context, userID string) (*UserQuota, error) {
	if userID == "" {
		return nil, NewError(ErrorCodeValidation, "user ID cannot be empty")
	}

	used, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count usage log entries: %w", err)
	}

	return NewUserQuota(used, s.limit), nil
}

// CanGenerate reports whether the user is below their generation limit, along
// with the quota snapshot the decision was derived from. It does not reserve
// or lock quota; concurrent attempts may both pass the gate.
func (s *QuotaService) CanGenerate(ctx context.Context, userID string) (bool, *UserQuota, error) {
	quota, err := s.GetQuota(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	return !quota.HasReachedLimit, quota, nil
}
