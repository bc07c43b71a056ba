package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventboard/internal/domain"
)

type statsService struct {
	hitRepo        domain.HitRepository
	contextTimeout time.Duration
}

// NewStatsService returns the hit recorder and stats aggregator of the stats service.
func NewStatsService(hitRepo domain.HitRepository, timeout time.Duration) domain.StatsService {
	return &statsService{
		hitRepo:        hitRepo,
		contextTimeout: timeout,
	}
}

func (s *statsService) SaveHit(ctx context.Context, hit *domain.EndpointHit) (*domain.EndpointHit, error) {
	if hit == nil {
		return nil, fmt.Errorf("%w: hit is required", domain.ErrBadRequest)
	}
	var missing []string
	if strings.TrimSpace(hit.App) == "" {
		missing = append(missing, "app")
	}
	if strings.TrimSpace(hit.URI) == "" {
		missing = append(missing, "uri")
	}
	if strings.TrimSpace(hit.IP) == "" {
		missing = append(missing, "ip")
	}
	if hit.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s required", domain.ErrBadRequest, strings.Join(missing, ", "))
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.hitRepo.Create(ctx, hit); err != nil {
		return nil, fmt.Errorf("save hit: %w", err)
	}
	return hit, nil
}

func (s *statsService) GetStats(ctx context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	if q.Start.After(q.End) {
		return nil, fmt.Errorf("%w: start must not be after end", domain.ErrBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.hitRepo.Stats(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}
