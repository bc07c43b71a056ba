package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"eventboard/internal/domain"
	"eventboard/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// CatalogOptions tunes the public catalog.
type CatalogOptions struct {
	// AppName is recorded as the app of every hit.
	AppName string
	// StatsTimeout bounds each call to the stats service.
	StatsTimeout time.Duration
	// CacheTTL is how long a looked-up view count is reused.
	CacheTTL time.Duration
	// LookupConcurrency caps parallel view lookups per page.
	LookupConcurrency int
	ContextTimeout    time.Duration
}

type catalogService struct {
	eventRepo   domain.EventRepository
	requestRepo domain.RequestRepository
	stats       domain.StatsClient
	cache       domain.ViewCache
	metrics     *metrics.Metrics
	logger      *slog.Logger
	opts        CatalogOptions
	now         func() time.Time
}

// NewCatalogService returns the public catalog. cache and m may be nil.
func NewCatalogService(
	eventRepo domain.EventRepository,
	requestRepo domain.RequestRepository,
	stats domain.StatsClient,
	cache domain.ViewCache,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts CatalogOptions,
) domain.CatalogService {
	if opts.LookupConcurrency < 1 {
		opts.LookupConcurrency = 8
	}
	return &catalogService{
		eventRepo:   eventRepo,
		requestRepo: requestRepo,
		stats:       stats,
		cache:       cache,
		metrics:     m,
		logger:      logger,
		opts:        opts,
		now:         time.Now,
	}
}

func (s *catalogService) ListEvents(ctx context.Context, filter domain.EventFilter, visit domain.Visit) ([]*domain.EventView, error) {
	if filter.RangeStart.IsZero() {
		filter.RangeStart = s.now().UTC()
	}
	if filter.RangeEnd != nil && filter.RangeStart.After(*filter.RangeEnd) {
		return nil, fmt.Errorf("%w: rangeStart must not be after rangeEnd", domain.ErrBadRequest)
	}
	switch filter.Sort {
	case "":
		filter.Sort = domain.EventSortDate
	case domain.EventSortDate, domain.EventSortViews:
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrBadRequest, filter.Sort)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.ContextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	s.recordHit(ctx, visit)
	views, err := s.annotate(ctx, events)
	if err != nil {
		return nil, err
	}
	if filter.Sort == domain.EventSortViews {
		sort.SliceStable(views, func(i, j int) bool { return views[i].Views > views[j].Views })
	}
	return views, nil
}

func (s *catalogService) GetEvent(ctx context.Context, id int64, visit domain.Visit) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ContextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetPublishedByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	s.recordHit(ctx, visit)

	views, err := s.annotate(ctx, []*domain.Event{event})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// annotate attaches confirmed counts and view counts, keeping the input order.
func (s *catalogService) annotate(ctx context.Context, events []*domain.Event) ([]*domain.EventView, error) {
	out := make([]*domain.EventView, len(events))
	if len(events) == 0 {
		return out, nil
	}
	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	confirmed, err := s.requestRepo.CountConfirmedByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count confirmed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.LookupConcurrency)
	for i, e := range events {
		out[i] = &domain.EventView{Event: e, ConfirmedRequests: confirmed[e.ID]}
		g.Go(func() error {
			out[i].Views = s.viewsOf(gctx, e)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// viewsOf returns the unique-ip view count of the event. Any failure of the
// stats service reads as zero views.
func (s *catalogService) viewsOf(ctx context.Context, e *domain.Event) int64 {
	if s.cache != nil {
		if v, ok, err := s.cache.Get(ctx, e.ID); err == nil && ok {
			return v
		} else if err != nil {
			s.logger.Debug("view cache get", "event_id", e.ID, "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StatsTimeout)
	defer cancel()

	stats, err := s.stats.GetStats(ctx, domain.StatsQuery{
		Start:  time.Unix(0, 0).UTC(),
		End:    s.now().UTC().Add(5 * time.Minute),
		URIs:   []string{e.URI()},
		Unique: true,
	})
	if err != nil {
		s.metrics.ViewFallback("stats_error")
		s.logger.Warn("view lookup failed", "event_id", e.ID, "error", err)
		return 0
	}
	var views int64
	if len(stats) > 0 {
		views = stats[0].Hits
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, e.ID, views, s.opts.CacheTTL); err != nil {
			s.logger.Debug("view cache set", "event_id", e.ID, "error", err)
		}
	}
	return views
}

// recordHit reports the page view to the stats service. Failures are logged only.
func (s *catalogService) recordHit(ctx context.Context, visit domain.Visit) {
	if visit.URI == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.StatsTimeout)
	defer cancel()

	hit := domain.NewEndpointHit(s.opts.AppName, visit.URI, visit.IP, s.now().UTC())
	if err := s.stats.SaveHit(ctx, hit); err != nil {
		s.metrics.HitRecorded("error")
		s.logger.Warn("record hit failed", "uri", visit.URI, "error", err)
		return
	}
	s.metrics.HitRecorded("ok")
}
