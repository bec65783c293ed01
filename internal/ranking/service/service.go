// Package service orchestrates leaderboard and alignment requests: it loads
// the list and catalog snapshots from their stores, runs the pure engine
// over them, and applies the optional distance stage. Store failures
// surface as errors so an unreachable backend never produces a fabricated
// ranking.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iendorse/rankd/internal/lists"
	"github.com/iendorse/rankd/internal/ranking/alignment"
	"github.com/iendorse/rankd/internal/ranking/engine"
	"github.com/iendorse/rankd/pkg/config"
	apperrors "github.com/iendorse/rankd/pkg/errors"
	"github.com/iendorse/rankd/pkg/logger"
	"github.com/iendorse/rankd/pkg/metrics"
	"github.com/iendorse/rankd/pkg/resilience"
	"github.com/iendorse/rankd/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

// CatalogReader is the slice of the catalog store the service needs.
type CatalogReader interface {
	Snapshot(ctx context.Context, kind engine.EntryKind) (map[string]engine.Entity, error)
	Locations(ctx context.Context, kind engine.EntryKind) (map[string]engine.LatLng, error)
	ValueAlignments(ctx context.Context, entityID string) ([]alignment.ValueAlignment, error)
}

// ListReader is the slice of the list store the service needs.
type ListReader interface {
	EndorsedLists(ctx context.Context) ([]engine.EndorsementList, error)
	UserPrefs(ctx context.Context, userID string) (lists.Prefs, error)
}

// Overview bundles the brand and business leaderboards for the combined
// endpoint.
type Overview struct {
	Brands     []engine.RankedItem `json:"brands"`
	Businesses []engine.RankedItem `json:"businesses"`
}

// Service computes leaderboards and alignment scores on demand.
type Service struct {
	catalog CatalogReader
	lists   ListReader
	cfg     config.RankingConfig
	breaker *resilience.CircuitBreaker
	m       *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Service. The circuit breaker guards the snapshot loads so a
// dead database fails fast instead of timing out every request. m may be
// nil.
func New(catalog CatalogReader, listStore ListReader, cfg config.RankingConfig, m *metrics.Metrics) *Service {
	return &Service{
		catalog: catalog,
		lists:   listStore,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("snapshot-load", resilience.CircuitBreakerConfig{}),
		m:       m,
		logger:  slog.Default().With("component", "ranking-service"),
	}
}

// TopBrands computes the global brand leaderboard.
func (s *Service) TopBrands(ctx context.Context, limit int) ([]engine.RankedItem, error) {
	return s.top(ctx, engine.KindBrand, limit)
}

// TopBusinesses computes the global business leaderboard.
func (s *Service) TopBusinesses(ctx context.Context, limit int) ([]engine.RankedItem, error) {
	return s.top(ctx, engine.KindBusiness, limit)
}

// TopLocal computes the business leaderboard restricted to maxMiles of
// origin. Ranking happens before the distance stage so that the filter only
// removes rows and never reorders them; the limit applies to survivors.
func (s *Service) TopLocal(ctx context.Context, origin engine.LatLng, maxMiles float64, limit int) ([]engine.RankedItem, error) {
	ctx, span := tracing.StartSpan(ctx, "rank-local", logger.RequestID(ctx))
	defer s.endSpan(span)

	userLists, catalog, err := s.loadInputs(ctx, engine.KindBusiness)
	if err != nil {
		return nil, err
	}
	locations, err := s.catalog.Locations(ctx, engine.KindBusiness)
	if err != nil {
		return nil, fmt.Errorf("loading business locations: %w", err)
	}

	totals := engine.AggregateLists(userLists, catalog, engine.KindBusiness)
	ranked := engine.Rank(totals, 0)
	local := engine.FilterByDistance(ranked, locations, origin, maxMiles)
	if limit > 0 && len(local) > limit {
		local = local[:limit]
	}

	span.SetAttr("candidates", len(ranked))
	span.SetAttr("local", len(local))
	return local, nil
}

// TopOverview computes the brand and business leaderboards concurrently.
// Safe because the engine is pure and each computation gets its own
// snapshot.
func (s *Service) TopOverview(ctx context.Context, limit int) (*Overview, error) {
	var overview Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		brands, err := s.TopBrands(ctx, limit)
		if err != nil {
			return err
		}
		overview.Brands = brands
		return nil
	})
	g.Go(func() error {
		businesses, err := s.TopBusinesses(ctx, limit)
		if err != nil {
			return err
		}
		overview.Businesses = businesses
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}

// AlignmentForUser scores one catalog item against one user's declared
// value preferences.
func (s *Service) AlignmentForUser(ctx context.Context, userID, entityID string) (alignment.Result, error) {
	var result alignment.Result

	prefs, err := s.lists.UserPrefs(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("loading prefs for user %s: %w", userID, err)
	}
	alignments, err := s.catalog.ValueAlignments(ctx, entityID)
	if err != nil {
		return result, fmt.Errorf("loading alignments for entity %s: %w", entityID, err)
	}

	result = alignment.Score(alignments, prefs.Supported, prefs.Avoided, prefs.Total())
	s.logger.Debug("alignment scored",
		"user_id", userID,
		"entity_id", entityID,
		"strength", result.AlignmentStrength,
		"aligned", result.IsPositivelyAligned,
	)
	return result, nil
}

func (s *Service) top(ctx context.Context, kind engine.EntryKind, limit int) ([]engine.RankedItem, error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("rank-%s", kind), logger.RequestID(ctx))
	defer s.endSpan(span)

	userLists, catalog, err := s.loadInputs(ctx, kind)
	if err != nil {
		return nil, err
	}

	totals := engine.AggregateLists(userLists, catalog, kind)
	ranked := engine.Rank(totals, limit)

	span.SetAttr("lists", len(userLists))
	span.SetAttr("entities", len(totals))
	span.SetAttr("returned", len(ranked))
	return ranked, nil
}

// loadInputs fetches the endorsed lists and the catalog snapshot
// concurrently. Loads go through the shared circuit breaker with a bounded
// retry, under the configured snapshot timeout.
func (s *Service) loadInputs(ctx context.Context, kind engine.EntryKind) ([]engine.EndorsementList, map[string]engine.Entity, error) {
	var (
		userLists []engine.EndorsementList
		catalog   map[string]engine.Entity
	)
	err := resilience.WithTimeout(ctx, s.cfg.SnapshotTimeout, "snapshot-load", func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.guardedLoad(ctx, "endorsed-lists", func() error {
				var err error
				userLists, err = s.lists.EndorsedLists(ctx)
				return err
			})
		})
		g.Go(func() error {
			return s.guardedLoad(ctx, string(kind)+"-catalog", func() error {
				var err error
				catalog, err = s.catalog.Snapshot(ctx, kind)
				return err
			})
		})
		return g.Wait()
	})
	if s.m != nil {
		s.m.CircuitBreakerState.WithLabelValues("snapshot-load").Set(float64(s.breaker.GetState()))
	}
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrUnavailable, err)
		}
		return nil, nil, err
	}
	return userLists, catalog, nil
}

func (s *Service) guardedLoad(ctx context.Context, name string, load func() error) error {
	return s.breaker.Execute(func() error {
		return resilience.Retry(ctx, name, resilience.RetryConfig{MaxAttempts: 2}, load)
	})
}

func (s *Service) endSpan(span *tracing.Span) {
	span.End()
	span.Log()
}
