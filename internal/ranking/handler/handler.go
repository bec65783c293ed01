// Package handler exposes the ranking service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iendorse/rankd/internal/analytics"
	"github.com/iendorse/rankd/internal/ranking/alignment"
	"github.com/iendorse/rankd/internal/ranking/cache"
	"github.com/iendorse/rankd/internal/ranking/engine"
	"github.com/iendorse/rankd/internal/ranking/service"
	"github.com/iendorse/rankd/pkg/config"
	apperrors "github.com/iendorse/rankd/pkg/errors"
	"github.com/iendorse/rankd/pkg/logger"
	"github.com/iendorse/rankd/pkg/metrics"
)

// Ranker is the service surface the handler depends on.
type Ranker interface {
	TopBrands(ctx context.Context, limit int) ([]engine.RankedItem, error)
	TopBusinesses(ctx context.Context, limit int) ([]engine.RankedItem, error)
	TopLocal(ctx context.Context, origin engine.LatLng, maxMiles float64, limit int) ([]engine.RankedItem, error)
	TopOverview(ctx context.Context, limit int) (*service.Overview, error)
	AlignmentForUser(ctx context.Context, userID, entityID string) (alignment.Result, error)
}

// RankingResponse is the wire shape of a leaderboard.
type RankingResponse struct {
	Kind     string              `json:"kind"`
	Returned int                 `json:"returned"`
	Results  []engine.RankedItem `json:"results"`
}

// Handler serves the ranking API.
type Handler struct {
	ranker    Ranker
	cache     *cache.RankingCache
	collector *analytics.Collector
	m         *metrics.Metrics
	cfg       config.RankingConfig
	logger    *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil, which disables
// the corresponding concern.
func New(ranker Ranker, rankingCache *cache.RankingCache, collector *analytics.Collector, m *metrics.Metrics, cfg config.RankingConfig) *Handler {
	return &Handler{
		ranker:    ranker,
		cache:     rankingCache,
		collector: collector,
		m:         m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "ranking-handler"),
	}
}

// TopBrands serves GET /api/v1/rankings/brands.
func (h *Handler) TopBrands(w http.ResponseWriter, r *http.Request) {
	h.serveRanking(w, r, "brand", func(ctx context.Context, limit int) ([]engine.RankedItem, bool, error) {
		return h.cached(ctx, cache.Key{Kind: engine.KindBrand, Limit: limit}, func() ([]engine.RankedItem, error) {
			return h.ranker.TopBrands(ctx, limit)
		})
	})
}

// TopBusinesses serves GET /api/v1/rankings/businesses.
func (h *Handler) TopBusinesses(w http.ResponseWriter, r *http.Request) {
	h.serveRanking(w, r, "business", func(ctx context.Context, limit int) ([]engine.RankedItem, bool, error) {
		return h.cached(ctx, cache.Key{Kind: engine.KindBusiness, Limit: limit}, func() ([]engine.RankedItem, error) {
			return h.ranker.TopBusinesses(ctx, limit)
		})
	})
}

// TopLocal serves GET /api/v1/rankings/local. Requires lat and lng; radius
// defaults from config.
func (h *Handler) TopLocal(w http.ResponseWriter, r *http.Request) {
	origin, ok := h.parseOrigin(w, r)
	if !ok {
		return
	}
	radius := h.cfg.DefaultRadiusMiles
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "radius must be a positive number")
			return
		}
		if parsed > h.cfg.MaxRadiusMiles {
			parsed = h.cfg.MaxRadiusMiles
		}
		radius = parsed
	}

	h.serveRanking(w, r, "local", func(ctx context.Context, limit int) ([]engine.RankedItem, bool, error) {
		key := cache.Key{
			Kind:     engine.KindBusiness,
			Limit:    limit,
			Local:    true,
			Origin:   origin,
			MaxMiles: radius,
		}
		return h.cached(ctx, key, func() ([]engine.RankedItem, error) {
			return h.ranker.TopLocal(ctx, origin, radius, limit)
		})
	})
}

// TopOverview serves GET /api/v1/rankings/overview with both leaderboards.
func (h *Handler) TopOverview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	overview, err := h.ranker.TopOverview(ctx, limit)
	if err != nil {
		log.Error("overview computation failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "ranking failed")
		return
	}

	log.Info("overview computed",
		"brands", len(overview.Brands),
		"businesses", len(overview.Businesses),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, overview)
}

// Alignment serves GET /api/v1/alignment?user_id=..&entity_id=..
func (h *Handler) Alignment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	userID := r.URL.Query().Get("user_id")
	entityID := r.URL.Query().Get("entity_id")
	if userID == "" || entityID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id and entity_id are required")
		return
	}

	result, err := h.ranker.AlignmentForUser(ctx, userID, entityID)
	if err != nil {
		log.Error("alignment scoring failed",
			"user_id", userID,
			"entity_id", entityID,
			"error", err,
		)
		h.writeError(w, apperrors.HTTPStatusCode(err), "alignment scoring failed")
		return
	}

	latencyMs := time.Since(start).Milliseconds()
	if h.m != nil {
		h.m.AlignmentsTotal.Inc()
	}
	if h.collector != nil {
		h.collector.Track(analytics.AlignmentEvent{
			Type:      analytics.EventAlignment,
			EntityID:  entityID,
			Aligned:   result.IsPositivelyAligned,
			Strength:  result.AlignmentStrength,
			LatencyMs: latencyMs,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, result)
}

// CacheStats serves GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate serves POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// serveRanking runs the common leaderboard flow: parse limit, compute (via
// cache when enabled), track analytics, respond. An empty leaderboard is a
// 200 with an empty results array, never an error.
func (h *Handler) serveRanking(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	compute func(ctx context.Context, limit int) ([]engine.RankedItem, bool, error),
) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	items, cacheHit, err := compute(ctx, limit)
	if err != nil {
		log.Error("ranking computation failed", "kind", kind, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "ranking failed")
		return
	}
	if items == nil {
		items = []engine.RankedItem{}
	}

	latencyMs := time.Since(start).Milliseconds()
	log.Info("ranking computed",
		"kind", kind,
		"limit", limit,
		"returned", len(items),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)

	if h.m != nil {
		h.m.RankingsTotal.WithLabelValues(kind).Inc()
		cacheStatus := "miss"
		if cacheHit {
			h.m.CacheHitsTotal.Inc()
			cacheStatus = "hit"
		} else {
			h.m.CacheMissesTotal.Inc()
		}
		h.m.RankingLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		h.m.RankingResultsCount.Observe(float64(len(items)))
	}
	if h.collector != nil {
		h.collector.Track(analytics.RankingEvent{
			Type:      analytics.EventRanking,
			Kind:      kind,
			Limit:     limit,
			Returned:  len(items),
			CacheHit:  cacheHit,
			LatencyMs: latencyMs,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, RankingResponse{
		Kind:     kind,
		Returned: len(items),
		Results:  items,
	})
}

func (h *Handler) cached(
	ctx context.Context,
	key cache.Key,
	compute func() ([]engine.RankedItem, error),
) ([]engine.RankedItem, bool, error) {
	if h.cache == nil {
		items, err := compute()
		return items, false, err
	}
	return h.cache.GetOrCompute(ctx, key, compute)
}

func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := h.cfg.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, false
		}
		if parsed > h.cfg.MaxLimit {
			parsed = h.cfg.MaxLimit
		}
		limit = parsed
	}
	return limit, true
}

func (h *Handler) parseOrigin(w http.ResponseWriter, r *http.Request) (engine.LatLng, bool) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" || lngStr == "" {
		h.writeError(w, http.StatusBadRequest, "lat and lng are required")
		return engine.LatLng{}, false
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		h.writeError(w, http.StatusBadRequest, "lat must be a number in [-90, 90]")
		return engine.LatLng{}, false
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		h.writeError(w, http.StatusBadRequest, "lng must be a number in [-180, 180]")
		return engine.LatLng{}, false
	}
	return engine.LatLng{Latitude: lat, Longitude: lng}, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
