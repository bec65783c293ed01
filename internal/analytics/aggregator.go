package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iendorse/rankd/pkg/kafka"
)

// AggregatedStats is the rolled-up view of ranking traffic since startup.
type AggregatedStats struct {
	TotalRankings     int64            `json:"total_rankings"`
	TotalAlignments   int64            `json:"total_alignments"`
	CacheHits         int64            `json:"cache_hits"`
	CacheMisses       int64            `json:"cache_misses"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      int64            `json:"p50_latency_ms"`
	P95LatencyMs      int64            `json:"p95_latency_ms"`
	P99LatencyMs      int64            `json:"p99_latency_ms"`
	RankingsByKind    map[string]int64 `json:"rankings_by_kind"`
	AlignedCount      int64            `json:"aligned_count"`
	RankingsPerMinute float64          `json:"rankings_per_minute"`
}

// Aggregator consumes ranking and alignment events from Kafka and maintains
// in-memory aggregate stats.
type Aggregator struct {
	mu              sync.RWMutex
	totalRankings   atomic.Int64
	totalAlignments atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	zeroResults     atomic.Int64
	alignedCount    atomic.Int64
	latencies       []int64
	rankingsByKind  map[string]int64
	startTime       time.Time
	logger          *slog.Logger
}

// NewAggregator creates an empty Aggregator. Feed it by wiring HandleEvent
// into a Kafka consumer.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:      make([]int64, 0, 10000),
		rankingsByKind: make(map[string]int64),
		startTime:      time.Now(),
		logger:         slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka MessageHandler that records events into agg.
// Undecodable events are logged and skipped, never redelivered.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[RankingEvent](value)
		if err == nil && event.Type == EventRanking {
			agg.recordRankingEvent(event)
			return nil
		}
		alignEvent, alignErr := kafka.DecodeJSON[AlignmentEvent](value)
		if alignErr == nil && alignEvent.Type == EventAlignment {
			agg.recordAlignmentEvent(alignEvent)
			return nil
		}
		agg.logger.Error("unrecognized analytics event",
			"error", err,
			"value_size", len(value),
		)
		return nil
	}
}

func (a *Aggregator) recordRankingEvent(event RankingEvent) {
	a.totalRankings.Add(1)

	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}
	if event.Returned == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.rankingsByKind[event.Kind]++
	a.mu.Unlock()
}

func (a *Aggregator) recordAlignmentEvent(event AlignmentEvent) {
	a.totalAlignments.Add(1)
	if event.Aligned {
		a.alignedCount.Add(1)
	}
	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.mu.Unlock()
}

// Stats returns a snapshot of the aggregate counters.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalRankings:   a.totalRankings.Load(),
		TotalAlignments: a.totalAlignments.Load(),
		CacheHits:       a.cacheHits.Load(),
		CacheMisses:     a.cacheMisses.Load(),
		ZeroResultCount: a.zeroResults.Load(),
		AlignedCount:    a.alignedCount.Load(),
		RankingsByKind:  make(map[string]int64, len(a.rankingsByKind)),
	}
	for kind, count := range a.rankingsByKind {
		stats.RankingsByKind[kind] = count
	}

	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}

	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.RankingsPerMinute = float64(stats.TotalRankings) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
