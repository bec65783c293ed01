package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func encode(t *testing.T, event any) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	return data
}

func TestHandleEventAggregatesRankings(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	ctx := context.Background()

	events := []RankingEvent{
		{Type: EventRanking, Kind: "brand", Returned: 10, CacheHit: false, LatencyMs: 12},
		{Type: EventRanking, Kind: "brand", Returned: 10, CacheHit: true, LatencyMs: 2},
		{Type: EventRanking, Kind: "business", Returned: 0, CacheHit: false, LatencyMs: 30},
	}
	for _, event := range events {
		event.Timestamp = time.Now().UTC()
		if err := handle(ctx, nil, encode(t, event)); err != nil {
			t.Fatalf("handling event: %v", err)
		}
	}

	stats := agg.Stats()
	if stats.TotalRankings != 3 {
		t.Errorf("TotalRankings = %d, want 3", stats.TotalRankings)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if stats.RankingsByKind["brand"] != 2 || stats.RankingsByKind["business"] != 1 {
		t.Errorf("RankingsByKind = %v, want brand:2 business:1", stats.RankingsByKind)
	}
	if stats.P50LatencyMs != 12 {
		t.Errorf("P50LatencyMs = %d, want 12", stats.P50LatencyMs)
	}
	if stats.RankingsPerMinute <= 0 {
		t.Errorf("RankingsPerMinute = %v, want positive", stats.RankingsPerMinute)
	}
}

func TestHandleEventAggregatesAlignments(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	ctx := context.Background()

	aligned := AlignmentEvent{Type: EventAlignment, EntityID: "b1", Aligned: true, Strength: 90, LatencyMs: 5}
	opposed := AlignmentEvent{Type: EventAlignment, EntityID: "b2", Aligned: false, Strength: 20, LatencyMs: 7}
	for _, event := range []AlignmentEvent{aligned, opposed} {
		if err := handle(ctx, nil, encode(t, event)); err != nil {
			t.Fatalf("handling event: %v", err)
		}
	}

	stats := agg.Stats()
	if stats.TotalAlignments != 2 {
		t.Errorf("TotalAlignments = %d, want 2", stats.TotalAlignments)
	}
	if stats.AlignedCount != 1 {
		t.Errorf("AlignedCount = %d, want 1", stats.AlignedCount)
	}
	if stats.TotalRankings != 0 {
		t.Errorf("TotalRankings = %d, want 0", stats.TotalRankings)
	}
}

func TestHandleEventSkipsMalformedPayloads(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	ctx := context.Background()

	// Malformed payloads must not trigger redelivery.
	for _, payload := range [][]byte{
		[]byte("not json"),
		[]byte(`{"type":"something_else"}`),
		{},
	} {
		if err := handle(ctx, nil, payload); err != nil {
			t.Errorf("payload %q: err = %v, want nil", payload, err)
		}
	}

	stats := agg.Stats()
	if stats.TotalRankings != 0 || stats.TotalAlignments != 0 {
		t.Errorf("stats = %+v, want nothing recorded", stats)
	}
}

func TestStatsEmpty(t *testing.T) {
	stats := NewAggregator().Stats()
	if stats.TotalRankings != 0 || stats.AvgLatencyMs != 0 || stats.P99LatencyMs != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
}
