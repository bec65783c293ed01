// Package analytics tracks ranking and alignment request traffic through
// Kafka: a collector publishes per-request events, an aggregator consumes
// them into in-memory stats, and a store snapshots the stats to PostgreSQL.
package analytics

import "time"

// EventType labels a tracked event.
type EventType string

const (
	EventRanking   EventType = "ranking"
	EventAlignment EventType = "alignment"
)

// RankingEvent records one leaderboard computation.
type RankingEvent struct {
	Type      EventType `json:"type"`
	Kind      string    `json:"kind"` // brand, business, local
	Limit     int       `json:"limit"`
	Returned  int       `json:"returned"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// AlignmentEvent records one alignment scoring request.
type AlignmentEvent struct {
	Type      EventType `json:"type"`
	EntityID  string    `json:"entity_id"`
	Aligned   bool      `json:"aligned"`
	Strength  int       `json:"strength"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}
