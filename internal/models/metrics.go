package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot for the stats endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DraftsSaved              uint64    `json:"drafts_saved"`
	ReportsSubmitted         uint64    `json:"reports_submitted"`
	CalendarFetches          uint64    `json:"calendar_fetches"`
	StaleFetchDiscards       uint64    `json:"stale_fetch_discards"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
