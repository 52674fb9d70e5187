package model

import "time"

// UsageEvent is one served suggestion request, reported for analytics.
type UsageEvent struct {
	UserID         string
	Tone           string
	Provider       string
	TokensUsed     int
	ResponseTimeMs int64
	Cached         bool
	At             time.Time
}

// Day returns the UTC calendar day the event is aggregated under.
func (e UsageEvent) Day() string {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	return at.UTC().Format("2006-01-02")
}

// DailyUsage is the per-user, per-day aggregate persisted by the usage store.
type DailyUsage struct {
	Day                 string         `json:"day"`
	TotalRequests       int            `json:"totalRequests"`
	TotalTokensUsed     int            `json:"totalTokensUsed"`
	ToneBreakdown       map[string]int `json:"toneBreakdown"`
	TotalResponseTimeMs int64          `json:"totalResponseTime"`
}

// UsageStats sums daily aggregates over a window.
type UsageStats struct {
	TotalRequests         int            `json:"totalRequests"`
	TotalTokensUsed       int            `json:"totalTokensUsed"`
	ToneBreakdown         map[string]int `json:"toneBreakdown"`
	TotalResponseTimeMs   int64          `json:"totalResponseTime"`
	AverageResponseTimeMs float64        `json:"averageResponseTime"`
}

// SumUsage folds daily rows into UsageStats.
func SumUsage(days []DailyUsage) UsageStats {
	st := UsageStats{ToneBreakdown: map[string]int{}}
	for _, d := range days {
		st.TotalRequests += d.TotalRequests
		st.TotalTokensUsed += d.TotalTokensUsed
		st.TotalResponseTimeMs += d.TotalResponseTimeMs
		for tone, n := range d.ToneBreakdown {
			st.ToneBreakdown[tone] += n
		}
	}
	if st.TotalRequests > 0 {
		st.AverageResponseTimeMs = float64(st.TotalResponseTimeMs) / float64(st.TotalRequests)
	}
	return st
}
