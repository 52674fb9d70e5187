package model

// SuggestionCount is the number of replies every live generation must yield.
const SuggestionCount = 3

// FallbackProvider names the static canned-text source used in degraded mode.
const FallbackProvider = "fallback"

// SuggestionRequest is a user's draft plus the tone they want to reply in.
// RecentMessages is ordered oldest first; only the trailing ones are used.
type SuggestionRequest struct {
	Message        string   `json:"message"`
	Tone           string   `json:"tone"`
	RecentMessages []string `json:"recentMessages"`
}

// SuggestionResult is what the suggestion pipeline hands back to the HTTP layer.
// TokensUsed is approximate: provider-reported when available, estimated otherwise.
type SuggestionResult struct {
	Suggestions []string `json:"suggestions"`
	Provider    string   `json:"provider"`
	TokensUsed  int      `json:"tokensUsed"`
	Cached      bool     `json:"cached"`
	Degraded    bool     `json:"degraded,omitempty"`
}

// CacheStats reports suggestion cache size and effectiveness.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
