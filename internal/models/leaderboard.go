package models

const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendSame = "same"
)

// LeaderboardEntry is derived, never stored: recomputed on each read by
// sorting role=user accounts by experience descending.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Exp    int    `json:"exp"`
	Avatar string `json:"avatar"`
	Trend  string `json:"trend"`
	ID     string `json:"id"`
}
