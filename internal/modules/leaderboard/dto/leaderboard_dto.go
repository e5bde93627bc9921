package dto

// LeaderboardEntry is a single user row on the family leaderboard.
// Position is 1-based.
type LeaderboardEntry struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Position  int     `json:"position"`
	Points    int     `json:"points"`
	Streak    int     `json:"streak"`
	RankName  string  `json:"rank_name"`
	NextRank  string  `json:"next_rank"`
	Progress  float64 `json:"progress"`
}
