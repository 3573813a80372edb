package model

type LeaderboardEntry struct {
	Position    int    `json:"position"`
	UserID      string `json:"-"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Rank        string `json:"rank"`
}
