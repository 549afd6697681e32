package models

type LeaderboardEntry struct {
	AccountID string `json:"accountId"`
	Balance   string `json:"balance"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

type PaymentPathResponse struct {
	Distance string   `json:"distance"`
	Path     []string `json:"path"`
}
