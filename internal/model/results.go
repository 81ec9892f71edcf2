package model

import "time"

// Change is a before/after pair for one field.
type Change struct {
	Before int64 `json:"before"`
	After  int64 `json:"after"`
}

// BalanceResult is returned by single-field ledger mutations.
type BalanceResult struct {
	Amount  int64  `json:"amount"`
	Balance Change `json:"balance"`
}

// TransferResult is returned by deposit and withdraw.
type TransferResult struct {
	Amount  int64  `json:"amount"`
	Balance Change `json:"balance"`
	Bank    Change `json:"bank"`
}

// CooldownCheck is the outcome of a cooldown gate check.
type CooldownCheck struct {
	Eligible  bool       `json:"eligible"`
	CollectAt *time.Time `json:"collectAt,omitempty"`
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	UserID  string `json:"userID"`
	Balance int64  `json:"balance"`
	Bank    int64  `json:"bank"`
	Rank    int    `json:"rank"`
}

// UserSummary is the read view of a user's holdings.
type UserSummary struct {
	UserID    string `json:"userID"`
	Balance   int64  `json:"balance"`
	Bank      int64  `json:"bank"`
	Inventory int    `json:"inventory"`
}
