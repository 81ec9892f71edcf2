package model

import "time"

// ActionType names the economic reason behind a history entry.
type ActionType string

const (
	ActionDaily        ActionType = "daily"
	ActionWeekly       ActionType = "weekly"
	ActionWork         ActionType = "work"
	ActionBuy          ActionType = "buy"
	ActionSell         ActionType = "sell"
	ActionAdd          ActionType = "add"
	ActionSubtract     ActionType = "subtract"
	ActionSet          ActionType = "set"
	ActionBankAdd      ActionType = "bank-add"
	ActionBankSet      ActionType = "bank-set"
	ActionBankSubtract ActionType = "bank-subtract"
)

// HistoryEntry is an immutable transaction record.
type HistoryEntry struct {
	ID     int        `json:"id"`
	Type   ActionType `json:"type"`
	Amount int64      `json:"amount"`
	Date   time.Time  `json:"date"`
}
