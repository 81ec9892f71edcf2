package model

import (
	"fmt"
	"time"
)

// Field selects which of a user's two stores of value an operation targets.
type Field int

const (
	Balance Field = iota
	Bank
)

func (f Field) String() string {
	switch f {
	case Balance:
		return "balance"
	case Bank:
		return "bank"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// ParseField maps "balance" or "bank" to a Field.
func ParseField(s string) (Field, error) {
	switch s {
	case "balance":
		return Balance, nil
	case "bank":
		return Bank, nil
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// RewardType is a timed reward kind.
type RewardType string

const (
	RewardDaily  RewardType = "daily"
	RewardWeekly RewardType = "weekly"
	RewardWork   RewardType = "work"
)

// RewardTypes lists every reward kind in display order.
var RewardTypes = []RewardType{RewardDaily, RewardWeekly, RewardWork}

// Window returns how long a collected reward stays on cooldown.
func (t RewardType) Window() time.Duration {
	switch t {
	case RewardDaily:
		return 24 * time.Hour
	case RewardWeekly:
		return 7 * 24 * time.Hour
	case RewardWork:
		return time.Hour
	}
	return 0
}

// Valid reports whether t is a known reward kind.
func (t RewardType) Valid() bool {
	return t.Window() > 0
}

// CooldownState tracks the last collection of one reward kind.
type CooldownState struct {
	Amount      *int64     `json:"amount"`
	CollectedAt *time.Time `json:"collectedAt"`
	CollectAt   *time.Time `json:"collectAt"`
}

// UserRecord is one member's economic state inside a guild.
type UserRecord struct {
	ID        string                        `json:"id"`
	Balance   int64                         `json:"balance"`
	Bank      int64                         `json:"bank"`
	Rewards   map[RewardType]*CooldownState `json:"rewards"`
	Inventory []InventoryEntry              `json:"inventory"`
	History   []HistoryEntry                `json:"history"`
	// HistorySeq is the last history id handed out.
	HistorySeq int `json:"historySeq"`
}

// NewUserRecord returns a zero-balance user with empty cooldowns.
func NewUserRecord(id string) *UserRecord {
	u := &UserRecord{
		ID:        id,
		Rewards:   make(map[RewardType]*CooldownState, len(RewardTypes)),
		Inventory: []InventoryEntry{},
		History:   []HistoryEntry{},
	}
	for _, t := range RewardTypes {
		u.Rewards[t] = &CooldownState{}
	}
	return u
}

// Value returns the amount held in field f.
func (u *UserRecord) Value(f Field) int64 {
	if f == Bank {
		return u.Bank
	}
	return u.Balance
}

// SetValue overwrites the amount held in field f.
func (u *UserRecord) SetValue(f Field, v int64) {
	if f == Bank {
		u.Bank = v
		return
	}
	u.Balance = v
}

// Cooldown returns the state for reward t, creating it if missing.
func (u *UserRecord) Cooldown(t RewardType) *CooldownState {
	if u.Rewards == nil {
		u.Rewards = make(map[RewardType]*CooldownState, len(RewardTypes))
	}
	cd, ok := u.Rewards[t]
	if !ok || cd == nil {
		cd = &CooldownState{}
		u.Rewards[t] = cd
	}
	return cd
}

// NextHistoryID reserves the next history id. Ids are never reused, even after
// the newest entry is removed.
func (u *UserRecord) NextHistoryID() int {
	u.HistorySeq = max(u.HistorySeq, maxHistoryID(u.History)) + 1
	return u.HistorySeq
}

// Normalize fills collections and cooldown states missing from older documents.
func (u *UserRecord) Normalize() bool {
	changed := false
	if u.Inventory == nil {
		u.Inventory = []InventoryEntry{}
		changed = true
	}
	if u.History == nil {
		u.History = []HistoryEntry{}
		changed = true
	}
	for _, t := range RewardTypes {
		if cd, ok := u.Rewards[t]; !ok || cd == nil {
			u.Cooldown(t)
			changed = true
		}
	}
	if seq := maxHistoryID(u.History); seq > u.HistorySeq {
		u.HistorySeq = seq
		changed = true
	}
	return changed
}

func maxHistoryID(entries []HistoryEntry) int {
	id := 0
	for _, e := range entries {
		id = max(id, e.ID)
	}
	return id
}
