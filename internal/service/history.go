package service

import (
	"context"
	"time"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

// HistoryLog records and trims per-user transaction history.
type HistoryLog struct {
	store *GuildStore
	locks *userLocks
	now   Clock
}

// Append records an entry for the user and returns it.
func (h *HistoryLog) Append(ctx context.Context, guildID, userID string, action model.ActionType, amount int64) (model.HistoryEntry, error) {
	unlock := h.locks.Lock(guildID, userID)
	defer unlock()

	var entry model.HistoryEntry
	err := h.store.UpdateUser(ctx, guildID, userID, func(_ *model.GuildRecord, u *model.UserRecord) error {
		entry = appendHistory(u, action, amount, h.now())
		return nil
	})
	return entry, err
}

// List returns the user's history, oldest first.
func (h *HistoryLog) List(ctx context.Context, guildID, userID string) ([]model.HistoryEntry, error) {
	u, err := h.store.EnsureUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if len(u.History) == 0 {
		return nil, apierror.Empty(apierror.ReasonEmptyHistory, "User's history is empty")
	}
	return u.History, nil
}

// Remove deletes one entry by id and returns what is left. Remaining ids are not renumbered.
func (h *HistoryLog) Remove(ctx context.Context, guildID, userID string, id int) ([]model.HistoryEntry, error) {
	unlock := h.locks.Lock(guildID, userID)
	defer unlock()

	var remaining []model.HistoryEntry
	err := h.store.UpdateUser(ctx, guildID, userID, func(_ *model.GuildRecord, u *model.UserRecord) error {
		if len(u.History) == 0 {
			return apierror.Empty(apierror.ReasonEmptyHistory, "User's history is empty")
		}
		idx := -1
		for i, e := range u.History {
			if e.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apierror.NotFound(apierror.ReasonHistoryNotFound, "History entry not found")
		}
		// Pin the sequence before the entry goes away so its id is never handed out again.
		u.HistorySeq = max(u.HistorySeq, id)
		u.History = append(u.History[:idx], u.History[idx+1:]...)
		remaining = u.History
		return nil
	})
	if err != nil {
		return nil, err
	}
	return remaining, nil
}

func appendHistory(u *model.UserRecord, action model.ActionType, amount int64, at time.Time) model.HistoryEntry {
	entry := model.HistoryEntry{
		ID:     u.NextHistoryID(),
		Type:   action,
		Amount: amount,
		Date:   at,
	}
	u.History = append(u.History, entry)
	return entry
}
