package service

import (
	"context"
	"sort"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

// LeaderboardView ranks a guild's users by balance. Nothing is cached.
type LeaderboardView struct {
	store *GuildStore
}

// Rank returns users ordered by descending balance. Ties keep storage order; ranks start at 1.
func (l *LeaderboardView) Rank(ctx context.Context, guildID string) ([]model.LeaderboardEntry, error) {
	g, err := l.store.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(g.Users) == 0 {
		return nil, apierror.Empty(apierror.ReasonEmptyLeaderboard, "Leaderboard is empty")
	}

	entries := make([]model.LeaderboardEntry, 0, len(g.Users))
	for _, u := range g.Users {
		entries = append(entries, model.LeaderboardEntry{UserID: u.ID, Balance: u.Balance, Bank: u.Bank})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Balance > entries[j].Balance
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
