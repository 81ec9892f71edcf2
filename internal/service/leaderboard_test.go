package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

func TestLeaderboard_Empty(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.eco.Leaderboard.Rank(context.Background(), guild)
	assert.ErrorIs(t, err, apierror.ErrEmpty)
}

func TestLeaderboard_StableOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	balances := []struct {
		user   string
		amount int64
	}{{"U1", 50}, {"U2", 200}, {"U3", 200}, {"U4", 10}}
	for _, b := range balances {
		_, err := env.eco.Ledger.Set(ctx, guild, b.user, model.Balance, b.amount)
		require.NoError(t, err)
	}

	ranked, err := env.eco.Leaderboard.Rank(ctx, guild)
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	want := []struct {
		user string
		rank int
	}{{"U2", 1}, {"U3", 2}, {"U1", 3}, {"U4", 4}}
	for i, w := range want {
		assert.Equal(t, w.user, ranked[i].UserID)
		assert.Equal(t, w.rank, ranked[i].Rank)
	}

	again, err := env.eco.Leaderboard.Rank(ctx, guild)
	require.NoError(t, err)
	assert.Equal(t, ranked, again)
}
