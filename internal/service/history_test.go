package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

func TestHistory_AppendAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.eco.History.List(ctx, guild, "u1")
	require.ErrorIs(t, err, apierror.ErrEmptyHistory)

	e, err := env.eco.History.Append(ctx, guild, "u1", model.ActionWork, 200)
	require.NoError(t, err)
	assert.Equal(t, model.HistoryEntry{ID: 1, Type: model.ActionWork, Amount: 200, Date: env.clock.Now()}, e)

	list, err := env.eco.History.List(ctx, guild, "u1")
	require.NoError(t, err)
	assert.Equal(t, []model.HistoryEntry{e}, list)
}

func TestHistory_IDsStayMonotonicAcrossRemovals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.eco.History.Append(ctx, guild, "u1", model.ActionAdd, int64(i))
		require.NoError(t, err)
	}

	remaining, err := env.eco.History.Remove(ctx, guild, "u1", 3)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	next, err := env.eco.History.Append(ctx, guild, "u1", model.ActionAdd, 9)
	require.NoError(t, err)
	assert.Equal(t, 4, next.ID, "a removed id is never reused")

	remaining, err = env.eco.History.Remove(ctx, guild, "u1", 1)
	require.NoError(t, err)
	ids := make([]int, 0, len(remaining))
	for _, e := range remaining {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{2, 4}, ids, "remaining entries are not renumbered")
}

func TestHistory_RemoveErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.eco.History.Remove(ctx, guild, "u1", 1)
	assert.ErrorIs(t, err, apierror.ErrEmptyHistory)

	_, err = env.eco.History.Append(ctx, guild, "u1", model.ActionAdd, 1)
	require.NoError(t, err)

	_, err = env.eco.History.Remove(ctx, guild, "u1", 42)
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.ReasonHistoryNotFound, apiErr.Reason)
}
