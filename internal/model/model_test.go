package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	f, err := ParseField("bank")
	require.NoError(t, err)
	assert.Equal(t, Bank, f)
	assert.Equal(t, "balance", Balance.String())

	_, err = ParseField("wallet")
	assert.Error(t, err)
}

func TestRewardWindows(t *testing.T) {
	assert.Equal(t, 24*time.Hour, RewardDaily.Window())
	assert.Equal(t, 7*24*time.Hour, RewardWeekly.Window())
	assert.Equal(t, time.Hour, RewardWork.Window())
	assert.False(t, RewardType("monthly").Valid())
}

func TestUserRecord_ValueAccessors(t *testing.T) {
	u := NewUserRecord("u1")
	u.SetValue(Balance, 10)
	u.SetValue(Bank, 20)
	assert.Equal(t, int64(10), u.Value(Balance))
	assert.Equal(t, int64(20), u.Value(Bank))
}

func TestUserRecord_NextHistoryID(t *testing.T) {
	u := NewUserRecord("u1")
	assert.Equal(t, 1, u.NextHistoryID())
	assert.Equal(t, 2, u.NextHistoryID())

	legacy := &UserRecord{ID: "u2", History: []HistoryEntry{{ID: 7}, {ID: 3}}}
	assert.Equal(t, 8, legacy.NextHistoryID(), "documents without a sequence continue after the largest id")
}

func TestGuildRecord_EnsureUser(t *testing.T) {
	g := NewGuildRecord()

	u, created := g.EnsureUser("u1")
	require.True(t, created)
	assert.Len(t, u.Rewards, len(RewardTypes))

	again, created := g.EnsureUser("u1")
	assert.False(t, created)
	assert.Same(t, u, again)
	assert.Len(t, g.Users, 1)
}

func TestGuildRecord_Normalize(t *testing.T) {
	var g GuildRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"users": [
			{"id": "u1", "balance": 5, "history": [{"id": 2, "type": "add", "amount": 5}]},
			null,
			{"id": "u1", "balance": 99}
		]
	}`), &g))

	assert.True(t, g.Normalize())
	require.Len(t, g.Users, 1)
	u := g.Users[0]
	assert.Equal(t, int64(5), u.Balance)
	assert.NotNil(t, g.Shop)
	assert.NotNil(t, u.Inventory)
	assert.Equal(t, 2, u.HistorySeq)
	for _, rt := range RewardTypes {
		assert.NotNil(t, u.Rewards[rt])
	}

	assert.False(t, g.Normalize(), "normalizing twice is a no-op")
}

func TestShopItem_Snapshot(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	item := ShopItem{ID: 3, Name: "Crown", Cost: 500, Role: "royalty"}
	assert.Equal(t, InventoryEntry{ItemID: 3, Name: "Crown", Cost: 500, Role: "royalty", Date: at}, item.Snapshot(at))
}
