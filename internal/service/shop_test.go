package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

func seedShop(t *testing.T, env *testEnv, items ...model.ShopItem) {
	t.Helper()
	for _, it := range items {
		_, err := env.eco.Shop.CreateItem(context.Background(), guild, it)
		require.NoError(t, err)
	}
}

func TestShop_CreateItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.eco.Shop.CreateItem(ctx, guild, model.ShopItem{Name: "Sword", Cost: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)

	b, err := env.eco.Shop.CreateItem(ctx, guild, model.ShopItem{Name: "Shield", Cost: 30})
	require.NoError(t, err)
	assert.Equal(t, 2, b.ID)

	again, err := env.eco.Shop.CreateItem(ctx, guild, model.ShopItem{ID: 1, Name: "Other", Cost: 1})
	require.NoError(t, err)
	assert.Equal(t, "Sword", again.Name, "existing id is returned unchanged")

	items, err := env.eco.Shop.ListItems(ctx, guild)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = env.eco.Shop.CreateItem(ctx, guild, model.ShopItem{Name: " ", Cost: 1})
	assert.ErrorIs(t, err, apierror.ErrValidation)
	_, err = env.eco.Shop.CreateItem(ctx, guild, model.ShopItem{Name: "Bad", Cost: -1})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestShop_ListEmpty(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.eco.Shop.ListItems(context.Background(), guild)
	assert.ErrorIs(t, err, apierror.ErrShopEmpty)
}

func TestShop_UpdateItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedShop(t, env, model.ShopItem{Name: "Sword", Cost: 50})

	cost := int64(75)
	role := "knight"
	item, err := env.eco.Shop.UpdateItem(ctx, guild, 1, model.ShopItemPatch{Cost: &cost, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.ShopItem{ID: 1, Name: "Sword", Cost: 75, Role: "knight"}, *item)

	_, err = env.eco.Shop.UpdateItem(ctx, guild, 9, model.ShopItemPatch{Cost: &cost})
	assert.ErrorIs(t, err, apierror.ErrItemNotFound)

	negative := int64(-1)
	_, err = env.eco.Shop.UpdateItem(ctx, guild, 1, model.ShopItemPatch{Cost: &negative})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestShop_DeleteRenumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedShop(t, env,
		model.ShopItem{Name: "A", Cost: 1},
		model.ShopItem{Name: "B", Cost: 2},
		model.ShopItem{Name: "C", Cost: 3},
	)
	_, err := env.eco.Ledger.Add(ctx, guild, "u1", model.Balance, 10)
	require.NoError(t, err)
	_, err = env.eco.Shop.Buy(ctx, guild, "u1", 3)
	require.NoError(t, err)

	require.NoError(t, env.eco.Shop.DeleteItem(ctx, guild, 2))

	items, err := env.eco.Shop.ListItems(ctx, guild)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, "C", items[1].Name)
	assert.Equal(t, 2, items[1].ID)

	inv, err := env.eco.Shop.Inventory(ctx, guild, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, inv[0].ItemID, "snapshots keep their purchase-time id")

	assert.ErrorIs(t, env.eco.Shop.DeleteItem(ctx, guild, 7), apierror.ErrItemNotFound)
}

func TestShop_BuySellRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedShop(t, env, model.ShopItem{Name: "Sword", Cost: 50})
	_, err := env.eco.Ledger.Add(ctx, guild, "u1", model.Balance, 100)
	require.NoError(t, err)

	bought, err := env.eco.Shop.Buy(ctx, guild, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, model.Change{Before: 100, After: 50}, bought.Balance)
	assert.Equal(t, "Sword", bought.Item.Name)
	assert.Equal(t, env.clock.Now(), bought.Item.Date)

	sold, err := env.eco.Shop.Sell(ctx, guild, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, model.Change{Before: 50, After: 100}, sold.Balance)

	_, err = env.eco.Shop.Inventory(ctx, guild, "u1")
	assert.ErrorIs(t, err, apierror.ErrEmptyInventory)

	history, err := env.eco.History.List(ctx, guild, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ActionBuy, history[0].Type)
	assert.Equal(t, model.ActionSell, history[1].Type)
	assert.Equal(t, int64(50), history[1].Amount)
}

func TestShop_BuyInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedShop(t, env, model.ShopItem{Name: "Crown", Cost: 500})
	_, err := env.eco.Ledger.Add(ctx, guild, "u1", model.Balance, 100)
	require.NoError(t, err)

	_, err = env.eco.Shop.Buy(ctx, guild, "u1", 1)
	require.ErrorIs(t, err, apierror.ErrInsufficientFunds)

	bal, err := env.eco.Ledger.Get(ctx, guild, "u1", model.Balance)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)

	_, err = env.eco.History.List(ctx, guild, "u1")
	assert.ErrorIs(t, err, apierror.ErrEmptyHistory)
	_, err = env.eco.Shop.Inventory(ctx, guild, "u1")
	assert.ErrorIs(t, err, apierror.ErrEmptyInventory)
}

func TestShop_BuyInsufficientFundsWithNegativePolicy(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AllowNegative = true })
	seedShop(t, env, model.ShopItem{Name: "Crown", Cost: 500})

	_, err := env.eco.Shop.Buy(context.Background(), guild, "u1", 1)
	assert.ErrorIs(t, err, apierror.ErrInsufficientFunds)
}

func TestShop_ItemErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.eco.Shop.Sell(ctx, guild, "u1", 1)
	assert.ErrorIs(t, err, apierror.ErrShopEmpty)

	seedShop(t, env, model.ShopItem{Name: "Sword", Cost: 0}, model.ShopItem{Name: "Shield", Cost: 0})

	_, err = env.eco.Shop.Buy(ctx, guild, "u1", 5)
	assert.ErrorIs(t, err, apierror.ErrItemNotFound)
	_, err = env.eco.Shop.Use(ctx, guild, "u1", 1)
	assert.ErrorIs(t, err, apierror.ErrEmptyInventory)

	_, err = env.eco.Shop.Buy(ctx, guild, "u1", 1)
	require.NoError(t, err)

	_, err = env.eco.Shop.Sell(ctx, guild, "u1", 5)
	assert.ErrorIs(t, err, apierror.ErrItemNotFound)
	_, err = env.eco.Shop.Sell(ctx, guild, "u1", 2)
	assert.ErrorIs(t, err, apierror.ErrItemNotInInventory)
	_, err = env.eco.Shop.InventoryItem(ctx, guild, "u1", 2)
	assert.ErrorIs(t, err, apierror.ErrItemNotInInventory)
}

func TestShop_UseRemovesOneEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedShop(t, env, model.ShopItem{Name: "Potion", Cost: 5})
	_, err := env.eco.Ledger.Add(ctx, guild, "u1", model.Balance, 10)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = env.eco.Shop.Buy(ctx, guild, "u1", 1)
		require.NoError(t, err)
	}

	entry, err := env.eco.Shop.InventoryItem(ctx, guild, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Potion", entry.Name)

	used, err := env.eco.Shop.Use(ctx, guild, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, used.ItemID)

	inv, err := env.eco.Shop.Inventory(ctx, guild, "u1")
	require.NoError(t, err)
	assert.Len(t, inv, 1)

	bal, err := env.eco.Ledger.Get(ctx, guild, "u1", model.Balance)
	require.NoError(t, err)
	assert.Zero(t, bal, "use does not refund")
}
