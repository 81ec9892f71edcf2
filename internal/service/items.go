package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/metrics"
	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

// PurchaseResult is returned by Buy and Sell.
type PurchaseResult struct {
	Item    model.InventoryEntry `json:"item"`
	Balance model.Change         `json:"balance"`
}

// Buy charges the item's cost and adds a snapshot of it to the inventory.
func (s *ShopService) Buy(ctx context.Context, guildID, userID string, itemID int) (*PurchaseResult, error) {
	unlock := s.locks.Lock(guildID, userID)
	defer unlock()

	var res PurchaseResult
	err := s.store.UpdateUser(ctx, guildID, userID, func(g *model.GuildRecord, u *model.UserRecord) error {
		if len(g.Shop) == 0 {
			return shopEmpty()
		}
		item := g.FindItem(itemID)
		if item == nil {
			return itemNotFound(itemID)
		}
		if u.Balance < item.Cost {
			return insufficient(model.Balance, u.Balance, item.Cost)
		}

		debit, err := s.ledger.subtract(u, model.Balance, item.Cost)
		if err != nil {
			return err
		}
		now := s.history.now()
		appendHistory(u, model.ActionBuy, item.Cost, now)
		entry := item.Snapshot(now)
		u.Inventory = append(u.Inventory, entry)

		res = PurchaseResult{Item: entry, Balance: debit.Balance}
		return nil
	})
	metrics.RecordOperation("buy", err)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"guild": guildID, "user": userID}).Debugf("Bought item #%d", itemID)
	return &res, nil
}

// Sell removes one owned copy of the item and credits its current catalog cost.
func (s *ShopService) Sell(ctx context.Context, guildID, userID string, itemID int) (*PurchaseResult, error) {
	unlock := s.locks.Lock(guildID, userID)
	defer unlock()

	var res PurchaseResult
	err := s.store.UpdateUser(ctx, guildID, userID, func(g *model.GuildRecord, u *model.UserRecord) error {
		item, idx, err := ownedItem(g, u, itemID)
		if err != nil {
			return err
		}

		credit, err := s.ledger.add(u, model.Balance, item.Cost)
		if err != nil {
			return err
		}
		entry := removeInventory(u, idx)
		appendHistory(u, model.ActionSell, item.Cost, s.history.now())

		res = PurchaseResult{Item: entry, Balance: credit.Balance}
		return nil
	})
	metrics.RecordOperation("sell", err)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Use consumes one owned copy of the item and returns it.
func (s *ShopService) Use(ctx context.Context, guildID, userID string, itemID int) (*model.InventoryEntry, error) {
	unlock := s.locks.Lock(guildID, userID)
	defer unlock()

	var used model.InventoryEntry
	err := s.store.UpdateUser(ctx, guildID, userID, func(g *model.GuildRecord, u *model.UserRecord) error {
		_, idx, err := ownedItem(g, u, itemID)
		if err != nil {
			return err
		}
		used = removeInventory(u, idx)
		return nil
	})
	metrics.RecordOperation("use", err)
	if err != nil {
		return nil, err
	}
	return &used, nil
}

// InventoryItem returns the first owned copy of the item.
func (s *ShopService) InventoryItem(ctx context.Context, guildID, userID string, itemID int) (*model.InventoryEntry, error) {
	g, err := s.store.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	u := g.FindUser(userID)
	if u == nil {
		if u, err = s.store.EnsureUser(ctx, guildID, userID); err != nil {
			return nil, err
		}
	}
	_, idx, err := ownedItem(g, u, itemID)
	if err != nil {
		return nil, err
	}
	entry := u.Inventory[idx]
	return &entry, nil
}

// Inventory returns every owned entry.
func (s *ShopService) Inventory(ctx context.Context, guildID, userID string) ([]model.InventoryEntry, error) {
	u, err := s.store.EnsureUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if len(u.Inventory) == 0 {
		return nil, emptyInventory()
	}
	return u.Inventory, nil
}

// ownedItem runs the shared sell/use/get validation and returns the catalog
// item with the index of the first matching inventory entry.
func ownedItem(g *model.GuildRecord, u *model.UserRecord, itemID int) (*model.ShopItem, int, error) {
	if len(g.Shop) == 0 {
		return nil, -1, shopEmpty()
	}
	if len(u.Inventory) == 0 {
		return nil, -1, emptyInventory()
	}
	item := g.FindItem(itemID)
	if item == nil {
		return nil, -1, itemNotFound(itemID)
	}
	for i, e := range u.Inventory {
		if e.ItemID == itemID {
			return item, i, nil
		}
	}
	return nil, -1, apierror.NotFound(apierror.ReasonItemNotInInventory, fmt.Sprintf("Item #%d is not in the inventory", itemID))
}

func removeInventory(u *model.UserRecord, idx int) model.InventoryEntry {
	entry := u.Inventory[idx]
	u.Inventory = append(u.Inventory[:idx], u.Inventory[idx+1:]...)
	return entry
}

func emptyInventory() error {
	return apierror.Empty(apierror.ReasonEmptyInventory, "Inventory is empty")
}
