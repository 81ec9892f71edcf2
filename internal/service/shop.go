package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/metrics"
	"guild-economy-api/internal/model"
	"guild-economy-api/internal/repository"
	"guild-economy-api/pkg/apierror"
)

// ShopService manages a guild's catalog and the inventories bought from it.
type ShopService struct {
	store   *GuildStore
	locks   *userLocks
	ledger  *LedgerEngine
	history *HistoryLog
	log     *logrus.Entry
}

// CreateItem adds item to the catalog. An item whose id already exists is
// returned unchanged; otherwise the new item gets id len(shop)+1.
func (s *ShopService) CreateItem(ctx context.Context, guildID string, item model.ShopItem) (*model.ShopItem, error) {
	if err := validateItem(item.Name, item.Cost); err != nil {
		return nil, err
	}

	var out model.ShopItem
	created := false
	err := s.store.Update(ctx, guildID, func(g *model.GuildRecord) error {
		created = false
		if item.ID != 0 {
			if existing := g.FindItem(item.ID); existing != nil {
				out = *existing
				return repository.ErrSkipSave
			}
		}
		it := item
		it.ID = len(g.Shop) + 1
		g.Shop = append(g.Shop, &it)
		out = it
		created = true
		return nil
	})
	metrics.RecordOperation("shop_create", err)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.WithField("guild", guildID).Infof("Created item #%d %q", out.ID, out.Name)
	}
	return &out, nil
}

// UpdateItem applies patch to an existing item. The id never changes.
func (s *ShopService) UpdateItem(ctx context.Context, guildID string, itemID int, patch model.ShopItemPatch) (*model.ShopItem, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apierror.ValidationError("name must not be empty", apierror.FieldError{Field: "name", Message: "is required"})
	}
	if patch.Cost != nil {
		if err := validateAmount("cost", *patch.Cost); err != nil {
			return nil, err
		}
	}

	var out model.ShopItem
	err := s.store.Update(ctx, guildID, func(g *model.GuildRecord) error {
		item := g.FindItem(itemID)
		if item == nil {
			return itemNotFound(itemID)
		}
		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Cost != nil {
			item.Cost = *patch.Cost
		}
		if patch.Role != nil {
			item.Role = *patch.Role
		}
		out = *item
		return nil
	})
	metrics.RecordOperation("shop_update", err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem removes an item and shifts the ids of later items down by one.
// Inventory entries keep the id they were bought under.
func (s *ShopService) DeleteItem(ctx context.Context, guildID string, itemID int) error {
	err := s.store.Update(ctx, guildID, func(g *model.GuildRecord) error {
		idx := -1
		for i, it := range g.Shop {
			if it.ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return itemNotFound(itemID)
		}
		g.Shop = append(g.Shop[:idx], g.Shop[idx+1:]...)
		for _, it := range g.Shop {
			if it.ID > itemID {
				it.ID--
			}
		}
		return nil
	})
	metrics.RecordOperation("shop_delete", err)
	if err != nil {
		return err
	}
	s.log.WithField("guild", guildID).Infof("Deleted item #%d", itemID)
	return nil
}

// ListItems returns the catalog.
func (s *ShopService) ListItems(ctx context.Context, guildID string) ([]model.ShopItem, error) {
	g, err := s.store.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(g.Shop) == 0 {
		return nil, shopEmpty()
	}
	items := make([]model.ShopItem, 0, len(g.Shop))
	for _, it := range g.Shop {
		items = append(items, *it)
	}
	return items, nil
}

// GetItem returns one catalog item.
func (s *ShopService) GetItem(ctx context.Context, guildID string, itemID int) (*model.ShopItem, error) {
	g, err := s.store.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(g.Shop) == 0 {
		return nil, shopEmpty()
	}
	item := g.FindItem(itemID)
	if item == nil {
		return nil, itemNotFound(itemID)
	}
	out := *item
	return &out, nil
}

func validateItem(name string, cost int64) error {
	if strings.TrimSpace(name) == "" {
		return apierror.ValidationError("name must not be empty", apierror.FieldError{Field: "name", Message: "is required"})
	}
	return validateAmount("cost", cost)
}

func shopEmpty() error {
	return apierror.Empty(apierror.ReasonShopEmpty, "There are no items in the shop")
}

func itemNotFound(itemID int) error {
	return apierror.NotFound(apierror.ReasonItemNotFound, fmt.Sprintf("Item #%d does not exist in the shop", itemID))
}
