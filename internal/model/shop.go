package model

import "time"

// ShopItem is a guild catalog entry.
type ShopItem struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	Cost        int64  `json:"cost" yaml:"cost"`
	Role        string `json:"role,omitempty" yaml:"role"`
}

// ShopItemPatch holds the catalog fields an update may change. Nil fields are kept.
type ShopItemPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Cost        *int64  `json:"cost,omitempty"`
	Role        *string `json:"role,omitempty"`
}

// InventoryEntry is a purchase-time copy of a catalog item.
type InventoryEntry struct {
	ItemID      int       `json:"itemID"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Cost        int64     `json:"cost"`
	Role        string    `json:"role,omitempty"`
	Date        time.Time `json:"date"`
}

// Snapshot copies the item into an inventory entry dated at.
func (i *ShopItem) Snapshot(at time.Time) InventoryEntry {
	return InventoryEntry{
		ItemID:      i.ID,
		Name:        i.Name,
		Description: i.Description,
		Cost:        i.Cost,
		Role:        i.Role,
		Date:        at,
	}
}
