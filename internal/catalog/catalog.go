// Package catalog loads shop catalogs from YAML files.
package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"guild-economy-api/internal/model"
)

// Catalog is the file format:
//
//	items:
//	  - id: 1
//	    name: Sword
//	    description: Sharp
//	    cost: 50
//	    role: knight
//
// ids are optional. Items that carry one are skipped on re-import when the
// guild already has that id.
type Catalog struct {
	Items []model.ShopItem `yaml:"items"`
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses and validates a catalog.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks names, costs and ids.
func (c *Catalog) Validate() error {
	seen := make(map[int]struct{}, len(c.Items))
	for i, it := range c.Items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("item %d: name is required", i+1)
		}
		if it.Cost < 0 {
			return fmt.Errorf("item %d (%s): cost must not be negative", i+1, it.Name)
		}
		if it.ID < 0 {
			return fmt.Errorf("item %d (%s): id must not be negative", i+1, it.Name)
		}
		if it.ID == 0 {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item %d (%s): duplicate id %d", i+1, it.Name, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// Creator adds one item to a guild's shop.
type Creator interface {
	CreateItem(ctx context.Context, guildID string, item model.ShopItem) (*model.ShopItem, error)
}

// Import creates every catalog item in the guild's shop and returns the stored items.
func Import(ctx context.Context, shop Creator, guildID string, c *Catalog) ([]model.ShopItem, error) {
	out := make([]model.ShopItem, 0, len(c.Items))
	for _, it := range c.Items {
		stored, err := shop.CreateItem(ctx, guildID, it)
		if err != nil {
			return out, fmt.Errorf("failed to import %q: %w", it.Name, err)
		}
		out = append(out, *stored)
	}
	return out, nil
}
