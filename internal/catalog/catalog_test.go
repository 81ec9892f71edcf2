package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/internal/model"
)

const sample = `
items:
  - name: Sword
    description: Sharp
    cost: 50
  - id: 2
    name: Crown
    cost: 500
    role: royalty
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, model.ShopItem{Name: "Sword", Description: "Sharp", Cost: 50}, c.Items[0])
	assert.Equal(t, "royalty", c.Items[1].Role)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDecode_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing name":  "items:\n  - cost: 1\n",
		"negative cost": "items:\n  - name: A\n    cost: -1\n",
		"duplicate id":  "items:\n  - {id: 1, name: A}\n  - {id: 1, name: B}\n",
		"unknown field": "items:\n  - name: A\n    price: 3\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

type fakeShop struct {
	items []model.ShopItem
}

func (f *fakeShop) CreateItem(_ context.Context, _ string, item model.ShopItem) (*model.ShopItem, error) {
	for _, it := range f.items {
		if item.ID != 0 && it.ID == item.ID {
			return &it, nil
		}
	}
	item.ID = len(f.items) + 1
	f.items = append(f.items, item)
	return &item, nil
}

func TestImport(t *testing.T) {
	c, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	shop := &fakeShop{}
	stored, err := Import(context.Background(), shop, "g1", c)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, []int{stored[0].ID, stored[1].ID})

	_, err = Import(context.Background(), shop, "g1", &Catalog{Items: c.Items[1:]})
	require.NoError(t, err)
	assert.Len(t, shop.items, 2, "items with a known id are not duplicated")
}
