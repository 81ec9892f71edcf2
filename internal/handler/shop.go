package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/response"
)

// ListShop handles GET /api/v1/guilds/{guild_id}/shop
func (h *EconomyHandler) ListShop(w http.ResponseWriter, r *http.Request) {
	items, err := h.eco.Shop.ListItems(r.Context(), chi.URLParam(r, "guild_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.List(w, items, len(items))
}

// GetShopItem handles GET /api/v1/guilds/{guild_id}/shop/{item_id}
func (h *EconomyHandler) GetShopItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}
	item, err := h.eco.Shop.GetItem(r.Context(), chi.URLParam(r, "guild_id"), itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, item)
}

// CreateShopItem handles POST /api/v1/guilds/{guild_id}/shop
func (h *EconomyHandler) CreateShopItem(w http.ResponseWriter, r *http.Request) {
	var item model.ShopItem
	if !decodeBody(w, r, &item) {
		return
	}
	created, err := h.eco.Shop.CreateItem(r.Context(), chi.URLParam(r, "guild_id"), item)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, created)
}

// UpdateShopItem handles PATCH /api/v1/guilds/{guild_id}/shop/{item_id}
func (h *EconomyHandler) UpdateShopItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}
	var patch model.ShopItemPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	item, err := h.eco.Shop.UpdateItem(r.Context(), chi.URLParam(r, "guild_id"), itemID, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, item)
}

// DeleteShopItem handles DELETE /api/v1/guilds/{guild_id}/shop/{item_id}
func (h *EconomyHandler) DeleteShopItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}
	if err := h.eco.Shop.DeleteItem(r.Context(), chi.URLParam(r, "guild_id"), itemID); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}
