package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"guild-economy-api/pkg/apierror"
	"guild-economy-api/pkg/response"
)

// GetInventory handles GET /api/v1/guilds/{guild_id}/users/{user_id}/inventory
func (h *EconomyHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	entries, err := h.eco.Shop.Inventory(r.Context(), guildID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.List(w, entries, len(entries))
}

// GetInventoryItem handles GET /api/v1/guilds/{guild_id}/users/{user_id}/inventory/{item_id}
func (h *EconomyHandler) GetInventoryItem(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}
	entry, err := h.eco.Shop.InventoryItem(r.Context(), guildID, userID, itemID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, entry)
}

// ItemAction handles POST /api/v1/guilds/{guild_id}/users/{user_id}/inventory/{item_id}/{action}
// where action is buy, sell or use.
func (h *EconomyHandler) ItemAction(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}

	var (
		res interface{}
		err error
	)
	switch chi.URLParam(r, "action") {
	case "buy":
		res, err = h.eco.Shop.Buy(r.Context(), guildID, userID, itemID)
	case "sell":
		res, err = h.eco.Shop.Sell(r.Context(), guildID, userID, itemID)
	case "use":
		res, err = h.eco.Shop.Use(r.Context(), guildID, userID, itemID)
	default:
		response.Error(w, apierror.NotFound("", "Unknown inventory action"))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}
