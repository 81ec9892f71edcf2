package handler

import (
	"net/http"

	"guild-economy-api/pkg/response"
)

// GetHistory handles GET /api/v1/guilds/{guild_id}/users/{user_id}/history
func (h *EconomyHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	entries, err := h.eco.History.List(r.Context(), guildID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.List(w, entries, len(entries))
}

// DeleteHistory handles DELETE /api/v1/guilds/{guild_id}/users/{user_id}/history/{id}
func (h *EconomyHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	remaining, err := h.eco.History.Remove(r.Context(), guildID, userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.List(w, remaining, len(remaining))
}
