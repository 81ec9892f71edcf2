package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/model"
	"guild-economy-api/internal/service"
	"guild-economy-api/pkg/apierror"
	"guild-economy-api/pkg/logger"
	"guild-economy-api/pkg/response"
)

const maxBodyBytes = 64 << 10

// EconomyHandler serves the guild economy routes.
type EconomyHandler struct {
	eco *service.Economy
	log *logrus.Entry
}

// NewEconomyHandler creates a new economy handler.
func NewEconomyHandler(eco *service.Economy, log logrus.FieldLogger) *EconomyHandler {
	return &EconomyHandler{
		eco: eco,
		log: logger.Component(log, "EconomyHandler"),
	}
}

// AmountRequest is the body of every balance mutation.
type AmountRequest struct {
	Amount *int64 `json:"amount"`
}

// GetUser handles GET /api/v1/guilds/{guild_id}/users/{user_id}
func (h *EconomyHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	summary, err := h.eco.Accounts.Summary(r.Context(), guildID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, summary)
}

// MutateField handles POST /api/v1/guilds/{guild_id}/users/{user_id}/{field}/{op}
// where field is balance or bank and op is add, subtract or set.
func (h *EconomyHandler) MutateField(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	field, err := model.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		response.Error(w, apierror.NotFound("", "Unknown field"))
		return
	}
	amount, ok := h.amount(w, r)
	if !ok {
		return
	}

	var res *model.BalanceResult
	switch chi.URLParam(r, "op") {
	case "add":
		res, err = h.eco.Accounts.Add(r.Context(), guildID, userID, field, amount)
	case "subtract":
		res, err = h.eco.Accounts.Subtract(r.Context(), guildID, userID, field, amount)
	case "set":
		res, err = h.eco.Accounts.Set(r.Context(), guildID, userID, field, amount)
	default:
		response.Error(w, apierror.NotFound("", "Unknown operation"))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// Deposit handles POST /api/v1/guilds/{guild_id}/users/{user_id}/deposit
func (h *EconomyHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.transfer(w, r, h.eco.Accounts.Deposit)
}

// Withdraw handles POST /api/v1/guilds/{guild_id}/users/{user_id}/withdraw
func (h *EconomyHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transfer(w, r, h.eco.Accounts.Withdraw)
}

func (h *EconomyHandler) transfer(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, guildID, userID string, amount int64) (*model.TransferResult, error)) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	amount, ok := h.amount(w, r)
	if !ok {
		return
	}
	res, err := fn(r.Context(), guildID, userID, amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// CollectReward handles POST /api/v1/guilds/{guild_id}/users/{user_id}/rewards/{type}
func (h *EconomyHandler) CollectReward(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	t := model.RewardType(chi.URLParam(r, "type"))
	if !t.Valid() {
		response.Error(w, apierror.NotFound("", "Unknown reward type"))
		return
	}
	res, err := h.eco.Rewards.Collect(r.Context(), t, guildID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, res)
}

// GetReward handles GET /api/v1/guilds/{guild_id}/users/{user_id}/rewards/{type}
func (h *EconomyHandler) GetReward(w http.ResponseWriter, r *http.Request) {
	guildID, userID, ok := h.guildUser(w, r)
	if !ok {
		return
	}
	t := model.RewardType(chi.URLParam(r, "type"))
	if !t.Valid() {
		response.Error(w, apierror.NotFound("", "Unknown reward type"))
		return
	}
	check, err := h.eco.Cooldowns.Check(r.Context(), t, guildID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	state, err := h.eco.Cooldowns.Get(r.Context(), t, guildID, userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"type":     t,
		"eligible": check.Eligible,
		"cooldown": state,
	})
}

// Leaderboard handles GET /api/v1/guilds/{guild_id}/leaderboard
func (h *EconomyHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guild_id")
	ranked, err := h.eco.Leaderboard.Rank(r.Context(), guildID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			response.Error(w, apierror.BadRequest("limit must be a positive integer"))
			return
		}
		total := len(ranked)
		if n < total {
			ranked = ranked[:n]
		}
		response.List(w, ranked, total)
		return
	}
	response.List(w, ranked, len(ranked))
}

func (h *EconomyHandler) guildUser(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	guildID := chi.URLParam(r, "guild_id")
	userID := chi.URLParam(r, "user_id")
	if guildID == "" || userID == "" {
		response.Error(w, apierror.BadRequest("guild_id and user_id are required"))
		return "", "", false
	}
	return guildID, userID, true
}

func (h *EconomyHandler) amount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return 0, false
	}
	if req.Amount == nil {
		response.Error(w, apierror.ValidationError("amount is required", apierror.FieldError{
			Field:   "amount",
			Message: "is required",
		}))
		return 0, false
	}
	return *req.Amount, true
}

// fail writes err, logging anything that is not a normal ledger outcome.
func (h *EconomyHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.Error
	entry := h.log.WithFields(logrus.Fields{"path": r.URL.Path, "method": r.Method})
	if !errors.As(err, &apiErr) || apiErr.StatusCode >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Debugf("%s: %s", apiErr.Code, apiErr.Message)
	}
	response.Error(w, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read request body"))
		return false
	}
	if len(body) > maxBodyBytes {
		response.Error(w, apierror.BadRequest("request body too large"))
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < 1 {
		response.Error(w, apierror.BadRequest(name+" must be a positive integer"))
		return 0, false
	}
	return v, true
}
