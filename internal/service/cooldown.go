package service

import (
	"context"
	"fmt"
	"time"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

// CooldownGate decides whether a timed reward may be collected. It keeps no
// timers; eligibility is computed from stored timestamps on every call.
type CooldownGate struct {
	store *GuildStore
	locks *userLocks
	now   Clock
}

// Check reports whether the user may collect reward t now.
func (c *CooldownGate) Check(ctx context.Context, t model.RewardType, guildID, userID string) (model.CooldownCheck, error) {
	if !t.Valid() {
		return model.CooldownCheck{}, invalidReward(t)
	}
	u, err := c.store.EnsureUser(ctx, guildID, userID)
	if err != nil {
		return model.CooldownCheck{}, err
	}
	return checkCooldown(u, t, c.now()), nil
}

// Arm starts the cooldown window for reward t.
func (c *CooldownGate) Arm(ctx context.Context, t model.RewardType, amount int64, guildID, userID string) error {
	if !t.Valid() {
		return invalidReward(t)
	}
	unlock := c.locks.Lock(guildID, userID)
	defer unlock()

	return c.store.UpdateUser(ctx, guildID, userID, func(_ *model.GuildRecord, u *model.UserRecord) error {
		armCooldown(u, t, amount, c.now())
		return nil
	})
}

// Get returns the stored cooldown state for reward t.
func (c *CooldownGate) Get(ctx context.Context, t model.RewardType, guildID, userID string) (model.CooldownState, error) {
	if !t.Valid() {
		return model.CooldownState{}, invalidReward(t)
	}
	u, err := c.store.EnsureUser(ctx, guildID, userID)
	if err != nil {
		return model.CooldownState{}, err
	}
	return *u.Cooldown(t), nil
}

func checkCooldown(u *model.UserRecord, t model.RewardType, now time.Time) model.CooldownCheck {
	cd := u.Cooldown(t)
	if cd.CollectAt == nil || !now.Before(*cd.CollectAt) {
		return model.CooldownCheck{Eligible: true}
	}
	at := *cd.CollectAt
	return model.CooldownCheck{Eligible: false, CollectAt: &at}
}

func armCooldown(u *model.UserRecord, t model.RewardType, amount int64, now time.Time) {
	collectAt := now.Add(t.Window())
	cd := u.Cooldown(t)
	cd.Amount = &amount
	cd.CollectedAt = &now
	cd.CollectAt = &collectAt
}

func invalidReward(t model.RewardType) error {
	return apierror.ValidationError(fmt.Sprintf("Unknown reward type %q", string(t)), apierror.FieldError{
		Field:   "type",
		Message: "must be one of daily, weekly, work",
	})
}
