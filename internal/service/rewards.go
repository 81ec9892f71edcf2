package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/metrics"
	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

// RewardsConfig holds timed reward amounts. Work pays a random amount in
// [WorkMin, WorkMax]; equal bounds pay a fixed amount.
type RewardsConfig struct {
	Daily   int64
	Weekly  int64
	WorkMin int64
	WorkMax int64
}

// Validate checks the configured amounts.
func (c RewardsConfig) Validate() error {
	if c.Daily < 0 || c.Weekly < 0 || c.WorkMin < 0 || c.WorkMax < 0 {
		return fmt.Errorf("reward amounts must not be negative")
	}
	if c.WorkMin > c.WorkMax {
		return fmt.Errorf("work reward min %d is greater than max %d", c.WorkMin, c.WorkMax)
	}
	// The span plus one must fit in an int64 for the random draw.
	if c.WorkMax-c.WorkMin == math.MaxInt64 {
		return fmt.Errorf("work reward range %d..%d is too wide", c.WorkMin, c.WorkMax)
	}
	return nil
}

// RewardService grants daily, weekly and work rewards behind their cooldowns.
type RewardService struct {
	store     *GuildStore
	locks     *userLocks
	ledger    *LedgerEngine
	history   *HistoryLog
	cooldowns *CooldownGate
	cfg       RewardsConfig
	randN     func(n int64) int64
	log       *logrus.Entry
}

// Daily collects the daily reward.
func (r *RewardService) Daily(ctx context.Context, guildID, userID string) (*model.BalanceResult, error) {
	return r.Collect(ctx, model.RewardDaily, guildID, userID)
}

// Weekly collects the weekly reward.
func (r *RewardService) Weekly(ctx context.Context, guildID, userID string) (*model.BalanceResult, error) {
	return r.Collect(ctx, model.RewardWeekly, guildID, userID)
}

// Work collects the work reward.
func (r *RewardService) Work(ctx context.Context, guildID, userID string) (*model.BalanceResult, error) {
	return r.Collect(ctx, model.RewardWork, guildID, userID)
}

// Collect grants reward t if its cooldown has elapsed. A denied collect
// returns COOLDOWN_ACTIVE with the time it becomes available and changes nothing.
func (r *RewardService) Collect(ctx context.Context, t model.RewardType, guildID, userID string) (*model.BalanceResult, error) {
	if !t.Valid() {
		return nil, invalidReward(t)
	}
	amount := r.amount(t)

	unlock := r.locks.Lock(guildID, userID)
	defer unlock()

	var res model.BalanceResult
	err := r.store.UpdateUser(ctx, guildID, userID, func(_ *model.GuildRecord, u *model.UserRecord) error {
		now := r.cooldowns.now()
		if check := checkCooldown(u, t, now); !check.Eligible {
			return apierror.CooldownActive(
				fmt.Sprintf("%s cooldown is not over, try again later", titleCase(string(t))),
				*check.CollectAt,
			)
		}

		var err error
		res, err = r.ledger.add(u, model.Balance, amount)
		if err != nil {
			return err
		}
		appendHistory(u, model.ActionType(t), amount, now)
		armCooldown(u, t, amount, now)
		return nil
	})
	metrics.RecordOperation("reward_"+string(t), err)
	if err != nil {
		if apierror.IsExpected(err) {
			r.log.WithFields(logrus.Fields{"guild": guildID, "user": userID}).Debugf("%s denied: %v", t, err)
		}
		return nil, err
	}

	metrics.RecordReward(string(t), amount)
	r.log.WithFields(logrus.Fields{"guild": guildID, "user": userID, "amount": amount}).Infof("Granted %s reward", t)
	return &res, nil
}

func (r *RewardService) amount(t model.RewardType) int64 {
	switch t {
	case model.RewardDaily:
		return r.cfg.Daily
	case model.RewardWeekly:
		return r.cfg.Weekly
	}
	if r.cfg.WorkMax <= r.cfg.WorkMin {
		return r.cfg.WorkMin
	}
	return r.cfg.WorkMin + r.randN(r.cfg.WorkMax-r.cfg.WorkMin+1)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
