package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/config"
	"guild-economy-api/internal/metrics"
	"guild-economy-api/internal/repository"
	"guild-economy-api/pkg/logger"
)

// Clock returns the current time.
type Clock func() time.Time

// Options configures an Economy.
type Options struct {
	Rewards RewardsConfig
	// AllowNegative lets Subtract drive a field below zero.
	AllowNegative bool
	// Clock defaults to time.Now.
	Clock Clock
	// RandN returns a value in [0, n). Defaults to math/rand/v2.
	RandN  func(n int64) int64
	Logger logrus.FieldLogger
}

// NewOptions maps application config onto Options.
func NewOptions(cfg *config.Config, log logrus.FieldLogger) Options {
	workMin, workMax := cfg.Rewards.WorkRange()
	return Options{
		Rewards: RewardsConfig{
			Daily:   cfg.Rewards.Daily,
			Weekly:  cfg.Rewards.Weekly,
			WorkMin: workMin,
			WorkMax: workMax,
		},
		AllowNegative: cfg.Ledger.AllowNegative,
		Logger:        log,
	}
}

// Economy wires every ledger component over one repository and owns its lifecycle.
type Economy struct {
	repo repository.GuildRepository
	log  *logrus.Entry

	Store       *GuildStore
	History     *HistoryLog
	Cooldowns   *CooldownGate
	Ledger      *LedgerEngine
	Accounts    *AccountService
	Rewards     *RewardService
	Shop        *ShopService
	Leaderboard *LeaderboardView

	locks *userLocks
}

// NewEconomy builds the services over repo.
func NewEconomy(repo repository.GuildRepository, opts Options) (*Economy, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if err := opts.Rewards.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rewards config: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RandN == nil {
		opts.RandN = rand.Int64N
	}

	store := NewGuildStore(repo, opts.Logger)
	locks := newUserLocks()
	history := &HistoryLog{store: store, locks: locks, now: opts.Clock}
	cooldowns := &CooldownGate{store: store, locks: locks, now: opts.Clock}
	ledger := &LedgerEngine{
		store:         store,
		locks:         locks,
		allowNegative: opts.AllowNegative,
		log:           logger.Component(opts.Logger, "Ledger"),
	}

	return &Economy{
		repo:      repo,
		log:       logger.Component(opts.Logger, "Economy"),
		Store:     store,
		History:   history,
		Cooldowns: cooldowns,
		Ledger:    ledger,
		Accounts: &AccountService{
			store:   store,
			locks:   locks,
			ledger:  ledger,
			history: history,
		},
		Rewards: &RewardService{
			store:     store,
			locks:     locks,
			ledger:    ledger,
			history:   history,
			cooldowns: cooldowns,
			cfg:       opts.Rewards,
			randN:     opts.RandN,
			log:       logger.Component(opts.Logger, "Rewards"),
		},
		Shop: &ShopService{
			store:   store,
			locks:   locks,
			ledger:  ledger,
			history: history,
			log:     logger.Component(opts.Logger, "Shop"),
		},
		Leaderboard: &LeaderboardView{store: store},
		locks:       locks,
	}, nil
}

// Normalize repairs every stored guild document and returns how many were rewritten.
func (e *Economy) Normalize(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := e.Store.NormalizeAll(ctx)
	metrics.RecordNormalized(n)
	if err != nil {
		e.log.WithError(err).Error("Normalization failed")
		return n, err
	}
	e.log.WithField("duration", time.Since(start)).Infof("Normalized %d guild(s)", n)
	return n, nil
}

// Ping checks that the repository answers.
func (e *Economy) Ping(ctx context.Context) error {
	_, err := e.repo.GetStats(ctx)
	return err
}

// Close releases the repository.
func (e *Economy) Close() error {
	return e.repo.Close()
}
