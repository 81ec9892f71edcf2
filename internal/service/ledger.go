package service

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/metrics"
	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/apierror"
)

// LedgerEngine applies balance arithmetic to a single user. It never writes history.
type LedgerEngine struct {
	store         *GuildStore
	locks         *userLocks
	allowNegative bool
	log           *logrus.Entry
}

// Add credits amount to field f.
func (e *LedgerEngine) Add(ctx context.Context, guildID, userID string, f model.Field, amount int64) (*model.BalanceResult, error) {
	return e.single(ctx, "add", guildID, userID, func(u *model.UserRecord) (model.BalanceResult, error) {
		return e.add(u, f, amount)
	})
}

// Subtract debits amount from field f.
func (e *LedgerEngine) Subtract(ctx context.Context, guildID, userID string, f model.Field, amount int64) (*model.BalanceResult, error) {
	return e.single(ctx, "subtract", guildID, userID, func(u *model.UserRecord) (model.BalanceResult, error) {
		return e.subtract(u, f, amount)
	})
}

// Set overwrites field f with value.
func (e *LedgerEngine) Set(ctx context.Context, guildID, userID string, f model.Field, value int64) (*model.BalanceResult, error) {
	return e.single(ctx, "set", guildID, userID, func(u *model.UserRecord) (model.BalanceResult, error) {
		return e.set(u, f, value)
	})
}

// Get reads field f, creating the user if needed.
func (e *LedgerEngine) Get(ctx context.Context, guildID, userID string, f model.Field) (int64, error) {
	u, err := e.store.EnsureUser(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	return u.Value(f), nil
}

// Transfer moves amount from one field to the other in a single persisted step.
func (e *LedgerEngine) Transfer(ctx context.Context, guildID, userID string, from, to model.Field, amount int64) (*model.TransferResult, error) {
	unlock := e.locks.Lock(guildID, userID)
	defer unlock()

	var res model.TransferResult
	err := e.store.UpdateUser(ctx, guildID, userID, func(_ *model.GuildRecord, u *model.UserRecord) error {
		var err error
		res, err = e.transfer(u, from, to, amount)
		return err
	})
	metrics.RecordOperation("transfer", err)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"guild": guildID, "user": userID, "amount": amount}).
		Debugf("Transferred %s -> %s", from, to)
	return &res, nil
}

func (e *LedgerEngine) single(ctx context.Context, op, guildID, userID string, fn func(u *model.UserRecord) (model.BalanceResult, error)) (*model.BalanceResult, error) {
	unlock := e.locks.Lock(guildID, userID)
	defer unlock()

	var res model.BalanceResult
	err := e.store.UpdateUser(ctx, guildID, userID, func(_ *model.GuildRecord, u *model.UserRecord) error {
		var err error
		res, err = fn(u)
		return err
	})
	metrics.RecordOperation(op, err)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"guild": guildID, "user": userID, "op": op}).
		Debugf("%d -> %d", res.Balance.Before, res.Balance.After)
	return &res, nil
}

// The lower-case variants mutate an already loaded user and are composed by
// other services inside their own update.

func (e *LedgerEngine) add(u *model.UserRecord, f model.Field, amount int64) (model.BalanceResult, error) {
	if err := validateAmount("amount", amount); err != nil {
		return model.BalanceResult{}, err
	}
	before := u.Value(f)
	if before > 0 && amount > math.MaxInt64-before {
		return model.BalanceResult{}, apierror.ValidationError(fmt.Sprintf("Adding %d would overflow the %s", amount, f))
	}
	u.SetValue(f, before+amount)
	return model.BalanceResult{Amount: amount, Balance: model.Change{Before: before, After: before + amount}}, nil
}

func (e *LedgerEngine) subtract(u *model.UserRecord, f model.Field, amount int64) (model.BalanceResult, error) {
	if err := validateAmount("amount", amount); err != nil {
		return model.BalanceResult{}, err
	}
	before := u.Value(f)
	if amount > before && !e.allowNegative {
		return model.BalanceResult{}, insufficient(f, before, amount)
	}
	if before < 0 && before-math.MinInt64 < amount {
		return model.BalanceResult{}, apierror.ValidationError(fmt.Sprintf("Subtracting %d would overflow the %s", amount, f))
	}
	u.SetValue(f, before-amount)
	return model.BalanceResult{Amount: amount, Balance: model.Change{Before: before, After: before - amount}}, nil
}

func (e *LedgerEngine) set(u *model.UserRecord, f model.Field, value int64) (model.BalanceResult, error) {
	if err := validateAmount("value", value); err != nil {
		return model.BalanceResult{}, err
	}
	before := u.Value(f)
	u.SetValue(f, value)
	return model.BalanceResult{Amount: value, Balance: model.Change{Before: before, After: value}}, nil
}

func (e *LedgerEngine) transfer(u *model.UserRecord, from, to model.Field, amount int64) (model.TransferResult, error) {
	if err := validateAmount("amount", amount); err != nil {
		return model.TransferResult{}, err
	}
	if from == to {
		return model.TransferResult{}, apierror.ValidationError("Cannot transfer a field into itself")
	}
	src := u.Value(from)
	if amount > src {
		return model.TransferResult{}, insufficient(from, src, amount)
	}
	dst := u.Value(to)
	if dst > 0 && amount > math.MaxInt64-dst {
		return model.TransferResult{}, apierror.ValidationError(fmt.Sprintf("Moving %d would overflow the %s", amount, to))
	}

	balanceBefore, bankBefore := u.Balance, u.Bank
	u.SetValue(from, src-amount)
	u.SetValue(to, dst+amount)
	return model.TransferResult{
		Amount:  amount,
		Balance: model.Change{Before: balanceBefore, After: u.Balance},
		Bank:    model.Change{Before: bankBefore, After: u.Bank},
	}, nil
}

func validateAmount(field string, amount int64) error {
	if amount < 0 {
		return apierror.ValidationError(fmt.Sprintf("%s must not be negative", field), apierror.FieldError{
			Field:   field,
			Message: "must be greater than or equal to 0",
		})
	}
	return nil
}

func insufficient(f model.Field, have, want int64) error {
	return apierror.InsufficientFunds(fmt.Sprintf("Not enough %s: have %d, need %d", f, have, want))
}
