package service

import (
	"context"

	"guild-economy-api/internal/metrics"
	"guild-economy-api/internal/model"
)

type ledgerOp int

const (
	opAdd ledgerOp = iota
	opSubtract
	opSet
)

var historyActions = map[model.Field][3]model.ActionType{
	model.Balance: {model.ActionAdd, model.ActionSubtract, model.ActionSet},
	model.Bank:    {model.ActionBankAdd, model.ActionBankSubtract, model.ActionBankSet},
}

func (op ledgerOp) String() string {
	return [...]string{"add", "subtract", "set"}[op]
}

// AccountService is the caller-facing balance and bank API. Each mutation
// pairs a ledger change with its history entry in one persisted step.
type AccountService struct {
	store   *GuildStore
	locks   *userLocks
	ledger  *LedgerEngine
	history *HistoryLog
}

// Add credits amount to field f and records it.
func (a *AccountService) Add(ctx context.Context, guildID, userID string, f model.Field, amount int64) (*model.BalanceResult, error) {
	return a.apply(ctx, guildID, userID, f, opAdd, amount)
}

// Subtract debits amount from field f and records it.
func (a *AccountService) Subtract(ctx context.Context, guildID, userID string, f model.Field, amount int64) (*model.BalanceResult, error) {
	return a.apply(ctx, guildID, userID, f, opSubtract, amount)
}

// Set overwrites field f and records the new value.
func (a *AccountService) Set(ctx context.Context, guildID, userID string, f model.Field, value int64) (*model.BalanceResult, error) {
	return a.apply(ctx, guildID, userID, f, opSet, value)
}

// Get reads field f.
func (a *AccountService) Get(ctx context.Context, guildID, userID string, f model.Field) (int64, error) {
	return a.ledger.Get(ctx, guildID, userID, f)
}

// Deposit moves amount from balance to bank.
func (a *AccountService) Deposit(ctx context.Context, guildID, userID string, amount int64) (*model.TransferResult, error) {
	return a.ledger.Transfer(ctx, guildID, userID, model.Balance, model.Bank, amount)
}

// Withdraw moves amount from bank to balance.
func (a *AccountService) Withdraw(ctx context.Context, guildID, userID string, amount int64) (*model.TransferResult, error) {
	return a.ledger.Transfer(ctx, guildID, userID, model.Bank, model.Balance, amount)
}

// Summary returns the user's holdings.
func (a *AccountService) Summary(ctx context.Context, guildID, userID string) (*model.UserSummary, error) {
	u, err := a.store.EnsureUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	return &model.UserSummary{
		UserID:    u.ID,
		Balance:   u.Balance,
		Bank:      u.Bank,
		Inventory: len(u.Inventory),
	}, nil
}

func (a *AccountService) apply(ctx context.Context, guildID, userID string, f model.Field, op ledgerOp, amount int64) (*model.BalanceResult, error) {
	unlock := a.locks.Lock(guildID, userID)
	defer unlock()

	var res model.BalanceResult
	err := a.store.UpdateUser(ctx, guildID, userID, func(_ *model.GuildRecord, u *model.UserRecord) error {
		var err error
		switch op {
		case opAdd:
			res, err = a.ledger.add(u, f, amount)
		case opSubtract:
			res, err = a.ledger.subtract(u, f, amount)
		default:
			res, err = a.ledger.set(u, f, amount)
		}
		if err != nil {
			return err
		}
		appendHistory(u, historyActions[f][op], amount, a.history.now())
		return nil
	})
	metrics.RecordOperation(f.String()+"_"+op.String(), err)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
