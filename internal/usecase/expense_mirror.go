package usecase

import (
	"context"
	"errors"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExpenseMirror keeps each Expense and its shadow expense-type
// WalletTransaction in lockstep. Every hook runs inside the owner's ledger
// transaction, so the wallet recompute that follows sees the change.
type ExpenseMirror struct {
	logger *logrus.Logger
}

func NewExpenseMirror(logger *logrus.Logger) *ExpenseMirror {
	return &ExpenseMirror{logger: logger}
}

func (m *ExpenseMirror) OnExpenseCreated(ctx context.Context, ltx *LedgerTx, expense *entity.Expense) (*entity.WalletTransaction, error) {
	count, err := ltx.Wallets.CountTransactionsByExpenseID(ctx, expense.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrMirrorExists
	}

	expenseID := expense.ID
	mirror := &entity.WalletTransaction{
		WalletID:  ltx.Wallet.ID,
		Type:      entity.TransactionTypeExpense,
		ExpenseID: &expenseID,
	}
	mirror.CopyFromExpense(expense)

	if err := ltx.Wallets.CreateTransaction(ctx, mirror); err != nil {
		return nil, err
	}

	metrics.MirrorOperations.WithLabelValues("create").Inc()
	m.logger.WithFields(logrus.Fields{
		"expense_id":     expense.ID,
		"transaction_id": mirror.ID,
	}).Debug("Mirror transaction created")

	return mirror, nil
}

// OnExpenseUpdated copies the expense fields onto its mirror in place. An
// expense without a mirror is left alone.
func (m *ExpenseMirror) OnExpenseUpdated(ctx context.Context, ltx *LedgerTx, expense *entity.Expense) (*entity.WalletTransaction, error) {
	mirror, err := ltx.Wallets.GetTransactionByExpenseID(ctx, expense.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	mirror.CopyFromExpense(expense)
	if err := ltx.Wallets.UpdateTransaction(ctx, mirror); err != nil {
		return nil, err
	}

	metrics.MirrorOperations.WithLabelValues("update").Inc()
	return mirror, nil
}

func (m *ExpenseMirror) OnExpenseDeleted(ctx context.Context, ltx *LedgerTx, expenseID uuid.UUID) error {
	mirror, err := ltx.Wallets.GetTransactionByExpenseID(ctx, expenseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := ltx.Wallets.DeleteTransaction(ctx, mirror.ID); err != nil {
		return err
	}

	metrics.MirrorOperations.WithLabelValues("delete").Inc()
	return nil
}

// Adopt turns an existing unlinked expense-type entry into the mirror of
// expense. Used when historical entries are backfilled into expenses.
func (m *ExpenseMirror) Adopt(ctx context.Context, ltx *LedgerTx, expense *entity.Expense, transactionID uuid.UUID) (*entity.WalletTransaction, error) {
	transaction, err := ltx.Wallets.GetTransaction(ctx, ltx.Wallet.ID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.IsMirror() {
		return nil, ErrMirrorExists
	}
	if transaction.Type != entity.TransactionTypeExpense {
		return nil, errors.New("only expense transactions can mirror an expense")
	}

	expenseID := expense.ID
	transaction.ExpenseID = &expenseID
	transaction.CopyFromExpense(expense)
	if err := ltx.Wallets.UpdateTransaction(ctx, transaction); err != nil {
		return nil, err
	}

	metrics.MirrorOperations.WithLabelValues("adopt").Inc()
	return transaction, nil
}
