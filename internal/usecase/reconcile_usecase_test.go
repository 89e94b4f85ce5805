package usecase_test

import (
	"fmt"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/usecase"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findingKinds(report *usecase.AuditReport) map[usecase.FindingKind]int {
	kinds := make(map[usecase.FindingKind]int)
	for _, f := range report.Findings {
		kinds[f.Kind]++
	}
	return kinds
}

func TestBackfillExpenses(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t)

	_, cerr := env.wallets.AddTransaction(env.ctx, user.ID, income(5000))
	require.Nil(t, cerr)
	direct, cerr := env.wallets.AddTransaction(env.ctx, user.ID, spend(300))
	require.Nil(t, cerr)

	report, err := env.reconcile.BackfillExpenses(env.ctx, true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Candidates)
	assert.Zero(t, report.Created)

	unlinked, err := env.walletRepo.ListUnlinkedExpenseTransactions(env.ctx)
	require.NoError(t, err)
	assert.Len(t, unlinked, 1, "dry run changes nothing")

	report, err = env.reconcile.BackfillExpenses(env.ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Failed)

	unlinked, err = env.walletRepo.ListUnlinkedExpenseTransactions(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, unlinked)

	list, cerr := env.expenses.ListExpenses(env.ctx, user.ID, params.ExpenseFilter{})
	require.Nil(t, cerr)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "Rent", list.Expenses[0].Category)
	assertDecimal(t, 300, list.Expenses[0].Amount)

	expense, cerr := env.expenses.GetExpense(env.ctx, user.ID, list.Expenses[0].ID)
	require.Nil(t, cerr)
	require.NotNil(t, expense.TransactionID)
	assert.Equal(t, direct.Transaction.ID, *expense.TransactionID, "the existing entry is adopted")

	// Adopting never double counts the expense.
	assertDecimal(t, 4700, env.wallet(t, user.ID).TotalBalance)

	audit, err := env.reconcile.Audit(env.ctx)
	require.NoError(t, err)
	assert.True(t, audit.Clean(), "findings: %+v", audit.Findings)

	report, err = env.reconcile.BackfillExpenses(env.ctx, false)
	require.NoError(t, err)
	assert.Zero(t, report.Candidates)
}

func TestAuditAndRepair(t *testing.T) {
	env := setupTest(t)
	drifted := env.createUser(t)
	mismatched := env.createUser(t)
	unmirrored := env.createUser(t)

	_, cerr := env.wallets.AddTransaction(env.ctx, drifted.ID, income(1000))
	require.Nil(t, cerr)
	require.NoError(t, env.db.Model(&entity.Wallet{}).Where("user_id = ?", drifted.ID).
		Update("available_balance", dec(5)).Error)

	created, cerr := env.expenses.CreateExpense(env.ctx, mismatched.ID, groceries(200))
	require.Nil(t, cerr)
	require.NoError(t, env.db.Model(&entity.WalletTransaction{}).Where("id = ?", *created.Expense.TransactionID).
		Update("amount", dec(999)).Error)

	_, cerr = env.expenses.CreateExpense(env.ctx, unmirrored.ID, groceries(50), usecase.SkipMirror())
	require.Nil(t, cerr)

	audit, err := env.reconcile.Audit(env.ctx)
	require.NoError(t, err)
	assert.False(t, audit.Clean())
	assert.Equal(t, 3, audit.WalletsChecked)
	assert.Equal(t, 1, audit.MirrorsChecked)
	assert.Equal(t, 1, audit.Unmirrored)

	kinds := findingKinds(audit)
	assert.Equal(t, 1, kinds[usecase.FindingMirrorMismatch])
	assert.Equal(t, 1, kinds[usecase.FindingMissingMirror])
	// The drifted wallet plus the one whose mirror was edited underneath it.
	assert.Equal(t, 2, kinds[usecase.FindingBalanceDrift])

	_, cerr = env.wallets.GetTransactionHistory(env.ctx, mismatched.ID, 10, 0)
	require.Nil(t, cerr)
	historyKey := fmt.Sprintf("transactions:%s:10:0", mismatched.ID)
	require.True(t, env.mr.Exists(historyKey))

	repaired, err := env.reconcile.Repair(env.ctx)
	require.NoError(t, err)
	assert.Len(t, repaired.Findings, 4)

	audit, err = env.reconcile.Audit(env.ctx)
	require.NoError(t, err)
	assert.True(t, audit.Clean(), "findings: %+v", audit.Findings)

	assertDecimal(t, 1000, env.wallet(t, drifted.ID).AvailableBalance)
	assertDecimal(t, -200, env.wallet(t, mismatched.ID).TotalBalance)
	assertDecimal(t, -50, env.wallet(t, unmirrored.ID).TotalBalance)

	mirror, err := env.walletRepo.GetTransactionByExpenseID(env.ctx, created.Expense.ID)
	require.NoError(t, err)
	assertDecimal(t, 200, mirror.Amount)
	assert.False(t, env.mr.Exists(historyKey), "repair drops cached history pages")
}
