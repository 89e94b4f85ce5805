package usecase

import (
	"context"
	"errors"
	"fmt"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/metrics"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const importedDescription = "Imported transaction"

type FindingKind string

const (
	FindingMirrorMismatch FindingKind = "mirror_mismatch"
	FindingMissingMirror  FindingKind = "missing_mirror"
	FindingBalanceDrift   FindingKind = "balance_drift"
)

type AuditFinding struct {
	Kind          FindingKind `json:"kind"`
	UserID        uuid.UUID   `json:"user_id"`
	WalletID      *uuid.UUID  `json:"wallet_id,omitempty"`
	ExpenseID     *uuid.UUID  `json:"expense_id,omitempty"`
	TransactionID *uuid.UUID  `json:"transaction_id,omitempty"`
	Detail        string      `json:"detail"`
}

type AuditReport struct {
	WalletsChecked int            `json:"wallets_checked"`
	MirrorsChecked int            `json:"mirrors_checked"`
	Unmirrored     int            `json:"unmirrored_expenses"`
	Findings       []AuditFinding `json:"findings"`
}

func (r *AuditReport) Clean() bool {
	return len(r.Findings) == 0
}

type BackfillReport struct {
	DryRun     bool `json:"dry_run"`
	Candidates int  `json:"candidates"`
	Linked     int  `json:"linked"`
	Created    int  `json:"created"`
	Failed     int  `json:"failed"`
}

type ReconcileUsecase interface {
	// BackfillExpenses gives every directly entered expense transaction an
	// Expense record so both views agree.
	BackfillExpenses(ctx context.Context, dryRun bool) (*BackfillReport, error)
	Audit(ctx context.Context) (*AuditReport, error)
	// Repair fixes what Audit reports and returns the findings it addressed.
	Repair(ctx context.Context) (*AuditReport, error)
}

type ReconcileUsecaseImpl struct {
	ledger      *Ledger
	walletRepo  repository.WalletRepository
	expenseRepo repository.ExpenseRepository
	expenses    ExpenseUsecase
	mirror      *ExpenseMirror
	logger      *logrus.Logger
}

func NewReconcileUsecase(
	ledger *Ledger,
	walletRepo repository.WalletRepository,
	expenseRepo repository.ExpenseRepository,
	expenses ExpenseUsecase,
	mirror *ExpenseMirror,
	logger *logrus.Logger,
) ReconcileUsecase {
	return &ReconcileUsecaseImpl{
		ledger:      ledger,
		walletRepo:  walletRepo,
		expenseRepo: expenseRepo,
		expenses:    expenses,
		mirror:      mirror,
		logger:      logger,
	}
}

func (u *ReconcileUsecaseImpl) walletOwners(ctx context.Context) (map[uuid.UUID]uuid.UUID, []*entity.Wallet, error) {
	wallets, err := u.walletRepo.ListWallets(ctx)
	if err != nil {
		return nil, nil, err
	}
	owners := make(map[uuid.UUID]uuid.UUID, len(wallets))
	for _, w := range wallets {
		owners[w.ID] = w.UserID
	}
	return owners, wallets, nil
}

func (u *ReconcileUsecaseImpl) BackfillExpenses(ctx context.Context, dryRun bool) (*BackfillReport, error) {
	owners, _, err := u.walletOwners(ctx)
	if err != nil {
		return nil, err
	}

	transactions, err := u.walletRepo.ListUnlinkedExpenseTransactions(ctx)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{DryRun: dryRun, Candidates: len(transactions)}
	if dryRun {
		for _, t := range transactions {
			u.logger.WithFields(logrus.Fields{
				"transaction_id": t.ID,
				"amount":         t.Amount.StringFixed(2),
				"date":           t.Date.Format(params.DateLayout),
			}).Info("Would backfill expense")
		}
		return report, nil
	}

	for _, t := range transactions {
		userID, ok := owners[t.WalletID]
		if !ok {
			report.Failed++
			continue
		}
		log := u.logger.WithFields(logrus.Fields{
			"user_id":        userID,
			"transaction_id": t.ID,
		})

		linked, err := u.linkExisting(ctx, userID, t)
		if err != nil {
			log.WithError(err).Error("Failed to link existing expense")
			report.Failed++
			continue
		}
		if linked {
			report.Linked++
			continue
		}

		req := &params.ExpenseRequest{
			Amount:      t.Amount,
			Description: t.Description,
			Date:        t.Date.Format(params.DateLayout),
		}
		if req.Description == "" {
			req.Description = importedDescription
		}
		if t.Category != nil {
			req.CategoryName = t.Category.Name
		}

		if _, cerr := u.expenses.CreateExpense(ctx, userID, req, AdoptMirror(t.ID)); cerr != nil {
			log.WithError(cerr).Error("Failed to backfill expense")
			report.Failed++
			continue
		}
		report.Created++
	}

	u.logger.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"linked":     report.Linked,
		"created":    report.Created,
		"failed":     report.Failed,
	}).Info("Expense backfill finished")

	return report, nil
}

// linkExisting pairs the entry with an expense that matches it and has no
// mirror of its own yet.
func (u *ReconcileUsecaseImpl) linkExisting(ctx context.Context, userID uuid.UUID, t *entity.WalletTransaction) (bool, error) {
	expense, err := u.expenseRepo.FindBackfillCandidate(ctx, userID, t)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, err = u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		_, err := u.mirror.Adopt(ctx, ltx, expense, t.ID)
		return err
	})
	return err == nil, err
}

func (u *ReconcileUsecaseImpl) Audit(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{Findings: []AuditFinding{}}

	mirrors, err := u.walletRepo.ListMirroredTransactions(ctx)
	if err != nil {
		return nil, err
	}
	report.MirrorsChecked = len(mirrors)
	for _, t := range mirrors {
		if t.Expense == nil || t.MatchesExpense(t.Expense) {
			continue
		}
		transactionID, expenseID := t.ID, t.Expense.ID
		report.Findings = append(report.Findings, AuditFinding{
			Kind:          FindingMirrorMismatch,
			UserID:        t.Expense.UserID,
			ExpenseID:     &expenseID,
			TransactionID: &transactionID,
			Detail: fmt.Sprintf("expense amount %s, transaction amount %s",
				t.Expense.Amount.StringFixed(2), t.Amount.StringFixed(2)),
		})
	}

	orphans, err := u.expenseRepo.ListWithoutMirror(ctx)
	if err != nil {
		return nil, err
	}
	report.Unmirrored = len(orphans)
	for _, e := range orphans {
		expenseID := e.ID
		report.Findings = append(report.Findings, AuditFinding{
			Kind:      FindingMissingMirror,
			UserID:    e.UserID,
			ExpenseID: &expenseID,
			Detail:    fmt.Sprintf("expense of %s has no wallet transaction", e.Amount.StringFixed(2)),
		})
	}

	_, wallets, err := u.walletOwners(ctx)
	if err != nil {
		return nil, err
	}
	report.WalletsChecked = len(wallets)
	for _, w := range wallets {
		derived, err := Derive(ctx, u.walletRepo, w.ID)
		if err != nil {
			return nil, err
		}
		if derived.Total.Equal(w.TotalBalance) && derived.Available.Equal(w.AvailableBalance) {
			continue
		}
		walletID := w.ID
		report.Findings = append(report.Findings, AuditFinding{
			Kind:     FindingBalanceDrift,
			UserID:   w.UserID,
			WalletID: &walletID,
			Detail: fmt.Sprintf("stored total %s available %s, derived total %s available %s",
				w.TotalBalance.StringFixed(2), w.AvailableBalance.StringFixed(2),
				derived.Total.StringFixed(2), derived.Available.StringFixed(2)),
		})
	}

	for _, f := range report.Findings {
		metrics.AuditFindings.WithLabelValues(string(f.Kind)).Inc()
	}

	u.logger.WithFields(logrus.Fields{
		"wallets":  report.WalletsChecked,
		"mirrors":  report.MirrorsChecked,
		"findings": len(report.Findings),
	}).Info("Ledger audit finished")

	return report, nil
}

func (u *ReconcileUsecaseImpl) Repair(ctx context.Context) (*AuditReport, error) {
	report, err := u.Audit(ctx)
	if err != nil {
		return nil, err
	}

	// Mirror fixes recompute the wallet they touch, so drift on those
	// wallets is gone once they ran.
	recomputed := make(map[uuid.UUID]bool)
	for _, f := range report.Findings {
		switch f.Kind {
		case FindingMirrorMismatch, FindingMissingMirror:
			if err := u.repairMirror(ctx, f); err != nil {
				return nil, fmt.Errorf("repair %s for expense %s: %w", f.Kind, f.ExpenseID, err)
			}
			recomputed[f.UserID] = true
		}
	}
	for _, f := range report.Findings {
		if f.Kind != FindingBalanceDrift || recomputed[f.UserID] {
			continue
		}
		if _, err := u.ledger.Recompute(ctx, f.UserID); err != nil {
			return nil, fmt.Errorf("recompute wallet %s: %w", f.WalletID, err)
		}
		recomputed[f.UserID] = true
	}

	u.logger.WithField("repaired", len(report.Findings)).Info("Ledger repair finished")
	return report, nil
}

func (u *ReconcileUsecaseImpl) repairMirror(ctx context.Context, f AuditFinding) error {
	expense, err := u.expenseRepo.GetByID(ctx, f.UserID, *f.ExpenseID)
	if err != nil {
		return err
	}
	_, err = u.ledger.WithWallet(ctx, f.UserID, func(ltx *LedgerTx) error {
		if f.Kind == FindingMissingMirror {
			_, err := u.mirror.OnExpenseCreated(ctx, ltx, expense)
			return err
		}
		_, err := u.mirror.OnExpenseUpdated(ctx, ltx, expense)
		return err
	})
	return err
}
