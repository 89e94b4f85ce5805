package usecase

import (
	"context"
	"errors"
	"fmt"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/metrics"
	"go-finance-ledger/internal/notify"
	"go-finance-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Balances is a wallet's derived state.
type Balances struct {
	Total     decimal.Decimal
	Available decimal.Decimal
}

// Derive computes both balances from the wallet's full history:
// total = income - expense, available = total - allocated.
func Derive(ctx context.Context, repo repository.WalletRepository, walletID uuid.UUID) (Balances, error) {
	income, err := repo.SumTransactions(ctx, walletID, entity.TransactionTypeIncome)
	if err != nil {
		return Balances{}, err
	}
	expense, err := repo.SumTransactions(ctx, walletID, entity.TransactionTypeExpense)
	if err != nil {
		return Balances{}, err
	}
	allocated, err := repo.SumAllocations(ctx, walletID)
	if err != nil {
		return Balances{}, err
	}

	total := income.Sub(expense)
	return Balances{
		Total:     total,
		Available: total.Sub(allocated),
	}, nil
}

// LedgerTx is handed to callbacks running under the wallet lock. Every
// repository used inside the callback must be bound to DB.
type LedgerTx struct {
	DB      *gorm.DB
	Wallets repository.WalletRepository
	Wallet  *entity.Wallet
}

// Recompute refreshes the locked wallet's balances inside the transaction.
func (t *LedgerTx) Recompute(ctx context.Context) (*entity.Wallet, error) {
	balances, err := Derive(ctx, t.Wallets, t.Wallet.ID)
	if err != nil {
		metrics.WalletRecomputes.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	t.Wallet.TotalBalance = balances.Total
	t.Wallet.AvailableBalance = balances.Available
	if err := t.Wallets.SaveBalances(ctx, t.Wallet); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			metrics.WalletRecomputes.WithLabelValues(metrics.OutcomeConflict).Inc()
			return nil, ErrWalletConflict
		}
		metrics.WalletRecomputes.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.WalletRecomputes.WithLabelValues(metrics.OutcomeOK).Inc()
	return t.Wallet, nil
}

// Ledger serializes every write to a wallet and recomputes its balances
// before the write commits.
type Ledger struct {
	walletRepo repository.WalletRepository
	userRepo   repository.UserRepository
	logger     *logrus.Logger
	cache      *redis.Client
	notifier   notify.Notifier
	threshold  decimal.Decimal
	locks      *keyedMutex
}

func NewLedger(
	walletRepo repository.WalletRepository,
	userRepo repository.UserRepository,
	logger *logrus.Logger,
	cache *redis.Client,
	notifier notify.Notifier,
	lowBalanceThreshold decimal.Decimal,
) *Ledger {
	return &Ledger{
		walletRepo: walletRepo,
		userRepo:   userRepo,
		logger:     logger,
		cache:      cache,
		notifier:   notifier,
		threshold:  lowBalanceThreshold,
		locks:      newKeyedMutex(),
	}
}

// WithWallet runs fn while holding the user's wallet exclusively: an
// in-process lock, a database transaction and a row lock on the wallet. The
// wallet is created if the user has none yet. After fn succeeds the balances
// are recomputed once in the same transaction and the transaction commits.
// fn may also call Recompute itself when it needs fresh balances.
func (l *Ledger) WithWallet(ctx context.Context, userID uuid.UUID, fn func(ltx *LedgerTx) error) (*entity.Wallet, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	tx := l.walletRepo.BeginTx(ctx)
	if tx.Error != nil {
		l.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	txRepo := l.walletRepo.WithTx(tx)

	wallet, err := txRepo.GetByUserIDForUpdate(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet, err = l.createWallet(ctx, txRepo, userID)
	}
	if err != nil {
		return nil, err
	}

	ltx := &LedgerTx{DB: tx, Wallets: txRepo, Wallet: wallet}

	if fn != nil {
		if err := fn(ltx); err != nil {
			return nil, err
		}
	}

	if _, err := ltx.Recompute(ctx); err != nil {
		l.logger.WithError(err).WithField("wallet_id", wallet.ID).Error("Failed to recompute wallet")
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		l.logger.WithError(err).Error("Failed to commit transaction")
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.invalidateHistory(ctx, userID)

	l.logger.WithFields(logrus.Fields{
		"user_id":           userID,
		"wallet_id":         wallet.ID,
		"total_balance":     wallet.TotalBalance.StringFixed(2),
		"available_balance": wallet.AvailableBalance.StringFixed(2),
		"version":           wallet.Version,
	}).Debug("Wallet recomputed")

	return wallet, nil
}

// createWallet provisions a wallet on first use. Another process may insert
// the same user's wallet between our read and write; that row is then locked
// and used instead.
func (l *Ledger) createWallet(ctx context.Context, txRepo repository.WalletRepository, userID uuid.UUID) (*entity.Wallet, error) {
	wallet := &entity.Wallet{UserID: userID, Version: 1}
	created, err := txRepo.CreateIfAbsent(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if !created {
		l.logger.WithField("user_id", userID).Debug("Wallet created concurrently, re-reading")
		return txRepo.GetByUserIDForUpdate(ctx, userID)
	}
	l.logger.WithField("user_id", userID).Info("Wallet created on first use")
	return wallet, nil
}

// Recompute rederives the user's balances from history and stores them.
func (l *Ledger) Recompute(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	return l.WithWallet(ctx, userID, nil)
}

// CheckLowBalance alerts the owner when an expense left the available
// balance under the configured threshold.
func (l *Ledger) CheckLowBalance(ctx context.Context, wallet *entity.Wallet) {
	if l.notifier == nil || !wallet.AvailableBalance.LessThan(l.threshold) {
		return
	}

	user, err := l.userRepo.GetByID(ctx, wallet.UserID)
	if err != nil {
		l.logger.WithError(err).WithField("user_id", wallet.UserID).Warn("Skipping low balance alert")
		return
	}

	l.logger.WithFields(logrus.Fields{
		"user_id":           wallet.UserID,
		"available_balance": wallet.AvailableBalance.StringFixed(2),
		"threshold":         l.threshold.StringFixed(2),
	}).Info("Available balance below threshold")

	l.notifier.LowBalance(user.Email, user.Name, wallet.AvailableBalance, l.threshold)
}

// historyCacheKey keys on the raw offset; pages derived from it collide when
// offset is not a multiple of limit.
func historyCacheKey(userID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("transactions:%s:%d:%d", userID.String(), limit, offset)
}

func historyCachePattern(userID uuid.UUID) string {
	return fmt.Sprintf("transactions:%s:*", userID.String())
}

func (l *Ledger) invalidateHistory(ctx context.Context, userID uuid.UUID) {
	if l.cache == nil {
		return
	}

	keys, err := l.cache.Keys(ctx, historyCachePattern(userID)).Result()
	if err != nil {
		l.logger.WithError(err).Warn("Failed to fetch transaction cache keys for invalidation")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := l.cache.Del(ctx, keys...).Err(); err != nil {
		l.logger.WithError(err).Warn("Failed to invalidate transaction cache")
		return
	}
	l.logger.WithField("cache_keys", keys).Debug("Invalidated transaction cache")
}

// NotifyGoalCompleted tells the owner a goal just reached its target.
func (l *Ledger) NotifyGoalCompleted(ctx context.Context, userID uuid.UUID, goal *entity.Goal) {
	if l.notifier == nil {
		return
	}

	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		l.logger.WithError(err).WithField("user_id", userID).Warn("Skipping goal completion notification")
		return
	}
	l.notifier.GoalCompleted(user.Email, user.Name, goal.Title, goal.TargetAmount)
}
