package repository

import (
	"context"
	"errors"
	"fmt"
	"go-finance-ledger/internal/entity"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict is returned when the wallet row changed between the
// locked read and the balance write.
var ErrVersionConflict = errors.New("optimistic lock error: wallet was modified by another transaction")

type WalletRepository interface {
	CreateIfAbsent(ctx context.Context, wallet *entity.Wallet) (bool, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	ListWallets(ctx context.Context) ([]*entity.Wallet, error)
	SaveBalances(ctx context.Context, wallet *entity.Wallet) error

	SumTransactions(ctx context.Context, walletID uuid.UUID, txType entity.TransactionType) (decimal.Decimal, error)
	SumAllocations(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)

	CreateTransaction(ctx context.Context, transaction *entity.WalletTransaction) error
	UpdateTransaction(ctx context.Context, transaction *entity.WalletTransaction) error
	DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error
	GetTransaction(ctx context.Context, walletID, transactionID uuid.UUID) (*entity.WalletTransaction, error)
	GetTransactionByExpenseID(ctx context.Context, expenseID uuid.UUID) (*entity.WalletTransaction, error)
	CountTransactionsByExpenseID(ctx context.Context, expenseID uuid.UUID) (int64, error)
	GetTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error)
	CountTransactionsByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error)
	ListUnlinkedExpenseTransactions(ctx context.Context) ([]*entity.WalletTransaction, error)
	ListMirroredTransactions(ctx context.Context) ([]*entity.WalletTransaction, error)

	CreateAllocation(ctx context.Context, allocation *entity.GoalAllocation) error
	UpdateAllocationAmount(ctx context.Context, allocationID uuid.UUID, amount decimal.Decimal) error
	GetAllocation(ctx context.Context, walletID, allocationID uuid.UUID) (*entity.GoalAllocation, error)
	SumAllocationsByGoal(ctx context.Context, goalID uuid.UUID) (decimal.Decimal, error)
	DeleteAllocationsByGoal(ctx context.Context, goalID uuid.UUID) error

	BeginTx(ctx context.Context) *gorm.DB
	WithTx(tx *gorm.DB) WalletRepository
}

type WalletRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewWalletRepository(db *gorm.DB, logger *logrus.Logger) WalletRepository {
	return &WalletRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// CreateIfAbsent inserts the wallet unless the user already has one and
// reports whether a row was written. A concurrent first insert for the same
// user is absorbed instead of failing the unique index.
func (r *WalletRepositoryImpl) CreateIfAbsent(ctx context.Context, wallet *entity.Wallet) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(wallet)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("user_id", wallet.UserID).Error("Failed to create wallet in database")
		return false, fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *WalletRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	var wallet entity.Wallet

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet by user ID")
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// GetByUserIDForUpdate takes a row lock on the wallet; call it on a
// repository bound to a transaction.
func (r *WalletRepositoryImpl) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	var wallet entity.Wallet

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet by user ID for update")
		return nil, fmt.Errorf("failed to get wallet for update: %w", err)
	}

	return &wallet, nil
}

func (r *WalletRepositoryImpl) ListWallets(ctx context.Context) ([]*entity.Wallet, error) {
	var wallets []*entity.Wallet
	if err := r.db.WithContext(ctx).Order("created_at").Find(&wallets).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list wallets")
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// SaveBalances writes both balances and bumps the version. The row is always
// written, even when the balances did not change.
func (r *WalletRepositoryImpl) SaveBalances(ctx context.Context, wallet *entity.Wallet) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]interface{}{
			"total_balance":     wallet.TotalBalance,
			"available_balance": wallet.AvailableBalance,
			"version":           wallet.Version + 1,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("wallet_id", wallet.ID).Error("Failed to update wallet balance")
		return fmt.Errorf("failed to update wallet balance: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	wallet.Version++
	return nil
}

func (r *WalletRepositoryImpl) sum(ctx context.Context, model interface{}, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(model).
		Select("SUM(amount)").
		Where(query, args...).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *WalletRepositoryImpl) SumTransactions(ctx context.Context, walletID uuid.UUID, txType entity.TransactionType) (decimal.Decimal, error) {
	total, err := r.sum(ctx, &entity.WalletTransaction{}, "wallet_id = ? AND transaction_type = ?", walletID, txType)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"wallet_id": walletID,
			"type":      txType,
		}).Error("Failed to sum wallet transactions")
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

func (r *WalletRepositoryImpl) SumAllocations(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	total, err := r.sum(ctx, &entity.GoalAllocation{}, "wallet_id = ?", walletID)
	if err != nil {
		r.logger.WithError(err).WithField("wallet_id", walletID).Error("Failed to sum goal allocations")
		return decimal.Zero, fmt.Errorf("failed to sum allocations: %w", err)
	}
	return total, nil
}

func (r *WalletRepositoryImpl) CreateTransaction(ctx context.Context, transaction *entity.WalletTransaction) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(transaction).Error; err != nil {
		r.logger.WithError(err).WithField("wallet_id", transaction.WalletID).Error("Failed to create transaction in database")
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) UpdateTransaction(ctx context.Context, transaction *entity.WalletTransaction) error {
	err := r.db.WithContext(ctx).
		Model(&entity.WalletTransaction{}).
		Where("id = ?", transaction.ID).
		Updates(map[string]interface{}{
			"amount":      transaction.Amount,
			"category_id": transaction.CategoryID,
			"expense_id":  transaction.ExpenseID,
			"description": transaction.Description,
			"date":        transaction.Date,
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		r.logger.WithError(err).WithField("transaction_id", transaction.ID).Error("Failed to update transaction")
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&entity.WalletTransaction{}, "id = ?", transactionID).Error; err != nil {
		r.logger.WithError(err).WithField("transaction_id", transactionID).Error("Failed to delete transaction")
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) GetTransaction(ctx context.Context, walletID, transactionID uuid.UUID) (*entity.WalletTransaction, error) {
	var transaction entity.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND wallet_id = ?", transactionID, walletID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("transaction_id", transactionID).Error("Failed to get transaction")
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

func (r *WalletRepositoryImpl) GetTransactionByExpenseID(ctx context.Context, expenseID uuid.UUID) (*entity.WalletTransaction, error) {
	var transaction entity.WalletTransaction
	err := r.db.WithContext(ctx).Where("expense_id = ?", expenseID).First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("expense_id", expenseID).Error("Failed to get mirror transaction")
		return nil, fmt.Errorf("failed to get mirror transaction: %w", err)
	}
	return &transaction, nil
}

func (r *WalletRepositoryImpl) CountTransactionsByExpenseID(ctx context.Context, expenseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.WalletTransaction{}).
		Where("expense_id = ?", expenseID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count mirror transactions: %w", err)
	}
	return count, nil
}

func (r *WalletRepositoryImpl) GetTransactionsByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	var transactions []*entity.WalletTransaction

	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("wallet_id = ?", walletID).
		Order("date DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error

	if err != nil {
		r.logger.WithError(err).WithField("wallet_id", walletID).Error("Failed to get transactions")
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return transactions, nil
}

func (r *WalletRepositoryImpl) CountTransactionsByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.WalletTransaction{}).
		Where("wallet_id = ?", walletID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *WalletRepositoryImpl) ListUnlinkedExpenseTransactions(ctx context.Context) ([]*entity.WalletTransaction, error) {
	var transactions []*entity.WalletTransaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("transaction_type = ? AND expense_id IS NULL", entity.TransactionTypeExpense).
		Order("date").
		Find(&transactions).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list unlinked expense transactions")
		return nil, fmt.Errorf("failed to list unlinked transactions: %w", err)
	}
	return transactions, nil
}

func (r *WalletRepositoryImpl) ListMirroredTransactions(ctx context.Context) ([]*entity.WalletTransaction, error) {
	var transactions []*entity.WalletTransaction
	err := r.db.WithContext(ctx).
		Preload("Expense").
		Where("expense_id IS NOT NULL").
		Find(&transactions).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list mirrored transactions")
		return nil, fmt.Errorf("failed to list mirrored transactions: %w", err)
	}
	return transactions, nil
}

func (r *WalletRepositoryImpl) CreateAllocation(ctx context.Context, allocation *entity.GoalAllocation) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(allocation).Error; err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"wallet_id": allocation.WalletID,
			"goal_id":   allocation.GoalID,
		}).Error("Failed to create goal allocation")
		return fmt.Errorf("failed to create allocation: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) UpdateAllocationAmount(ctx context.Context, allocationID uuid.UUID, amount decimal.Decimal) error {
	err := r.db.WithContext(ctx).
		Model(&entity.GoalAllocation{}).
		Where("id = ?", allocationID).
		Updates(map[string]interface{}{
			"amount":     amount,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		r.logger.WithError(err).WithField("allocation_id", allocationID).Error("Failed to update goal allocation")
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) GetAllocation(ctx context.Context, walletID, allocationID uuid.UUID) (*entity.GoalAllocation, error) {
	var allocation entity.GoalAllocation
	err := r.db.WithContext(ctx).
		Where("id = ? AND wallet_id = ?", allocationID, walletID).
		First(&allocation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("allocation_id", allocationID).Error("Failed to get goal allocation")
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return &allocation, nil
}

func (r *WalletRepositoryImpl) SumAllocationsByGoal(ctx context.Context, goalID uuid.UUID) (decimal.Decimal, error) {
	total, err := r.sum(ctx, &entity.GoalAllocation{}, "goal_id = ?", goalID)
	if err != nil {
		r.logger.WithError(err).WithField("goal_id", goalID).Error("Failed to sum goal allocations")
		return decimal.Zero, fmt.Errorf("failed to sum goal allocations: %w", err)
	}
	return total, nil
}

func (r *WalletRepositoryImpl) DeleteAllocationsByGoal(ctx context.Context, goalID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&entity.GoalAllocation{}, "goal_id = ?", goalID).Error; err != nil {
		r.logger.WithError(err).WithField("goal_id", goalID).Error("Failed to delete goal allocations")
		return fmt.Errorf("failed to delete allocations: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) BeginTx(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Begin()
}

func (r *WalletRepositoryImpl) WithTx(tx *gorm.DB) WalletRepository {
	return &WalletRepositoryImpl{
		db:     tx,
		logger: r.logger,
	}
}
