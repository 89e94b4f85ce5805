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

type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	Update(ctx context.Context, expense *entity.Expense) error
	Delete(ctx context.Context, expenseID uuid.UUID) error
	GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*entity.Expense, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, limit, offset int) ([]*entity.Expense, error)
	CountByUserID(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) (int64, error)

	// FindBackfillCandidate returns the oldest expense of the user that has
	// no mirror yet and carries the same amount and date.
	FindBackfillCandidate(ctx context.Context, userID uuid.UUID, transaction *entity.WalletTransaction) (*entity.Expense, error)

	ListWithoutMirror(ctx context.Context) ([]*entity.Expense, error)

	SumByUserID(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	SumByCategory(ctx context.Context, userID uuid.UUID) ([]*CategoryTotal, error)
	// SumByMonth returns the most recent months with spending, newest first.
	SumByMonth(ctx context.Context, userID uuid.UUID, months int) ([]*MonthTotal, error)

	WithTx(tx *gorm.DB) ExpenseRepository
}

// CategoryTotal is one row of spending grouped by category. Name and Color are
// nil for uncategorized expenses.
type CategoryTotal struct {
	CategoryID *uuid.UUID
	Name       *string
	Color      *string
	Total      decimal.Decimal
	Count      int64
}

type MonthTotal struct {
	Month string // YYYY-MM
	Total decimal.Decimal
}

type ExpenseRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewExpenseRepository(db *gorm.DB, logger *logrus.Logger) ExpenseRepository {
	return &ExpenseRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepositoryImpl) Create(ctx context.Context, expense *entity.Expense) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(expense).Error; err != nil {
		r.logger.WithError(err).WithField("user_id", expense.UserID).Error("Failed to create expense")
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepositoryImpl) Update(ctx context.Context, expense *entity.Expense) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Where("id = ?", expense.ID).
		Updates(map[string]interface{}{
			"amount":      expense.Amount,
			"category_id": expense.CategoryID,
			"description": expense.Description,
			"notes":       expense.Notes,
			"date":        expense.Date,
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		r.logger.WithError(err).WithField("expense_id", expense.ID).Error("Failed to update expense")
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepositoryImpl) Delete(ctx context.Context, expenseID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&entity.Expense{}, "id = ?", expenseID).Error; err != nil {
		r.logger.WithError(err).WithField("expense_id", expenseID).Error("Failed to delete expense")
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepositoryImpl) GetByID(ctx context.Context, userID, expenseID uuid.UUID) (*entity.Expense, error) {
	var expense entity.Expense
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", expenseID, userID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("expense_id", expenseID).Error("Failed to get expense")
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &expense, nil
}

func (r *ExpenseRepositoryImpl) byUser(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Expense{}).Where("user_id = ?", userID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	return query
}

func (r *ExpenseRepositoryImpl) ListByUserID(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, limit, offset int) ([]*entity.Expense, error) {
	var expenses []*entity.Expense
	err := r.byUser(ctx, userID, categoryID).
		Preload("Category").
		Order("date DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to list expenses")
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepositoryImpl) CountByUserID(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) (int64, error) {
	var count int64
	err := r.byUser(ctx, userID, categoryID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

func (r *ExpenseRepositoryImpl) FindBackfillCandidate(ctx context.Context, userID uuid.UUID, transaction *entity.WalletTransaction) (*entity.Expense, error) {
	var expense entity.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND amount = ? AND date = ?", userID, transaction.Amount, transaction.Date).
		Where("NOT EXISTS (SELECT 1 FROM wallet_transactions wt WHERE wt.expense_id = expenses.id)").
		Order("created_at").
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find backfill candidate: %w", err)
	}
	return &expense, nil
}

func (r *ExpenseRepositoryImpl) ListWithoutMirror(ctx context.Context) ([]*entity.Expense, error) {
	var expenses []*entity.Expense
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("NOT EXISTS (SELECT 1 FROM wallet_transactions wt WHERE wt.expense_id = expenses.id)").
		Order("created_at").
		Find(&expenses).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list expenses without mirror")
		return nil, fmt.Errorf("failed to list expenses without mirror: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepositoryImpl) SumByUserID(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Select("SUM(amount)").
		Where("user_id = ?", userID).
		Row().
		Scan(&total)
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to sum expenses")
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *ExpenseRepositoryImpl) SumByCategory(ctx context.Context, userID uuid.UUID) ([]*CategoryTotal, error) {
	var rows []*CategoryTotal
	err := r.db.WithContext(ctx).
		Table("expenses AS e").
		Select("e.category_id AS category_id, c.name AS name, c.color AS color, SUM(e.amount) AS total, COUNT(e.id) AS count").
		Joins("LEFT JOIN categories c ON c.id = e.category_id").
		Where("e.user_id = ?", userID).
		Group("e.category_id, c.name, c.color").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to sum expenses by category")
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}
	return rows, nil
}

func (r *ExpenseRepositoryImpl) SumByMonth(ctx context.Context, userID uuid.UUID, months int) ([]*MonthTotal, error) {
	month := "to_char(date, 'YYYY-MM')"
	if r.db.Dialector.Name() == "sqlite" {
		month = "strftime('%Y-%m', date)"
	}

	var rows []*MonthTotal
	err := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Select(month+" AS month, SUM(amount) AS total").
		Where("user_id = ?", userID).
		Group("month").
		Order("month DESC").
		Limit(months).
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to sum expenses by month")
		return nil, fmt.Errorf("failed to sum expenses by month: %w", err)
	}
	return rows, nil
}

func (r *ExpenseRepositoryImpl) WithTx(tx *gorm.DB) ExpenseRepository {
	return &ExpenseRepositoryImpl{
		db:     tx,
		logger: r.logger,
	}
}
