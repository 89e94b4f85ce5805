package repository

import (
	"context"
	"errors"
	"fmt"
	"go-finance-ledger/internal/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	// CreateIfAbsent inserts the category unless one with the same name
	// exists and returns the stored row either way.
	CreateIfAbsent(ctx context.Context, category *entity.Category) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	WithTx(tx *gorm.DB) CategoryRepository
}

type CategoryRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewCategoryRepository(db *gorm.DB, logger *logrus.Logger) CategoryRepository {
	return &CategoryRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepositoryImpl) CreateIfAbsent(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	// No conflict target: postgres enforces uniqueness on LOWER(name).
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(category)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("name", category.Name).Error("Failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return category, nil
	}
	return r.GetByName(ctx, category.Name)
}

// GetByName matches case-insensitively.
func (r *CategoryRepositoryImpl) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("name", name).Error("Failed to get category by name")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepositoryImpl) List(ctx context.Context) ([]*entity.Category, error) {
	var categories []*entity.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepositoryImpl) WithTx(tx *gorm.DB) CategoryRepository {
	return &CategoryRepositoryImpl{
		db:     tx,
		logger: r.logger,
	}
}
