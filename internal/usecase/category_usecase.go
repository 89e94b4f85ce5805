package usecase

import (
	"context"
	"errors"
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/repository"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type CategoryUsecase interface {
	// FindOrCreate returns the category for name, creating it on first use.
	// A blank name yields nil, which means uncategorized.
	FindOrCreate(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context) ([]*params.CategoryResponse, *response.CustomError)
	WithTx(tx *gorm.DB) CategoryUsecase
}

type CategoryUsecaseImpl struct {
	repo   repository.CategoryRepository
	logger *logrus.Logger
}

func NewCategoryUsecase(repo repository.CategoryRepository, logger *logrus.Logger) CategoryUsecase {
	return &CategoryUsecaseImpl{
		repo:   repo,
		logger: logger,
	}
}

// NormalizeCategoryName trims, collapses inner whitespace and title-cases.
func NormalizeCategoryName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(name)
}

func (u *CategoryUsecaseImpl) FindOrCreate(ctx context.Context, name string) (*entity.Category, error) {
	normalized := NormalizeCategoryName(name)
	if normalized == "" {
		return nil, nil
	}

	category, err := u.repo.GetByName(ctx, normalized)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category, err = u.repo.CreateIfAbsent(ctx, &entity.Category{
		Name:  normalized,
		Icon:  entity.DefaultCategoryIcon,
		Color: entity.DefaultCategoryColor,
	})
	if err != nil {
		return nil, err
	}

	u.logger.WithFields(logrus.Fields{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("Category created")

	return category, nil
}

func (u *CategoryUsecaseImpl) List(ctx context.Context) ([]*params.CategoryResponse, *response.CustomError) {
	categories, err := u.repo.List(ctx)
	if err != nil {
		return nil, response.RepositoryError("failed to list categories")
	}

	resp := make([]*params.CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = params.NewCategoryResponse(c)
	}
	return resp, nil
}

func (u *CategoryUsecaseImpl) WithTx(tx *gorm.DB) CategoryUsecase {
	return &CategoryUsecaseImpl{
		repo:   u.repo.WithTx(tx),
		logger: u.logger,
	}
}
