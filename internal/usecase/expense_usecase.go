package usecase

import (
	"context"
	"errors"
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type expenseOptions struct {
	skipMirror  bool
	adoptMirror *uuid.UUID
}

type ExpenseOption func(*expenseOptions)

// SkipMirror records the expense without a wallet entry. Backfill tooling
// uses it for entries that already exist on the wallet side.
func SkipMirror() ExpenseOption {
	return func(o *expenseOptions) {
		o.skipMirror = true
	}
}

// AdoptMirror links an existing unlinked expense transaction to the new
// expense instead of creating a fresh mirror. It implies SkipMirror.
func AdoptMirror(transactionID uuid.UUID) ExpenseOption {
	return func(o *expenseOptions) {
		o.skipMirror = true
		o.adoptMirror = &transactionID
	}
}

type ExpenseUsecase interface {
	CreateExpense(ctx context.Context, userID uuid.UUID, req *params.ExpenseRequest, opts ...ExpenseOption) (*params.ExpenseMutationResponse, *response.CustomError)
	UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, req *params.ExpenseRequest) (*params.ExpenseMutationResponse, *response.CustomError)
	DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) (*params.ExpenseMutationResponse, *response.CustomError)
	GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*params.ExpenseResponse, *response.CustomError)
	ListExpenses(ctx context.Context, userID uuid.UUID, filter params.ExpenseFilter) (*params.ExpenseListResponse, *response.CustomError)
	// Statistics reports total spending, spending per category (largest
	// first) and the last six months with spending.
	Statistics(ctx context.Context, userID uuid.UUID) (*params.ExpenseStatisticsResponse, *response.CustomError)
}

const statisticsMonths = 6

type ExpenseUsecaseImpl struct {
	ledger       *Ledger
	repo         repository.ExpenseRepository
	walletRepo   repository.WalletRepository
	categories   CategoryUsecase
	categoryRepo repository.CategoryRepository
	mirror       *ExpenseMirror
	logger       *logrus.Logger
	now          func() time.Time
}

func NewExpenseUsecase(
	ledger *Ledger,
	repo repository.ExpenseRepository,
	walletRepo repository.WalletRepository,
	categoryRepo repository.CategoryRepository,
	categories CategoryUsecase,
	mirror *ExpenseMirror,
	logger *logrus.Logger,
) ExpenseUsecase {
	return &ExpenseUsecaseImpl{
		ledger:       ledger,
		repo:         repo,
		walletRepo:   walletRepo,
		categories:   categories,
		categoryRepo: categoryRepo,
		mirror:       mirror,
		logger:       logger,
		now:          time.Now,
	}
}

// applyRequest copies the request onto expense, resolving the category inside ltx.
func (u *ExpenseUsecaseImpl) applyRequest(ctx context.Context, ltx *LedgerTx, expense *entity.Expense, req *params.ExpenseRequest, date time.Time) error {
	category, err := u.categories.WithTx(ltx.DB).FindOrCreate(ctx, req.CategoryName)
	if err != nil {
		return err
	}

	expense.Amount = req.Amount
	expense.Description = req.Description
	expense.Notes = req.Notes
	expense.Date = date
	expense.Category = category
	expense.CategoryID = nil
	if category != nil {
		expense.CategoryID = &category.ID
	}
	return nil
}

func (u *ExpenseUsecaseImpl) validate(req *params.ExpenseRequest) (time.Time, *response.CustomError) {
	if !req.Amount.IsPositive() {
		return time.Time{}, response.BadRequestError("amount must be greater than zero")
	}
	if req.Description == "" {
		return time.Time{}, response.BadRequestError("description is required")
	}
	date, err := params.ParseDate(req.Date, u.now())
	if err != nil {
		return time.Time{}, response.BadRequestError(err.Error())
	}
	return date, nil
}

func (u *ExpenseUsecaseImpl) CreateExpense(ctx context.Context, userID uuid.UUID, req *params.ExpenseRequest, opts ...ExpenseOption) (*params.ExpenseMutationResponse, *response.CustomError) {
	date, cerr := u.validate(req)
	if cerr != nil {
		return nil, cerr
	}

	var options expenseOptions
	for _, opt := range opts {
		opt(&options)
	}

	expense := &entity.Expense{UserID: userID}
	var mirror *entity.WalletTransaction

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		if err := u.applyRequest(ctx, ltx, expense, req, date); err != nil {
			return err
		}
		if err := u.repo.WithTx(ltx.DB).Create(ctx, expense); err != nil {
			return err
		}

		var err error
		switch {
		case options.adoptMirror != nil:
			mirror, err = u.mirror.Adopt(ctx, ltx, expense, *options.adoptMirror)
		case !options.skipMirror:
			mirror, err = u.mirror.OnExpenseCreated(ctx, ltx, expense)
		}
		return err
	})
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to create expense")
		return nil, toCustomError(err, "failed to create expense")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"expense_id":  expense.ID,
		"amount":      expense.Amount.StringFixed(2),
		"skip_mirror": options.skipMirror,
	}).Info("Expense created")

	if mirror != nil {
		u.ledger.CheckLowBalance(ctx, wallet)
	}

	return &params.ExpenseMutationResponse{
		Expense: params.NewExpenseResponse(expense, mirror),
		Wallet:  params.NewWalletResponse(wallet),
	}, nil
}

func (u *ExpenseUsecaseImpl) lockedExpense(ctx context.Context, ltx *LedgerTx, userID, expenseID uuid.UUID) (*entity.Expense, error) {
	expense, err := u.repo.WithTx(ltx.DB).GetByID(ctx, userID, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("expense not found")
		}
		return nil, err
	}
	return expense, nil
}

func (u *ExpenseUsecaseImpl) UpdateExpense(ctx context.Context, userID, expenseID uuid.UUID, req *params.ExpenseRequest) (*params.ExpenseMutationResponse, *response.CustomError) {
	date, cerr := u.validate(req)
	if cerr != nil {
		return nil, cerr
	}

	var (
		expense *entity.Expense
		mirror  *entity.WalletTransaction
	)

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		var err error
		expense, err = u.lockedExpense(ctx, ltx, userID, expenseID)
		if err != nil {
			return err
		}
		if err := u.applyRequest(ctx, ltx, expense, req, date); err != nil {
			return err
		}
		if err := u.repo.WithTx(ltx.DB).Update(ctx, expense); err != nil {
			return err
		}
		mirror, err = u.mirror.OnExpenseUpdated(ctx, ltx, expense)
		return err
	})
	if err != nil {
		return nil, toCustomError(err, "failed to update expense")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"expense_id": expense.ID,
		"amount":     expense.Amount.StringFixed(2),
	}).Info("Expense updated")

	if mirror != nil {
		u.ledger.CheckLowBalance(ctx, wallet)
	}

	return &params.ExpenseMutationResponse{
		Expense: params.NewExpenseResponse(expense, mirror),
		Wallet:  params.NewWalletResponse(wallet),
	}, nil
}

func (u *ExpenseUsecaseImpl) DeleteExpense(ctx context.Context, userID, expenseID uuid.UUID) (*params.ExpenseMutationResponse, *response.CustomError) {
	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		if _, err := u.lockedExpense(ctx, ltx, userID, expenseID); err != nil {
			return err
		}
		if err := u.mirror.OnExpenseDeleted(ctx, ltx, expenseID); err != nil {
			return err
		}
		return u.repo.WithTx(ltx.DB).Delete(ctx, expenseID)
	})
	if err != nil {
		return nil, toCustomError(err, "failed to delete expense")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"expense_id": expenseID,
	}).Info("Expense deleted")

	return &params.ExpenseMutationResponse{Wallet: params.NewWalletResponse(wallet)}, nil
}

func (u *ExpenseUsecaseImpl) GetExpense(ctx context.Context, userID, expenseID uuid.UUID) (*params.ExpenseResponse, *response.CustomError) {
	expense, err := u.repo.GetByID(ctx, userID, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("expense not found")
		}
		return nil, response.RepositoryError("failed to get expense")
	}

	mirror, err := u.walletRepo.GetTransactionByExpenseID(ctx, expense.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.RepositoryError("failed to get expense transaction")
	}

	return params.NewExpenseResponse(expense, mirror), nil
}

func (u *ExpenseUsecaseImpl) ListExpenses(ctx context.Context, userID uuid.UUID, filter params.ExpenseFilter) (*params.ExpenseListResponse, *response.CustomError) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	resp := &params.ExpenseListResponse{
		Expenses: []*params.ExpenseResponse{},
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}

	var categoryID *uuid.UUID
	if name := NormalizeCategoryName(filter.Category); name != "" {
		category, err := u.categoryRepo.GetByName(ctx, name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		if err != nil {
			return nil, response.RepositoryError("failed to get category")
		}
		categoryID = &category.ID
	}

	expenses, err := u.repo.ListByUserID(ctx, userID, categoryID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, response.RepositoryError("failed to list expenses")
	}
	total, err := u.repo.CountByUserID(ctx, userID, categoryID)
	if err != nil {
		return nil, response.RepositoryError("failed to count expenses")
	}

	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, params.NewExpenseResponse(e, nil))
	}
	resp.Total = total
	return resp, nil
}

func (u *ExpenseUsecaseImpl) Statistics(ctx context.Context, userID uuid.UUID) (*params.ExpenseStatisticsResponse, *response.CustomError) {
	total, err := u.repo.SumByUserID(ctx, userID)
	if err != nil {
		return nil, response.RepositoryError("failed to compute expense statistics")
	}
	byCategory, err := u.repo.SumByCategory(ctx, userID)
	if err != nil {
		return nil, response.RepositoryError("failed to compute expense statistics")
	}
	byMonth, err := u.repo.SumByMonth(ctx, userID, statisticsMonths)
	if err != nil {
		return nil, response.RepositoryError("failed to compute expense statistics")
	}

	resp := &params.ExpenseStatisticsResponse{
		Total:      total,
		ByCategory: make([]*params.CategoryTotalResponse, len(byCategory)),
		ByMonth:    make([]*params.MonthTotalResponse, len(byMonth)),
	}
	for i, row := range byCategory {
		item := &params.CategoryTotalResponse{
			CategoryID: row.CategoryID,
			Category:   entity.UncategorizedLabel,
			Color:      entity.DefaultCategoryColor,
			Total:      row.Total,
			Count:      row.Count,
		}
		if row.Name != nil {
			item.Category = *row.Name
		}
		if row.Color != nil {
			item.Color = *row.Color
		}
		resp.ByCategory[i] = item
	}
	for i, row := range byMonth {
		resp.ByMonth[i] = &params.MonthTotalResponse{Month: row.Month, Total: row.Total}
	}
	return resp, nil
}
