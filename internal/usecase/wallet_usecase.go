package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/metrics"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/repository"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const historyCacheTTL = 5 * time.Minute

type WalletUsecase interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*params.WalletResponse, *response.CustomError)
	Recompute(ctx context.Context, userID uuid.UUID) (*params.WalletResponse, *response.CustomError)
	AddTransaction(ctx context.Context, userID uuid.UUID, req *params.CreateTransactionRequest) (*params.LedgerEntryResponse, *response.CustomError)
	UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, req *params.UpdateTransactionRequest) (*params.LedgerEntryResponse, *response.CustomError)
	DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*params.LedgerEntryResponse, *response.CustomError)
	GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) (*params.TransactionHistoryResponse, *response.CustomError)
	AllocateToGoal(ctx context.Context, userID uuid.UUID, req *params.AllocateRequest) (*params.AllocationResponse, *response.CustomError)
	UpdateAllocation(ctx context.Context, userID, allocationID uuid.UUID, req *params.UpdateAllocationRequest) (*params.AllocationResponse, *response.CustomError)
}

type WalletUsecaseImpl struct {
	ledger     *Ledger
	repo       repository.WalletRepository
	goalRepo   repository.GoalRepository
	categories CategoryUsecase
	logger     *logrus.Logger
	cache      *redis.Client
	now        func() time.Time
}

func NewWalletUsecase(
	ledger *Ledger,
	repo repository.WalletRepository,
	goalRepo repository.GoalRepository,
	categories CategoryUsecase,
	logger *logrus.Logger,
	cache *redis.Client,
) WalletUsecase {
	return &WalletUsecaseImpl{
		ledger:     ledger,
		repo:       repo,
		goalRepo:   goalRepo,
		categories: categories,
		logger:     logger,
		cache:      cache,
		now:        time.Now,
	}
}

func (u *WalletUsecaseImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*params.WalletResponse, *response.CustomError) {
	wallet, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("wallet not found")
		}
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet")
		return nil, response.RepositoryError("failed to get wallet")
	}
	return params.NewWalletResponse(wallet), nil
}

func (u *WalletUsecaseImpl) Recompute(ctx context.Context, userID uuid.UUID) (*params.WalletResponse, *response.CustomError) {
	wallet, err := u.ledger.Recompute(ctx, userID)
	if err != nil {
		return nil, toCustomError(err, "failed to recompute wallet")
	}
	return params.NewWalletResponse(wallet), nil
}

func (u *WalletUsecaseImpl) AddTransaction(ctx context.Context, userID uuid.UUID, req *params.CreateTransactionRequest) (*params.LedgerEntryResponse, *response.CustomError) {
	if !req.Amount.IsPositive() {
		return nil, response.BadRequestError("amount must be greater than zero")
	}
	if !req.Type.Valid() {
		return nil, response.BadRequestError("transaction_type must be income or expense")
	}
	date, err := params.ParseDate(req.Date, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	var transaction *entity.WalletTransaction

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		category, err := u.categories.WithTx(ltx.DB).FindOrCreate(ctx, req.CategoryName)
		if err != nil {
			return err
		}

		transaction = &entity.WalletTransaction{
			WalletID:    ltx.Wallet.ID,
			Type:        req.Type,
			Amount:      req.Amount,
			Description: req.Description,
			Date:        date,
			Category:    category,
		}
		if category != nil {
			transaction.CategoryID = &category.ID
		}
		return ltx.Wallets.CreateTransaction(ctx, transaction)
	})
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to add wallet transaction")
		return nil, toCustomError(err, "failed to create transaction")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":           userID,
		"transaction_id":    transaction.ID,
		"type":              transaction.Type,
		"amount":            transaction.Amount.StringFixed(2),
		"available_balance": wallet.AvailableBalance.StringFixed(2),
	}).Info("Wallet transaction recorded")

	if transaction.Type == entity.TransactionTypeExpense {
		u.ledger.CheckLowBalance(ctx, wallet)
	}

	return &params.LedgerEntryResponse{
		Transaction: params.NewTransactionResponse(transaction),
		Wallet:      params.NewWalletResponse(wallet),
	}, nil
}

// lockedTransaction loads an entry the caller may edit directly.
func lockedTransaction(ctx context.Context, ltx *LedgerTx, transactionID uuid.UUID) (*entity.WalletTransaction, error) {
	transaction, err := ltx.Wallets.GetTransaction(ctx, ltx.Wallet.ID, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("transaction not found")
		}
		return nil, err
	}
	if transaction.IsMirror() {
		return nil, ErrManagedByExpense
	}
	return transaction, nil
}

func (u *WalletUsecaseImpl) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, req *params.UpdateTransactionRequest) (*params.LedgerEntryResponse, *response.CustomError) {
	if !req.Amount.IsPositive() {
		return nil, response.BadRequestError("amount must be greater than zero")
	}
	date, err := params.ParseDate(req.Date, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	var transaction *entity.WalletTransaction

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		var err error
		transaction, err = lockedTransaction(ctx, ltx, transactionID)
		if err != nil {
			return err
		}

		category, err := u.categories.WithTx(ltx.DB).FindOrCreate(ctx, req.CategoryName)
		if err != nil {
			return err
		}

		transaction.Amount = req.Amount
		transaction.Description = req.Description
		transaction.Date = date
		transaction.Category = category
		transaction.CategoryID = nil
		if category != nil {
			transaction.CategoryID = &category.ID
		}
		return ltx.Wallets.UpdateTransaction(ctx, transaction)
	})
	if err != nil {
		return nil, toCustomError(err, "failed to update transaction")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": transactionID,
		"amount":         req.Amount.StringFixed(2),
	}).Info("Wallet transaction updated")

	if transaction.Type == entity.TransactionTypeExpense {
		u.ledger.CheckLowBalance(ctx, wallet)
	}

	return &params.LedgerEntryResponse{
		Transaction: params.NewTransactionResponse(transaction),
		Wallet:      params.NewWalletResponse(wallet),
	}, nil
}

func (u *WalletUsecaseImpl) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*params.LedgerEntryResponse, *response.CustomError) {
	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		if _, err := lockedTransaction(ctx, ltx, transactionID); err != nil {
			return err
		}
		return ltx.Wallets.DeleteTransaction(ctx, transactionID)
	})
	if err != nil {
		return nil, toCustomError(err, "failed to delete transaction")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": transactionID,
	}).Info("Wallet transaction deleted")

	return &params.LedgerEntryResponse{Wallet: params.NewWalletResponse(wallet)}, nil
}

func (u *WalletUsecaseImpl) GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) (*params.TransactionHistoryResponse, *response.CustomError) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	page := (offset / limit) + 1
	cacheKey := historyCacheKey(userID, limit, offset)

	if u.cache != nil {
		if val, err := u.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached params.TransactionHistoryResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				u.logger.WithField("cache_key", cacheKey).Debug("Cache hit for transaction history")
				return &cached, nil
			}
		}
	}

	wallet, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("wallet not found")
		}
		return nil, response.RepositoryError("failed to get wallet")
	}

	transactions, err := u.repo.GetTransactionsByWalletID(ctx, wallet.ID, limit, offset)
	if err != nil {
		u.logger.WithError(err).Error("Failed to get transaction history")
		return nil, response.RepositoryError("failed to get transaction history")
	}

	total, err := u.repo.CountTransactionsByWalletID(ctx, wallet.ID)
	if err != nil {
		u.logger.WithError(err).Error("Failed to get total transactions")
		return nil, response.RepositoryError("failed to get total transactions")
	}

	transactionResponses := make([]*params.TransactionResponse, len(transactions))
	for i, t := range transactions {
		transactionResponses[i] = params.NewTransactionResponse(t)
	}

	resp := &params.TransactionHistoryResponse{
		Transactions: transactionResponses,
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
	}

	if u.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := u.cache.Set(ctx, cacheKey, data, historyCacheTTL).Err(); err != nil {
				u.logger.WithError(err).Warn("Failed to cache transaction history")
			}
		}
	}

	return resp, nil
}

// commitToGoal validates that the wallet can cover delta, then books delta on
// the goal. Balances are rederived first so the check sees every committed write.
func (u *WalletUsecaseImpl) commitToGoal(ctx context.Context, ltx *LedgerTx, goal *entity.Goal, delta decimal.Decimal) (bool, error) {
	if goal.IsCancelled() {
		return false, ErrGoalCancelled
	}

	wallet, err := ltx.Recompute(ctx)
	if err != nil {
		return false, err
	}

	if delta.GreaterThan(wallet.AvailableBalance) {
		u.logger.WithFields(logrus.Fields{
			"wallet_id":         wallet.ID,
			"goal_id":           goal.ID,
			"available_balance": wallet.AvailableBalance.StringFixed(2),
			"requested":         delta.StringFixed(2),
		}).Warn("Insufficient available balance for allocation")
		metrics.AllocationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return false, &InsufficientBalanceError{Available: wallet.AvailableBalance, Requested: delta}
	}

	completed := goal.Apply(delta)
	if err := u.goalRepo.WithTx(ltx.DB).SaveProgress(ctx, goal); err != nil {
		return false, err
	}
	return completed, nil
}

func (u *WalletUsecaseImpl) lockedGoal(ctx context.Context, ltx *LedgerTx, userID, goalID uuid.UUID) (*entity.Goal, error) {
	goal, err := u.goalRepo.WithTx(ltx.DB).GetByIDForUpdate(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("goal not found")
		}
		return nil, err
	}
	return goal, nil
}

func (u *WalletUsecaseImpl) AllocateToGoal(ctx context.Context, userID uuid.UUID, req *params.AllocateRequest) (*params.AllocationResponse, *response.CustomError) {
	if !req.Amount.IsPositive() {
		return nil, response.BadRequestError("amount must be greater than zero")
	}
	date, err := params.ParseDate(req.Date, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	var (
		allocation *entity.GoalAllocation
		goal       *entity.Goal
		completed  bool
	)

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		var err error
		goal, err = u.lockedGoal(ctx, ltx, userID, req.GoalID)
		if err != nil {
			return err
		}

		completed, err = u.commitToGoal(ctx, ltx, goal, req.Amount)
		if err != nil {
			return err
		}

		allocation = &entity.GoalAllocation{
			WalletID: ltx.Wallet.ID,
			GoalID:   goal.ID,
			Amount:   req.Amount,
			Date:     date,
		}
		return ltx.Wallets.CreateAllocation(ctx, allocation)
	})
	if err != nil {
		return nil, toCustomError(err, "failed to allocate to goal")
	}

	metrics.AllocationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	u.logger.WithFields(logrus.Fields{
		"user_id":           userID,
		"goal_id":           goal.ID,
		"allocation_id":     allocation.ID,
		"amount":            req.Amount.StringFixed(2),
		"available_balance": wallet.AvailableBalance.StringFixed(2),
	}).Info("Funds allocated to goal")

	if completed {
		u.ledger.NotifyGoalCompleted(ctx, userID, goal)
	}

	now := u.now()
	return &params.AllocationResponse{
		ID:     allocation.ID,
		GoalID: goal.ID,
		Amount: allocation.Amount,
		Date:   allocation.Date.Format(params.DateLayout),
		Goal:   params.NewGoalResponse(goal, now),
		Wallet: params.NewWalletResponse(wallet),
	}, nil
}

func (u *WalletUsecaseImpl) UpdateAllocation(ctx context.Context, userID, allocationID uuid.UUID, req *params.UpdateAllocationRequest) (*params.AllocationResponse, *response.CustomError) {
	if !req.Amount.IsPositive() {
		return nil, response.BadRequestError("amount must be greater than zero")
	}

	var (
		allocation *entity.GoalAllocation
		goal       *entity.Goal
		completed  bool
	)

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		var err error
		allocation, err = ltx.Wallets.GetAllocation(ctx, ltx.Wallet.ID, allocationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFoundError("allocation not found")
			}
			return err
		}

		goal, err = u.lockedGoal(ctx, ltx, userID, allocation.GoalID)
		if err != nil {
			return err
		}

		// Only the additional amount has to be covered; the old amount is
		// already excluded from the available balance.
		delta := req.Amount.Sub(allocation.Amount)
		completed, err = u.commitToGoal(ctx, ltx, goal, delta)
		if err != nil {
			return err
		}

		allocation.Amount = req.Amount
		return ltx.Wallets.UpdateAllocationAmount(ctx, allocation.ID, req.Amount)
	})
	if err != nil {
		return nil, toCustomError(err, "failed to update allocation")
	}

	metrics.AllocationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	u.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"allocation_id": allocationID,
		"amount":        req.Amount.StringFixed(2),
	}).Info("Goal allocation updated")

	if completed {
		u.ledger.NotifyGoalCompleted(ctx, userID, goal)
	}

	return &params.AllocationResponse{
		ID:     allocation.ID,
		GoalID: goal.ID,
		Amount: allocation.Amount,
		Date:   allocation.Date.Format(params.DateLayout),
		Goal:   params.NewGoalResponse(goal, u.now()),
		Wallet: params.NewWalletResponse(wallet),
	}, nil
}
