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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type GoalUsecase interface {
	CreateGoal(ctx context.Context, userID uuid.UUID, req *params.CreateGoalRequest) (*params.GoalResponse, *response.CustomError)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]*params.GoalResponse, *response.CustomError)
	GetGoal(ctx context.Context, userID, goalID uuid.UUID) (*params.GoalResponse, *response.CustomError)
	AddContribution(ctx context.Context, userID, goalID uuid.UUID, req *params.ContributionRequest) (*params.ContributionResponse, *response.CustomError)
	ReleaseFunds(ctx context.Context, userID, goalID uuid.UUID) (*params.ReleaseFundsResponse, *response.CustomError)
	UpdateGoal(ctx context.Context, userID, goalID uuid.UUID, req *params.UpdateGoalRequest) (*params.GoalResponse, *response.CustomError)
	// DeleteGoal removes the goal and hands its allocations back to the wallet.
	DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) (*params.DeleteGoalResponse, *response.CustomError)
}

type GoalUsecaseImpl struct {
	ledger *Ledger
	repo   repository.GoalRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewGoalUsecase(ledger *Ledger, repo repository.GoalRepository, logger *logrus.Logger) GoalUsecase {
	return &GoalUsecaseImpl{
		ledger: ledger,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (u *GoalUsecaseImpl) CreateGoal(ctx context.Context, userID uuid.UUID, req *params.CreateGoalRequest) (*params.GoalResponse, *response.CustomError) {
	if !req.TargetAmount.IsPositive() {
		return nil, response.BadRequestError("target_amount must be greater than zero")
	}
	deadline, err := params.ParseDate(req.Deadline, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	goal := &entity.Goal{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Progress: entity.Progress{
			TargetAmount:  req.TargetAmount,
			CurrentAmount: decimal.Zero,
			Deadline:      deadline,
			Status:        entity.GoalStatusActive,
		},
	}

	if err := u.repo.Create(ctx, goal); err != nil {
		return nil, response.RepositoryError("failed to create goal")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"goal_id": goal.ID,
		"target":  goal.TargetAmount.StringFixed(2),
	}).Info("Goal created")

	return params.NewGoalResponse(goal, u.now()), nil
}

func (u *GoalUsecaseImpl) ListGoals(ctx context.Context, userID uuid.UUID) ([]*params.GoalResponse, *response.CustomError) {
	goals, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, response.RepositoryError("failed to list goals")
	}

	now := u.now()
	resp := make([]*params.GoalResponse, len(goals))
	for i, g := range goals {
		resp[i] = params.NewGoalResponse(g, now)
	}
	return resp, nil
}

func (u *GoalUsecaseImpl) GetGoal(ctx context.Context, userID, goalID uuid.UUID) (*params.GoalResponse, *response.CustomError) {
	goal, err := u.repo.GetByID(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("goal not found")
		}
		return nil, response.RepositoryError("failed to get goal")
	}
	return params.NewGoalResponse(goal, u.now()), nil
}

// AddContribution books a manual deposit straight onto the goal. It does not
// touch the wallet.
func (u *GoalUsecaseImpl) AddContribution(ctx context.Context, userID, goalID uuid.UUID, req *params.ContributionRequest) (*params.ContributionResponse, *response.CustomError) {
	if !req.Amount.IsPositive() {
		return nil, response.BadRequestError("amount must be greater than zero")
	}
	date, err := params.ParseDate(req.Date, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	tx := u.repo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, response.GeneralError("failed to begin transaction")
	}
	defer tx.Rollback()

	txRepo := u.repo.WithTx(tx)

	goal, err := txRepo.GetByIDForUpdate(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("goal not found")
		}
		return nil, response.RepositoryError("failed to get goal for update")
	}
	if goal.IsCancelled() {
		return nil, toCustomError(ErrGoalCancelled, "")
	}

	contribution := &entity.Contribution{
		GoalID: goal.ID,
		Amount: req.Amount,
		Note:   req.Note,
		Date:   date,
	}
	if err := txRepo.CreateContribution(ctx, contribution); err != nil {
		return nil, response.RepositoryError("failed to create contribution")
	}

	completed := goal.Apply(req.Amount)
	if err := txRepo.SaveProgress(ctx, goal); err != nil {
		return nil, response.RepositoryError("failed to update goal")
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit transaction")
		return nil, response.RepositoryError("failed to commit transaction")
	}

	u.logger.WithFields(logrus.Fields{
		"goal_id":        goal.ID,
		"amount":         req.Amount.StringFixed(2),
		"current_amount": goal.CurrentAmount.StringFixed(2),
		"status":         goal.Status,
	}).Info("Goal contribution recorded")

	if completed {
		u.ledger.NotifyGoalCompleted(ctx, userID, goal)
	}

	return &params.ContributionResponse{
		ID:     contribution.ID,
		Amount: contribution.Amount,
		Note:   contribution.Note,
		Date:   contribution.Date.Format(params.DateLayout),
		Goal:   params.NewGoalResponse(goal, u.now()),
	}, nil
}

// ReleaseFunds cancels the goal and returns every allocation made to it to
// the wallet's available balance.
func (u *GoalUsecaseImpl) ReleaseFunds(ctx context.Context, userID, goalID uuid.UUID) (*params.ReleaseFundsResponse, *response.CustomError) {
	var (
		goal     *entity.Goal
		released decimal.Decimal
	)

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		goalRepo := u.repo.WithTx(ltx.DB)

		var err error
		goal, err = goalRepo.GetByIDForUpdate(ctx, userID, goalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFoundError("goal not found")
			}
			return err
		}
		if goal.IsCancelled() {
			return ErrGoalCancelled
		}

		released, err = ltx.Wallets.SumAllocationsByGoal(ctx, goal.ID)
		if err != nil {
			return err
		}
		if err := ltx.Wallets.DeleteAllocationsByGoal(ctx, goal.ID); err != nil {
			return err
		}

		goal.Apply(released.Neg())
		goal.Cancel()
		return goalRepo.SaveProgress(ctx, goal)
	})
	if err != nil {
		return nil, toCustomError(err, "failed to release goal funds")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"goal_id":  goalID,
		"released": released.StringFixed(2),
	}).Info("Goal funds released")

	return &params.ReleaseFundsResponse{
		Released: released,
		Goal:     params.NewGoalResponse(goal, u.now()),
		Wallet:   params.NewWalletResponse(wallet),
	}, nil
}

// UpdateGoal edits the goal. Lowering the target to or below the saved amount
// completes an active goal.
func (u *GoalUsecaseImpl) UpdateGoal(ctx context.Context, userID, goalID uuid.UUID, req *params.UpdateGoalRequest) (*params.GoalResponse, *response.CustomError) {
	if !req.TargetAmount.IsPositive() {
		return nil, response.BadRequestError("target_amount must be greater than zero")
	}
	deadline, err := params.ParseDate(req.Deadline, u.now())
	if err != nil {
		return nil, response.BadRequestError(err.Error())
	}

	tx := u.repo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, response.GeneralError("failed to begin transaction")
	}
	defer tx.Rollback()

	txRepo := u.repo.WithTx(tx)

	goal, err := txRepo.GetByIDForUpdate(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("goal not found")
		}
		return nil, response.RepositoryError("failed to get goal for update")
	}

	goal.Title = req.Title
	goal.Description = req.Description
	goal.TargetAmount = req.TargetAmount
	goal.Deadline = deadline
	completed := goal.Apply(decimal.Zero)

	if err := txRepo.UpdateDetails(ctx, goal); err != nil {
		return nil, response.RepositoryError("failed to update goal")
	}
	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit transaction")
		return nil, response.RepositoryError("failed to commit transaction")
	}

	u.logger.WithFields(logrus.Fields{
		"goal_id": goal.ID,
		"target":  goal.TargetAmount.StringFixed(2),
		"status":  goal.Status,
	}).Info("Goal updated")

	if completed {
		u.ledger.NotifyGoalCompleted(ctx, userID, goal)
	}

	return params.NewGoalResponse(goal, u.now()), nil
}

func (u *GoalUsecaseImpl) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) (*params.DeleteGoalResponse, *response.CustomError) {
	var released decimal.Decimal

	wallet, err := u.ledger.WithWallet(ctx, userID, func(ltx *LedgerTx) error {
		goalRepo := u.repo.WithTx(ltx.DB)

		goal, err := goalRepo.GetByIDForUpdate(ctx, userID, goalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFoundError("goal not found")
			}
			return err
		}

		released, err = ltx.Wallets.SumAllocationsByGoal(ctx, goal.ID)
		if err != nil {
			return err
		}
		if err := ltx.Wallets.DeleteAllocationsByGoal(ctx, goal.ID); err != nil {
			return err
		}
		return goalRepo.Delete(ctx, goal.ID)
	})
	if err != nil {
		return nil, toCustomError(err, "failed to delete goal")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"goal_id":  goalID,
		"released": released.StringFixed(2),
	}).Info("Goal deleted")

	return &params.DeleteGoalResponse{
		Released: released,
		Wallet:   params.NewWalletResponse(wallet),
	}, nil
}
