package usecase

import (
	"errors"
	"fmt"
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrWalletConflict      = errors.New("wallet was modified concurrently, please retry")
	ErrMirrorExists        = errors.New("expense already has a wallet transaction")
	ErrManagedByExpense    = errors.New("transaction is managed by its expense")
	ErrGoalCancelled       = errors.New("goal is cancelled")
	ErrNotMember           = errors.New("user is not a member of this group")
)

// InsufficientBalanceError reports an allocation the wallet cannot cover.
// It matches ErrInsufficientBalance with errors.Is.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: available %s, requested %s",
		ErrInsufficientBalance, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// toCustomError maps anything returned from a ledger callback to the error
// shown at the request boundary.
func toCustomError(err error, fallback string) *response.CustomError {
	if err == nil {
		return nil
	}

	var cerr *response.CustomError
	if errors.As(err, &cerr) {
		return cerr
	}

	var insufficient *InsufficientBalanceError
	if errors.As(err, &insufficient) {
		return response.InsufficientBalanceError(insufficient.Available, insufficient.Requested)
	}

	switch {
	case errors.Is(err, ErrWalletConflict), errors.Is(err, repository.ErrVersionConflict):
		return response.ConflictError(ErrWalletConflict.Error())
	case errors.Is(err, ErrManagedByExpense):
		return response.ConflictError("transaction is linked to an expense; edit the expense instead")
	case errors.Is(err, ErrMirrorExists):
		return response.ConflictError(ErrMirrorExists.Error())
	case errors.Is(err, ErrGoalCancelled):
		return response.ConflictError(ErrGoalCancelled.Error())
	case errors.Is(err, ErrNotMember):
		return response.ForbiddenError(ErrNotMember.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFoundError("record not found")
	}
	return response.RepositoryError(fallback)
}
