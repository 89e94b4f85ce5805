package repository

import (
	"context"
	"errors"
	"fmt"
	"go-finance-ledger/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	CreateWithWallet(ctx context.Context, user *entity.User) (*entity.Wallet, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type UserRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewUserRepository(db *gorm.DB, logger *logrus.Logger) UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// CreateWithWallet inserts the user and its zero-balance wallet atomically,
// so no user ever exists without a wallet.
func (r *UserRepositoryImpl) CreateWithWallet(ctx context.Context, user *entity.User) (*entity.Wallet, error) {
	wallet := &entity.Wallet{Version: 1}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		wallet.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(wallet).Error; err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.WithError(err).WithField("email", user.Email).Error("Failed to create user")
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"wallet_id": wallet.ID,
		"email":     user.Email,
	}).Info("User created successfully")

	user.Wallet = wallet
	return wallet, nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		r.logger.WithError(err).WithField("email", email).Error("Failed to get user by email")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		r.logger.WithError(err).WithField("user_id", id).Error("Failed to get user by ID")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}
