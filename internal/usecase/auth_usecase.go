package usecase

import (
	"context"
	"errors"
	"go-finance-ledger/internal/commons/response"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/notify"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/repository"
	"go-finance-ledger/pkg/token"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase interface {
	Register(ctx context.Context, req *params.RegisterRequest) (*params.AuthResponse, *response.CustomError)
	Login(ctx context.Context, req *params.LoginRequest) (*params.AuthResponse, *response.CustomError)
}

type AuthUsecaseImpl struct {
	userRepo   repository.UserRepository
	logger     *logrus.Logger
	jwtManager *token.TokenManager
	notifier   notify.Notifier
}

func NewAuthUsecase(userRepo repository.UserRepository, logger *logrus.Logger, jwtManager *token.TokenManager, notifier notify.Notifier) AuthUsecase {
	return &AuthUsecaseImpl{
		userRepo:   userRepo,
		logger:     logger,
		jwtManager: jwtManager,
		notifier:   notifier,
	}
}

func (s *AuthUsecaseImpl) Register(ctx context.Context, req *params.RegisterRequest) (*params.AuthResponse, *response.CustomError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Check if user already exists by email
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Error("Failed to check existing user")
		return nil, response.RepositoryError("failed to check user")
	}
	if exists {
		s.logger.WithField("email", email).Warn("Registration attempt with existing email")
		return nil, response.BadRequestError("user with this email already exists")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("Failed to hash password")
		return nil, response.GeneralError("failed to hash password")
	}

	// Create user and wallet
	user := &entity.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hashedPassword),
	}

	wallet, err := s.userRepo.CreateWithWallet(ctx, user)
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Error("Failed to create user")
		return nil, response.RepositoryError("failed to create user")
	}

	// Generate JWT token
	tokenString, err := s.jwtManager.GenerateToken(user.ID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to generate token")
		return nil, response.GeneralError("failed to generate token")
	}

	resp := &params.AuthResponse{
		Token: tokenString,
	}
	resp.User.ID = user.ID
	resp.User.Name = user.Name
	resp.User.Email = user.Email
	resp.User.WalletID = wallet.ID

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
	}).Info("User registered successfully")

	s.notifier.Welcome(user.Email, user.Name)

	return resp, nil
}

func (s *AuthUsecaseImpl) Login(ctx context.Context, req *params.LoginRequest) (*params.AuthResponse, *response.CustomError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Get user by email
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.WithField("email", email).Warn("Login attempt with non-existing email")
			return nil, response.BadRequestError("invalid email or password")
		}
		return nil, response.RepositoryError("failed to get user")
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   email,
		}).Warn("Login attempt with invalid password")
		return nil, response.BadRequestError("invalid email or password")
	}

	// Generate JWT token
	tokenString, err := s.jwtManager.GenerateToken(user.ID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to generate token")
		return nil, response.GeneralError("failed to generate token")
	}

	resp := &params.AuthResponse{
		Token: tokenString,
	}
	resp.User.ID = user.ID
	resp.User.Name = user.Name
	resp.User.Email = user.Email

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User logged in successfully")

	return resp, nil
}
