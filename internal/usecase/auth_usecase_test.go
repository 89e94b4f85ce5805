package usecase_test

import (
	"context"
	"errors"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/notify"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/repository"
	"go-finance-ledger/internal/usecase"
	"go-finance-ledger/pkg/token"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthTest(t *testing.T) (*repository.MockUserRepository, *notify.MockSender, *notify.Dispatcher, *token.TokenManager, usecase.AuthUsecase) {
	mockRepo := new(repository.MockUserRepository)
	sender := new(notify.MockSender)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	dispatcher := notify.NewDispatcher(sender, logger, time.Second)
	t.Cleanup(dispatcher.Wait)

	jwtManager := token.NewTokenManager("test-secret", 1)
	uc := usecase.NewAuthUsecase(mockRepo, logger, jwtManager, dispatcher)

	return mockRepo, sender, dispatcher, jwtManager, uc
}

func TestRegister_Success(t *testing.T) {
	mockRepo, sender, dispatcher, jwtManager, uc := setupAuthTest(t)

	walletID := uuid.New()
	mockRepo.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(false, nil)
	mockRepo.On("CreateWithWallet", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "jane@example.com" && bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = uuid.New()
	}).Return(&entity.Wallet{ID: walletID}, nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg notify.Message) bool {
		return msg.To == "jane@example.com" && msg.Subject == "Welcome to Finance Ledger"
	})).Return(nil).Once()

	resp, err := uc.Register(context.Background(), &params.RegisterRequest{
		Name:     "Jane",
		Email:    "  Jane@Example.com ",
		Password: "secret123",
	})

	require.Nil(t, err)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, walletID, resp.User.WalletID)

	claims, verr := jwtManager.ValidateToken(resp.Token)
	require.NoError(t, verr)
	assert.Equal(t, resp.User.ID, claims.UserID)

	dispatcher.Wait()
	mockRepo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	mockRepo, sender, _, _, uc := setupAuthTest(t)

	mockRepo.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(true, nil)

	resp, err := uc.Register(context.Background(), &params.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret123",
	})

	assert.Nil(t, resp)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	mockRepo.AssertNotCalled(t, "CreateWithWallet", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRegister_RepositoryError(t *testing.T) {
	mockRepo, _, _, _, uc := setupAuthTest(t)

	mockRepo.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(false, nil)
	mockRepo.On("CreateWithWallet", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil, errors.New("db error"))

	resp, err := uc.Register(context.Background(), &params.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "secret123",
	})

	assert.Nil(t, resp)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
}

func TestLogin(t *testing.T) {
	mockRepo, _, _, jwtManager, uc := setupAuthTest(t)

	hashed, herr := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, herr)
	user := &entity.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Password: string(hashed)}

	mockRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)
	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	t.Run("success", func(t *testing.T) {
		resp, err := uc.Login(context.Background(), &params.LoginRequest{Email: "JANE@example.com", Password: "secret123"})
		require.Nil(t, err)
		claims, verr := jwtManager.ValidateToken(resp.Token)
		require.NoError(t, verr)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.Login(context.Background(), &params.LoginRequest{Email: "jane@example.com", Password: "nope"})
		require.NotNil(t, err)
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		assert.Equal(t, "invalid email or password", err.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := uc.Login(context.Background(), &params.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
		require.NotNil(t, err)
		assert.Equal(t, "invalid email or password", err.Message)
	})
}
