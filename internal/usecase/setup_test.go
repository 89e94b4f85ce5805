package usecase_test

import (
	"context"
	"fmt"
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/notify"
	"go-finance-ledger/internal/repository"
	"go-finance-ledger/internal/usecase"
	"go-finance-ledger/pkg/database"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var lowBalanceThreshold = decimal.NewFromInt(50000)

type testEnv struct {
	ctx        context.Context
	db         *gorm.DB
	mr         *miniredis.Miniredis
	rdb        *redis.Client
	dispatcher *notify.Dispatcher

	userRepo    repository.UserRepository
	walletRepo  repository.WalletRepository
	expenseRepo repository.ExpenseRepository
	goalRepo    repository.GoalRepository
	groupRepo   repository.GroupRepository

	ledger     *usecase.Ledger
	mirror     *usecase.ExpenseMirror
	categories usecase.CategoryUsecase
	wallets    usecase.WalletUsecase
	expenses   usecase.ExpenseUsecase
	goals      usecase.GoalUsecase
	groups     usecase.GroupUsecase
	reconcile  usecase.ReconcileUsecase

	mu   sync.Mutex
	sent []notify.Message
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	env := &testEnv{ctx: context.Background(), db: db, mr: mr, rdb: rdb}

	sender := new(notify.MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.sent = append(env.sent, args.Get(1).(notify.Message))
	}).Return(nil).Maybe()
	env.dispatcher = notify.NewDispatcher(sender, logger, time.Second)
	t.Cleanup(env.dispatcher.Wait)

	env.userRepo = repository.NewUserRepository(db, logger)
	env.walletRepo = repository.NewWalletRepository(db, logger)
	env.expenseRepo = repository.NewExpenseRepository(db, logger)
	env.goalRepo = repository.NewGoalRepository(db, logger)
	env.groupRepo = repository.NewGroupRepository(db, logger)
	categoryRepo := repository.NewCategoryRepository(db, logger)

	env.ledger = usecase.NewLedger(env.walletRepo, env.userRepo, logger, rdb, env.dispatcher, lowBalanceThreshold)
	env.mirror = usecase.NewExpenseMirror(logger)
	env.categories = usecase.NewCategoryUsecase(categoryRepo, logger)
	env.wallets = usecase.NewWalletUsecase(env.ledger, env.walletRepo, env.goalRepo, env.categories, logger, rdb)
	env.expenses = usecase.NewExpenseUsecase(env.ledger, env.expenseRepo, env.walletRepo, categoryRepo, env.categories, env.mirror, logger)
	env.goals = usecase.NewGoalUsecase(env.ledger, env.goalRepo, logger)
	env.groups = usecase.NewGroupUsecase(env.groupRepo, env.userRepo, env.dispatcher, logger)
	env.reconcile = usecase.NewReconcileUsecase(env.ledger, env.walletRepo, env.expenseRepo, env.expenses, env.mirror, logger)

	return env
}

func (e *testEnv) createUser(t *testing.T) *entity.User {
	t.Helper()
	user := &entity.User{
		Name:     "Test User",
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: "hashed",
	}
	_, err := e.userRepo.CreateWithWallet(e.ctx, user)
	require.NoError(t, err)
	return user
}

func (e *testEnv) createGoal(t *testing.T, userID uuid.UUID, target int64) *entity.Goal {
	t.Helper()
	goal := &entity.Goal{
		UserID: userID,
		Title:  "Emergency fund",
		Progress: entity.Progress{
			TargetAmount: decimal.NewFromInt(target),
			Deadline:     time.Now().AddDate(1, 0, 0),
			Status:       entity.GoalStatusActive,
		},
	}
	require.NoError(t, e.goalRepo.Create(e.ctx, goal))
	return goal
}

func (e *testEnv) wallet(t *testing.T, userID uuid.UUID) *entity.Wallet {
	t.Helper()
	wallet, err := e.walletRepo.GetByUserID(e.ctx, userID)
	require.NoError(t, err)
	return wallet
}

func (e *testEnv) goal(t *testing.T, userID, goalID uuid.UUID) *entity.Goal {
	t.Helper()
	goal, err := e.goalRepo.GetByID(e.ctx, userID, goalID)
	require.NoError(t, err)
	return goal
}

// sentMessages waits for pending notifications and returns them.
func (e *testEnv) sentMessages() []notify.Message {
	e.dispatcher.Wait()
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notify.Message(nil), e.sent...)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(expected).Equal(actual), "expected %d, got %s %v", expected, actual.String(), msgAndArgs)
}
