package config

import (
	"go-finance-ledger/internal/handler"
	"go-finance-ledger/internal/middleware"
	"go-finance-ledger/internal/notify"
	"go-finance-ledger/internal/repository"
	"go-finance-ledger/internal/router"
	"go-finance-ledger/internal/usecase"
	"go-finance-ledger/pkg/token"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BootstrapConfig struct {
	DB           *gorm.DB
	Redis        *redis.Client
	App          *gin.Engine
	Log          *logrus.Logger
	Validate     *validator.Validate
	JWTConfig    *JWTConfig
	LedgerConfig *LedgerConfig
	NotifyConfig *NotifyConfig
}

// Services is the wired usecase layer, shared by the HTTP server and the
// admin tool.
type Services struct {
	Dispatcher *notify.Dispatcher
	Ledger     *usecase.Ledger
	Auth       usecase.AuthUsecase
	Wallet     usecase.WalletUsecase
	Category   usecase.CategoryUsecase
	Expense    usecase.ExpenseUsecase
	Goal       usecase.GoalUsecase
	Group      usecase.GroupUsecase
	Reconcile  usecase.ReconcileUsecase
}

// NewSender picks the Resend API when a key is configured and falls back to
// logging otherwise.
func NewSender(cfg *NotifyConfig, log *logrus.Logger) notify.Sender {
	if cfg.ResendAPIKey == "" {
		log.Warn("RESEND_API_KEY not set, notifications are only logged")
		return notify.NewLogSender(log)
	}
	return notify.NewResendSender(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail)
}

func NewServices(config *BootstrapConfig) *Services {
	jwtManager := token.NewTokenManager(config.JWTConfig.SecretKey, config.JWTConfig.ExpirationTime)
	dispatcher := notify.NewDispatcher(
		NewSender(config.NotifyConfig, config.Log),
		config.Log,
		time.Duration(config.NotifyConfig.TimeoutSeconds)*time.Second,
	)

	// setup repositories
	userRepository := repository.NewUserRepository(config.DB, config.Log)
	walletRepository := repository.NewWalletRepository(config.DB, config.Log)
	expenseRepository := repository.NewExpenseRepository(config.DB, config.Log)
	categoryRepository := repository.NewCategoryRepository(config.DB, config.Log)
	goalRepository := repository.NewGoalRepository(config.DB, config.Log)
	groupRepository := repository.NewGroupRepository(config.DB, config.Log)

	// setup use cases
	ledger := usecase.NewLedger(walletRepository, userRepository, config.Log, config.Redis, dispatcher, config.LedgerConfig.LowBalanceThreshold)
	mirror := usecase.NewExpenseMirror(config.Log)
	categoryUsecase := usecase.NewCategoryUsecase(categoryRepository, config.Log)
	expenseUsecase := usecase.NewExpenseUsecase(ledger, expenseRepository, walletRepository, categoryRepository, categoryUsecase, mirror, config.Log)

	return &Services{
		Dispatcher: dispatcher,
		Ledger:     ledger,
		Auth:       usecase.NewAuthUsecase(userRepository, config.Log, jwtManager, dispatcher),
		Wallet:     usecase.NewWalletUsecase(ledger, walletRepository, goalRepository, categoryUsecase, config.Log, config.Redis),
		Category:   categoryUsecase,
		Expense:    expenseUsecase,
		Goal:       usecase.NewGoalUsecase(ledger, goalRepository, config.Log),
		Group:      usecase.NewGroupUsecase(groupRepository, userRepository, dispatcher, config.Log),
		Reconcile:  usecase.NewReconcileUsecase(ledger, walletRepository, expenseRepository, expenseUsecase, mirror, config.Log),
	}
}

func Bootstrap(config *BootstrapConfig) *Services {
	services := NewServices(config)
	jwtManager := token.NewTokenManager(config.JWTConfig.SecretKey, config.JWTConfig.ExpirationTime)

	// setup handlers
	authHandler := handler.NewAuthHandler(services.Auth, config.Log, config.Validate)
	walletHandler := handler.NewWalletHandler(services.Wallet, config.Log, config.Validate)
	expenseHandler := handler.NewExpenseHandler(services.Expense, services.Category, config.Log, config.Validate)
	goalHandler := handler.NewGoalHandler(services.Goal, config.Log, config.Validate)
	groupHandler := handler.NewGroupHandler(services.Group, config.Log, config.Validate)

	// setup middleware
	authMiddleware := middleware.NewAuthMiddleware(config.Log, jwtManager)

	routeConfig := router.RouteConfig{
		App:               config.App,
		AuthHandler:       authHandler,
		WalletHandler:     walletHandler,
		ExpenseHandler:    expenseHandler,
		GoalHandler:       goalHandler,
		GroupHandler:      groupHandler,
		AuthMiddleware:    authMiddleware,
		LoggerMiddleware:  middleware.LoggerMiddleware(config.Log),
		MetricsMiddleware: middleware.MetricsMiddleware(),
	}
	routeConfig.SetupRoute()

	return services
}
