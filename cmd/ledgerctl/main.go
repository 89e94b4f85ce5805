// Command ledgerctl runs maintenance jobs against the ledger database.
//
//	ledgerctl backfill-expenses [-dry-run]
//	ledgerctl audit [-repair]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"go-finance-ledger/internal/config"
	"go-finance-ledger/pkg/database"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ledgerctl <backfill-expenses [-dry-run] | audit [-repair]>")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.LoadConfig()
	appLogger := config.NewLogger()
	// Reports go to stdout; keep log lines on stderr.
	appLogger.SetOutput(os.Stderr)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			appLogger.WithError(err).Fatal("Failed to migrate sqlite schema")
		}
	}

	// Repairs rewrite history, so the server's cached pages must be dropped too.
	redisClient := database.ConnectRedis(&cfg.Redis, appLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	services := config.NewServices(&config.BootstrapConfig{
		DB:           db,
		Redis:        redisClient,
		Log:          appLogger,
		Validate:     config.NewValidator(),
		JWTConfig:    &cfg.JWT,
		LedgerConfig: &cfg.Ledger,
		NotifyConfig: &cfg.Notify,
	})
	defer services.Dispatcher.Wait()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		report any
		failed bool
	)

	switch os.Args[1] {
	case "backfill-expenses":
		fs := flag.NewFlagSet("backfill-expenses", flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "report candidates without writing")
		_ = fs.Parse(os.Args[2:])

		r, err := services.Reconcile.BackfillExpenses(ctx, *dryRun)
		if err != nil {
			appLogger.WithError(err).Fatal("Backfill failed")
		}
		report, failed = r, r.Failed > 0

	case "audit":
		fs := flag.NewFlagSet("audit", flag.ExitOnError)
		repair := fs.Bool("repair", false, "fix every finding")
		_ = fs.Parse(os.Args[2:])

		run := services.Reconcile.Audit
		if *repair {
			run = services.Reconcile.Repair
		}
		r, err := run(ctx)
		if err != nil {
			appLogger.WithError(err).Fatal("Audit failed")
		}
		// A repair that found something did its job.
		report, failed = r, !*repair && !r.Clean()

	default:
		usage()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		appLogger.WithError(err).Fatal("Failed to write report")
	}

	if failed {
		appLogger.WithFields(logrus.Fields{"command": os.Args[1]}).Warn("Completed with findings")
		services.Dispatcher.Wait()
		os.Exit(1)
	}
}
