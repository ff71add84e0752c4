package common

import (
	"context"
	"log"
	"strings"

	"crowdfund-escrow-go/internal/api"
	"crowdfund-escrow-go/internal/database"
	"crowdfund-escrow-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	Store  *database.Service
	Escrow *api.EscrowService
}

func (s *Services) Close() {
	s.Store.Close()
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and loads the escrow service on
// top of it.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	escrow, err := api.NewEscrowService(ctx, dbService, cfg.Ledger)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	return &Services{
		Store:  dbService,
		Escrow: escrow,
	}, nil
}

// InitializeDatabaseOnly opens just the database, for commands that do
// not need the ledger loaded (setup, kyc).
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	return database.NewService(ctx, cfg.Database)
}

// isIgnorableSyncError filters the EINVAL/ENOTTY noise zap emits when
// stderr is not a syncable file.
func isIgnorableSyncError(err error) bool {
	if err == nil {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
