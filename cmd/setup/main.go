package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"crowdfund-escrow-go/internal/common"
	"crowdfund-escrow-go/internal/config"
	"crowdfund-escrow-go/internal/models"

	"go.uber.org/zap"
)

// demoInvestors are seeded when CREATE_DEMO_DATA is set, so the invest and
// vote commands can be exercised against a fresh database without running
// a KYC flow first.
var demoInvestors = []models.KYCApproval{
	{Investor: "alice", Level: models.KYCLevelBasic, Status: models.KYCStatusApproved},
	{Investor: "bob", Level: models.KYCLevelAdvanced, Status: models.KYCStatusApproved},
	{Investor: "carol", Level: models.KYCLevelInstitutional, Status: models.KYCStatusApproved},
}

func seedDemoData(ctx context.Context, services *common.Services) error {
	now := time.Now()
	for _, approval := range demoInvestors {
		approval.VerifiedAt = now
		approval.ExpiresAt = now.Add(365 * 24 * time.Hour)
		approval.UpdatedAt = now
		if err := services.Store.UpsertKYCApproval(ctx, approval); err != nil {
			return fmt.Errorf("failed to seed investor %s: %w", approval.Investor, err)
		}
		zap.L().Info("Seeded demo investor",
			zap.String("investor", approval.Investor),
			zap.String("level", string(approval.Level)))
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Setting up escrow database", zap.String("path", cfg.Database.Path))

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if cfg.Database.CreateDemoData {
		if err := seedDemoData(ctx, services); err != nil {
			zap.L().Error("Failed to seed demo data", zap.Error(err))
			os.Exit(1)
		}
	}

	common.PrintHeader("ESCROW LEDGER SETUP", common.DefaultWidth)
	fmt.Printf("Database:            %s\n", cfg.Database.Path)
	fmt.Printf("Campaigns loaded:    %d\n", len(services.Escrow.Campaigns()))
	fmt.Printf("Approval window:     %s\n", cfg.Ledger.ApprovalWindow)
	fmt.Printf("Voting threshold:    %d%%\n", cfg.Ledger.DefaultVotingThresholdPct)
	fmt.Printf("Investment bounds:   %s - %s\n", cfg.Ledger.DefaultMinInvestment, cfg.Ledger.DefaultMaxInvestment)
	fmt.Printf("Demo data:           %s\n", common.FlagMarker(cfg.Database.CreateDemoData))
	common.PrintFooter("Setup complete", common.DefaultWidth)
}
