package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"crowdfund-escrow-go/internal/common"
	"crowdfund-escrow-go/internal/config"
	"crowdfund-escrow-go/internal/ledger"
	"crowdfund-escrow-go/internal/models"

	"go.uber.org/zap"
)

func parseLevel(s string) (models.KYCLevel, error) {
	switch models.KYCLevel(s) {
	case models.KYCLevelNone, models.KYCLevelBasic, models.KYCLevelAdvanced, models.KYCLevelInstitutional:
		return models.KYCLevel(s), nil
	}
	return "", fmt.Errorf("invalid level %q (none|basic|advanced|institutional)", s)
}

func parseStatus(s string) (models.KYCStatus, error) {
	switch models.KYCStatus(s) {
	case models.KYCStatusPending, models.KYCStatusApproved, models.KYCStatusRejected, models.KYCStatusExpired:
		return models.KYCStatus(s), nil
	}
	return "", fmt.Errorf("invalid status %q (pending|approved|rejected|expired)", s)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	investorFlag := flag.String("investor", "", "Investor identity (required)")
	levelFlag := flag.String("level", string(models.KYCLevelBasic), "Verification level: none, basic, advanced, institutional")
	statusFlag := flag.String("status", string(models.KYCStatusApproved), "Verification status: pending, approved, rejected, expired")
	validityFlag := flag.Duration("validity", 365*24*time.Hour, "How long an approval stays valid")
	flag.Parse()

	if *investorFlag == "" {
		fmt.Fprintln(os.Stderr, "required flag: --investor")
		flag.Usage()
		os.Exit(ledger.ExitValidation)
	}

	level, err := parseLevel(*levelFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ledger.ExitValidation)
	}
	status, err := parseStatus(*statusFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ledger.ExitValidation)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	approval := models.KYCApproval{
		Investor: *investorFlag,
		Level:    level,
		Status:   status,
	}
	if status == models.KYCStatusApproved {
		approval.ExpiresAt = time.Now().Add(*validityFlag)
	}

	if err := services.Escrow.SetKYCApproval(ctx, approval); err != nil {
		common.PrintHeader("KYC UPDATE FAILED", common.DefaultWidth)
		fmt.Printf("Investor: %s\n", *investorFlag)
		fmt.Printf("Error:    %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	common.PrintHeader("KYC RECORD UPDATED", common.DefaultWidth)
	fmt.Printf("Investor: %s\n", approval.Investor)
	fmt.Printf("Level:    %s\n", approval.Level)
	fmt.Printf("Status:   %s\n", approval.Status)
	if !approval.ExpiresAt.IsZero() {
		fmt.Printf("Expires:  %s\n", approval.ExpiresAt.Format("2006-01-02"))
	}
	common.PrintFooter("Verification state stored", common.DefaultWidth)
}
