package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"crowdfund-escrow-go/internal/common"
	"crowdfund-escrow-go/internal/config"
	"crowdfund-escrow-go/internal/ledger"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	campaignFlag := flag.String("campaign", "", "Campaign ID (required)")
	authorityFlag := flag.String("authority", "", "Creator or platform authority (required)")
	unpauseFlag := flag.Bool("unpause", false, "Lift an existing pause instead")
	flag.Parse()

	if *campaignFlag == "" || *authorityFlag == "" {
		fmt.Fprintln(os.Stderr, "required flags: --campaign, --authority")
		flag.Usage()
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

	action := "PAUSED"
	if *unpauseFlag {
		err = services.Escrow.UnpauseCampaign(ctx, *campaignFlag, *authorityFlag)
		action = "UNPAUSED"
	} else {
		err = services.Escrow.PauseCampaign(ctx, *campaignFlag, *authorityFlag)
	}
	if err != nil {
		common.PrintHeader("PAUSE CHANGE FAILED", common.DefaultWidth)
		fmt.Printf("Campaign:  %s\n", common.ShortId(*campaignFlag))
		fmt.Printf("Authority: %s\n", *authorityFlag)
		fmt.Printf("Error:     %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	common.PrintHeader("CAMPAIGN "+action, common.DefaultWidth)
	fmt.Printf("Campaign:  %s\n", common.ShortId(*campaignFlag))
	fmt.Printf("Authority: %s\n", *authorityFlag)
	if *unpauseFlag {
		common.PrintFooter("Investing and fund release resumed", common.DefaultWidth)
	} else {
		common.PrintFooter("Investing and fund release suspended; voting stays open", common.DefaultWidth)
	}
}
