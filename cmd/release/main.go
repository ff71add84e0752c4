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
	milestoneFlag := flag.String("milestone", "", "Milestone ID (required)")
	flag.Parse()

	if *campaignFlag == "" || *milestoneFlag == "" {
		fmt.Fprintln(os.Stderr, "required flags: --campaign, --milestone")
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

	released, err := services.Escrow.ReleaseMilestoneFunds(ctx, *campaignFlag, *milestoneFlag)
	if err != nil {
		common.PrintHeader("RELEASE REFUSED", common.DefaultWidth)
		fmt.Printf("Campaign:  %s\n", common.ShortId(*campaignFlag))
		fmt.Printf("Milestone: %s\n", common.ShortId(*milestoneFlag))
		fmt.Printf("Error:     %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	campaign, err := services.Escrow.GetCampaign(*campaignFlag)
	if err != nil {
		zap.L().Fatal("Failed to reload campaign", zap.Error(err))
	}

	common.PrintHeader("MILESTONE FUNDS RELEASED", common.DefaultWidth)
	fmt.Printf("Campaign:         %s (%s)\n", campaign.Title, common.ShortId(campaign.Id))
	fmt.Printf("Released:         %s\n", released)
	fmt.Printf("Escrow remaining: %s\n", campaign.EscrowBalance)
	fmt.Printf("Completed:        %s\n", common.FlagMarker(campaign.IsCompleted))
	common.PrintFooter("Tranche paid out to creator", common.DefaultWidth)
}
