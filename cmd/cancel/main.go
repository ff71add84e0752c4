package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"crowdfund-escrow-go/internal/common"
	"crowdfund-escrow-go/internal/config"
	"crowdfund-escrow-go/internal/ledger"
	"crowdfund-escrow-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	campaignFlag := flag.String("campaign", "", "Campaign ID (required)")
	actorFlag := flag.String("actor", "", "Creator or platform authority (required)")
	flag.Parse()

	if *campaignFlag == "" || *actorFlag == "" {
		fmt.Fprintln(os.Stderr, "required flags: --campaign, --actor")
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

	if err := services.Escrow.CancelCampaign(ctx, *campaignFlag, *actorFlag); err != nil {
		common.PrintHeader("CANCELLATION FAILED", common.DefaultWidth)
		fmt.Printf("Campaign: %s\n", common.ShortId(*campaignFlag))
		fmt.Printf("Error:    %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	campaign, err := services.Escrow.GetCampaign(*campaignFlag)
	if err != nil {
		zap.L().Fatal("Failed to reload campaign", zap.Error(err))
	}

	investments, err := services.Store.GetCampaignInvestments(ctx, campaign.Id)
	if err != nil {
		zap.L().Fatal("Failed to load investments", zap.Error(err))
	}
	var reversed int
	for _, inv := range investments {
		if inv.Status == models.InvestmentStatusReversed {
			reversed++
		}
	}

	common.PrintHeader("CAMPAIGN CANCELLED", common.DefaultWidth)
	fmt.Printf("Campaign:             %s (%s)\n", campaign.Title, common.ShortId(campaign.Id))
	fmt.Printf("Reversed investments: %d\n", reversed)
	fmt.Printf("Escrow remaining:     %s\n", campaign.EscrowBalance)
	common.PrintFooter("Escrow refunded to investors", common.DefaultWidth)
}
