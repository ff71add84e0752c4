package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"crowdfund-escrow-go/internal/amount"
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
	investorFlag := flag.String("investor", "", "Investor identity (required)")
	amountFlag := flag.String("amount", "", "Amount to invest, e.g. 250.00 (required)")
	flag.Parse()

	if *campaignFlag == "" || *investorFlag == "" || *amountFlag == "" {
		fmt.Fprintln(os.Stderr, "required flags: --campaign, --investor, --amount")
		flag.Usage()
		os.Exit(ledger.ExitValidation)
	}

	amt, err := amount.Parse(*amountFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid amount %q: %v\n", *amountFlag, err)
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

	investment, err := services.Escrow.Invest(ctx, *campaignFlag, *investorFlag, amt)
	if err != nil {
		common.PrintHeader("INVESTMENT REJECTED", common.DefaultWidth)
		fmt.Printf("Campaign:  %s\n", common.ShortId(*campaignFlag))
		fmt.Printf("Investor:  %s\n", *investorFlag)
		fmt.Printf("Amount:    %s\n", amt)
		fmt.Printf("Error:     %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	campaign, err := services.Escrow.GetCampaign(*campaignFlag)
	if err != nil {
		zap.L().Fatal("Failed to reload campaign", zap.Error(err))
	}

	common.PrintHeader("INVESTMENT RECORDED", common.DefaultWidth)
	fmt.Printf("Investment ID:   %s\n", investment.Id)
	fmt.Printf("Campaign:        %s (%s)\n", campaign.Title, common.ShortId(campaign.Id))
	fmt.Printf("Investor:        %s\n", investment.Investor)
	fmt.Printf("Amount:          %s\n", investment.Amount)
	fmt.Printf("Expected return: %s\n", investment.ExpectedReturn)
	fmt.Printf("Raised so far:   %s of %s goal\n", campaign.RaisedAmount, campaign.GoalAmount)
	fmt.Printf("Escrow balance:  %s\n", campaign.EscrowBalance)
	common.PrintFooter("Funds held in escrow until milestone approval", common.DefaultWidth)
}
