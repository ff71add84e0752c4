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
	"crowdfund-escrow-go/internal/models"

	"go.uber.org/zap"
)

// printPortfolio renders one investor's positions across every campaign,
// with totals over the still-active investments only.
func printPortfolio(services *common.Services, investor string, investments []models.Investment) error {
	var totalActive, totalExpected amount.Amount
	var err error

	common.PrintHeader(fmt.Sprintf("PORTFOLIO: %s", investor), common.DefaultWidth)
	for i, inv := range investments {
		title := inv.CampaignId
		if campaign, cerr := services.Escrow.GetCampaign(inv.CampaignId); cerr == nil {
			title = campaign.Title
		}

		fmt.Printf("%s%s — %s (%s, %s)\n",
			common.BoxPrefix(i == len(investments)-1),
			inv.Amount, title, inv.Status, inv.InvestedAt.Format("2006-01-02"))

		if inv.Status != models.InvestmentStatusActive {
			continue
		}
		if totalActive, err = totalActive.Add(inv.Amount); err != nil {
			return err
		}
		if totalExpected, err = totalExpected.Add(inv.ExpectedReturn); err != nil {
			return err
		}
	}

	common.PrintSeparator("-", common.DefaultWidth)
	fmt.Printf("Active invested:  %s\n", totalActive)
	fmt.Printf("Expected returns: %s\n", totalExpected)
	common.PrintFooter(fmt.Sprintf("%d investment(s)", len(investments)), common.DefaultWidth)
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	investorFlag := flag.String("investor", "", "Investor identity (required)")
	flag.Parse()

	if *investorFlag == "" {
		fmt.Fprintln(os.Stderr, "required flag: --investor")
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

	investments := services.Escrow.GetInvestorInvestments(*investorFlag)
	if len(investments) == 0 {
		fmt.Printf("No investments found for %s.\n", *investorFlag)
		os.Exit(ledger.ExitOK)
	}

	if err := printPortfolio(services, *investorFlag, investments); err != nil {
		zap.L().Fatal("Failed to total portfolio", zap.Error(err))
	}
}
