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

func campaignStatus(c models.Campaign) string {
	switch {
	case c.Cancelled:
		return "cancelled"
	case c.IsCompleted:
		return "completed"
	case c.Paused:
		return "paused"
	case c.IsActive:
		return "active"
	default:
		return "inactive"
	}
}

func printCampaign(services *common.Services, c models.Campaign) {
	fmt.Printf("\n%s (%s)\n", c.Title, common.ShortId(c.Id))
	common.PrintBoxSeparator(common.WideWidth)
	fmt.Printf("│  Creator:   %s\n", c.Creator)
	fmt.Printf("│  Status:    %s\n", campaignStatus(c))
	fmt.Printf("│  Raised:    %s of %s goal\n", c.RaisedAmount, c.GoalAmount)
	fmt.Printf("│  Escrow:    %s\n", c.EscrowBalance)
	fmt.Printf("│  Investors: %d\n", len(c.Investors))
	fmt.Printf("│  Deadline:  %s\n", c.Deadline.Format("2006-01-02"))

	if score, err := services.Escrow.SecurityStatus(c.Id); err == nil {
		fmt.Printf("│  Security:  %d/100 (%s risk)\n", score.Score, score.RiskLevel)
		for _, warning := range score.Warnings {
			fmt.Printf("│             ! %s\n", warning)
		}
	}

	for i, m := range c.Milestones {
		status := "awaiting proof"
		switch {
		case m.Completed:
			status = "completed"
		case m.ProofSubmitted:
			status = fmt.Sprintf("voting (%d for / %d against)", m.VotesFor, m.VotesAgainst)
		}
		fmt.Printf("%s%d. %s — unlocks %d%% — %s\n",
			common.BoxPrefix(i == len(c.Milestones)-1), i+1, m.Title, m.UnlockPercentage, status)
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	campaigns := services.Escrow.Campaigns()
	if len(campaigns) == 0 {
		fmt.Println("No campaigns registered.")
		os.Exit(ledger.ExitOK)
	}

	common.PrintHeader("CAMPAIGN OVERVIEW", common.WideWidth)
	for _, c := range campaigns {
		printCampaign(services, c)
	}
	common.PrintFooter(fmt.Sprintf("%d campaign(s)", len(campaigns)), common.WideWidth)
}
