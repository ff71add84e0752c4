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
	proofFlag := flag.String("proof", "", "Proof hash or document reference (required)")
	creatorFlag := flag.String("creator", "", "Submitting creator identity (required)")
	flag.Parse()

	if *campaignFlag == "" || *milestoneFlag == "" || *proofFlag == "" || *creatorFlag == "" {
		fmt.Fprintln(os.Stderr, "required flags: --campaign, --milestone, --proof, --creator")
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

	milestone, err := services.Escrow.SubmitMilestoneProof(ctx, *campaignFlag, *milestoneFlag, *proofFlag, *creatorFlag)
	if err != nil {
		common.PrintHeader("PROOF SUBMISSION FAILED", common.DefaultWidth)
		fmt.Printf("Milestone: %s\n", common.ShortId(*milestoneFlag))
		fmt.Printf("Error:     %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	common.PrintHeader("MILESTONE PROOF SUBMITTED", common.DefaultWidth)
	fmt.Printf("Milestone:       %s (%s)\n", milestone.Title, common.ShortId(milestone.Id))
	fmt.Printf("Proof hash:      %s\n", milestone.ProofHash)
	fmt.Printf("Unlocks:         %d%% of escrow on approval\n", milestone.UnlockPercentage)
	fmt.Printf("Voting deadline: %s\n", milestone.VotingDeadline.Format("2006-01-02 15:04:05"))
	common.PrintFooter("Voting window is open", common.DefaultWidth)
}
