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
	voterFlag := flag.String("voter", "", "Voting investor identity (required)")
	approveFlag := flag.Bool("approve", false, "Approve the milestone (omit to reject)")
	reasonFlag := flag.String("reason", "", "Optional voting rationale")
	flag.Parse()

	if *campaignFlag == "" || *milestoneFlag == "" || *voterFlag == "" {
		fmt.Fprintln(os.Stderr, "required flags: --campaign, --milestone, --voter")
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

	vote, err := services.Escrow.VoteOnMilestone(ctx, *campaignFlag, *milestoneFlag, *voterFlag, *approveFlag, *reasonFlag)
	if err != nil {
		common.PrintHeader("VOTE REJECTED", common.DefaultWidth)
		fmt.Printf("Voter:     %s\n", *voterFlag)
		fmt.Printf("Milestone: %s\n", common.ShortId(*milestoneFlag))
		fmt.Printf("Error:     %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	verdict := "REJECT"
	if vote.Approve {
		verdict = "APPROVE"
	}

	common.PrintHeader("VOTE RECORDED", common.DefaultWidth)
	fmt.Printf("Vote ID:   %s\n", vote.Id)
	fmt.Printf("Voter:     %s\n", vote.Voter)
	fmt.Printf("Milestone: %s\n", common.ShortId(vote.MilestoneId))
	fmt.Printf("Verdict:   %s\n", verdict)
	if vote.Reason != "" {
		fmt.Printf("Reason:    %s\n", vote.Reason)
	}
	common.PrintFooter("Ballot committed", common.DefaultWidth)
}
