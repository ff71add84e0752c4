/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

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

	fileFlag := flag.String("file", "campaign.yaml", "Campaign spec file (YAML)")
	creatorFlag := flag.String("creator", "", "Campaign creator identity (required)")
	flag.Parse()

	if *creatorFlag == "" {
		fmt.Fprintln(os.Stderr, "required flag: --creator")
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

	params, err := common.LoadCampaignSpec(*fileFlag, *creatorFlag, cfg.Ledger)
	if err != nil {
		zap.L().Error("Failed to load campaign spec", zap.String("file", *fileFlag), zap.Error(err))
		os.Exit(ledger.ExitValidation)
	}

	campaign, err := services.Escrow.CreateCampaign(ctx, params)
	if err != nil {
		common.PrintHeader("CAMPAIGN CREATION FAILED", common.DefaultWidth)
		fmt.Printf("Error: %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	common.PrintHeader("CAMPAIGN CREATED", common.DefaultWidth)
	fmt.Printf("Campaign ID:      %s\n", campaign.Id)
	fmt.Printf("Creator:          %s\n", campaign.Creator)
	fmt.Printf("Title:            %s\n", campaign.Title)
	fmt.Printf("Goal:             %s\n", campaign.GoalAmount)
	fmt.Printf("Deadline:         %s\n", campaign.Deadline.Format("2006-01-02 15:04:05"))
	fmt.Printf("Voting threshold: %d%%\n", campaign.Terms.VotingThresholdPct)
	fmt.Printf("Milestones:       %d\n", len(campaign.Milestones))
	for i, m := range campaign.Milestones {
		fmt.Printf("%s%d. %s (unlocks %d%%) [%s]\n",
			common.BoxPrefix(i == len(campaign.Milestones)-1), i+1, m.Title, m.UnlockPercentage, common.ShortId(m.Id))
	}
	common.PrintFooter("Campaign registered", common.DefaultWidth)
}
