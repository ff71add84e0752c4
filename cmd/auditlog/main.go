package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

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
	flag.Parse()

	if *campaignFlag == "" {
		fmt.Fprintln(os.Stderr, "required flag: --campaign")
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

	events, err := services.Escrow.GetAuditLog(*campaignFlag)
	if err != nil {
		common.PrintHeader("AUDIT LOG UNAVAILABLE", common.DefaultWidth)
		fmt.Printf("Campaign: %s\n", common.ShortId(*campaignFlag))
		fmt.Printf("Error:    %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		os.Exit(ledger.ExitCode(err))
	}

	common.PrintHeader(fmt.Sprintf("AUDIT LOG: %s", common.ShortId(*campaignFlag)), common.WideWidth)
	for _, event := range events {
		fmt.Printf("#%-4d %-28s %-16s %s\n",
			event.Seq, event.Kind, event.Actor, event.Timestamp.Format("2006-01-02 15:04:05"))

		keys := make([]string, 0, len(event.Payload))
		for key := range event.Payload {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			fmt.Printf("      %s%s: %s\n", common.BoxPrefix(i == len(keys)-1), key, event.Payload[key])
		}
	}
	common.PrintFooter(fmt.Sprintf("%d event(s)", len(events)), common.WideWidth)
}
