package models

import (
	"time"

	"crowdfund-escrow-go/internal/amount"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	CreateDemoData  bool
}

// LedgerConfig holds escrow ledger policy defaults. Per-campaign terms
// override the investment bounds and voting threshold.
type LedgerConfig struct {
	DefaultVotingThresholdPct uint
	DefaultMinInvestment      amount.Amount
	DefaultMaxInvestment      amount.Amount
	ApprovalWindow            time.Duration // voting window opened by a proof submission
	PlatformAuthority         string        // identity allowed to pause/unpause any campaign
}
