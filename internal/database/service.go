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

package database

import (
	"context"
	"database/sql"
	"fmt"

	"crowdfund-escrow-go/internal/models"
	"crowdfund-escrow-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.CampaignStore.
var _ store.CampaignStore = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Campaign aggregate snapshots (hot data, optimistic-lock version)
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		creator TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		goal_amount INTEGER NOT NULL,
		raised_amount INTEGER NOT NULL DEFAULT 0,
		escrow_balance INTEGER NOT NULL DEFAULT 0,
		deadline TIMESTAMP NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		paused BOOLEAN NOT NULL DEFAULT 0,
		cancelled BOOLEAN NOT NULL DEFAULT 0,
		min_investment INTEGER NOT NULL,
		max_investment INTEGER NOT NULL,
		expected_return_rate INTEGER NOT NULL DEFAULT 0,
		penalty_rate INTEGER NOT NULL DEFAULT 0,
		voting_threshold_pct INTEGER NOT NULL,
		require_kyc BOOLEAN NOT NULL DEFAULT 0,
		hard_cap BOOLEAN NOT NULL DEFAULT 0,
		security_score INTEGER NOT NULL DEFAULT 95,
		audit_status TEXT NOT NULL DEFAULT 'approved',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_campaigns_creator ON campaigns(creator);
	CREATE INDEX IF NOT EXISTS idx_campaigns_active ON campaigns(is_active);
	CREATE INDEX IF NOT EXISTS idx_campaigns_created_at ON campaigns(created_at);

	-- Milestones, ordered by position within their campaign
	CREATE TABLE IF NOT EXISTS milestones (
		id TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		unlock_percentage INTEGER NOT NULL,
		voting_deadline TIMESTAMP,
		completed BOOLEAN NOT NULL DEFAULT 0,
		votes_for INTEGER NOT NULL DEFAULT 0,
		votes_against INTEGER NOT NULL DEFAULT 0,
		proof_submitted BOOLEAN NOT NULL DEFAULT 0,
		proof_hash TEXT NOT NULL DEFAULT '',
		UNIQUE(campaign_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_milestones_campaign ON milestones(campaign_id);

	-- Investments (append-only; only status ever changes)
	CREATE TABLE IF NOT EXISTS investments (
		id TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL REFERENCES campaigns(id),
		investor TEXT NOT NULL,
		amount INTEGER NOT NULL,
		expected_return INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		invested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_investments_campaign ON investments(campaign_id);
	CREATE INDEX IF NOT EXISTS idx_investments_investor ON investments(investor);
	CREATE INDEX IF NOT EXISTS idx_investments_invested_at ON investments(invested_at);

	-- Votes: set membership on (milestone, voter)
	CREATE TABLE IF NOT EXISTS votes (
		id TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL REFERENCES campaigns(id),
		milestone_id TEXT NOT NULL REFERENCES milestones(id),
		voter TEXT NOT NULL,
		approve BOOLEAN NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		voted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(milestone_id, voter)
	);

	CREATE INDEX IF NOT EXISTS idx_votes_campaign ON votes(campaign_id);

	-- Audit events (append-only, totally ordered per campaign)
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		campaign_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		actor TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(campaign_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_audit_events_campaign ON audit_events(campaign_id, seq);

	-- KYC verification state per investor
	CREATE TABLE IF NOT EXISTS kyc_approvals (
		investor TEXT PRIMARY KEY,
		level TEXT NOT NULL DEFAULT 'none',
		status TEXT NOT NULL DEFAULT 'pending',
		verified_at TIMESTAMP,
		expires_at TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
