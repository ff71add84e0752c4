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

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crowdfund-escrow-go/internal/audit"
	"crowdfund-escrow-go/internal/ledger"
	"crowdfund-escrow-go/internal/models"
	"crowdfund-escrow-go/internal/policy"
	"crowdfund-escrow-go/internal/store"

	"go.uber.org/zap"
)

// EscrowService is the operation surface over the escrow ledger. Control
// flow for every mutation: policy gate (fast reject) -> ledger transition
// (atomic under the campaign lock) -> durable store write -> audit append.
// The store is the system of record across process runs; the ledger is
// canonical within one.
type EscrowService struct {
	ledger    *ledger.Ledger
	store     store.CampaignStore
	auditLog  *audit.Log
	validator *policy.Validator
	now       func() time.Time
}

type Option func(*EscrowService)

// WithClock overrides the time source for the service, the ledger core,
// the validator and the audit log together.
func WithClock(now func() time.Time) Option {
	return func(s *EscrowService) {
		s.now = now
	}
}

// NewEscrowService loads every persisted campaign aggregate into the
// ledger core and wires the policy and audit layers around it.
func NewEscrowService(ctx context.Context, st store.CampaignStore, cfg models.LedgerConfig, opts ...Option) (*EscrowService, error) {
	s := &EscrowService{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ledger = ledger.New(cfg, ledger.WithClock(s.now))
	s.auditLog = audit.NewLog(audit.WithClock(s.now))
	s.validator = policy.NewValidator(&storeKYC{store: st, now: s.now}, policy.WithClock(s.now))

	campaigns, err := st.LoadCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}
	for _, campaign := range campaigns {
		investments, err := st.GetCampaignInvestments(ctx, campaign.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to load investments for %s: %w", campaign.Id, err)
		}
		votes, err := st.GetCampaignVotes(ctx, campaign.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to load votes for %s: %w", campaign.Id, err)
		}
		events, err := st.GetAuditLog(ctx, campaign.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to load audit log for %s: %w", campaign.Id, err)
		}
		s.ledger.Load(campaign, investments, votes)
		s.auditLog.Seed(campaign.Id, events)
	}

	zap.L().Info("Escrow service initialized", zap.Int("campaigns", len(campaigns)))
	return s, nil
}

// recordEvent appends the committed transition to the in-memory log and
// the durable store.
func (s *EscrowService) recordEvent(ctx context.Context, campaignId string, kind models.AuditEventKind, actor string, payload map[string]string) error {
	event := s.auditLog.Append(campaignId, kind, actor, payload)
	if err := s.store.AppendAuditEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to persist audit event: %w", err)
	}
	return nil
}

// storeKYC adapts the durable store to the policy layer's KYC interface.
type storeKYC struct {
	store store.CampaignStore
	now   func() time.Time
}

func (k *storeKYC) IsApproved(ctx context.Context, investor string) (bool, error) {
	approval, err := k.store.GetKYCApproval(ctx, investor)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return approval.Approved(k.now()), nil
}
