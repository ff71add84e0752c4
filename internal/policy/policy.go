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

package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/ledger"
	"crowdfund-escrow-go/internal/models"
)

// KYCProvider answers whether an investor passed identity verification.
// Lookups may hit external I/O, so the validator runs before any campaign
// lock is taken; the ledger re-checks the stateful invariants inside it.
type KYCProvider interface {
	IsApproved(ctx context.Context, investor string) (bool, error)
}

// StaticKYC is a fixed approval map, used by tests and demo setup.
type StaticKYC map[string]bool

func (s StaticKYC) IsApproved(_ context.Context, investor string) (bool, error) {
	return s[investor], nil
}

// ValidationResult carries every violated reason, never just the first,
// so callers can surface the full list.
type ValidationResult struct {
	Valid   bool
	Reasons []string

	// first sentinel matched, for error classification
	sentinel error
}

// Err converts a failed result into a classified error. Returns nil when
// the result is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	sentinel := r.sentinel
	if sentinel == nil {
		sentinel = ledger.ErrInvalidParameters
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(r.Reasons, "; "))
}

// Validator runs pre-transaction policy checks that are orthogonal to the
// ledger's fund-conservation invariants.
type Validator struct {
	kyc KYCProvider
	now func() time.Time
}

type Option func(*Validator)

func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

func NewValidator(kyc KYCProvider, opts ...Option) *Validator {
	v := &Validator{
		kyc: kyc,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateInvestment checks bounds, KYC, pause and active flags against a
// committed campaign snapshot. Pure read, no side effects.
func (v *Validator) ValidateInvestment(ctx context.Context, campaign models.Campaign, investor string, amt amount.Amount) (ValidationResult, error) {
	result := ValidationResult{Valid: true}

	fail := func(sentinel error, reason string) {
		if result.Valid {
			result.Valid = false
			result.sentinel = sentinel
		}
		result.Reasons = append(result.Reasons, reason)
	}

	if campaign.AuditStatus == models.AuditStatusFailed {
		fail(ledger.ErrAuditFailed, "campaign audit failed; all mutating operations are blocked")
	}
	if !campaign.IsActive {
		fail(ledger.ErrCampaignInactive, "campaign is not active")
	}
	if campaign.Paused {
		fail(ledger.ErrCampaignPaused, "campaign is paused")
	}
	if v.now().After(campaign.Deadline) {
		fail(ledger.ErrCampaignExpired, fmt.Sprintf("campaign deadline %s has passed",
			campaign.Deadline.Format("2006-01-02")))
	}

	terms := campaign.Terms
	if amt < terms.MinInvestment {
		fail(ledger.ErrAmountOutOfBounds, fmt.Sprintf("amount %s below minimum %s", amt, terms.MinInvestment))
	}
	if amt > terms.MaxInvestment {
		fail(ledger.ErrAmountOutOfBounds, fmt.Sprintf("amount %s above maximum %s", amt, terms.MaxInvestment))
	}
	if terms.HardCap {
		if newRaised, err := campaign.RaisedAmount.Add(amt); err != nil || newRaised > campaign.GoalAmount {
			fail(ledger.ErrGoalExceeded, fmt.Sprintf("campaign accepts at most %s and has raised %s",
				campaign.GoalAmount, campaign.RaisedAmount))
		}
	}

	if terms.RequireKYC {
		approved, err := v.kyc.IsApproved(ctx, investor)
		if err != nil {
			return ValidationResult{}, fmt.Errorf("KYC lookup for %s: %w", investor, err)
		}
		if !approved {
			fail(ledger.ErrKYCRequired, fmt.Sprintf("investor %s has no approved KYC verification", investor))
		}
	}

	return result, nil
}
