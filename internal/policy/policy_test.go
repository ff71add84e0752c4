package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/ledger"
	"crowdfund-escrow-go/internal/models"
)

func testCampaign() models.Campaign {
	return models.Campaign{
		Id:           "campaign-1",
		Creator:      "creator-1",
		Title:        "Solar Farm",
		GoalAmount:   amount.Amount(1000000),
		RaisedAmount: amount.Amount(0),
		Deadline:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
		AuditStatus:  models.AuditStatusApproved,
		Terms: models.InvestmentTerms{
			MinInvestment:      amount.Amount(10000),
			MaxInvestment:      amount.Amount(500000),
			VotingThresholdPct: 50,
		},
	}
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

func TestValidateInvestmentPasses(t *testing.T) {
	v := NewValidator(StaticKYC{}, WithClock(fixedClock()))

	result, err := v.ValidateInvestment(context.Background(), testCampaign(), "alice", amount.Amount(100000))
	if err != nil {
		t.Fatalf("ValidateInvestment failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid, got reasons %v", result.Reasons)
	}
	if result.Err() != nil {
		t.Errorf("Err() on valid result = %v, want nil", result.Err())
	}
}

func TestValidateInvestmentCollectsAllReasons(t *testing.T) {
	v := NewValidator(StaticKYC{}, WithClock(fixedClock()))

	campaign := testCampaign()
	campaign.Paused = true
	campaign.Terms.RequireKYC = true

	// Paused, below minimum, and unverified at once: all three are reported.
	result, err := v.ValidateInvestment(context.Background(), campaign, "alice", amount.Amount(1))
	if err != nil {
		t.Fatalf("ValidateInvestment failed: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if len(result.Reasons) != 3 {
		t.Errorf("reasons = %v, want 3 entries", result.Reasons)
	}
	// Classification follows the first violation found.
	if !errors.Is(result.Err(), ledger.ErrCampaignPaused) {
		t.Errorf("Err() = %v, want ErrCampaignPaused", result.Err())
	}
}

func TestValidateInvestmentKYC(t *testing.T) {
	kyc := StaticKYC{"alice": true}
	v := NewValidator(kyc, WithClock(fixedClock()))

	campaign := testCampaign()
	campaign.Terms.RequireKYC = true

	result, err := v.ValidateInvestment(context.Background(), campaign, "alice", amount.Amount(100000))
	if err != nil {
		t.Fatalf("ValidateInvestment failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("approved investor rejected: %v", result.Reasons)
	}

	result, err = v.ValidateInvestment(context.Background(), campaign, "bob", amount.Amount(100000))
	if err != nil {
		t.Fatalf("ValidateInvestment failed: %v", err)
	}
	if result.Valid {
		t.Error("unverified investor passed a KYC-required campaign")
	}
	if !errors.Is(result.Err(), ledger.ErrKYCRequired) {
		t.Errorf("Err() = %v, want ErrKYCRequired", result.Err())
	}
}

func TestValidateInvestmentExpired(t *testing.T) {
	v := NewValidator(StaticKYC{}, WithClock(func() time.Time {
		return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	}))

	result, err := v.ValidateInvestment(context.Background(), testCampaign(), "alice", amount.Amount(100000))
	if err != nil {
		t.Fatalf("ValidateInvestment failed: %v", err)
	}
	if !errors.Is(result.Err(), ledger.ErrCampaignExpired) {
		t.Errorf("Err() = %v, want ErrCampaignExpired", result.Err())
	}
}

func TestValidateInvestmentHardCap(t *testing.T) {
	v := NewValidator(StaticKYC{}, WithClock(fixedClock()))

	campaign := testCampaign()
	campaign.Terms.HardCap = true
	campaign.RaisedAmount = amount.Amount(900000)

	result, err := v.ValidateInvestment(context.Background(), campaign, "alice", amount.Amount(200000))
	if err != nil {
		t.Fatalf("ValidateInvestment failed: %v", err)
	}
	if !errors.Is(result.Err(), ledger.ErrGoalExceeded) {
		t.Errorf("Err() = %v, want ErrGoalExceeded", result.Err())
	}
}

func TestSecurityScoreBaseline(t *testing.T) {
	campaign := testCampaign()
	campaign.EscrowBalance = amount.Amount(100000)

	score := ComputeSecurityScore(campaign)
	if score.Score != 95 {
		t.Errorf("score = %d, want baseline 95", score.Score)
	}
	if score.RiskLevel != RiskLow {
		t.Errorf("risk = %s, want low", score.RiskLevel)
	}
	if len(score.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", score.Warnings)
	}
}

func TestSecurityScoreDeductions(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Campaign)
		want     int
		wantRisk string
	}{
		{"zero escrow", func(c *models.Campaign) {}, 80, RiskMedium},
		{"audit pending", func(c *models.Campaign) {
			c.EscrowBalance = amount.Amount(1)
			c.AuditStatus = models.AuditStatusPending
		}, 70, RiskMedium},
		{"audit failed", func(c *models.Campaign) {
			c.EscrowBalance = amount.Amount(1)
			c.AuditStatus = models.AuditStatusFailed
		}, 35, RiskHigh},
		{"paused", func(c *models.Campaign) {
			c.EscrowBalance = amount.Amount(1)
			c.Paused = true
		}, 85, RiskMedium},
		{"everything wrong", func(c *models.Campaign) {
			c.AuditStatus = models.AuditStatusFailed
			c.Paused = true
			c.IsActive = false
		}, 0, RiskHigh},
		{"completed campaign keeps its standing", func(c *models.Campaign) {
			c.IsActive = false
			c.IsCompleted = true
		}, 95, RiskLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			campaign := testCampaign()
			tc.mutate(&campaign)
			score := ComputeSecurityScore(campaign)
			if score.Score != tc.want {
				t.Errorf("score = %d, want %d", score.Score, tc.want)
			}
			if score.RiskLevel != tc.wantRisk {
				t.Errorf("risk = %s, want %s", score.RiskLevel, tc.wantRisk)
			}
		})
	}
}
