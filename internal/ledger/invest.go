package ledger

import (
	"fmt"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Invest atomically credits raised and escrow and appends an immutable
// investment record. KYC gating runs in the policy layer before the
// ledger is reached; every stateful invariant is re-checked here under
// the campaign lock so concurrent calls cannot race past it.
func (l *Ledger) Invest(campaignId, investor string, amt amount.Amount) (models.Investment, models.Campaign, error) {
	if investor == "" {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: investor is required", ErrInvalidParameters)
	}
	if amt.IsZero() {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: amount must be positive", ErrInvalidParameters)
	}

	state, err := l.lookup(campaignId)
	if err != nil {
		return models.Investment{}, models.Campaign{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	c := &state.campaign
	if c.AuditStatus == models.AuditStatusFailed {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrAuditFailed, campaignId)
	}
	if !c.IsActive {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrCampaignInactive, campaignId)
	}
	if c.Paused {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrCampaignPaused, campaignId)
	}

	now := l.now()
	if now.After(c.Deadline) {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: deadline was %s",
			ErrCampaignExpired, c.Deadline.Format("2006-01-02 15:04:05"))
	}
	if amt < c.Terms.MinInvestment || amt > c.Terms.MaxInvestment {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: %s is outside [%s, %s]",
			ErrAmountOutOfBounds, amt, c.Terms.MinInvestment, c.Terms.MaxInvestment)
	}

	newRaised, err := c.RaisedAmount.Add(amt)
	if err != nil {
		return models.Investment{}, models.Campaign{}, err
	}
	if c.Terms.HardCap && newRaised > c.GoalAmount {
		return models.Investment{}, models.Campaign{}, fmt.Errorf("%w: %s raised of %s goal",
			ErrGoalExceeded, c.RaisedAmount, c.GoalAmount)
	}
	newEscrow, err := c.EscrowBalance.Add(amt)
	if err != nil {
		return models.Investment{}, models.Campaign{}, err
	}
	expectedReturn, err := amt.Percent(c.Terms.ExpectedReturnRate)
	if err != nil {
		return models.Investment{}, models.Campaign{}, err
	}

	investment := models.Investment{
		Id:             uuid.New().String(),
		CampaignId:     campaignId,
		Investor:       investor,
		Amount:         amt,
		ExpectedReturn: expectedReturn,
		Status:         models.InvestmentStatusActive,
		InvestedAt:     now,
	}

	c.RaisedAmount = newRaised
	c.EscrowBalance = newEscrow
	c.UpdatedAt = now
	c.Version++
	if _, seen := state.investorSet[investor]; !seen {
		state.investorSet[investor] = struct{}{}
		c.Investors = append(c.Investors, investor)
	}
	state.investments = append(state.investments, investment)

	zap.L().Info("Investment accepted",
		zap.String("campaign_id", campaignId),
		zap.String("investor", investor),
		zap.String("amount", amt.String()),
		zap.String("raised", c.RaisedAmount.String()),
		zap.String("escrow", c.EscrowBalance.String()))

	return investment, copyCampaign(*c), nil
}
