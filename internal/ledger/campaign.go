package ledger

import (
	"fmt"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxMilestones     = 10
)

// MilestoneSpec describes one milestone at campaign-creation time.
// Milestone order in the slice is execution order.
type MilestoneSpec struct {
	Title            string
	Description      string
	UnlockPercentage uint
}

// CreateCampaignParams carries the campaign-creation input.
type CreateCampaignParams struct {
	Creator     string
	Title       string
	Description string
	GoalAmount  amount.Amount
	Deadline    time.Time
	Milestones  []MilestoneSpec
	Terms       models.InvestmentTerms
}

// CreateCampaign validates the parameters and registers a new campaign
// aggregate with zero raised and escrow balances.
func (l *Ledger) CreateCampaign(params CreateCampaignParams) (models.Campaign, error) {
	if err := validateCreate(params, l.now()); err != nil {
		return models.Campaign{}, err
	}

	now := l.now()
	campaignId := uuid.New().String()

	campaign := models.Campaign{
		Id:            campaignId,
		Creator:       params.Creator,
		Title:         params.Title,
		Description:   params.Description,
		GoalAmount:    params.GoalAmount,
		Deadline:      params.Deadline,
		Milestones:    make([]models.Milestone, 0, len(params.Milestones)),
		Investors:     []string{},
		IsActive:      true,
		Terms:         params.Terms,
		SecurityScore: 95,
		AuditStatus:   models.AuditStatusApproved,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, spec := range params.Milestones {
		campaign.Milestones = append(campaign.Milestones, models.Milestone{
			Id:               uuid.New().String(),
			CampaignId:       campaignId,
			Title:            spec.Title,
			Description:      spec.Description,
			UnlockPercentage: spec.UnlockPercentage,
		})
	}

	state := &campaignState{
		campaign:    campaign,
		votes:       make(map[string]map[string]models.Vote),
		investorSet: make(map[string]struct{}),
	}

	l.mu.Lock()
	l.campaigns[campaignId] = state
	l.mu.Unlock()

	zap.L().Info("Campaign created",
		zap.String("campaign_id", campaignId),
		zap.String("creator", params.Creator),
		zap.String("goal", campaign.GoalAmount.String()),
		zap.Int("milestones", len(campaign.Milestones)))

	return copyCampaign(campaign), nil
}

func validateCreate(params CreateCampaignParams, now time.Time) error {
	if params.Creator == "" {
		return fmt.Errorf("%w: creator is required", ErrInvalidParameters)
	}
	if params.Title == "" || len(params.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidParameters, maxTitleLen)
	}
	if len(params.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description must be at most %d characters", ErrInvalidParameters, maxDescriptionLen)
	}
	if params.GoalAmount.IsZero() {
		return fmt.Errorf("%w: goal amount must be positive", ErrInvalidParameters)
	}
	if !params.Deadline.After(now) {
		return fmt.Errorf("%w: deadline must be in the future", ErrInvalidParameters)
	}
	if len(params.Milestones) == 0 || len(params.Milestones) > maxMilestones {
		return fmt.Errorf("%w: campaign requires 1-%d milestones", ErrInvalidParameters, maxMilestones)
	}

	var pctSum uint
	for i, spec := range params.Milestones {
		if spec.Title == "" {
			return fmt.Errorf("%w: milestone %d missing title", ErrInvalidParameters, i)
		}
		if spec.UnlockPercentage == 0 || spec.UnlockPercentage > 100 {
			return fmt.Errorf("%w: milestone %d unlock percentage must be in (0,100]", ErrInvalidParameters, i)
		}
		pctSum += spec.UnlockPercentage
	}
	if pctSum > 100 {
		return fmt.Errorf("%w: milestone unlock percentages sum to %d%%, maximum is 100%%", ErrInvalidParameters, pctSum)
	}

	terms := params.Terms
	if terms.MinInvestment > terms.MaxInvestment {
		return fmt.Errorf("%w: minimum investment %s exceeds maximum %s",
			ErrInvalidParameters, terms.MinInvestment, terms.MaxInvestment)
	}
	if terms.VotingThresholdPct == 0 || terms.VotingThresholdPct > 100 {
		return fmt.Errorf("%w: voting threshold must be in (0,100]", ErrInvalidParameters)
	}
	return nil
}

// PauseCampaign suspends investing and fund release on a campaign. Voting
// stays open so an in-flight approval round is not frozen.
func (l *Ledger) PauseCampaign(campaignId, authority string) (models.Campaign, error) {
	return l.setPaused(campaignId, authority, true)
}

// UnpauseCampaign lifts a pause.
func (l *Ledger) UnpauseCampaign(campaignId, authority string) (models.Campaign, error) {
	return l.setPaused(campaignId, authority, false)
}

func (l *Ledger) setPaused(campaignId, authority string, paused bool) (models.Campaign, error) {
	state, err := l.lookup(campaignId)
	if err != nil {
		return models.Campaign{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	c := &state.campaign
	if authority != c.Creator && authority != l.cfg.PlatformAuthority {
		return models.Campaign{}, fmt.Errorf("%w: %s may not pause campaign %s", ErrNotAuthorized, authority, campaignId)
	}
	if c.AuditStatus == models.AuditStatusFailed {
		return models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrAuditFailed, campaignId)
	}
	if !c.IsActive {
		return models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrCampaignInactive, campaignId)
	}

	c.Paused = paused
	c.UpdatedAt = l.now()
	c.Version++

	zap.L().Info("Campaign pause state changed",
		zap.String("campaign_id", campaignId),
		zap.String("authority", authority),
		zap.Bool("paused", paused))

	return copyCampaign(*c), nil
}

// CancelCampaign terminates an active campaign and reverses every active
// investment so the escrow drains back to the investors. Conservation
// holds throughout: raised tracks non-reversed investments only.
func (l *Ledger) CancelCampaign(campaignId, actor string) (models.Campaign, []models.Investment, error) {
	state, err := l.lookup(campaignId)
	if err != nil {
		return models.Campaign{}, nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	c := &state.campaign
	if actor != c.Creator && actor != l.cfg.PlatformAuthority {
		return models.Campaign{}, nil, fmt.Errorf("%w: %s may not cancel campaign %s", ErrNotAuthorized, actor, campaignId)
	}
	if !c.IsActive {
		return models.Campaign{}, nil, fmt.Errorf("%w: campaign %s", ErrCampaignInactive, campaignId)
	}

	var reversed []models.Investment
	for i := range state.investments {
		inv := &state.investments[i]
		if inv.Status != models.InvestmentStatusActive {
			continue
		}

		// Released tranches are already out of escrow; refunds can only
		// return what escrow still holds.
		refund := inv.Amount
		if refund > c.EscrowBalance {
			refund = c.EscrowBalance
		}
		c.EscrowBalance, err = c.EscrowBalance.Sub(refund)
		if err != nil {
			return models.Campaign{}, nil, err
		}
		c.RaisedAmount, err = c.RaisedAmount.Sub(inv.Amount)
		if err != nil {
			return models.Campaign{}, nil, err
		}

		inv.Status = models.InvestmentStatusReversed
		reversed = append(reversed, *inv)
	}

	c.IsActive = false
	c.Cancelled = true
	c.UpdatedAt = l.now()
	c.Version++

	zap.L().Info("Campaign cancelled",
		zap.String("campaign_id", campaignId),
		zap.String("actor", actor),
		zap.Int("reversed_investments", len(reversed)))

	return copyCampaign(*c), reversed, nil
}
