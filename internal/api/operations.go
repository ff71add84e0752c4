package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/ledger"
	"crowdfund-escrow-go/internal/models"
	"crowdfund-escrow-go/internal/policy"

	"go.uber.org/zap"
)

// CreateCampaign registers a new campaign and persists it.
func (s *EscrowService) CreateCampaign(ctx context.Context, params ledger.CreateCampaignParams) (models.Campaign, error) {
	campaign, err := s.ledger.CreateCampaign(params)
	if err != nil {
		return models.Campaign{}, err
	}

	if err := s.store.InsertCampaign(ctx, campaign); err != nil {
		return models.Campaign{}, err
	}
	if err := s.recordEvent(ctx, campaign.Id, models.AuditEventCampaignCreated, params.Creator, map[string]string{
		"title":      campaign.Title,
		"goal":       campaign.GoalAmount.String(),
		"milestones": strconv.Itoa(len(campaign.Milestones)),
	}); err != nil {
		return models.Campaign{}, err
	}
	return campaign, nil
}

// Invest runs the policy gate against a committed snapshot, then applies
// the transition. The ledger re-validates stateful invariants under the
// campaign lock, so the unlocked pre-check cannot be raced past.
func (s *EscrowService) Invest(ctx context.Context, campaignId, investor string, amt amount.Amount) (models.Investment, error) {
	snapshot, err := s.ledger.GetCampaign(campaignId)
	if err != nil {
		return models.Investment{}, err
	}

	result, err := s.validator.ValidateInvestment(ctx, snapshot, investor, amt)
	if err != nil {
		return models.Investment{}, err
	}
	if !result.Valid {
		zap.L().Info("Investment rejected by policy",
			zap.String("campaign_id", campaignId),
			zap.String("investor", investor),
			zap.Strings("reasons", result.Reasons))
		return models.Investment{}, result.Err()
	}

	investment, campaign, err := s.ledger.Invest(campaignId, investor, amt)
	if err != nil {
		return models.Investment{}, err
	}

	if err := s.store.InsertInvestment(ctx, investment); err != nil {
		return models.Investment{}, err
	}
	if _, err := s.store.UpdateCampaign(ctx, campaign); err != nil {
		return models.Investment{}, err
	}
	if err := s.recordEvent(ctx, campaignId, models.AuditEventInvestmentMade, investor, map[string]string{
		"investment_id": investment.Id,
		"amount":        investment.Amount.String(),
		"raised":        campaign.RaisedAmount.String(),
		"escrow":        campaign.EscrowBalance.String(),
	}); err != nil {
		return models.Investment{}, err
	}
	return investment, nil
}

// SubmitMilestoneProof stores the proof hash and opens the voting window.
func (s *EscrowService) SubmitMilestoneProof(ctx context.Context, campaignId, milestoneId, proofHash, submitter string) (models.Milestone, error) {
	milestone, err := s.ledger.SubmitMilestoneProof(campaignId, milestoneId, proofHash, submitter)
	if err != nil {
		return models.Milestone{}, err
	}

	if err := s.persistCampaign(ctx, campaignId); err != nil {
		return models.Milestone{}, err
	}
	if err := s.recordEvent(ctx, campaignId, models.AuditEventProofSubmitted, submitter, map[string]string{
		"milestone_id": milestoneId,
		"proof_hash":   proofHash,
		"voting_until": milestone.VotingDeadline.Format(time.RFC3339),
	}); err != nil {
		return models.Milestone{}, err
	}
	return milestone, nil
}

// VoteOnMilestone records a ballot.
func (s *EscrowService) VoteOnMilestone(ctx context.Context, campaignId, milestoneId, voter string, approve bool, reason string) (models.Vote, error) {
	vote, milestone, err := s.ledger.VoteOnMilestone(campaignId, milestoneId, voter, approve, reason)
	if err != nil {
		return models.Vote{}, err
	}

	if err := s.store.InsertVote(ctx, vote); err != nil {
		return models.Vote{}, err
	}
	if err := s.persistCampaign(ctx, campaignId); err != nil {
		return models.Vote{}, err
	}
	if err := s.recordEvent(ctx, campaignId, models.AuditEventMilestoneVote, voter, map[string]string{
		"milestone_id":  milestoneId,
		"approve":       strconv.FormatBool(approve),
		"reason":        reason,
		"votes_for":     strconv.Itoa(milestone.VotesFor),
		"votes_against": strconv.Itoa(milestone.VotesAgainst),
	}); err != nil {
		return models.Vote{}, err
	}
	return vote, nil
}

// ReleaseMilestoneFunds releases the approved tranche from escrow.
func (s *EscrowService) ReleaseMilestoneFunds(ctx context.Context, campaignId, milestoneId string) (amount.Amount, error) {
	released, campaign, err := s.ledger.ReleaseMilestoneFunds(campaignId, milestoneId)
	if err != nil {
		return 0, err
	}

	if _, err := s.store.UpdateCampaign(ctx, campaign); err != nil {
		return 0, err
	}
	if err := s.recordEvent(ctx, campaignId, models.AuditEventFundsReleased, "system", map[string]string{
		"milestone_id": milestoneId,
		"released":     released.String(),
		"escrow":       campaign.EscrowBalance.String(),
	}); err != nil {
		return 0, err
	}
	return released, nil
}

// PauseCampaign suspends investing and release on a campaign.
func (s *EscrowService) PauseCampaign(ctx context.Context, campaignId, authority string) error {
	campaign, err := s.ledger.PauseCampaign(campaignId, authority)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}
	return s.recordEvent(ctx, campaignId, models.AuditEventCampaignPaused, authority, nil)
}

// UnpauseCampaign lifts a pause.
func (s *EscrowService) UnpauseCampaign(ctx context.Context, campaignId, authority string) error {
	campaign, err := s.ledger.UnpauseCampaign(campaignId, authority)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}
	return s.recordEvent(ctx, campaignId, models.AuditEventCampaignUnpaused, authority, nil)
}

// CancelCampaign terminates the campaign and reverses active investments.
func (s *EscrowService) CancelCampaign(ctx context.Context, campaignId, actor string) error {
	campaign, reversed, err := s.ledger.CancelCampaign(campaignId, actor)
	if err != nil {
		return err
	}

	for _, inv := range reversed {
		if err := s.store.UpdateInvestmentStatus(ctx, inv.Id, models.InvestmentStatusReversed); err != nil {
			return err
		}
	}
	if _, err := s.store.UpdateCampaign(ctx, campaign); err != nil {
		return err
	}
	return s.recordEvent(ctx, campaignId, models.AuditEventCampaignCancelled, actor, map[string]string{
		"reversed_investments": strconv.Itoa(len(reversed)),
	})
}

// GetCampaign returns the latest committed campaign snapshot.
func (s *EscrowService) GetCampaign(campaignId string) (models.Campaign, error) {
	return s.ledger.GetCampaign(campaignId)
}

// Campaigns returns snapshots of all campaigns in creation order.
func (s *EscrowService) Campaigns() []models.Campaign {
	return s.ledger.Campaigns()
}

// GetInvestorInvestments returns one investor's records across campaigns.
func (s *EscrowService) GetInvestorInvestments(investor string) []models.Investment {
	return s.ledger.InvestorInvestments(investor)
}

// GetAuditLog returns a campaign's committed history in append order.
func (s *EscrowService) GetAuditLog(campaignId string) ([]models.AuditEvent, error) {
	if _, err := s.ledger.GetCampaign(campaignId); err != nil {
		return nil, err
	}
	return s.auditLog.Query(campaignId), nil
}

// SecurityStatus derives the display-only security posture of a campaign.
func (s *EscrowService) SecurityStatus(campaignId string) (policy.SecurityScore, error) {
	campaign, err := s.ledger.GetCampaign(campaignId)
	if err != nil {
		return policy.SecurityScore{}, err
	}
	return policy.ComputeSecurityScore(campaign), nil
}

// SetKYCApproval records an investor's verification state.
func (s *EscrowService) SetKYCApproval(ctx context.Context, approval models.KYCApproval) error {
	if approval.Investor == "" {
		return fmt.Errorf("%w: investor is required", ledger.ErrInvalidParameters)
	}
	approval.UpdatedAt = s.now()
	if approval.Status == models.KYCStatusApproved && approval.VerifiedAt.IsZero() {
		approval.VerifiedAt = s.now()
	}
	return s.store.UpsertKYCApproval(ctx, approval)
}

func (s *EscrowService) persistCampaign(ctx context.Context, campaignId string) error {
	campaign, err := s.ledger.GetCampaign(campaignId)
	if err != nil {
		return err
	}
	_, err = s.store.UpdateCampaign(ctx, campaign)
	return err
}
