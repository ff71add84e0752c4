package ledger

import (
	"fmt"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitMilestoneProof stores the proof reference and opens the voting
// window. Resubmission is allowed until voting closes or the milestone
// completes; it overwrites the hash only, keeping the deadline and any
// votes already cast.
func (l *Ledger) SubmitMilestoneProof(campaignId, milestoneId, proofHash, submitter string) (models.Milestone, error) {
	if proofHash == "" {
		return models.Milestone{}, fmt.Errorf("%w: proof hash is required", ErrInvalidParameters)
	}

	state, err := l.lookup(campaignId)
	if err != nil {
		return models.Milestone{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	c := &state.campaign
	if c.AuditStatus == models.AuditStatusFailed {
		return models.Milestone{}, fmt.Errorf("%w: campaign %s", ErrAuditFailed, campaignId)
	}
	if submitter != c.Creator {
		return models.Milestone{}, fmt.Errorf("%w: submitter %s", ErrNotCreator, submitter)
	}

	m, err := findMilestone(c, milestoneId)
	if err != nil {
		return models.Milestone{}, err
	}
	if m.Completed {
		return models.Milestone{}, fmt.Errorf("%w: milestone %s", ErrMilestoneCompleted, milestoneId)
	}

	now := l.now()
	if m.ProofSubmitted {
		if now.After(m.VotingDeadline) {
			return models.Milestone{}, fmt.Errorf("%w: deadline was %s",
				ErrVotingClosed, m.VotingDeadline.Format("2006-01-02 15:04:05"))
		}
		m.ProofHash = proofHash
	} else {
		m.ProofSubmitted = true
		m.ProofHash = proofHash
		m.VotingDeadline = now.Add(l.cfg.ApprovalWindow)
	}
	c.UpdatedAt = now
	c.Version++

	zap.L().Info("Milestone proof submitted",
		zap.String("campaign_id", campaignId),
		zap.String("milestone_id", milestoneId),
		zap.String("proof_hash", proofHash),
		zap.Time("voting_deadline", m.VotingDeadline))

	return *m, nil
}

// VoteOnMilestone records a one-investor-one-vote ballot. A second vote
// from the same investor on the same milestone is rejected, never
// overwritten, so the audit trail stays exact.
func (l *Ledger) VoteOnMilestone(campaignId, milestoneId, voter string, approve bool, reason string) (models.Vote, models.Milestone, error) {
	state, err := l.lookup(campaignId)
	if err != nil {
		return models.Vote{}, models.Milestone{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	c := &state.campaign
	if c.AuditStatus == models.AuditStatusFailed {
		return models.Vote{}, models.Milestone{}, fmt.Errorf("%w: campaign %s", ErrAuditFailed, campaignId)
	}
	if _, ok := state.investorSet[voter]; !ok {
		return models.Vote{}, models.Milestone{}, fmt.Errorf("%w: %s has no investment in campaign %s",
			ErrNotAnInvestor, voter, campaignId)
	}

	m, err := findMilestone(c, milestoneId)
	if err != nil {
		return models.Vote{}, models.Milestone{}, err
	}
	if m.Completed {
		return models.Vote{}, models.Milestone{}, fmt.Errorf("%w: milestone %s", ErrMilestoneCompleted, milestoneId)
	}
	if !m.ProofSubmitted {
		return models.Vote{}, models.Milestone{}, fmt.Errorf("%w: milestone %s", ErrProofNotSubmitted, milestoneId)
	}

	now := l.now()
	if now.After(m.VotingDeadline) {
		return models.Vote{}, models.Milestone{}, fmt.Errorf("%w: deadline was %s",
			ErrVotingClosed, m.VotingDeadline.Format("2006-01-02 15:04:05"))
	}

	byVoter, ok := state.votes[milestoneId]
	if !ok {
		byVoter = make(map[string]models.Vote)
		state.votes[milestoneId] = byVoter
	}
	if _, voted := byVoter[voter]; voted {
		return models.Vote{}, models.Milestone{}, fmt.Errorf("%w: %s on milestone %s", ErrAlreadyVoted, voter, milestoneId)
	}

	vote := models.Vote{
		Id:          uuid.New().String(),
		CampaignId:  campaignId,
		MilestoneId: milestoneId,
		Voter:       voter,
		Approve:     approve,
		Reason:      reason,
		VotedAt:     now,
	}
	byVoter[voter] = vote

	if approve {
		m.VotesFor++
	} else {
		m.VotesAgainst++
	}
	c.UpdatedAt = now
	c.Version++

	zap.L().Info("Milestone vote recorded",
		zap.String("campaign_id", campaignId),
		zap.String("milestone_id", milestoneId),
		zap.String("voter", voter),
		zap.Bool("approve", approve),
		zap.Int("votes_for", m.VotesFor),
		zap.Int("votes_against", m.VotesAgainst))

	return vote, *m, nil
}

// ReleaseMilestoneFunds releases the milestone's unlock percentage of the
// current escrow balance, rounded down, and marks the milestone completed.
// The approval threshold is evaluated at release time against the current
// distinct investor set.
func (l *Ledger) ReleaseMilestoneFunds(campaignId, milestoneId string) (amount.Amount, models.Campaign, error) {
	state, err := l.lookup(campaignId)
	if err != nil {
		return 0, models.Campaign{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	c := &state.campaign
	if c.AuditStatus == models.AuditStatusFailed {
		return 0, models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrAuditFailed, campaignId)
	}
	if c.Paused {
		return 0, models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrCampaignPaused, campaignId)
	}

	m, err := findMilestone(c, milestoneId)
	if err != nil {
		return 0, models.Campaign{}, err
	}
	if m.Completed {
		return 0, models.Campaign{}, fmt.Errorf("%w: milestone %s", ErrMilestoneCompleted, milestoneId)
	}
	if !m.ProofSubmitted {
		return 0, models.Campaign{}, fmt.Errorf("%w: milestone %s", ErrProofNotSubmitted, milestoneId)
	}

	required := requiredVotes(c.Terms.VotingThresholdPct, len(c.Investors))
	if m.VotesFor < required {
		return 0, models.Campaign{}, fmt.Errorf("%w: %d of %d required approvals",
			ErrInsufficientVotes, m.VotesFor, required)
	}
	if c.EscrowBalance.IsZero() {
		return 0, models.Campaign{}, fmt.Errorf("%w: campaign %s", ErrNoEscrowFunds, campaignId)
	}

	released, err := c.EscrowBalance.Percent(m.UnlockPercentage)
	if err != nil {
		return 0, models.Campaign{}, err
	}
	newEscrow, err := c.EscrowBalance.Sub(released)
	if err != nil {
		return 0, models.Campaign{}, err
	}

	c.EscrowBalance = newEscrow
	m.Completed = true
	c.UpdatedAt = l.now()
	c.Version++

	if allMilestonesCompleted(c) {
		c.IsCompleted = true
		c.IsActive = false
	}

	zap.L().Info("Milestone funds released",
		zap.String("campaign_id", campaignId),
		zap.String("milestone_id", milestoneId),
		zap.String("released", released.String()),
		zap.String("escrow_remaining", c.EscrowBalance.String()),
		zap.Bool("campaign_completed", c.IsCompleted))

	return released, copyCampaign(*c), nil
}

func findMilestone(c *models.Campaign, milestoneId string) (*models.Milestone, error) {
	for i := range c.Milestones {
		if c.Milestones[i].Id == milestoneId {
			return &c.Milestones[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s in campaign %s", ErrMilestoneNotFound, milestoneId, c.Id)
}

func allMilestonesCompleted(c *models.Campaign) bool {
	for i := range c.Milestones {
		if !c.Milestones[i].Completed {
			return false
		}
	}
	return true
}
