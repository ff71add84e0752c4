package models

import (
	"time"

	"crowdfund-escrow-go/internal/amount"
)

// AuditStatus is the external audit state of a campaign. A failed audit
// hard-blocks every mutating operation on the campaign.
type AuditStatus string

const (
	AuditStatusPending  AuditStatus = "pending"
	AuditStatusApproved AuditStatus = "approved"
	AuditStatusFailed   AuditStatus = "failed"
)

// InvestmentStatus tracks the only mutation an investment ever sees:
// the transition from active to reversed on refund.
type InvestmentStatus string

const (
	InvestmentStatusActive   InvestmentStatus = "active"
	InvestmentStatusReversed InvestmentStatus = "reversed"
)

type KYCLevel string

const (
	KYCLevelNone          KYCLevel = "none"
	KYCLevelBasic         KYCLevel = "basic"
	KYCLevelAdvanced      KYCLevel = "advanced"
	KYCLevelInstitutional KYCLevel = "institutional"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
	KYCStatusExpired  KYCStatus = "expired"
)

// InvestmentTerms are the per-campaign investment policy parameters,
// fixed at campaign creation.
type InvestmentTerms struct {
	MinInvestment      amount.Amount
	MaxInvestment      amount.Amount
	ExpectedReturnRate uint // percent
	PenaltyRate        uint // percent, for early exits
	VotingThresholdPct uint // percent of distinct investors required to approve
	RequireKYC         bool
	HardCap            bool // reject investments past the goal
}

// Milestone is a creator-proposed checkpoint whose approval unlocks a
// percentage of the campaign's escrow. Completed milestones are immutable.
type Milestone struct {
	Id               string
	CampaignId       string
	Title            string
	Description      string
	UnlockPercentage uint
	VotingDeadline   time.Time // zero until a proof opens the voting window
	Completed        bool
	VotesFor         int
	VotesAgainst     int
	ProofSubmitted   bool
	ProofHash        string
}

// Campaign is the aggregate root of the escrow ledger. EscrowBalance is
// only ever incremented by Invest and decremented by ReleaseMilestoneFunds
// or a cancel refund; callers outside the ledger core only see copies.
type Campaign struct {
	Id            string
	Creator       string
	Title         string
	Description   string
	GoalAmount    amount.Amount
	RaisedAmount  amount.Amount
	EscrowBalance amount.Amount
	Deadline      time.Time
	Milestones    []Milestone
	Investors     []string // distinct, insertion order
	IsActive      bool
	IsCompleted   bool
	Paused        bool
	Cancelled     bool
	Terms         InvestmentTerms
	SecurityScore int
	AuditStatus   AuditStatus
	Version       int64 // store optimistic-lock version
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Investment is an append-only record of one investor contribution.
type Investment struct {
	Id             string
	CampaignId     string
	Investor       string
	Amount         amount.Amount
	ExpectedReturn amount.Amount
	Status         InvestmentStatus
	InvestedAt     time.Time
}

// Vote is set membership on (voter, milestone); at most one exists per pair.
type Vote struct {
	Id          string
	CampaignId  string
	MilestoneId string
	Voter       string
	Approve     bool
	Reason      string
	VotedAt     time.Time
}

type AuditEventKind string

const (
	AuditEventCampaignCreated   AuditEventKind = "CAMPAIGN_CREATED"
	AuditEventInvestmentMade    AuditEventKind = "INVESTMENT_MADE"
	AuditEventProofSubmitted    AuditEventKind = "MILESTONE_PROOF_SUBMITTED"
	AuditEventMilestoneVote     AuditEventKind = "MILESTONE_VOTE"
	AuditEventFundsReleased     AuditEventKind = "FUNDS_RELEASED"
	AuditEventCampaignPaused    AuditEventKind = "CAMPAIGN_PAUSED"
	AuditEventCampaignUnpaused  AuditEventKind = "CAMPAIGN_UNPAUSED"
	AuditEventCampaignCancelled AuditEventKind = "CAMPAIGN_CANCELLED"
)

// AuditEvent is one committed state transition. Events are append-only and
// totally ordered by Seq within a campaign.
type AuditEvent struct {
	Id         string
	CampaignId string
	Seq        int64
	Kind       AuditEventKind
	Actor      string
	Payload    map[string]string
	Timestamp  time.Time
}

// KYCApproval is the stored identity-verification state for an investor.
type KYCApproval struct {
	Investor   string
	Level      KYCLevel
	Status     KYCStatus
	VerifiedAt time.Time
	ExpiresAt  time.Time
	UpdatedAt  time.Time
}

// Approved reports whether the record satisfies a KYC requirement at the
// given instant.
func (k KYCApproval) Approved(now time.Time) bool {
	if k.Status != KYCStatusApproved {
		return false
	}
	if !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt) {
		return false
	}
	return true
}
