package store

import (
	"context"
	"errors"

	"crowdfund-escrow-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("record not found")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicateVote          = errors.New("duplicate vote")
)

// CampaignStore defines the contract the durable backend must satisfy.
// Campaign rows carry an optimistic-lock version; investments, votes and
// audit events are append-only.
type CampaignStore interface {
	// --- Campaigns ---
	LoadCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, campaignId string) (*models.Campaign, error)
	InsertCampaign(ctx context.Context, campaign models.Campaign) error
	UpdateCampaign(ctx context.Context, campaign models.Campaign) (*models.Campaign, error)

	// --- Investments ---
	InsertInvestment(ctx context.Context, investment models.Investment) error
	UpdateInvestmentStatus(ctx context.Context, investmentId string, status models.InvestmentStatus) error
	GetCampaignInvestments(ctx context.Context, campaignId string) ([]models.Investment, error)
	GetInvestorInvestments(ctx context.Context, investor string) ([]models.Investment, error)

	// --- Votes ---
	InsertVote(ctx context.Context, vote models.Vote) error
	GetCampaignVotes(ctx context.Context, campaignId string) ([]models.Vote, error)

	// --- Audit log ---
	AppendAuditEvent(ctx context.Context, event models.AuditEvent) error
	GetAuditLog(ctx context.Context, campaignId string) ([]models.AuditEvent, error)

	// --- KYC ---
	GetKYCApproval(ctx context.Context, investor string) (*models.KYCApproval, error)
	UpsertKYCApproval(ctx context.Context, approval models.KYCApproval) error

	// --- Lifecycle ---
	Close()
}
