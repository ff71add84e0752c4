package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/models"
	"crowdfund-escrow-go/internal/store"

	"go.uber.org/zap"
)

// InsertCampaign persists a freshly created campaign snapshot together
// with its milestone rows in one transaction.
func (s *Service) InsertCampaign(ctx context.Context, campaign models.Campaign) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, queryInsertCampaign,
		campaign.Id, campaign.Creator, campaign.Title, campaign.Description,
		int64(campaign.GoalAmount), int64(campaign.RaisedAmount), int64(campaign.EscrowBalance),
		campaign.Deadline, campaign.IsActive, campaign.IsCompleted, campaign.Paused, campaign.Cancelled,
		int64(campaign.Terms.MinInvestment), int64(campaign.Terms.MaxInvestment),
		campaign.Terms.ExpectedReturnRate, campaign.Terms.PenaltyRate,
		campaign.Terms.VotingThresholdPct, campaign.Terms.RequireKYC, campaign.Terms.HardCap,
		campaign.SecurityScore, string(campaign.AuditStatus), campaign.Version,
		campaign.CreatedAt, campaign.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}

	for i, m := range campaign.Milestones {
		_, err = tx.ExecContext(ctx, queryInsertMilestone,
			m.Id, m.CampaignId, i, m.Title, m.Description, m.UnlockPercentage,
			nullableTime(m.VotingDeadline), m.Completed, m.VotesFor, m.VotesAgainst,
			m.ProofSubmitted, m.ProofHash)
		if err != nil {
			return fmt.Errorf("failed to insert milestone %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Campaign persisted",
		zap.String("campaign_id", campaign.Id),
		zap.Int("milestones", len(campaign.Milestones)))
	return nil
}

// UpdateCampaign writes a mutated snapshot with optimistic locking on the
// version column. The ledger core increments the version on every
// accepted mutation, so the write asserts the row still holds the
// previous version; a concurrent commit in between surfaces as
// ErrConcurrentModification.
func (s *Service) UpdateCampaign(ctx context.Context, campaign models.Campaign) (*models.Campaign, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, queryUpdateCampaign,
		int64(campaign.RaisedAmount), int64(campaign.EscrowBalance),
		campaign.IsActive, campaign.IsCompleted, campaign.Paused, campaign.Cancelled,
		campaign.SecurityScore, string(campaign.AuditStatus), campaign.Version, campaign.UpdatedAt,
		campaign.Id, campaign.Version-1)
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("campaign %s version %d: %w",
			campaign.Id, campaign.Version, store.ErrConcurrentModification)
	}

	for _, m := range campaign.Milestones {
		_, err = tx.ExecContext(ctx, queryUpdateMilestone,
			nullableTime(m.VotingDeadline), m.Completed, m.VotesFor, m.VotesAgainst,
			m.ProofSubmitted, m.ProofHash, m.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to update milestone %s: %w", m.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &campaign, nil
}

// GetCampaign loads one campaign snapshot with its milestones and the
// derived investor set.
func (s *Service) GetCampaign(ctx context.Context, campaignId string) (*models.Campaign, error) {
	row := s.db.QueryRowContext(ctx, queryGetCampaign, campaignId)
	campaign, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("campaign %s: %w", campaignId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	if err := s.attachCampaignRelations(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// LoadCampaigns returns every campaign with milestones and investor sets,
// ordered by creation time.
func (s *Service) LoadCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, queryLoadCampaigns)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var campaigns []models.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, *campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign rows: %w", err)
	}

	for i := range campaigns {
		if err := s.attachCampaignRelations(ctx, &campaigns[i]); err != nil {
			return nil, err
		}
	}
	return campaigns, nil
}

func (s *Service) attachCampaignRelations(ctx context.Context, campaign *models.Campaign) error {
	milestones, err := s.getCampaignMilestones(ctx, campaign.Id)
	if err != nil {
		return err
	}
	campaign.Milestones = milestones

	investments, err := s.GetCampaignInvestments(ctx, campaign.Id)
	if err != nil {
		return err
	}
	campaign.Investors = distinctInvestors(investments)
	return nil
}

func (s *Service) getCampaignMilestones(ctx context.Context, campaignId string) ([]models.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, queryGetCampaignMilestones, campaignId)
	if err != nil {
		return nil, fmt.Errorf("failed to get milestones: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var milestones []models.Milestone
	for rows.Next() {
		var m models.Milestone
		var deadline sql.NullTime
		err := rows.Scan(&m.Id, &m.CampaignId, &m.Title, &m.Description, &m.UnlockPercentage,
			&deadline, &m.Completed, &m.VotesFor, &m.VotesAgainst, &m.ProofSubmitted, &m.ProofHash)
		if err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		if deadline.Valid {
			m.VotingDeadline = deadline.Time
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestone rows: %w", err)
	}
	return milestones, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row scanner) (*models.Campaign, error) {
	var c models.Campaign
	var goal, raised, escrow, minInv, maxInv int64
	var auditStatus string

	err := row.Scan(&c.Id, &c.Creator, &c.Title, &c.Description, &goal, &raised, &escrow,
		&c.Deadline, &c.IsActive, &c.IsCompleted, &c.Paused, &c.Cancelled,
		&minInv, &maxInv, &c.Terms.ExpectedReturnRate, &c.Terms.PenaltyRate,
		&c.Terms.VotingThresholdPct, &c.Terms.RequireKYC, &c.Terms.HardCap,
		&c.SecurityScore, &auditStatus, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.GoalAmount = amount.Amount(goal)
	c.RaisedAmount = amount.Amount(raised)
	c.EscrowBalance = amount.Amount(escrow)
	c.Terms.MinInvestment = amount.Amount(minInv)
	c.Terms.MaxInvestment = amount.Amount(maxInv)
	c.AuditStatus = models.AuditStatus(auditStatus)
	return &c, nil
}

func distinctInvestors(investments []models.Investment) []string {
	seen := make(map[string]struct{}, len(investments))
	investors := []string{}
	for _, inv := range investments {
		if _, ok := seen[inv.Investor]; ok {
			continue
		}
		seen[inv.Investor] = struct{}{}
		investors = append(investors, inv.Investor)
	}
	return investors
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
