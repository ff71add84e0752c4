package database

import (
	"context"
	"database/sql"
	"fmt"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/models"
	"crowdfund-escrow-go/internal/store"

	"go.uber.org/zap"
)

// InsertInvestment appends one immutable investment record.
func (s *Service) InsertInvestment(ctx context.Context, investment models.Investment) error {
	_, err := s.db.ExecContext(ctx, queryInsertInvestment,
		investment.Id, investment.CampaignId, investment.Investor,
		int64(investment.Amount), int64(investment.ExpectedReturn),
		string(investment.Status), investment.InvestedAt)
	if err != nil {
		return fmt.Errorf("failed to insert investment: %w", err)
	}
	return nil
}

// UpdateInvestmentStatus applies the only mutation investments ever see:
// the transition to reversed on refund.
func (s *Service) UpdateInvestmentStatus(ctx context.Context, investmentId string, status models.InvestmentStatus) error {
	result, err := s.db.ExecContext(ctx, queryUpdateInvestmentStatus, string(status), investmentId)
	if err != nil {
		return fmt.Errorf("failed to update investment status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("investment %s: %w", investmentId, store.ErrNotFound)
	}
	return nil
}

func (s *Service) GetCampaignInvestments(ctx context.Context, campaignId string) ([]models.Investment, error) {
	return s.queryInvestments(ctx, queryGetCampaignInvestments, campaignId)
}

func (s *Service) GetInvestorInvestments(ctx context.Context, investor string) ([]models.Investment, error) {
	return s.queryInvestments(ctx, queryGetInvestorInvestments, investor)
}

func (s *Service) queryInvestments(ctx context.Context, query, arg string) ([]models.Investment, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var investments []models.Investment
	for rows.Next() {
		var inv models.Investment
		var amt, expectedReturn int64
		var status string
		err := rows.Scan(&inv.Id, &inv.CampaignId, &inv.Investor, &amt, &expectedReturn,
			&status, &inv.InvestedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		inv.Amount = amount.Amount(amt)
		inv.ExpectedReturn = amount.Amount(expectedReturn)
		inv.Status = models.InvestmentStatus(status)
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment rows: %w", err)
	}
	return investments, nil
}

// InsertVote appends a vote after checking set membership; the UNIQUE
// (milestone, voter) index backs the check even across processes.
func (s *Service) InsertVote(ctx context.Context, vote models.Vote) error {
	var existingId string
	err := s.db.QueryRowContext(ctx, queryCheckDuplicateVote, vote.MilestoneId, vote.Voter).Scan(&existingId)
	if err == nil {
		zap.L().Warn("Duplicate vote detected, rejecting",
			zap.String("milestone_id", vote.MilestoneId),
			zap.String("voter", vote.Voter),
			zap.String("existing_vote_id", existingId))
		return fmt.Errorf("%w: voter %s on milestone %s", store.ErrDuplicateVote, vote.Voter, vote.MilestoneId)
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for duplicate vote: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryInsertVote,
		vote.Id, vote.CampaignId, vote.MilestoneId, vote.Voter,
		vote.Approve, vote.Reason, vote.VotedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (s *Service) GetCampaignVotes(ctx context.Context, campaignId string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, queryGetCampaignVotes, campaignId)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var votes []models.Vote
	for rows.Next() {
		var v models.Vote
		err := rows.Scan(&v.Id, &v.CampaignId, &v.MilestoneId, &v.Voter, &v.Approve, &v.Reason, &v.VotedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote rows: %w", err)
	}
	return votes, nil
}
