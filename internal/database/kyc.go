package database

import (
	"context"
	"database/sql"
	"fmt"

	"crowdfund-escrow-go/internal/models"
	"crowdfund-escrow-go/internal/store"
)

// GetKYCApproval returns the stored verification state for an investor.
func (s *Service) GetKYCApproval(ctx context.Context, investor string) (*models.KYCApproval, error) {
	var k models.KYCApproval
	var level, status string
	var verifiedAt, expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx, queryGetKYCApproval, investor).
		Scan(&k.Investor, &level, &status, &verifiedAt, &expiresAt, &k.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("kyc approval for %s: %w", investor, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kyc approval: %w", err)
	}

	k.Level = models.KYCLevel(level)
	k.Status = models.KYCStatus(status)
	if verifiedAt.Valid {
		k.VerifiedAt = verifiedAt.Time
	}
	if expiresAt.Valid {
		k.ExpiresAt = expiresAt.Time
	}
	return &k, nil
}

// UpsertKYCApproval creates or replaces an investor's verification state.
func (s *Service) UpsertKYCApproval(ctx context.Context, approval models.KYCApproval) error {
	_, err := s.db.ExecContext(ctx, queryUpsertKYCApproval,
		approval.Investor, string(approval.Level), string(approval.Status),
		nullableTime(approval.VerifiedAt), nullableTime(approval.ExpiresAt), approval.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert kyc approval: %w", err)
	}
	return nil
}
