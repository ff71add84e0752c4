package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"crowdfund-escrow-go/internal/models"

	"go.uber.org/zap"
)

// AppendAuditEvent persists one committed state transition. The UNIQUE
// (campaign, seq) index guarantees the per-campaign total order survives
// concurrent writers.
func (s *Service) AppendAuditEvent(ctx context.Context, event models.AuditEvent) error {
	payload := event.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode audit payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, queryInsertAuditEvent,
		event.Id, event.CampaignId, event.Seq, string(event.Kind),
		event.Actor, string(encoded), event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// GetAuditLog returns a campaign's events in append order.
func (s *Service) GetAuditLog(ctx context.Context, campaignId string) ([]models.AuditEvent, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAuditLog, campaignId)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var events []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		var kind, payload string
		err := rows.Scan(&e.Id, &e.CampaignId, &e.Seq, &kind, &e.Actor, &payload, &e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Kind = models.AuditEventKind(kind)
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode audit payload %q: %w", payload, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}
	return events, nil
}
