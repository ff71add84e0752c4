package audit

import (
	"sync"
	"time"

	"crowdfund-escrow-go/internal/models"

	"github.com/google/uuid"
)

// Log is the append-only record of accepted state transitions. Rejected
// operations are never logged; the log is a pure history of committed
// facts, totally ordered by sequence number within a campaign.
type Log struct {
	mu     sync.RWMutex
	events map[string][]models.AuditEvent
	now    func() time.Time
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func NewLog(opts ...Option) *Log {
	l := &Log{
		events: make(map[string][]models.AuditEvent),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Seed restores previously persisted events for a campaign. Events must
// already be in append order.
func (l *Log) Seed(campaignId string, events []models.AuditEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[campaignId] = append([]models.AuditEvent(nil), events...)
}

// Append records one committed state transition. O(1), no ordering
// renegotiation.
func (l *Log) Append(campaignId string, kind models.AuditEventKind, actor string, payload map[string]string) models.AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	event := models.AuditEvent{
		Id:         uuid.New().String(),
		CampaignId: campaignId,
		Seq:        int64(len(l.events[campaignId])) + 1,
		Kind:       kind,
		Actor:      actor,
		Payload:    copyPayload(payload),
		Timestamp:  l.now(),
	}
	l.events[campaignId] = append(l.events[campaignId], event)
	return event
}

// Query returns the campaign's events in append order. The returned slice
// and payloads are copies; the log itself is never mutable from outside.
func (l *Log) Query(campaignId string) []models.AuditEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events := make([]models.AuditEvent, len(l.events[campaignId]))
	for i, e := range l.events[campaignId] {
		e.Payload = copyPayload(e.Payload)
		events[i] = e
	}
	return events
}

func copyPayload(payload map[string]string) map[string]string {
	if payload == nil {
		return nil
	}
	cp := make(map[string]string, len(payload))
	for k, v := range payload {
		cp[k] = v
	}
	return cp
}
