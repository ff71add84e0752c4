package policy

import (
	"crowdfund-escrow-go/internal/models"
)

// SecurityScore is a derived display metric; it never hard-blocks an
// operation on its own (a failed audit status does, independently).
type SecurityScore struct {
	Score     int
	RiskLevel string
	Warnings  []string
}

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"

	scoreBaseline = 95
)

// Deductions are independent and summed, then the score clamps to [0,100].
const (
	deductZeroEscrow   = 15
	deductAuditPending = 25
	deductAuditFailed  = 60
	deductPaused       = 10
	deductInactive     = 10
)

// ComputeSecurityScore derives the campaign's security posture from its
// committed state. Pure function.
func ComputeSecurityScore(c models.Campaign) SecurityScore {
	score := scoreBaseline
	var warnings []string

	if c.EscrowBalance.IsZero() && !c.IsCompleted {
		score -= deductZeroEscrow
		warnings = append(warnings, "no funds held in escrow")
	}
	switch c.AuditStatus {
	case models.AuditStatusPending:
		score -= deductAuditPending
		warnings = append(warnings, "external audit pending")
	case models.AuditStatusFailed:
		score -= deductAuditFailed
		warnings = append(warnings, "external audit failed")
	}
	if c.Paused {
		score -= deductPaused
		warnings = append(warnings, "campaign is paused")
	}
	if !c.IsActive && !c.IsCompleted {
		score -= deductInactive
		warnings = append(warnings, "campaign is not active")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return SecurityScore{
		Score:     score,
		RiskLevel: riskLevel(score),
		Warnings:  warnings,
	}
}

func riskLevel(score int) string {
	switch {
	case score >= 90:
		return RiskLow
	case score >= 70:
		return RiskMedium
	default:
		return RiskHigh
	}
}
