/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

const (
	// Campaign queries
	campaignColumns = `
		id, creator, title, description, goal_amount, raised_amount, escrow_balance,
		deadline, is_active, is_completed, paused, cancelled,
		min_investment, max_investment, expected_return_rate, penalty_rate,
		voting_threshold_pct, require_kyc, hard_cap,
		security_score, audit_status, version, created_at, updated_at`

	queryGetCampaign = `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE id = ?`

	queryLoadCampaigns = `
		SELECT ` + campaignColumns + `
		FROM campaigns
		ORDER BY created_at`

	queryInsertCampaign = `
		INSERT INTO campaigns (
			id, creator, title, description, goal_amount, raised_amount, escrow_balance,
			deadline, is_active, is_completed, paused, cancelled,
			min_investment, max_investment, expected_return_rate, penalty_rate,
			voting_threshold_pct, require_kyc, hard_cap,
			security_score, audit_status, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryUpdateCampaign = `
		UPDATE campaigns
		SET raised_amount = ?, escrow_balance = ?, is_active = ?, is_completed = ?,
		    paused = ?, cancelled = ?, security_score = ?, audit_status = ?,
		    version = ?, updated_at = ?
		WHERE id = ? AND version = ?`

	// Milestone queries
	queryInsertMilestone = `
		INSERT INTO milestones (
			id, campaign_id, position, title, description, unlock_percentage,
			voting_deadline, completed, votes_for, votes_against, proof_submitted, proof_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryUpdateMilestone = `
		UPDATE milestones
		SET voting_deadline = ?, completed = ?, votes_for = ?, votes_against = ?,
		    proof_submitted = ?, proof_hash = ?
		WHERE id = ?`

	queryGetCampaignMilestones = `
		SELECT id, campaign_id, title, description, unlock_percentage,
		       voting_deadline, completed, votes_for, votes_against, proof_submitted, proof_hash
		FROM milestones
		WHERE campaign_id = ?
		ORDER BY position`

	// Investment queries
	queryInsertInvestment = `
		INSERT INTO investments (id, campaign_id, investor, amount, expected_return, status, invested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryUpdateInvestmentStatus = `
		UPDATE investments SET status = ? WHERE id = ?`

	queryGetCampaignInvestments = `
		SELECT id, campaign_id, investor, amount, expected_return, status, invested_at
		FROM investments
		WHERE campaign_id = ?
		ORDER BY invested_at, id`

	queryGetInvestorInvestments = `
		SELECT id, campaign_id, investor, amount, expected_return, status, invested_at
		FROM investments
		WHERE investor = ?
		ORDER BY invested_at, id`

	// Vote queries
	queryInsertVote = `
		INSERT INTO votes (id, campaign_id, milestone_id, voter, approve, reason, voted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetCampaignVotes = `
		SELECT id, campaign_id, milestone_id, voter, approve, reason, voted_at
		FROM votes
		WHERE campaign_id = ?
		ORDER BY voted_at, id`

	queryCheckDuplicateVote = `
		SELECT id FROM votes WHERE milestone_id = ? AND voter = ? LIMIT 1`

	// Audit log queries
	queryInsertAuditEvent = `
		INSERT INTO audit_events (id, campaign_id, seq, kind, actor, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetAuditLog = `
		SELECT id, campaign_id, seq, kind, actor, payload, created_at
		FROM audit_events
		WHERE campaign_id = ?
		ORDER BY seq`

	// KYC queries
	queryGetKYCApproval = `
		SELECT investor, level, status, verified_at, expires_at, updated_at
		FROM kyc_approvals
		WHERE investor = ?`

	queryUpsertKYCApproval = `
		INSERT INTO kyc_approvals (investor, level, status, verified_at, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(investor) DO UPDATE SET
			level = excluded.level,
			status = excluded.status,
			verified_at = excluded.verified_at,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`
)
