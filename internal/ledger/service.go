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

package ledger

import (
	"sync"
	"time"

	"crowdfund-escrow-go/internal/models"
)

// Ledger is the canonical in-memory escrow state machine. Every mutating
// operation serializes on the target campaign's lock; operations on
// different campaigns run fully in parallel. The clock is injected so the
// core stays deterministic under test.
type Ledger struct {
	mu        sync.RWMutex
	campaigns map[string]*campaignState
	cfg       models.LedgerConfig
	now       func() time.Time
}

// campaignState is one campaign aggregate plus its owned records. The
// mutex serializes all mutations of the aggregate; snapshots are deep
// copies so no caller can alias canonical state.
type campaignState struct {
	mu          sync.Mutex
	campaign    models.Campaign
	investments []models.Investment
	votes       map[string]map[string]models.Vote // milestone id -> voter -> vote
	investorSet map[string]struct{}
}

type Option func(*Ledger)

// WithClock overrides the time source. Operations never read the wall
// clock directly.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(cfg models.LedgerConfig, opts ...Option) *Ledger {
	l := &Ledger{
		campaigns: make(map[string]*campaignState),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load seeds a campaign aggregate from persisted state. It replaces any
// previously loaded aggregate with the same id.
func (l *Ledger) Load(campaign models.Campaign, investments []models.Investment, votes []models.Vote) {
	state := &campaignState{
		campaign:    copyCampaign(campaign),
		investments: make([]models.Investment, len(investments)),
		votes:       make(map[string]map[string]models.Vote),
		investorSet: make(map[string]struct{}),
	}
	copy(state.investments, investments)
	for _, inv := range investments {
		state.investorSet[inv.Investor] = struct{}{}
	}
	for _, v := range votes {
		byVoter, ok := state.votes[v.MilestoneId]
		if !ok {
			byVoter = make(map[string]models.Vote)
			state.votes[v.MilestoneId] = byVoter
		}
		byVoter[v.Voter] = v
	}

	l.mu.Lock()
	l.campaigns[campaign.Id] = state
	l.mu.Unlock()
}

// lookup returns the aggregate for a campaign id.
func (l *Ledger) lookup(campaignId string) (*campaignState, error) {
	l.mu.RLock()
	state, ok := l.campaigns[campaignId]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return state, nil
}

// GetCampaign returns a snapshot of the campaign's committed state.
func (l *Ledger) GetCampaign(campaignId string) (models.Campaign, error) {
	state, err := l.lookup(campaignId)
	if err != nil {
		return models.Campaign{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return copyCampaign(state.campaign), nil
}

// Campaigns returns snapshots of every campaign, ordered by creation time.
func (l *Ledger) Campaigns() []models.Campaign {
	l.mu.RLock()
	states := make([]*campaignState, 0, len(l.campaigns))
	for _, state := range l.campaigns {
		states = append(states, state)
	}
	l.mu.RUnlock()

	campaigns := make([]models.Campaign, 0, len(states))
	for _, state := range states {
		state.mu.Lock()
		campaigns = append(campaigns, copyCampaign(state.campaign))
		state.mu.Unlock()
	}
	for i := 1; i < len(campaigns); i++ {
		for j := i; j > 0 && campaigns[j].CreatedAt.Before(campaigns[j-1].CreatedAt); j-- {
			campaigns[j], campaigns[j-1] = campaigns[j-1], campaigns[j]
		}
	}
	return campaigns
}

// InvestorInvestments returns every investment record held by one investor
// across all campaigns.
func (l *Ledger) InvestorInvestments(investor string) []models.Investment {
	l.mu.RLock()
	states := make([]*campaignState, 0, len(l.campaigns))
	for _, state := range l.campaigns {
		states = append(states, state)
	}
	l.mu.RUnlock()

	var result []models.Investment
	for _, state := range states {
		state.mu.Lock()
		for _, inv := range state.investments {
			if inv.Investor == investor {
				result = append(result, inv)
			}
		}
		state.mu.Unlock()
	}
	return result
}

// CampaignInvestments returns every investment record for one campaign.
func (l *Ledger) CampaignInvestments(campaignId string) ([]models.Investment, error) {
	state, err := l.lookup(campaignId)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	result := make([]models.Investment, len(state.investments))
	copy(result, state.investments)
	return result, nil
}

// requiredVotes computes the approval threshold from the configured
// percentage of distinct investors, rounded up.
func requiredVotes(thresholdPct uint, distinctInvestors int) int {
	if distinctInvestors == 0 {
		return 0
	}
	return int((uint(distinctInvestors)*thresholdPct + 99) / 100)
}

func copyCampaign(c models.Campaign) models.Campaign {
	cp := c
	cp.Milestones = make([]models.Milestone, len(c.Milestones))
	copy(cp.Milestones, c.Milestones)
	cp.Investors = make([]string, len(c.Investors))
	copy(cp.Investors, c.Investors)
	return cp
}
