package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/models"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLedger(t *testing.T) (*Ledger, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := models.LedgerConfig{
		DefaultVotingThresholdPct: 50,
		DefaultMinInvestment:      amount.Amount(10000),   // 100.00
		DefaultMaxInvestment:      amount.Amount(1000000), // 10000.00
		ApprovalWindow:            7 * 24 * time.Hour,
		PlatformAuthority:         "platform-admin",
	}
	return New(cfg, WithClock(clock.Now)), clock
}

func defaultParams(clock *testClock) CreateCampaignParams {
	return CreateCampaignParams{
		Creator:     "creator-1",
		Title:       "Solar Farm",
		Description: "Community solar installation",
		GoalAmount:  amount.Amount(1000000), // 10000.00
		Deadline:    clock.Now().Add(30 * 24 * time.Hour),
		Milestones: []MilestoneSpec{
			{Title: "Land permit", UnlockPercentage: 60},
			{Title: "Panel installation", UnlockPercentage: 40},
		},
		Terms: models.InvestmentTerms{
			MinInvestment:      amount.Amount(100),      // 1.00
			MaxInvestment:      amount.Amount(10000000), // 100000.00
			VotingThresholdPct: 50,
		},
	}
}

func mustCreate(t *testing.T, l *Ledger, params CreateCampaignParams) models.Campaign {
	t.Helper()
	campaign, err := l.CreateCampaign(params)
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	return campaign
}

func mustInvest(t *testing.T, l *Ledger, campaignId, investor string, amt amount.Amount) models.Investment {
	t.Helper()
	investment, _, err := l.Invest(campaignId, investor, amt)
	if err != nil {
		t.Fatalf("Invest(%s, %s) failed: %v", investor, amt, err)
	}
	return investment
}

func mustSubmitProof(t *testing.T, l *Ledger, campaign models.Campaign, milestoneIdx int) models.Milestone {
	t.Helper()
	m, err := l.SubmitMilestoneProof(campaign.Id, campaign.Milestones[milestoneIdx].Id, "sha256:proof", campaign.Creator)
	if err != nil {
		t.Fatalf("SubmitMilestoneProof failed: %v", err)
	}
	return m
}

func mustVote(t *testing.T, l *Ledger, campaignId, milestoneId, voter string, approve bool) {
	t.Helper()
	if _, _, err := l.VoteOnMilestone(campaignId, milestoneId, voter, approve, ""); err != nil {
		t.Fatalf("VoteOnMilestone(%s) failed: %v", voter, err)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	l, clock := testLedger(t)
	base := defaultParams(clock)

	tests := []struct {
		name   string
		mutate func(*CreateCampaignParams)
	}{
		{"missing creator", func(p *CreateCampaignParams) { p.Creator = "" }},
		{"empty title", func(p *CreateCampaignParams) { p.Title = "" }},
		{"title too long", func(p *CreateCampaignParams) {
			for len(p.Title) <= 100 {
				p.Title += "x"
			}
		}},
		{"zero goal", func(p *CreateCampaignParams) { p.GoalAmount = 0 }},
		{"past deadline", func(p *CreateCampaignParams) { p.Deadline = clock.Now().Add(-time.Hour) }},
		{"no milestones", func(p *CreateCampaignParams) { p.Milestones = nil }},
		{"too many milestones", func(p *CreateCampaignParams) {
			p.Milestones = make([]MilestoneSpec, 11)
			for i := range p.Milestones {
				p.Milestones[i] = MilestoneSpec{Title: "m", UnlockPercentage: 1}
			}
		}},
		{"zero unlock percentage", func(p *CreateCampaignParams) {
			p.Milestones[0].UnlockPercentage = 0
		}},
		{"percentages exceed 100", func(p *CreateCampaignParams) {
			p.Milestones[0].UnlockPercentage = 70
			p.Milestones[1].UnlockPercentage = 40
		}},
		{"min above max", func(p *CreateCampaignParams) {
			p.Terms.MinInvestment = p.Terms.MaxInvestment + 1
		}},
		{"zero voting threshold", func(p *CreateCampaignParams) { p.Terms.VotingThresholdPct = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := base
			params.Milestones = make([]MilestoneSpec, len(base.Milestones))
			copy(params.Milestones, base.Milestones)
			tc.mutate(&params)

			if _, err := l.CreateCampaign(params); !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("expected ErrInvalidParameters, got %v", err)
			}
		})
	}
}

func TestInvestAccumulatesEscrow(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	mustInvest(t, l, campaign.Id, "bob", amount.Amount(400000))

	got, err := l.GetCampaign(campaign.Id)
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	if got.RaisedAmount != amount.Amount(1000000) {
		t.Errorf("raised = %s, want 10000.00", got.RaisedAmount)
	}
	if got.EscrowBalance != amount.Amount(1000000) {
		t.Errorf("escrow = %s, want 10000.00", got.EscrowBalance)
	}
	if len(got.Investors) != 2 {
		t.Errorf("distinct investors = %d, want 2", len(got.Investors))
	}
}

func TestInvestSameInvestorCountedOnce(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(100000))
	mustInvest(t, l, campaign.Id, "alice", amount.Amount(100000))

	got, _ := l.GetCampaign(campaign.Id)
	if len(got.Investors) != 1 {
		t.Errorf("distinct investors = %d, want 1", len(got.Investors))
	}
	if got.RaisedAmount != amount.Amount(200000) {
		t.Errorf("raised = %s, want 2000.00", got.RaisedAmount)
	}
}

func TestInvestAfterDeadline(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	clock.Advance(31 * 24 * time.Hour)
	if _, _, err := l.Invest(campaign.Id, "alice", amount.Amount(100000)); !errors.Is(err, ErrCampaignExpired) {
		t.Errorf("expected ErrCampaignExpired, got %v", err)
	}
}

func TestInvestBounds(t *testing.T) {
	l, clock := testLedger(t)
	params := defaultParams(clock)
	params.Terms.MinInvestment = amount.Amount(10000)  // 100.00
	params.Terms.MaxInvestment = amount.Amount(500000) // 5000.00
	campaign := mustCreate(t, l, params)

	if _, _, err := l.Invest(campaign.Id, "alice", amount.Amount(9999)); !errors.Is(err, ErrAmountOutOfBounds) {
		t.Errorf("below minimum: expected ErrAmountOutOfBounds, got %v", err)
	}
	if _, _, err := l.Invest(campaign.Id, "alice", amount.Amount(500001)); !errors.Is(err, ErrAmountOutOfBounds) {
		t.Errorf("above maximum: expected ErrAmountOutOfBounds, got %v", err)
	}
}

func TestInvestHardCap(t *testing.T) {
	l, clock := testLedger(t)
	params := defaultParams(clock)
	params.Terms.HardCap = true
	campaign := mustCreate(t, l, params)

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(900000))
	if _, _, err := l.Invest(campaign.Id, "bob", amount.Amount(200000)); !errors.Is(err, ErrGoalExceeded) {
		t.Errorf("expected ErrGoalExceeded, got %v", err)
	}
	// Exactly reaching the goal is still allowed.
	mustInvest(t, l, campaign.Id, "bob", amount.Amount(100000))
}

func TestInvestUnknownCampaign(t *testing.T) {
	l, _ := testLedger(t)
	if _, _, err := l.Invest("no-such-id", "alice", amount.Amount(100000)); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestMilestoneReleaseFlow(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	mustInvest(t, l, campaign.Id, "bob", amount.Amount(400000))

	first := mustSubmitProof(t, l, campaign, 0)
	if first.VotingDeadline != clock.Now().Add(7*24*time.Hour) {
		t.Errorf("voting deadline = %v, want proof time + approval window", first.VotingDeadline)
	}

	// 50% of 2 distinct investors means a single approval suffices.
	mustVote(t, l, campaign.Id, first.Id, "alice", true)
	mustVote(t, l, campaign.Id, first.Id, "bob", false)

	released, got, err := l.ReleaseMilestoneFunds(campaign.Id, first.Id)
	if err != nil {
		t.Fatalf("ReleaseMilestoneFunds failed: %v", err)
	}
	if released != amount.Amount(600000) {
		t.Errorf("released = %s, want 6000.00 (60%% of escrow)", released)
	}
	if got.EscrowBalance != amount.Amount(400000) {
		t.Errorf("escrow = %s, want 4000.00", got.EscrowBalance)
	}
	if got.RaisedAmount != amount.Amount(1000000) {
		t.Errorf("raised = %s, want unchanged 10000.00", got.RaisedAmount)
	}
	if !got.Milestones[0].Completed {
		t.Error("milestone not marked completed")
	}
	if got.IsCompleted {
		t.Error("campaign prematurely completed with one milestone open")
	}

	// Second milestone releases 40% of the remaining escrow.
	second := mustSubmitProof(t, l, got, 1)
	mustVote(t, l, campaign.Id, second.Id, "alice", true)
	mustVote(t, l, campaign.Id, second.Id, "bob", true)

	released2, got2, err := l.ReleaseMilestoneFunds(campaign.Id, second.Id)
	if err != nil {
		t.Fatalf("second release failed: %v", err)
	}
	if released2 != amount.Amount(160000) {
		t.Errorf("released = %s, want 1600.00 (40%% of 4000.00)", released2)
	}
	if !got2.IsCompleted || got2.IsActive {
		t.Errorf("campaign should complete after last milestone: completed=%v active=%v",
			got2.IsCompleted, got2.IsActive)
	}
}

func TestReleaseBelowThreshold(t *testing.T) {
	l, clock := testLedger(t)
	params := defaultParams(clock)
	params.Terms.VotingThresholdPct = 100
	campaign := mustCreate(t, l, params)

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	mustInvest(t, l, campaign.Id, "bob", amount.Amount(400000))

	m := mustSubmitProof(t, l, campaign, 0)
	mustVote(t, l, campaign.Id, m.Id, "alice", true)

	if _, _, err := l.ReleaseMilestoneFunds(campaign.Id, m.Id); !errors.Is(err, ErrInsufficientVotes) {
		t.Errorf("expected ErrInsufficientVotes with 1 of 2 required approvals, got %v", err)
	}
}

func TestReleaseWithoutProof(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))
	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))

	if _, _, err := l.ReleaseMilestoneFunds(campaign.Id, campaign.Milestones[0].Id); !errors.Is(err, ErrProofNotSubmitted) {
		t.Errorf("expected ErrProofNotSubmitted, got %v", err)
	}
}

func TestDoubleRelease(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	m := mustSubmitProof(t, l, campaign, 0)
	mustVote(t, l, campaign.Id, m.Id, "alice", true)

	if _, _, err := l.ReleaseMilestoneFunds(campaign.Id, m.Id); err != nil {
		t.Fatalf("first release failed: %v", err)
	}
	if _, _, err := l.ReleaseMilestoneFunds(campaign.Id, m.Id); !errors.Is(err, ErrMilestoneCompleted) {
		t.Errorf("expected ErrMilestoneCompleted on second release, got %v", err)
	}
}

func TestVoteDuplicate(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	m := mustSubmitProof(t, l, campaign, 0)
	mustVote(t, l, campaign.Id, m.Id, "alice", true)

	// A second ballot is rejected, even with the opposite verdict.
	if _, _, err := l.VoteOnMilestone(campaign.Id, m.Id, "alice", false, "changed my mind"); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("expected ErrAlreadyVoted, got %v", err)
	}

	got, _ := l.GetCampaign(campaign.Id)
	if got.Milestones[0].VotesFor != 1 || got.Milestones[0].VotesAgainst != 0 {
		t.Errorf("tallies mutated by rejected vote: for=%d against=%d",
			got.Milestones[0].VotesFor, got.Milestones[0].VotesAgainst)
	}
}

func TestVoteWithoutProof(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))
	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))

	if _, _, err := l.VoteOnMilestone(campaign.Id, campaign.Milestones[0].Id, "alice", true, ""); !errors.Is(err, ErrProofNotSubmitted) {
		t.Errorf("expected ErrProofNotSubmitted, got %v", err)
	}
}

func TestVoteNonInvestor(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	m := mustSubmitProof(t, l, campaign, 0)

	if _, _, err := l.VoteOnMilestone(campaign.Id, m.Id, "mallory", true, ""); !errors.Is(err, ErrNotAnInvestor) {
		t.Errorf("expected ErrNotAnInvestor, got %v", err)
	}
}

func TestVoteAfterDeadline(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	m := mustSubmitProof(t, l, campaign, 0)

	clock.Advance(7*24*time.Hour + time.Minute)
	if _, _, err := l.VoteOnMilestone(campaign.Id, m.Id, "alice", true, ""); !errors.Is(err, ErrVotingClosed) {
		t.Errorf("expected ErrVotingClosed, got %v", err)
	}
}

func TestProofSubmitterMustBeCreator(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	if _, err := l.SubmitMilestoneProof(campaign.Id, campaign.Milestones[0].Id, "sha256:x", "mallory"); !errors.Is(err, ErrNotCreator) {
		t.Errorf("expected ErrNotCreator, got %v", err)
	}
}

func TestProofResubmissionKeepsDeadlineAndVotes(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))
	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))

	first := mustSubmitProof(t, l, campaign, 0)
	mustVote(t, l, campaign.Id, first.Id, "alice", true)

	clock.Advance(time.Hour)
	resubmitted, err := l.SubmitMilestoneProof(campaign.Id, first.Id, "sha256:corrected", campaign.Creator)
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if resubmitted.ProofHash != "sha256:corrected" {
		t.Errorf("proof hash = %s, want sha256:corrected", resubmitted.ProofHash)
	}
	if !resubmitted.VotingDeadline.Equal(first.VotingDeadline) {
		t.Errorf("resubmission moved the voting deadline: %v -> %v", first.VotingDeadline, resubmitted.VotingDeadline)
	}
	if resubmitted.VotesFor != 1 {
		t.Errorf("resubmission dropped votes: for=%d", resubmitted.VotesFor)
	}
}

func TestPauseBlocksInvestAndRelease(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	m := mustSubmitProof(t, l, campaign, 0)

	if _, err := l.PauseCampaign(campaign.Id, campaign.Creator); err != nil {
		t.Fatalf("PauseCampaign failed: %v", err)
	}

	if _, _, err := l.Invest(campaign.Id, "bob", amount.Amount(100000)); !errors.Is(err, ErrCampaignPaused) {
		t.Errorf("invest under pause: expected ErrCampaignPaused, got %v", err)
	}
	if _, _, err := l.ReleaseMilestoneFunds(campaign.Id, m.Id); !errors.Is(err, ErrCampaignPaused) {
		t.Errorf("release under pause: expected ErrCampaignPaused, got %v", err)
	}

	// Voting stays open so an in-flight approval round is not frozen.
	mustVote(t, l, campaign.Id, m.Id, "alice", true)

	if _, err := l.UnpauseCampaign(campaign.Id, "platform-admin"); err != nil {
		t.Fatalf("UnpauseCampaign failed: %v", err)
	}
	if _, _, err := l.ReleaseMilestoneFunds(campaign.Id, m.Id); err != nil {
		t.Errorf("release after unpause failed: %v", err)
	}
}

func TestPauseAuthority(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	if _, err := l.PauseCampaign(campaign.Id, "mallory"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestCancelRefundsEscrow(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	mustInvest(t, l, campaign.Id, "bob", amount.Amount(400000))

	got, reversed, err := l.CancelCampaign(campaign.Id, campaign.Creator)
	if err != nil {
		t.Fatalf("CancelCampaign failed: %v", err)
	}
	if len(reversed) != 2 {
		t.Fatalf("reversed %d investments, want 2", len(reversed))
	}
	if !got.EscrowBalance.IsZero() || !got.RaisedAmount.IsZero() {
		t.Errorf("escrow=%s raised=%s after cancel, want both zero", got.EscrowBalance, got.RaisedAmount)
	}
	if got.IsActive || !got.Cancelled {
		t.Errorf("cancel flags wrong: active=%v cancelled=%v", got.IsActive, got.Cancelled)
	}

	if _, _, err := l.Invest(campaign.Id, "carol", amount.Amount(100000)); !errors.Is(err, ErrCampaignInactive) {
		t.Errorf("invest after cancel: expected ErrCampaignInactive, got %v", err)
	}
}

func TestCancelAfterPartialRelease(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))
	m := mustSubmitProof(t, l, campaign, 0)
	mustVote(t, l, campaign.Id, m.Id, "alice", true)

	released, _, err := l.ReleaseMilestoneFunds(campaign.Id, m.Id)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}

	got, reversed, err := l.CancelCampaign(campaign.Id, campaign.Creator)
	if err != nil {
		t.Fatalf("CancelCampaign failed: %v", err)
	}
	if len(reversed) != 1 {
		t.Fatalf("reversed %d investments, want 1", len(reversed))
	}
	// The released tranche is gone; the refund is capped at what escrow held.
	if !got.EscrowBalance.IsZero() {
		t.Errorf("escrow = %s after cancel, want zero", got.EscrowBalance)
	}
	if released != amount.Amount(360000) {
		t.Errorf("released = %s, want 3600.00 (60%% of 6000.00)", released)
	}
}

func TestFundConservation(t *testing.T) {
	l, clock := testLedger(t)
	params := defaultParams(clock)
	params.Milestones = []MilestoneSpec{
		{Title: "m1", UnlockPercentage: 30},
		{Title: "m2", UnlockPercentage: 30},
		{Title: "m3", UnlockPercentage: 40},
	}
	campaign := mustCreate(t, l, params)

	var invested, released amount.Amount
	var err error

	investors := []string{"alice", "bob", "carol", "dave"}
	amounts := []amount.Amount{123457, 500000, 99999, 314159}
	for i, investor := range investors {
		mustInvest(t, l, campaign.Id, investor, amounts[i])
		if invested, err = invested.Add(amounts[i]); err != nil {
			t.Fatalf("overflow in test bookkeeping: %v", err)
		}
	}

	for idx := range params.Milestones {
		got, _ := l.GetCampaign(campaign.Id)
		m := mustSubmitProof(t, l, got, idx)
		for _, investor := range investors {
			mustVote(t, l, campaign.Id, m.Id, investor, true)
		}
		tranche, _, err := l.ReleaseMilestoneFunds(campaign.Id, m.Id)
		if err != nil {
			t.Fatalf("release %d failed: %v", idx, err)
		}
		if released, err = released.Add(tranche); err != nil {
			t.Fatalf("overflow in test bookkeeping: %v", err)
		}

		// At every step, money in equals money held plus money paid out.
		current, _ := l.GetCampaign(campaign.Id)
		held, err := current.EscrowBalance.Add(released)
		if err != nil {
			t.Fatalf("overflow in test bookkeeping: %v", err)
		}
		if held != invested {
			t.Fatalf("conservation broken after milestone %d: invested=%s escrow=%s released=%s",
				idx, invested, current.EscrowBalance, released)
		}
	}
}

func TestConcurrentInvestExactTotal(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))

	const workers = 50
	const each = amount.Amount(10000) // 100.00

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			investor := "investor-" + string(rune('a'+n%26))
			if _, _, err := l.Invest(campaign.Id, investor, each); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent invest failed: %v", err)
	}

	got, _ := l.GetCampaign(campaign.Id)
	want := amount.Amount(workers) * each
	if got.RaisedAmount != want {
		t.Errorf("raised = %s, want exactly %s", got.RaisedAmount, want)
	}
	if got.EscrowBalance != want {
		t.Errorf("escrow = %s, want exactly %s", got.EscrowBalance, want)
	}
}

func TestRequiredVotes(t *testing.T) {
	tests := []struct {
		pct       uint
		investors int
		want      int
	}{
		{50, 2, 1},
		{50, 3, 2},
		{51, 100, 51},
		{100, 4, 4},
		{1, 1, 1},
		{50, 0, 0},
	}
	for _, tc := range tests {
		if got := requiredVotes(tc.pct, tc.investors); got != tc.want {
			t.Errorf("requiredVotes(%d%%, %d) = %d, want %d", tc.pct, tc.investors, got, tc.want)
		}
	}
}

func TestAuditFailedBlocksMutations(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))
	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))

	// Simulate a failed external audit via reload of persisted state.
	failed, _ := l.GetCampaign(campaign.Id)
	failed.AuditStatus = models.AuditStatusFailed
	investments, _ := l.CampaignInvestments(campaign.Id)
	l.Load(failed, investments, nil)

	if _, _, err := l.Invest(campaign.Id, "bob", amount.Amount(100000)); !errors.Is(err, ErrAuditFailed) {
		t.Errorf("invest: expected ErrAuditFailed, got %v", err)
	}
	if _, err := l.SubmitMilestoneProof(campaign.Id, campaign.Milestones[0].Id, "sha256:x", campaign.Creator); !errors.Is(err, ErrAuditFailed) {
		t.Errorf("proof: expected ErrAuditFailed, got %v", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	l, clock := testLedger(t)
	campaign := mustCreate(t, l, defaultParams(clock))
	mustInvest(t, l, campaign.Id, "alice", amount.Amount(600000))

	snapshot, _ := l.GetCampaign(campaign.Id)
	snapshot.Milestones[0].Completed = true
	snapshot.Investors[0] = "tampered"

	fresh, _ := l.GetCampaign(campaign.Id)
	if fresh.Milestones[0].Completed {
		t.Error("mutating a snapshot leaked into canonical state")
	}
	if fresh.Investors[0] != "alice" {
		t.Error("mutating a snapshot's investor list leaked into canonical state")
	}
}

func TestExitCodeClassification(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{ErrInvalidParameters, ExitValidation},
		{ErrCampaignNotFound, ExitNotFound},
		{ErrAlreadyVoted, ExitConflict},
		{ErrInsufficientVotes, ExitConflict},
		{ErrNotAuthorized, ExitPolicy},
		{ErrKYCRequired, ExitPolicy},
		{amount.ErrOverflow, ExitArithmetic},
		{errors.New("disk on fire"), ExitInternal},
	}
	for _, tc := range tests {
		if got := ExitCode(tc.err); got != tc.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
