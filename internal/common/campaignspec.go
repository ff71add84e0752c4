package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crowdfund-escrow-go/internal/amount"
	"crowdfund-escrow-go/internal/ledger"
	"crowdfund-escrow-go/internal/models"

	"gopkg.in/yaml.v2"
)

// CampaignSpec is the YAML input consumed by the createcampaign command.
type CampaignSpec struct {
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Goal        string          `yaml:"goal"`
	Deadline    string          `yaml:"deadline"` // RFC 3339 or YYYY-MM-DD
	Milestones  []MilestoneSpec `yaml:"milestones"`
	Terms       TermsSpec       `yaml:"terms"`
}

type MilestoneSpec struct {
	Title            string `yaml:"title"`
	Description      string `yaml:"description"`
	UnlockPercentage uint   `yaml:"unlock_percentage"`
}

type TermsSpec struct {
	MinInvestment      string `yaml:"min_investment"`
	MaxInvestment      string `yaml:"max_investment"`
	ExpectedReturnRate uint   `yaml:"expected_return_rate"`
	PenaltyRate        uint   `yaml:"penalty_rate"`
	VotingThresholdPct uint   `yaml:"voting_threshold_pct"`
	RequireKYC         bool   `yaml:"require_kyc"`
	HardCap            bool   `yaml:"hard_cap"`
}

// LoadCampaignSpec reads and resolves a campaign spec file. Unset terms
// fall back to the ledger config defaults.
func LoadCampaignSpec(specFile, creator string, defaults models.LedgerConfig) (ledger.CreateCampaignParams, error) {
	var params ledger.CreateCampaignParams

	var specPath string
	if filepath.IsAbs(specFile) {
		specPath = specFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return params, fmt.Errorf("failed to get working directory: %w", err)
		}
		specPath = filepath.Join(wd, specFile)
	}

	data, err := os.ReadFile(specPath)
	if err != nil {
		return params, fmt.Errorf("unable to read %s: %w", specFile, err)
	}

	var spec CampaignSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return params, fmt.Errorf("unable to parse %s: %w", specFile, err)
	}

	goal, err := amount.Parse(spec.Goal)
	if err != nil {
		return params, fmt.Errorf("invalid goal %q: %w", spec.Goal, err)
	}

	deadline, err := parseDeadline(spec.Deadline)
	if err != nil {
		return params, fmt.Errorf("invalid deadline %q: %w", spec.Deadline, err)
	}

	terms := models.InvestmentTerms{
		MinInvestment:      defaults.DefaultMinInvestment,
		MaxInvestment:      defaults.DefaultMaxInvestment,
		ExpectedReturnRate: spec.Terms.ExpectedReturnRate,
		PenaltyRate:        spec.Terms.PenaltyRate,
		VotingThresholdPct: defaults.DefaultVotingThresholdPct,
		RequireKYC:         spec.Terms.RequireKYC,
		HardCap:            spec.Terms.HardCap,
	}
	if spec.Terms.MinInvestment != "" {
		if terms.MinInvestment, err = amount.Parse(spec.Terms.MinInvestment); err != nil {
			return params, fmt.Errorf("invalid min_investment: %w", err)
		}
	}
	if spec.Terms.MaxInvestment != "" {
		if terms.MaxInvestment, err = amount.Parse(spec.Terms.MaxInvestment); err != nil {
			return params, fmt.Errorf("invalid max_investment: %w", err)
		}
	}
	if spec.Terms.VotingThresholdPct != 0 {
		terms.VotingThresholdPct = spec.Terms.VotingThresholdPct
	}

	milestones := make([]ledger.MilestoneSpec, 0, len(spec.Milestones))
	for _, m := range spec.Milestones {
		milestones = append(milestones, ledger.MilestoneSpec{
			Title:            m.Title,
			Description:      m.Description,
			UnlockPercentage: m.UnlockPercentage,
		})
	}

	return ledger.CreateCampaignParams{
		Creator:     creator,
		Title:       spec.Title,
		Description: spec.Description,
		GoalAmount:  goal,
		Deadline:    deadline,
		Milestones:  milestones,
		Terms:       terms,
	}, nil
}

func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
