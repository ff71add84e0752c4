package ledger

import (
	"errors"

	"crowdfund-escrow-go/internal/amount"
)

// Sentinel errors for ledger operations. Callers classify with errors.Is;
// wrapped messages carry the authoritative state needed for retry decisions.
var (
	// Validation: malformed creation input.
	ErrInvalidParameters = errors.New("invalid parameters")

	// Not found.
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrMilestoneNotFound = errors.New("milestone not found")

	// Conflict: valid input against the wrong state.
	ErrCampaignInactive   = errors.New("campaign is not active")
	ErrCampaignPaused     = errors.New("campaign is paused")
	ErrCampaignExpired    = errors.New("campaign deadline has passed")
	ErrGoalExceeded       = errors.New("investment exceeds campaign hard cap")
	ErrMilestoneCompleted = errors.New("milestone already completed")
	ErrProofNotSubmitted  = errors.New("milestone proof not submitted")
	ErrVotingClosed       = errors.New("voting window closed")
	ErrAlreadyVoted       = errors.New("already voted on this milestone")
	ErrInsufficientVotes  = errors.New("insufficient votes to release funds")
	ErrNoEscrowFunds      = errors.New("no funds in escrow")

	// Policy: authorization and pre-transaction gating.
	ErrNotCreator        = errors.New("only the campaign creator may perform this operation")
	ErrNotAnInvestor     = errors.New("only campaign investors may vote")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrAmountOutOfBounds = errors.New("investment amount out of bounds")
	ErrKYCRequired       = errors.New("KYC approval required")
	ErrAuditFailed       = errors.New("campaign audit failed; operations blocked")
)

// Exit codes per error category, for the command-line surface.
const (
	ExitOK         = 0
	ExitInternal   = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitConflict   = 4
	ExitPolicy     = 5
	ExitArithmetic = 6
)

// ExitCode maps an operation error to its category exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidParameters), errors.Is(err, amount.ErrInvalid):
		return ExitValidation
	case errors.Is(err, ErrCampaignNotFound), errors.Is(err, ErrMilestoneNotFound):
		return ExitNotFound
	case errors.Is(err, ErrNotCreator), errors.Is(err, ErrNotAnInvestor),
		errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrAmountOutOfBounds),
		errors.Is(err, ErrKYCRequired), errors.Is(err, ErrAuditFailed):
		return ExitPolicy
	case errors.Is(err, amount.ErrOverflow), errors.Is(err, amount.ErrUnderflow):
		return ExitArithmetic
	case errors.Is(err, ErrCampaignInactive), errors.Is(err, ErrCampaignPaused),
		errors.Is(err, ErrCampaignExpired), errors.Is(err, ErrGoalExceeded),
		errors.Is(err, ErrMilestoneCompleted), errors.Is(err, ErrProofNotSubmitted),
		errors.Is(err, ErrVotingClosed), errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrInsufficientVotes), errors.Is(err, ErrNoEscrowFunds):
		return ExitConflict
	default:
		return ExitInternal
	}
}
