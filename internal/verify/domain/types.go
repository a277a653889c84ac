package domain

import (
	"math/big"
	"time"
)

// Outcome is the protocol-level result of a verification attempt.
type Outcome string

const (
	// OutcomeVerified means a matching payment was confirmed on chain.
	OutcomeVerified Outcome = "verified"
	// OutcomePending means the transaction exists but has not been mined.
	OutcomePending Outcome = "pending"
	// OutcomeRejected means the transaction can never satisfy the payment.
	OutcomeRejected Outcome = "rejected"
)

// Verdict is the result of verifying one transaction hash.
type Verdict struct {
	Outcome Outcome
	// Reason is set for rejected verdicts only.
	Reason string
	// Payment details, set for verified verdicts only.
	Payer       string
	Beneficiary string
	Amount      *big.Int
	VerifiedAt  time.Time
}

// Rejection reasons. These are part of the API surface.
const (
	ReasonNotFound         = "transaction not found"
	ReasonReverted         = "transaction reverted"
	ReasonWrongDestination = "wrong destination"
	ReasonNoEvents         = "no contract events"
	ReasonNoMatchingEvent  = "no matching payment event"
)

func rejected(reason string) *Verdict {
	return &Verdict{Outcome: OutcomeRejected, Reason: reason}
}
