package attendance

import (
	"fmt"

	"eduledger/internal/apperr"
	"eduledger/internal/pricing"
)

// Plan decides the charge of one attendance. prior is the most recent multi-session
// record of the same identity, or nil. A prior with no sessions left opens a new
// package. rule may be nil for unpaid attendance and when prior covers the session.
func Plan(prior *Attendance, rule *pricing.Rule, pt PaymentType) (Charge, error) {
	switch pt {
	case PaymentUnpaid:
		return Charge{}, nil

	case PaymentDaily:
		if rule == nil {
			return Charge{}, fmt.Errorf("no pricing configured: %w", apperr.ErrNotFound)
		}
		return Charge{AmountPaid: rule.DailyPrice}, nil

	case PaymentMultiSession:
		if prior != nil && prior.SessionsRemaining > 0 {
			return Charge{SessionsRemaining: prior.SessionsRemaining - 1}, nil
		}
		if rule == nil {
			return Charge{}, fmt.Errorf("no pricing configured: %w", apperr.ErrNotFound)
		}
		if rule.MultiSessionCount <= 0 {
			return Charge{}, apperr.Invalid("multi_session_count", "pricing rule must sell at least one session")
		}
		return Charge{
			AmountPaid:        rule.MultiSessionPrice,
			SessionsPaidFor:   rule.MultiSessionCount,
			SessionsRemaining: rule.MultiSessionCount - 1,
		}, nil
	}

	return Charge{}, apperr.Invalid("payment_type", fmt.Sprintf("unknown payment type %q", pt))
}
