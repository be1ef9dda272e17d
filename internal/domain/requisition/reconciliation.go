package requisition

import "github.com/shopspring/decimal"

// Epsilon is the tolerance used when comparing fixed-point currency
// sums against the authorized total. Rounding during capture can leave
// residues smaller than this; anything above it is a real violation.
var Epsilon = decimal.RequireFromString("0.00001")

// PendingAmount returns the remaining room against the authorized
// total, floored at zero.
func PendingAmount(total, consumed decimal.Decimal) decimal.Decimal {
	pending := total.Sub(consumed)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// ExceedsPending reports whether amount does not fit in the remaining
// pending balance, within Epsilon.
func ExceedsPending(amount, pending decimal.Decimal) bool {
	return amount.GreaterThan(pending.Add(Epsilon))
}

// CoversTotal reports whether the approved evidence sum covers the
// authorized total, within Epsilon.
func CoversTotal(sumApproved, total decimal.Decimal) bool {
	return sumApproved.Add(Epsilon).GreaterThanOrEqual(total)
}
