package requisition

import "github.com/gastoserp/backend/internal/domain/shared"

// Business-rule violations raised by the reconciliation engine. All of
// them are recoverable: the caller can resubmit corrected input.
var (
	// ErrAmountExceedsPending is returned when an entry does not fit in
	// the remaining balance against the authorized total.
	ErrAmountExceedsPending = shared.NewFieldError("AMOUNT_EXCEEDS_PENDING", "monto",
		"Amount exceeds the pending balance of the requisition")

	// ErrPendingIsZero is returned when a non-zero payment is submitted
	// against a requisition whose pending balance is already zero. A
	// zero-pending requisition only accepts a zero-amount closing entry.
	ErrPendingIsZero = shared.NewFieldError("PENDING_IS_ZERO", "monto",
		"The requisition has no pending balance; only a zero-amount closing entry is accepted")

	// ErrCommentRequired is returned when an evidence entry is rejected
	// without a review comment.
	ErrCommentRequired = shared.NewFieldError("COMMENT_REQUIRED", "comentario_revision",
		"A review comment is required when rejecting an evidence entry")
)
