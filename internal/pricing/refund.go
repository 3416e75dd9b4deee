package pricing

// Refund tiers, keyed by hours remaining until the booking starts. Boundary
// values resolve to the higher tier: exactly 24 hours refunds 100%, exactly
// 12 hours refunds 50%.
const (
	FullRefundHours = 24.0
	HalfRefundHours = 12.0
)

// RefundAmount computes the refund for cancelling totalPrice with
// hoursUntilStart remaining. Returns the amount and the percentage applied.
func RefundAmount(hoursUntilStart float64, totalPrice float64) (float64, int) {
	switch {
	case hoursUntilStart >= FullRefundHours:
		return RoundCents(totalPrice), 100
	case hoursUntilStart >= HalfRefundHours:
		return RoundCents(totalPrice * 0.5), 50
	default:
		return 0, 0
	}
}
