package ledger

import "github.com/riskibarqy/belote-scorekeeper/internal/domain/round"

const DefaultWinThreshold = 1000

// DetectWinner returns the side that reached the threshold with a strictly higher total.
// A tie above the threshold has no winner.
func DetectWinner(totals round.Totals, threshold int) (round.Side, bool) {
	switch {
	case totals.A >= threshold && totals.A > totals.B:
		return round.SideA, true
	case totals.B >= threshold && totals.B > totals.A:
		return round.SideB, true
	default:
		return "", false
	}
}
