package forecast

import (
	"math"

	"SimPulse/internal/domain/models"
)

// metaQuorum is the number of agreeing agents a directional verdict needs.
const metaQuorum = 4

// Aggregate reduces the signal set to one MetaDecision. Pure reducer: adding
// a heuristic never requires touching this function.
func Aggregate(signals []models.ModelSignal) models.MetaDecision {
	var buys, sells int
	for _, s := range signals {
		switch s.Action {
		case models.ActionBuy:
			buys++
		case models.ActionSell:
			sells++
		}
	}

	total := len(signals)
	share := func(n int) int {
		if total == 0 {
			return 0
		}
		return int(math.Round(float64(n) / float64(total) * 100))
	}

	switch {
	case buys >= metaQuorum:
		return models.MetaDecision{Action: models.ActionBuy, Confidence: share(buys), Reason: "broad buy consensus"}
	case sells >= metaQuorum:
		return models.MetaDecision{Action: models.ActionSell, Confidence: share(sells), Reason: "broad sell consensus"}
	case buys > 0 && sells > 0:
		return models.MetaDecision{Action: models.ActionNoTrade, Confidence: share(buys + sells), Reason: "agent conflict"}
	default:
		return models.MetaDecision{Action: models.ActionNoTrade, Confidence: share(buys + sells), Reason: "insufficient conviction"}
	}
}

// Grade scores one action against the realized move. NO_TRADE and OFF count
// as correct only when the move stayed flat (|outcome| <= 0.15%).
func Grade(action models.SignalAction, outcomePct float64) bool {
	switch action {
	case models.ActionBuy:
		return outcomePct > 0
	case models.ActionSell:
		return outcomePct < 0
	default:
		return math.Abs(outcomePct) <= 0.15
	}
}
