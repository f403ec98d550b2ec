package forecast

import (
	"testing"

	"SimPulse/internal/domain/models"
)

func sigs(actions ...models.SignalAction) []models.ModelSignal {
	out := make([]models.ModelSignal, len(actions))
	for i, a := range actions {
		out[i] = models.ModelSignal{Agent: "a", Action: a, Confidence: 50}
	}
	return out
}

func TestAggregateUnanimousBuy(t *testing.T) {
	m := Aggregate(sigs(models.ActionBuy, models.ActionBuy, models.ActionBuy, models.ActionBuy, models.ActionBuy))
	if m.Action != models.ActionBuy {
		t.Fatalf("expected BUY, got %s", m.Action)
	}
	if m.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %d", m.Confidence)
	}
}

func TestAggregateQuorumBuyDespiteOneSell(t *testing.T) {
	m := Aggregate(sigs(models.ActionBuy, models.ActionBuy, models.ActionBuy, models.ActionBuy, models.ActionSell))
	if m.Action != models.ActionBuy {
		t.Fatalf("quorum of 4 must win, got %s", m.Action)
	}
}

func TestAggregateConflict(t *testing.T) {
	m := Aggregate(sigs(models.ActionBuy, models.ActionBuy, models.ActionSell, models.ActionSell, models.ActionOff))
	if m.Action != models.ActionNoTrade {
		t.Fatalf("expected NO_TRADE on conflict, got %s", m.Action)
	}
	if m.Reason != "agent conflict" {
		t.Fatalf("unexpected reason %q", m.Reason)
	}
}

func TestAggregateInsufficientConviction(t *testing.T) {
	m := Aggregate(sigs(models.ActionBuy, models.ActionOff, models.ActionOff, models.ActionOff, models.ActionOff))
	if m.Action != models.ActionNoTrade {
		t.Fatalf("expected NO_TRADE, got %s", m.Action)
	}
	if m.Reason != "insufficient conviction" {
		t.Fatalf("unexpected reason %q", m.Reason)
	}
}

func TestAggregateEmpty(t *testing.T) {
	m := Aggregate(nil)
	if m.Action != models.ActionNoTrade || m.Confidence != 0 {
		t.Fatalf("expected idle NO_TRADE, got %s/%d", m.Action, m.Confidence)
	}
}

func TestGrade(t *testing.T) {
	cases := []struct {
		action  models.SignalAction
		outcome float64
		want    bool
	}{
		{models.ActionBuy, 0.4, true},
		{models.ActionBuy, -0.4, false},
		{models.ActionSell, -0.4, true},
		{models.ActionSell, 0.4, false},
		{models.ActionNoTrade, 0.1, true},
		{models.ActionNoTrade, 0.3, false},
		{models.ActionOff, -0.1, true},
	}
	for _, c := range cases {
		if got := Grade(c.action, c.outcome); got != c.want {
			t.Fatalf("grade(%s, %v) = %v, want %v", c.action, c.outcome, got, c.want)
		}
	}
}
