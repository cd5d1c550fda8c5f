package corridor

import (
	"errors"
	"math/big"
	"testing"
)

func TestOnTradeExecutedAccumulatesSignedFlow(t *testing.T) {
	engine, _, emitter, corridorID := newTestEngine()

	steps := []struct {
		direction Direction
		amount    int64
		want      int64
	}{
		{DirectionLeg0ToLeg1, 100, 100},
		{DirectionLeg0ToLeg1, 40, 140},
		{DirectionLeg1ToLeg0, 200, -60},
		{DirectionLeg0ToLeg1, 60, 0},
	}
	for i, step := range steps {
		if err := engine.OnTradeExecuted(corridorID, step.direction, big.NewInt(step.amount)); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		flow, err := engine.CurrentFlow(corridorID)
		if err != nil {
			t.Fatalf("step %d: current flow: %v", i, err)
		}
		if flow.Cmp(big.NewInt(step.want)) != 0 {
			t.Fatalf("step %d: expected flow %d, got %s", i, step.want, flow)
		}
	}
	if updates := emitter.byType(EventTypeFlowUpdated); len(updates) != len(steps) {
		t.Fatalf("expected %d flow events, got %d", len(steps), len(updates))
	}
}

func TestOnTradeExecutedIgnoresEmptyTrades(t *testing.T) {
	engine, _, emitter, corridorID := newTestEngine()

	if err := engine.OnTradeExecuted(corridorID, DirectionLeg0ToLeg1, nil); err != nil {
		t.Fatalf("nil magnitude must be a no-op, got %v", err)
	}
	if err := engine.OnTradeExecuted(corridorID, DirectionLeg0ToLeg1, big.NewInt(0)); err != nil {
		t.Fatalf("zero magnitude must be a no-op, got %v", err)
	}
	if err := engine.OnTradeExecuted(corridorID, DirectionLeg0ToLeg1, big.NewInt(-5)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("negative magnitude must be rejected, got %v", err)
	}
	if len(emitter.byType(EventTypeFlowUpdated)) != 0 {
		t.Fatalf("no-op trades must not emit flow events")
	}
	flow, err := engine.CurrentFlow(corridorID)
	if err != nil || flow.Sign() != 0 {
		t.Fatalf("expected untouched accumulator, flow=%s err=%v", flow, err)
	}
}

func TestResetFlowRequiresAdmin(t *testing.T) {
	engine, _, emitter, corridorID := newTestEngine()
	if err := engine.OnTradeExecuted(corridorID, DirectionLeg1ToLeg0, big.NewInt(777)); err != nil {
		t.Fatalf("record trade: %v", err)
	}

	if err := engine.ResetFlow(newTestAddress(0x01), corridorID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	flow, _ := engine.CurrentFlow(corridorID)
	if flow.Cmp(big.NewInt(-777)) != 0 {
		t.Fatalf("denied reset must not mutate flow, got %s", flow)
	}

	if err := engine.ResetFlow(testAdmin, corridorID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	flow, _ = engine.CurrentFlow(corridorID)
	if flow.Sign() != 0 {
		t.Fatalf("expected zero flow after reset, got %s", flow)
	}
	resets := emitter.byType(EventTypeFlowReset)
	if len(resets) != 1 {
		t.Fatalf("expected 1 reset event, got %d", len(resets))
	}
	if resets[0].Attributes["previous"] != "-777" {
		t.Fatalf("reset event must carry the previous value, got %q", resets[0].Attributes["previous"])
	}
}

func TestCurrentFlowReturnsCopy(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()
	if err := engine.OnTradeExecuted(corridorID, DirectionLeg0ToLeg1, big.NewInt(50)); err != nil {
		t.Fatalf("record trade: %v", err)
	}
	flow, err := engine.CurrentFlow(corridorID)
	if err != nil {
		t.Fatalf("current flow: %v", err)
	}
	flow.SetInt64(999)
	reread, _ := engine.CurrentFlow(corridorID)
	if reread.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("stored flow mutated through returned value")
	}
}
