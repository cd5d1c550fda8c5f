package corridor

import (
	"errors"
	"math/big"
	"testing"
)

func TestBeforeTradeDeferredRecordsIntent(t *testing.T) {
	engine, _, emitter, corridorID := newTestEngine()
	owner := newTestAddress(0x01)

	decision, err := engine.BeforeTrade(TradeRequest{
		Owner:     owner,
		Corridor:  corridorID,
		Direction: DirectionLeg1ToLeg0,
		Amount:    big.NewInt(100),
		Deferred: &DeferredIntent{
			MinOut:   big.NewInt(90),
			Deadline: testNow + 300,
		},
	})
	if err != nil {
		t.Fatalf("before trade: %v", err)
	}
	if decision.IntentID == 0 {
		t.Fatalf("deferred trade must record an intent")
	}
	if !decision.FeeOverride || decision.FeeBps != 0 {
		t.Fatalf("deferred trade must answer a zero-fee override, got %+v", decision)
	}

	intent, ok, err := engine.Intent(decision.IntentID)
	if err != nil || !ok {
		t.Fatalf("intent lookup: ok=%v err=%v", ok, err)
	}
	if intent.Owner != owner || intent.Direction != DirectionLeg1ToLeg0 {
		t.Fatalf("intent fields mismatch: %+v", intent)
	}
	if intent.MinOut.Cmp(big.NewInt(90)) != 0 {
		t.Fatalf("minOut not carried: %s", intent.MinOut)
	}
	if len(emitter.byType(EventTypeIntentCreated)) != 1 {
		t.Fatalf("expected a creation event for the deferred trade")
	}
}

func TestBeforeTradeDeferredValidationSurfaces(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()

	_, err := engine.BeforeTrade(TradeRequest{
		Owner:     newTestAddress(0x01),
		Corridor:  corridorID,
		Direction: DirectionLeg0ToLeg1,
		Amount:    big.NewInt(100),
		Deferred: &DeferredIntent{
			MinOut:   big.NewInt(90),
			Deadline: testNow - 1,
		},
	})
	if !errors.Is(err, ErrInvalidDeadline) {
		t.Fatalf("ledger validation must propagate, got %v", err)
	}
}

func TestBeforeTradeImmediateQuotesEffectiveFee(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()
	setTestFeeCurve(t, engine, corridorID, 500, 2_000, 10_000)
	pushFlow(t, engine, corridorID, DirectionLeg0ToLeg1, 20_000)

	decision, err := engine.BeforeTrade(TradeRequest{
		Owner:     newTestAddress(0x01),
		Corridor:  corridorID,
		Direction: DirectionLeg0ToLeg1,
		Amount:    big.NewInt(100),
	})
	if err != nil {
		t.Fatalf("before trade: %v", err)
	}
	if decision.IntentID != 0 {
		t.Fatalf("immediate trade must not record an intent")
	}
	if !decision.FeeOverride || decision.FeeBps != 2_500 {
		t.Fatalf("expected 2500 bps override, got %+v", decision)
	}
}

func TestBeforeTradeImmediateWithoutCurve(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()

	decision, err := engine.BeforeTrade(TradeRequest{
		Owner:     newTestAddress(0x01),
		Corridor:  corridorID,
		Direction: DirectionLeg0ToLeg1,
		Amount:    big.NewInt(100),
	})
	if err != nil {
		t.Fatalf("before trade: %v", err)
	}
	if decision.FeeOverride || decision.FeeBps != 0 || decision.IntentID != 0 {
		t.Fatalf("unconfigured corridor must defer to static fees, got %+v", decision)
	}
}

func TestAfterTradeFeedsFlowAccumulator(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()

	if err := engine.AfterTrade(corridorID, DirectionLeg0ToLeg1, big.NewInt(1_234)); err != nil {
		t.Fatalf("after trade: %v", err)
	}
	flow, err := engine.CurrentFlow(corridorID)
	if err != nil {
		t.Fatalf("current flow: %v", err)
	}
	if flow.Cmp(big.NewInt(1_234)) != 0 {
		t.Fatalf("expected flow 1234, got %s", flow)
	}
}
