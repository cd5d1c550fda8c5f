package corridor

import (
	"errors"
	"math/big"
	"testing"
)

func TestDeriveCorridorIDIsOrderSensitive(t *testing.T) {
	forward := DeriveCorridorID("USDX", "EURX")
	reverse := DeriveCorridorID("EURX", "USDX")
	if forward == reverse {
		t.Fatalf("reversed legs must derive a distinct corridor")
	}
	if DeriveCorridorID(" usdx ", "eurx") != forward {
		t.Fatalf("derivation must normalise case and whitespace")
	}
}

func TestRegisterCorridorNormalisesAndRejectsDuplicates(t *testing.T) {
	engine, _, emitter, _ := newTestEngine()

	id, err := engine.RegisterCorridor(testAdmin, " gbpx ", "jpyx", false)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	record, ok, err := engine.Corridor(id)
	if err != nil || !ok {
		t.Fatalf("corridor lookup: ok=%v err=%v", ok, err)
	}
	if record.Token0 != "GBPX" || record.Token1 != "JPYX" {
		t.Fatalf("legs not normalised: %+v", record)
	}
	if record.Nettable {
		t.Fatalf("nettable flag must match registration")
	}

	if _, err := engine.RegisterCorridor(testAdmin, "GBPX", "JPYX", true); !errors.Is(err, ErrCorridorExists) {
		t.Fatalf("expected ErrCorridorExists, got %v", err)
	}
	// The reversed pair is a different corridor and registers cleanly.
	if _, err := engine.RegisterCorridor(testAdmin, "JPYX", "GBPX", true); err != nil {
		t.Fatalf("reversed pair: %v", err)
	}
	if len(emitter.byType(EventTypeCorridorRegistered)) != 3 {
		t.Fatalf("expected 3 registration events (incl. fixture), got %d", len(emitter.byType(EventTypeCorridorRegistered)))
	}
}

func TestRegisterCorridorValidation(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	if _, err := engine.RegisterCorridor(newTestAddress(0x01), "GBPX", "JPYX", true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := engine.RegisterCorridor(testAdmin, "", "JPYX", true); err == nil {
		t.Fatalf("empty leg must be rejected")
	}
	if _, err := engine.RegisterCorridor(testAdmin, "usdx", "USDX ", true); err == nil {
		t.Fatalf("identical legs must be rejected after normalisation")
	}
}

func TestSetNettableTogglesAndGates(t *testing.T) {
	engine, _, emitter, corridorID := newTestEngine()

	if err := engine.SetNettable(newTestAddress(0x01), corridorID, false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var unknown CorridorID
	unknown[0] = 0x01
	if err := engine.SetNettable(testAdmin, unknown, true); !errors.Is(err, ErrCorridorNotFound) {
		t.Fatalf("expected ErrCorridorNotFound, got %v", err)
	}

	before := len(emitter.byType(EventTypeCorridorRegistered))
	// Idempotent write: no state change, no event.
	if err := engine.SetNettable(testAdmin, corridorID, true); err != nil {
		t.Fatalf("set nettable: %v", err)
	}
	if len(emitter.byType(EventTypeCorridorRegistered)) != before {
		t.Fatalf("unchanged flag must not emit")
	}

	if err := engine.SetNettable(testAdmin, corridorID, false); err != nil {
		t.Fatalf("set nettable: %v", err)
	}
	nettable, err := engine.IsNettable(corridorID)
	if err != nil || nettable {
		t.Fatalf("expected corridor disabled, nettable=%v err=%v", nettable, err)
	}

	// Disabled corridors stop accepting batches but intents still record.
	id := mustCreate(t, engine, newTestAddress(0x02), corridorID, DirectionLeg0ToLeg1, 10, 9)
	if _, err := engine.SettleBatch([]uint64{id}, []*big.Int{big.NewInt(10)}); !errors.Is(err, ErrCorridorNotNettable) {
		t.Fatalf("expected ErrCorridorNotNettable, got %v", err)
	}
}
