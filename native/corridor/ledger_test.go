package corridor

import (
	"errors"
	"math/big"
	"testing"
)

func TestCreateIntentAssignsMonotonicIDs(t *testing.T) {
	engine, _, emitter, corridorID := newTestEngine()
	owner := newTestAddress(0x01)
	for i := 1; i <= 5; i++ {
		id, err := engine.CreateIntent(owner, corridorID, DirectionLeg0ToLeg1, big.NewInt(100), nil, big.NewInt(90), testNow+60)
		if err != nil {
			t.Fatalf("create intent %d: %v", i, err)
		}
		if id != uint64(i) {
			t.Fatalf("expected id %d, got %d", i, id)
		}
	}
	created := emitter.byType(EventTypeIntentCreated)
	if len(created) != 5 {
		t.Fatalf("expected 5 creation events, got %d", len(created))
	}
	if created[0].Attributes["id"] != "1" {
		t.Fatalf("unexpected first event id %q", created[0].Attributes["id"])
	}
}

func TestCreateIntentValidation(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()
	owner := newTestAddress(0x01)

	if _, err := engine.CreateIntent(owner, corridorID, DirectionLeg0ToLeg1, big.NewInt(100), nil, big.NewInt(90), testNow); !errors.Is(err, ErrInvalidDeadline) {
		t.Fatalf("expected ErrInvalidDeadline for deadline == now, got %v", err)
	}
	if _, err := engine.CreateIntent(owner, corridorID, DirectionLeg0ToLeg1, big.NewInt(100), nil, big.NewInt(90), testNow-1); !errors.Is(err, ErrInvalidDeadline) {
		t.Fatalf("expected ErrInvalidDeadline for past deadline, got %v", err)
	}
	if _, err := engine.CreateIntent(owner, corridorID, DirectionLeg0ToLeg1, big.NewInt(0), nil, big.NewInt(90), testNow+60); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount for zero magnitude, got %v", err)
	}
	if _, err := engine.CreateIntent(owner, corridorID, DirectionLeg0ToLeg1, big.NewInt(100), nil, big.NewInt(0), testNow+60); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount for zero minOut, got %v", err)
	}
	tooLarge := new(big.Int).Lsh(big.NewInt(1), 128)
	if _, err := engine.CreateIntent(owner, corridorID, DirectionLeg0ToLeg1, tooLarge, nil, big.NewInt(90), testNow+60); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
	atBound := new(big.Int).Sub(tooLarge, big.NewInt(1))
	if _, err := engine.CreateIntent(owner, corridorID, DirectionLeg0ToLeg1, atBound, nil, big.NewInt(90), testNow+60); err != nil {
		t.Fatalf("2^128-1 must be accepted, got %v", err)
	}
}

func TestIntentLookupSentinels(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()
	owner := newTestAddress(0x01)

	if _, ok, err := engine.Intent(0); err != nil || ok {
		t.Fatalf("id 0 must report absence, ok=%v err=%v", ok, err)
	}
	if _, ok, err := engine.Intent(42); err != nil || ok {
		t.Fatalf("unknown id must report absence, ok=%v err=%v", ok, err)
	}

	id, err := engine.CreateIntent(owner, corridorID, DirectionLeg1ToLeg0, big.NewInt(100), big.NewInt(995), big.NewInt(90), testNow+60)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	intent, ok, err := engine.Intent(id)
	if err != nil || !ok {
		t.Fatalf("expected intent %d, ok=%v err=%v", id, ok, err)
	}
	if intent.Owner != owner || intent.Corridor != corridorID {
		t.Fatalf("intent fields mismatch: %+v", intent)
	}
	if intent.Settled {
		t.Fatalf("fresh intent must not be settled")
	}
	if intent.PriceLimit == nil || intent.PriceLimit.Cmp(big.NewInt(995)) != 0 {
		t.Fatalf("price limit not carried: %v", intent.PriceLimit)
	}
	// The returned record is a copy; mutating it must not leak into state.
	intent.Magnitude.SetInt64(1)
	reread, _, _ := engine.Intent(id)
	if reread.Magnitude.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("stored magnitude mutated through returned copy")
	}
}

func TestIntentsOfReturnsCreationOrderCapped(t *testing.T) {
	engine, _, _, corridorID := newTestEngine()
	alice := newTestAddress(0x01)
	bob := newTestAddress(0x02)

	var aliceIDs []uint64
	for i := 0; i < 4; i++ {
		direction := DirectionLeg0ToLeg1
		if i%2 == 1 {
			direction = DirectionLeg1ToLeg0
		}
		id, err := engine.CreateIntent(alice, corridorID, direction, big.NewInt(10), nil, big.NewInt(9), testNow+60)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		aliceIDs = append(aliceIDs, id)
		if _, err := engine.CreateIntent(bob, corridorID, direction, big.NewInt(10), nil, big.NewInt(9), testNow+60); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := engine.IntentsOf(alice, 3)
	if err != nil {
		t.Fatalf("intentsOf: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(got))
	}
	for i, id := range got {
		if id != aliceIDs[i] {
			t.Fatalf("position %d: expected %d, got %d", i, aliceIDs[i], id)
		}
	}

	all, err := engine.IntentsOf(alice, 100)
	if err != nil {
		t.Fatalf("intentsOf: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 ids, got %d", len(all))
	}
	none, err := engine.IntentsOf(newTestAddress(0x99), 10)
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown owner must yield no ids, got %v err=%v", none, err)
	}
}
