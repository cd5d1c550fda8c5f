package corridor

import (
	"fmt"
	"math/big"
)

// maxMagnitudeBits bounds intent magnitudes to what the stored fixed-width
// encoding can carry (2^128 - 1).
const maxMagnitudeBits = 128

// CreateIntent records a new trade intent and returns its identifier. The
// owner is supplied explicitly by the caller; the engine never infers it from
// ambient execution context.
func (e *Engine) CreateIntent(owner [20]byte, corridorID CorridorID, direction Direction, magnitude, priceLimit, minOut *big.Int, deadline int64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if !direction.Valid() {
		return 0, fmt.Errorf("corridor: unknown direction %d", direction)
	}
	if magnitude == nil || magnitude.Sign() <= 0 || minOut == nil || minOut.Sign() <= 0 {
		return 0, ErrZeroAmount
	}
	if magnitude.BitLen() > maxMagnitudeBits {
		return 0, ErrAmountTooLarge
	}
	now := e.now()
	if deadline <= now {
		return 0, fmt.Errorf("%w: deadline %d not after %d", ErrInvalidDeadline, deadline, now)
	}
	id, err := e.state.IntentNextID()
	if err != nil {
		return 0, err
	}
	intent := &Intent{
		ID:        id,
		Owner:     owner,
		Corridor:  corridorID,
		Direction: direction,
		Magnitude: cloneBigInt(magnitude),
		MinOut:    cloneBigInt(minOut),
		Deadline:  deadline,
		CreatedAt: now,
	}
	if priceLimit != nil {
		intent.PriceLimit = new(big.Int).Set(priceLimit)
	}
	if err := e.state.IntentPut(intent); err != nil {
		return 0, err
	}
	if err := e.state.IntentOwnerAppend(owner, id); err != nil {
		return 0, err
	}
	e.emit(NewIntentCreatedEvent(intent))
	return id, nil
}

// Intent retrieves an intent by identifier. The boolean reports existence; a
// stored record with a zero owner is treated as absent.
func (e *Engine) Intent(id uint64) (*Intent, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	if id == 0 {
		return nil, false, nil
	}
	intent, ok, err := e.state.IntentGet(id)
	if err != nil {
		return nil, false, err
	}
	if !ok || intent == nil || intent.Owner == ([20]byte{}) {
		return nil, false, nil
	}
	return intent.Copy(), true, nil
}

// IntentsOf returns the identifiers created by the supplied owner in creation
// order, capped at max. The lookup walks the owner's secondary index and never
// scans the full intent table.
func (e *Engine) IntentsOf(owner [20]byte, max int) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if max <= 0 {
		return []uint64{}, nil
	}
	ids, err := e.state.IntentsByOwner(owner, max)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
