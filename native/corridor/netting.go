package corridor

import (
	"fmt"
	"math/big"
)

// perIntentProcessingCost is the estimated venue execution cost avoided for
// each intent settled through netting. It feeds the informational CostSaved
// figure only and is never enforced.
const perIntentProcessingCost uint64 = 120_000

// SettleOne settles a single intent against the proposed output. Unlike batch
// settlement every validation failure aborts the call; no state is committed
// on error.
func (e *Engine) SettleOne(id uint64, proposedOutput *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	intent, ok, err := e.loadIntent(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: intent %d", ErrIntentNotFound, id)
	}
	if intent.Settled {
		return fmt.Errorf("%w: intent %d", ErrAlreadySettled, id)
	}
	if e.now() > intent.Deadline {
		return fmt.Errorf("%w: intent %d deadline %d", ErrIntentExpired, id, intent.Deadline)
	}
	if proposedOutput == nil || proposedOutput.Cmp(intent.MinOut) < 0 {
		return fmt.Errorf("%w: intent %d requires %s", ErrMinOutputNotMet, id, intent.MinOut)
	}
	intent.Settled = true
	if err := e.state.IntentPut(intent); err != nil {
		return err
	}
	e.emit(NewIntentSettledEvent(intent, proposedOutput))
	return nil
}

type batchEntry struct {
	intent *Intent
	output *big.Int
}

// SettleBatch nets a caller-assembled batch of intents. Individually invalid
// entries (missing, settled, expired, or short of their output floor) are
// silently excluded; structural faults abort the whole call with nothing
// committed. The returned statistics describe only the included entries.
//
// For every batch: TotalLeg0 + TotalLeg1 == 2*MatchedAmount + ResidualToVenue.
func (e *Engine) SettleBatch(ids []uint64, proposedOutputs []*big.Int) (*CoWStats, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if len(ids) != len(proposedOutputs) {
		return nil, ErrLengthMismatch
	}
	if len(ids) == 0 {
		return nil, ErrEmptyBatch
	}

	now := e.now()
	seen := make(map[uint64]struct{}, len(ids))
	included := make([]batchEntry, 0, len(ids))
	totalLeg0 := big.NewInt(0)
	totalLeg1 := big.NewInt(0)
	var (
		batchCorridor CorridorID
		corridorFixed bool
	)
	for i, id := range ids {
		// A repeated identifier can settle at most once; later occurrences
		// would fail the settled check at commit time, so they are excluded
		// up front to keep the aggregation and commit views identical.
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		intent, ok, err := e.loadIntent(id)
		if err != nil {
			return nil, err
		}
		output := proposedOutputs[i]
		if !ok || intent.Settled || now > intent.Deadline {
			continue
		}
		if output == nil || output.Cmp(intent.MinOut) < 0 {
			continue
		}
		if !corridorFixed {
			batchCorridor = intent.Corridor
			corridorFixed = true
			nettable, err := e.IsNettable(batchCorridor)
			if err != nil {
				return nil, err
			}
			if !nettable {
				return nil, fmt.Errorf("%w: %x", ErrCorridorNotNettable, batchCorridor)
			}
		} else if intent.Corridor != batchCorridor {
			return nil, fmt.Errorf("%w: %x vs %x", ErrMixedCorridors, intent.Corridor, batchCorridor)
		}
		if intent.Direction == DirectionLeg0ToLeg1 {
			totalLeg0.Add(totalLeg0, intent.Magnitude)
		} else {
			totalLeg1.Add(totalLeg1, intent.Magnitude)
		}
		included = append(included, batchEntry{intent: intent, output: output})
	}
	if len(included) == 0 {
		return nil, ErrNoValidIntents
	}

	matched := new(big.Int).Set(totalLeg0)
	if totalLeg1.Cmp(matched) < 0 {
		matched.Set(totalLeg1)
	}
	residual := new(big.Int).Sub(totalLeg0, totalLeg1)
	// Equal totals conventionally resolve to the leg0 direction.
	residualDirection := DirectionLeg0ToLeg1
	if residual.Sign() < 0 {
		residualDirection = DirectionLeg1ToLeg0
		residual.Neg(residual)
	}

	for _, entry := range included {
		entry.intent.Settled = true
		if err := e.state.IntentPut(entry.intent); err != nil {
			return nil, err
		}
		e.emit(NewIntentSettledEvent(entry.intent, entry.output))
	}

	stats := &CoWStats{
		ValidCount:        len(included),
		TotalLeg0:         totalLeg0,
		TotalLeg1:         totalLeg1,
		MatchedAmount:     matched,
		ResidualToVenue:   residual,
		ResidualDirection: residualDirection,
		CostSaved:         uint64(len(included)) * perIntentProcessingCost,
	}
	if stats.ValidCount > 1 && matched.Sign() > 0 {
		e.emit(NewBatchSettledEvent(batchCorridor, stats))
	}
	return stats, nil
}

// loadIntent fetches a stored intent, mapping zero-owner records to absence.
func (e *Engine) loadIntent(id uint64) (*Intent, bool, error) {
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
	return intent, true, nil
}
