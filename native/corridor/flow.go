package corridor

import "math/big"

// OnTradeExecuted folds an executed trade into the corridor's directional flow
// accumulator. Trades toward leg1 raise the accumulator, trades toward leg0
// lower it. An update event is emitted only when the value actually changed.
func (e *Engine) OnTradeExecuted(id CorridorID, direction Direction, magnitudePaid *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if magnitudePaid == nil || magnitudePaid.Sign() == 0 {
		return nil
	}
	if magnitudePaid.Sign() < 0 {
		return ErrZeroAmount
	}
	flow, err := e.state.FlowGet(id)
	if err != nil {
		return err
	}
	updated := cloneBigInt(flow)
	if direction == DirectionLeg0ToLeg1 {
		updated.Add(updated, magnitudePaid)
	} else {
		updated.Sub(updated, magnitudePaid)
	}
	if flow != nil && updated.Cmp(flow) == 0 {
		return nil
	}
	if err := e.state.FlowPut(id, updated); err != nil {
		return err
	}
	e.emit(NewFlowUpdatedEvent(id, direction, magnitudePaid, updated))
	return nil
}

// ResetFlow zeroes the corridor's accumulator unconditionally. Administrator
// only. The accumulator carries no decay or time windows; this is the only way
// it ever shrinks toward balance besides opposing trades.
func (e *Engine) ResetFlow(caller [20]byte, id CorridorID) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	previous, err := e.state.FlowGet(id)
	if err != nil {
		return err
	}
	if err := e.state.FlowPut(id, big.NewInt(0)); err != nil {
		return err
	}
	e.emit(NewFlowResetEvent(id, previous))
	return nil
}

// CurrentFlow returns the corridor's signed accumulated flow.
func (e *Engine) CurrentFlow(id CorridorID) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	flow, err := e.state.FlowGet(id)
	if err != nil {
		return nil, err
	}
	return cloneBigInt(flow), nil
}
