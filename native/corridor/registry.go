package corridor

import (
	"fmt"
	"strings"
)

// RegisterCorridor records a token pair as a corridor and returns its derived
// identifier. Administrator only.
func (e *Engine) RegisterCorridor(caller [20]byte, token0, token1 string, nettable bool) (CorridorID, error) {
	if e == nil || e.state == nil {
		return CorridorID{}, ErrNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return CorridorID{}, err
	}
	t0 := strings.ToUpper(strings.TrimSpace(token0))
	t1 := strings.ToUpper(strings.TrimSpace(token1))
	if t0 == "" || t1 == "" {
		return CorridorID{}, fmt.Errorf("corridor: both corridor legs must be named")
	}
	if t0 == t1 {
		return CorridorID{}, fmt.Errorf("corridor: corridor legs must differ")
	}
	id := DeriveCorridorID(t0, t1)
	if _, ok, err := e.state.CorridorGet(id); err != nil {
		return CorridorID{}, err
	} else if ok {
		return CorridorID{}, ErrCorridorExists
	}
	record := &Corridor{
		ID:        id,
		Token0:    t0,
		Token1:    t1,
		Nettable:  nettable,
		CreatedAt: e.now(),
	}
	if err := e.state.CorridorPut(record); err != nil {
		return CorridorID{}, err
	}
	e.emit(NewCorridorRegisteredEvent(record))
	return id, nil
}

// SetNettable toggles netting eligibility for a registered corridor.
// Administrator only.
func (e *Engine) SetNettable(caller [20]byte, id CorridorID, nettable bool) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	record, ok, err := e.state.CorridorGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCorridorNotFound
	}
	if record.Nettable == nettable {
		return nil
	}
	record.Nettable = nettable
	if err := e.state.CorridorPut(record); err != nil {
		return err
	}
	e.emit(NewCorridorRegisteredEvent(record))
	return nil
}

// Corridor returns the registration record for the supplied identifier.
func (e *Engine) Corridor(id CorridorID) (*Corridor, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	record, ok, err := e.state.CorridorGet(id)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return record.Copy(), true, nil
}

// IsNettable reports whether the corridor is registered and flagged for netting.
func (e *Engine) IsNettable(id CorridorID) (bool, error) {
	record, ok, err := e.Corridor(id)
	if err != nil || !ok {
		return false, err
	}
	return record.Nettable, nil
}
