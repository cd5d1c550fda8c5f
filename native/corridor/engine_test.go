package corridor

import (
	"bytes"
	"math/big"

	"corridord/core/events"
	"corridord/core/types"
)

type mockState struct {
	seq       uint64
	intents   map[uint64]*Intent
	owners    map[[20]byte][]uint64
	corridors map[CorridorID]*Corridor
	fees      map[CorridorID]FeeParams
	flows     map[CorridorID]*big.Int
}

func newMockState() *mockState {
	return &mockState{
		intents:   make(map[uint64]*Intent),
		owners:    make(map[[20]byte][]uint64),
		corridors: make(map[CorridorID]*Corridor),
		fees:      make(map[CorridorID]FeeParams),
		flows:     make(map[CorridorID]*big.Int),
	}
}

func (m *mockState) IntentNextID() (uint64, error) {
	m.seq++
	return m.seq, nil
}

func (m *mockState) IntentPut(intent *Intent) error {
	m.intents[intent.ID] = intent.Copy()
	return nil
}

func (m *mockState) IntentGet(id uint64) (*Intent, bool, error) {
	intent, ok := m.intents[id]
	if !ok {
		return nil, false, nil
	}
	return intent.Copy(), true, nil
}

func (m *mockState) IntentOwnerAppend(owner [20]byte, id uint64) error {
	m.owners[owner] = append(m.owners[owner], id)
	return nil
}

func (m *mockState) IntentsByOwner(owner [20]byte, max int) ([]uint64, error) {
	ids := m.owners[owner]
	if max <= 0 || max > len(ids) {
		max = len(ids)
	}
	return append([]uint64{}, ids[:max]...), nil
}

func (m *mockState) CorridorPut(c *Corridor) error {
	m.corridors[c.ID] = c.Copy()
	return nil
}

func (m *mockState) CorridorGet(id CorridorID) (*Corridor, bool, error) {
	c, ok := m.corridors[id]
	if !ok {
		return nil, false, nil
	}
	return c.Copy(), true, nil
}

func (m *mockState) FeeParamsPut(id CorridorID, params FeeParams) error {
	m.fees[id] = params.Copy()
	return nil
}

func (m *mockState) FeeParamsGet(id CorridorID) (FeeParams, bool, error) {
	params, ok := m.fees[id]
	if !ok {
		return FeeParams{}, false, nil
	}
	return params.Copy(), true, nil
}

func (m *mockState) FlowGet(id CorridorID) (*big.Int, error) {
	flow, ok := m.flows[id]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(flow), nil
}

func (m *mockState) FlowPut(id CorridorID, flow *big.Int) error {
	m.flows[id] = new(big.Int).Set(flow)
	return nil
}

type captureEmitter struct {
	captured []*types.Event
}

func (c *captureEmitter) Emit(evt events.Event) {
	payload, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	c.captured = append(c.captured, payload.Event())
}

func (c *captureEmitter) byType(eventType string) []*types.Event {
	matched := make([]*types.Event, 0)
	for _, evt := range c.captured {
		if evt != nil && evt.Type == eventType {
			matched = append(matched, evt)
		}
	}
	return matched
}

const testNow = int64(1_700_000_000)

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

var testAdmin = newTestAddress(0xAD)

// newTestEngine wires an engine over in-memory state with a deterministic
// clock and a registered, nettable corridor.
func newTestEngine() (*Engine, *mockState, *captureEmitter, CorridorID) {
	state := newMockState()
	emitter := &captureEmitter{}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetAdmin(testAdmin)
	engine.SetEmitter(emitter)
	engine.SetNowFunc(func() int64 { return testNow })
	id, err := engine.RegisterCorridor(testAdmin, "USDX", "EURX", true)
	if err != nil {
		panic(err)
	}
	return engine, state, emitter, id
}
