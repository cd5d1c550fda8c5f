package corridor

import (
	"math/big"
	"time"

	"corridord/core/events"
	"corridord/core/types"
)

// State abstracts the repository backing the engine. Implementations must
// provide serialized, non-reentrant access; the engine performs no locking of
// its own.
type State interface {
	// IntentNextID allocates and persists the next intent identifier,
	// starting at 1 and strictly increasing.
	IntentNextID() (uint64, error)
	IntentPut(intent *Intent) error
	IntentGet(id uint64) (*Intent, bool, error)
	IntentOwnerAppend(owner [20]byte, id uint64) error
	IntentsByOwner(owner [20]byte, max int) ([]uint64, error)

	CorridorPut(c *Corridor) error
	CorridorGet(id CorridorID) (*Corridor, bool, error)

	FeeParamsPut(id CorridorID, params FeeParams) error
	FeeParamsGet(id CorridorID) (FeeParams, bool, error)

	FlowGet(id CorridorID) (*big.Int, error)
	FlowPut(id CorridorID, flow *big.Int) error
}

type corridorEvent struct {
	evt *types.Event
}

func (e corridorEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e corridorEvent) Event() *types.Event { return e.evt }

// Engine wires the intent ledger, netting, fee policy, and flow accumulator
// around an injected state repository and event emitter.
type Engine struct {
	state   State
	emitter events.Emitter
	admin   [20]byte
	nowFn   func() int64
}

// NewEngine creates an engine with a no-op emitter. Callers can override the
// emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetAdmin configures the address allowed to call administrative operations.
func (e *Engine) SetAdmin(addr [20]byte) { e.admin = addr }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(corridorEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) requireAdmin(caller [20]byte) error {
	if e == nil || e.admin == ([20]byte{}) || caller != e.admin {
		return ErrUnauthorized
	}
	return nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
