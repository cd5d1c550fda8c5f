package corridor

import "math/big"

// TradeRequest carries everything the pre-trade hook needs from its host. The
// owner is an explicit field supplied by the host from its authenticated trade
// request, never recovered from ambient execution context.
type TradeRequest struct {
	Owner     [20]byte
	Corridor  CorridorID
	Direction Direction
	Amount    *big.Int
	Deferred  *DeferredIntent
}

// DeferredIntent opts a trade request into deferred settlement. When present
// the trade is not executed immediately; the engine records an intent and the
// host skips the venue entirely for this request.
type DeferredIntent struct {
	MinOut     *big.Int
	PriceLimit *big.Int
	Deadline   int64
}

// TradeDecision is the pre-trade hook's answer to the host. IntentID is
// non-zero when the request was deferred into the ledger. FeeOverride reports
// whether FeeBps supersedes the corridor's static fee for an immediate trade.
type TradeDecision struct {
	IntentID    uint64
	FeeBps      uint32
	FeeOverride bool
}

// BeforeTradeHook is the capability the trade-execution host invokes before
// executing a trade.
type BeforeTradeHook interface {
	BeforeTrade(req TradeRequest) (TradeDecision, error)
}

// AfterTradeHook is the capability the host invokes after a trade executed,
// reporting the direction and paid-in magnitude.
type AfterTradeHook interface {
	AfterTrade(id CorridorID, direction Direction, magnitudePaid *big.Int) error
}

// BeforeTrade implements the pre-trade hook. Deferred requests are recorded as
// intents and answered with a zero-fee override so the host performs no
// balance adjustment; immediate requests receive the corridor's current
// effective fee.
func (e *Engine) BeforeTrade(req TradeRequest) (TradeDecision, error) {
	if e == nil || e.state == nil {
		return TradeDecision{}, ErrNilState
	}
	if req.Deferred != nil {
		id, err := e.CreateIntent(req.Owner, req.Corridor, req.Direction, req.Amount, req.Deferred.PriceLimit, req.Deferred.MinOut, req.Deferred.Deadline)
		if err != nil {
			return TradeDecision{}, err
		}
		return TradeDecision{IntentID: id, FeeBps: 0, FeeOverride: true}, nil
	}
	fee, override, err := e.EffectiveFee(req.Corridor)
	if err != nil {
		return TradeDecision{}, err
	}
	return TradeDecision{FeeBps: fee, FeeOverride: override}, nil
}

// AfterTrade implements the post-trade hook by folding the executed trade into
// the flow accumulator.
func (e *Engine) AfterTrade(id CorridorID, direction Direction, magnitudePaid *big.Int) error {
	return e.OnTradeExecuted(id, direction, magnitudePaid)
}

var (
	_ BeforeTradeHook = (*Engine)(nil)
	_ AfterTradeHook  = (*Engine)(nil)
)
