package corridor

import (
	"fmt"
	"math/big"
)

const (
	// maxFeeBps caps each fee component at the policy maximum.
	maxFeeBps = 10_000
	// maxVenueFeePips is the largest fee representable in the execution
	// venue's encoding (hundredths of a basis point, 1_000_000 = 100%).
	maxVenueFeePips = 1_000_000
	// pipsPerBps converts basis points into the venue encoding.
	pipsPerBps = 100
)

// SetFeeParams stores the dynamic fee configuration for a corridor.
// Administrator only.
func (e *Engine) SetFeeParams(caller [20]byte, id CorridorID, params FeeParams) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if _, ok, err := e.state.CorridorGet(id); err != nil {
		return err
	} else if !ok {
		return ErrCorridorNotFound
	}
	if params.BaseFeeBps > maxFeeBps || params.MaxExtraFeeBps > maxFeeBps {
		return fmt.Errorf("%w: fee components capped at %d bps", ErrInvalidFeeParams, maxFeeBps)
	}
	ceiling := uint64(params.BaseFeeBps) + uint64(params.MaxExtraFeeBps)
	if ceiling*pipsPerBps > maxVenueFeePips {
		return fmt.Errorf("%w: ceiling %d bps exceeds venue encoding", ErrInvalidFeeParams, ceiling)
	}
	if params.NetFlowThreshold != nil && params.NetFlowThreshold.Sign() < 0 {
		return fmt.Errorf("%w: threshold must not be negative", ErrInvalidFeeParams)
	}
	stored := params.Copy()
	if err := e.state.FeeParamsPut(id, stored); err != nil {
		return err
	}
	e.emit(NewFeeParamsUpdatedEvent(id, stored))
	return nil
}

// FeeParamsOf returns the configured fee parameters for the corridor.
func (e *Engine) FeeParamsOf(id CorridorID) (FeeParams, bool, error) {
	if e == nil || e.state == nil {
		return FeeParams{}, false, ErrNilState
	}
	params, ok, err := e.state.FeeParamsGet(id)
	if err != nil {
		return FeeParams{}, false, err
	}
	return params.Copy(), ok, nil
}

// EffectiveFee computes the fee override for the corridor from its configured
// curve and current directional flow. The boolean is false when no override is
// in effect (unconfigured corridor or zero base fee).
//
// The curve is piecewise linear in |flow|: flat at the base fee while
// |flow| <= threshold, rising linearly to base+maxExtra at |flow| = 2*threshold,
// and flat beyond.
func (e *Engine) EffectiveFee(id CorridorID) (uint32, bool, error) {
	if e == nil || e.state == nil {
		return 0, false, ErrNilState
	}
	params, ok, err := e.state.FeeParamsGet(id)
	if err != nil {
		return 0, false, err
	}
	if !ok || params.BaseFeeBps == 0 {
		return 0, false, nil
	}
	flow, err := e.state.FlowGet(id)
	if err != nil {
		return 0, false, err
	}
	fee := uint64(params.BaseFeeBps)
	fee += extraFeeBps(params, flow)
	if fee*pipsPerBps > maxVenueFeePips {
		return 0, false, fmt.Errorf("%w: computed fee %d bps exceeds venue encoding", ErrInvalidFeeParams, fee)
	}
	return uint32(fee), true, nil
}

// extraFeeBps evaluates the dynamic component of the fee curve. The excess
// ratio is expressed in basis points of the threshold and may exceed 10000 for
// large imbalances; the result is clamped at MaxExtraFeeBps.
func extraFeeBps(params FeeParams, flow *big.Int) uint64 {
	threshold := params.NetFlowThreshold
	if params.MaxExtraFeeBps == 0 || threshold == nil || threshold.Sign() <= 0 {
		return 0
	}
	if flow == nil {
		return 0
	}
	abs := new(big.Int).Abs(flow)
	if abs.Cmp(threshold) <= 0 {
		return 0
	}
	excess := new(big.Int).Sub(abs, threshold)
	ratio := new(big.Int).Mul(excess, big.NewInt(maxFeeBps))
	ratio.Div(ratio, threshold)
	maxExtra := big.NewInt(int64(params.MaxExtraFeeBps))
	extra := new(big.Int).Mul(maxExtra, ratio)
	extra.Div(extra, big.NewInt(maxFeeBps))
	if extra.Cmp(maxExtra) > 0 {
		return uint64(params.MaxExtraFeeBps)
	}
	return extra.Uint64()
}
