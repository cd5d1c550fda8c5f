package corridor

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"corridord/core/types"
)

const (
	EventTypeIntentCreated      = "corridor.intent.created"
	EventTypeIntentSettled      = "corridor.intent.settled"
	EventTypeBatchSettled       = "corridor.netting.batch"
	EventTypeFlowUpdated        = "corridor.flow.updated"
	EventTypeFlowReset          = "corridor.flow.reset"
	EventTypeFeeParamsUpdated   = "corridor.fees.updated"
	EventTypeCorridorRegistered = "corridor.registered"
)

// NewIntentCreatedEvent returns the canonical payload emitted when an intent
// is recorded in the ledger.
func NewIntentCreatedEvent(intent *Intent) *types.Event {
	attrs := make(map[string]string)
	if intent == nil {
		return &types.Event{Type: EventTypeIntentCreated, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(intent.ID, 10)
	attrs["owner"] = hex.EncodeToString(intent.Owner[:])
	attrs["corridor"] = hex.EncodeToString(intent.Corridor[:])
	attrs["direction"] = intent.Direction.String()
	attrs["magnitude"] = bigIntString(intent.Magnitude)
	attrs["minOut"] = bigIntString(intent.MinOut)
	attrs["deadline"] = strconv.FormatInt(intent.Deadline, 10)
	return &types.Event{Type: EventTypeIntentCreated, Attributes: attrs}
}

// NewIntentSettledEvent returns the payload emitted for each settled intent,
// carrying the caller-supplied proposed output.
func NewIntentSettledEvent(intent *Intent, proposedOutput *big.Int) *types.Event {
	attrs := make(map[string]string)
	if intent == nil {
		return &types.Event{Type: EventTypeIntentSettled, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(intent.ID, 10)
	attrs["owner"] = hex.EncodeToString(intent.Owner[:])
	attrs["corridor"] = hex.EncodeToString(intent.Corridor[:])
	attrs["magnitude"] = bigIntString(intent.Magnitude)
	attrs["proposedOutput"] = bigIntString(proposedOutput)
	return &types.Event{Type: EventTypeIntentSettled, Attributes: attrs}
}

// NewBatchSettledEvent returns the aggregate payload describing one netting
// call that matched volume peer-to-peer.
func NewBatchSettledEvent(id CorridorID, stats *CoWStats) *types.Event {
	attrs := make(map[string]string)
	attrs["corridor"] = hex.EncodeToString(id[:])
	if stats == nil {
		return &types.Event{Type: EventTypeBatchSettled, Attributes: attrs}
	}
	attrs["validCount"] = strconv.Itoa(stats.ValidCount)
	attrs["totalLeg0"] = bigIntString(stats.TotalLeg0)
	attrs["totalLeg1"] = bigIntString(stats.TotalLeg1)
	attrs["matchedAmount"] = bigIntString(stats.MatchedAmount)
	attrs["residualToVenue"] = bigIntString(stats.ResidualToVenue)
	attrs["residualDirection"] = stats.ResidualDirection.String()
	attrs["costSaved"] = strconv.FormatUint(stats.CostSaved, 10)
	return &types.Event{Type: EventTypeBatchSettled, Attributes: attrs}
}

// NewFlowUpdatedEvent returns the payload emitted when directional pressure
// changes after an executed trade.
func NewFlowUpdatedEvent(id CorridorID, direction Direction, magnitude, flow *big.Int) *types.Event {
	attrs := map[string]string{
		"corridor":  hex.EncodeToString(id[:]),
		"direction": direction.String(),
		"magnitude": bigIntString(magnitude),
		"flow":      bigIntString(flow),
	}
	return &types.Event{Type: EventTypeFlowUpdated, Attributes: attrs}
}

// NewFlowResetEvent returns the payload emitted when the administrator zeroes
// the accumulator.
func NewFlowResetEvent(id CorridorID, previous *big.Int) *types.Event {
	attrs := map[string]string{
		"corridor": hex.EncodeToString(id[:]),
		"previous": bigIntString(previous),
	}
	return &types.Event{Type: EventTypeFlowReset, Attributes: attrs}
}

// NewFeeParamsUpdatedEvent returns the payload emitted when the fee curve for
// a corridor changes.
func NewFeeParamsUpdatedEvent(id CorridorID, params FeeParams) *types.Event {
	attrs := map[string]string{
		"corridor":    hex.EncodeToString(id[:]),
		"baseFeeBps":  strconv.FormatUint(uint64(params.BaseFeeBps), 10),
		"maxExtraBps": strconv.FormatUint(uint64(params.MaxExtraFeeBps), 10),
		"threshold":   bigIntString(params.NetFlowThreshold),
	}
	return &types.Event{Type: EventTypeFeeParamsUpdated, Attributes: attrs}
}

// NewCorridorRegisteredEvent returns the payload emitted when a corridor is
// registered or its netting flag changes.
func NewCorridorRegisteredEvent(c *Corridor) *types.Event {
	attrs := make(map[string]string)
	if c == nil {
		return &types.Event{Type: EventTypeCorridorRegistered, Attributes: attrs}
	}
	attrs["corridor"] = hex.EncodeToString(c.ID[:])
	attrs["token0"] = c.Token0
	attrs["token1"] = c.Token1
	attrs["nettable"] = strconv.FormatBool(c.Nettable)
	return &types.Event{Type: EventTypeCorridorRegistered, Attributes: attrs}
}

func bigIntString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
