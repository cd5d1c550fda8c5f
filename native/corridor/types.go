package corridor

import (
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Direction identifies which leg of a corridor an intent or trade consumes.
type Direction uint8

const (
	// DirectionLeg0ToLeg1 trades the corridor's first token for its second.
	DirectionLeg0ToLeg1 Direction = iota
	// DirectionLeg1ToLeg0 trades the corridor's second token for its first.
	DirectionLeg1ToLeg0
)

// Valid reports whether the direction is one of the two corridor legs.
func (d Direction) Valid() bool {
	return d == DirectionLeg0ToLeg1 || d == DirectionLeg1ToLeg0
}

// String renders the direction in "leg0->leg1" notation.
func (d Direction) String() string {
	if d == DirectionLeg1ToLeg0 {
		return "leg1->leg0"
	}
	return "leg0->leg1"
}

// CorridorID uniquely identifies a registered trading pair.
type CorridorID [32]byte

// DeriveCorridorID computes the deterministic identifier for a token pair. The
// legs are order sensitive: (A, B) and (B, A) are distinct corridors.
func DeriveCorridorID(token0, token1 string) CorridorID {
	t0 := strings.ToUpper(strings.TrimSpace(token0))
	t1 := strings.ToUpper(strings.TrimSpace(token1))
	return CorridorID(ethcrypto.Keccak256Hash([]byte(t0), []byte("/"), []byte(t1)))
}

// Corridor captures the registration record for a netting-eligible pair.
type Corridor struct {
	ID        CorridorID
	Token0    string
	Token1    string
	Nettable  bool
	CreatedAt int64
}

// Copy returns a copy of the corridor record.
func (c *Corridor) Copy() *Corridor {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Intent is a recorded request to trade, pending settlement. Identifier zero
// is reserved as the "does not exist" sentinel.
type Intent struct {
	ID         uint64
	Owner      [20]byte
	Corridor   CorridorID
	Direction  Direction
	Magnitude  *big.Int
	PriceLimit *big.Int
	MinOut     *big.Int
	Deadline   int64
	Settled    bool
	CreatedAt  int64
}

// Copy returns a deep copy to avoid callers mutating shared pointers.
func (i *Intent) Copy() *Intent {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Magnitude != nil {
		clone.Magnitude = new(big.Int).Set(i.Magnitude)
	}
	if i.PriceLimit != nil {
		clone.PriceLimit = new(big.Int).Set(i.PriceLimit)
	}
	if i.MinOut != nil {
		clone.MinOut = new(big.Int).Set(i.MinOut)
	}
	return &clone
}

// FeeParams configures the dynamic fee curve for a corridor. Fees are
// expressed in basis points; NetFlowThreshold is the absolute accumulated flow
// above which the extra fee starts to apply. A nil or zero threshold disables
// the dynamic component entirely.
type FeeParams struct {
	BaseFeeBps       uint32
	MaxExtraFeeBps   uint32
	NetFlowThreshold *big.Int
}

// Copy returns a copy of the params with a duplicated threshold.
func (p FeeParams) Copy() FeeParams {
	clone := p
	if p.NetFlowThreshold != nil {
		clone.NetFlowThreshold = new(big.Int).Set(p.NetFlowThreshold)
	}
	return clone
}

// CoWStats summarises the outcome of one batch netting call. It is returned to
// the caller and emitted as an aggregate event but never persisted.
type CoWStats struct {
	ValidCount        int
	TotalLeg0         *big.Int
	TotalLeg1         *big.Int
	MatchedAmount     *big.Int
	ResidualToVenue   *big.Int
	ResidualDirection Direction
	CostSaved         uint64
}
