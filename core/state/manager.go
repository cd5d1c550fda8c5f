package state

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"

	"corridord/native/corridor"
	"corridord/storage"
)

// Manager is the state repository backing the corridor engine. It persists
// every record as an RLP-encoded value in the underlying key-value store and
// implements corridor.State. All access is expected to be serialized by the
// hosting process.
type Manager struct {
	db storage.Database
}

// NewManager constructs a manager bound to the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var _ corridor.State = (*Manager)(nil)

func (m *Manager) get(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state: database not configured")
	}
	raw, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

func (m *Manager) put(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.db.Put(key, encoded)
}

// --- intent ledger ---

type storedIntent struct {
	ID         uint64
	Owner      [20]byte
	Corridor   [32]byte
	Direction  uint8
	Magnitude  string
	PriceLimit string
	MinOut     string
	Deadline   uint64
	Settled    bool
	CreatedAt  uint64
}

type storedOwnerIndex struct {
	IDs []uint64
}

// IntentNextID increments and persists the intent sequence. Identifiers start
// at 1; zero remains the absence sentinel.
func (m *Manager) IntentNextID() (uint64, error) {
	var seq uint64
	if _, err := m.get(intentSequenceKey, &seq); err != nil {
		return 0, err
	}
	seq++
	if err := m.put(intentSequenceKey, seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// IntentPut stores the intent record keyed by identifier.
func (m *Manager) IntentPut(intent *corridor.Intent) error {
	if intent == nil {
		return fmt.Errorf("state: intent must not be nil")
	}
	if intent.ID == 0 {
		return fmt.Errorf("state: intent id required")
	}
	stored, err := toStoredIntent(intent)
	if err != nil {
		return err
	}
	return m.put(intentKey(intent.ID), stored)
}

// IntentGet retrieves an intent record by identifier.
func (m *Manager) IntentGet(id uint64) (*corridor.Intent, bool, error) {
	var stored storedIntent
	ok, err := m.get(intentKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	intent, err := fromStoredIntent(&stored)
	if err != nil {
		return nil, false, err
	}
	return intent, true, nil
}

// IntentOwnerAppend records the identifier at the tail of the owner's index.
func (m *Manager) IntentOwnerAppend(owner [20]byte, id uint64) error {
	key := ownerKey(owner)
	var index storedOwnerIndex
	if _, err := m.get(key, &index); err != nil {
		return err
	}
	index.IDs = append(index.IDs, id)
	return m.put(key, index)
}

// IntentsByOwner returns the owner's intent identifiers in creation order,
// capped at max. The read touches only the owner's own index.
func (m *Manager) IntentsByOwner(owner [20]byte, max int) ([]uint64, error) {
	var index storedOwnerIndex
	if _, err := m.get(ownerKey(owner), &index); err != nil {
		return nil, err
	}
	if max <= 0 || max > len(index.IDs) {
		max = len(index.IDs)
	}
	return append([]uint64{}, index.IDs[:max]...), nil
}

// --- corridor registry ---

type storedCorridor struct {
	ID        [32]byte
	Token0    string
	Token1    string
	Nettable  bool
	CreatedAt uint64
}

// CorridorPut stores the corridor registration record.
func (m *Manager) CorridorPut(c *corridor.Corridor) error {
	if c == nil {
		return fmt.Errorf("state: corridor must not be nil")
	}
	stored := storedCorridor{
		ID:        c.ID,
		Token0:    strings.TrimSpace(c.Token0),
		Token1:    strings.TrimSpace(c.Token1),
		Nettable:  c.Nettable,
		CreatedAt: int64ToUint64(c.CreatedAt),
	}
	return m.put(corridorKey(c.ID), stored)
}

// CorridorGet retrieves the corridor registration record.
func (m *Manager) CorridorGet(id corridor.CorridorID) (*corridor.Corridor, bool, error) {
	var stored storedCorridor
	ok, err := m.get(corridorKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	createdAt, err := uint64ToInt64(stored.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("state: corridor created at overflow: %w", err)
	}
	return &corridor.Corridor{
		ID:        stored.ID,
		Token0:    stored.Token0,
		Token1:    stored.Token1,
		Nettable:  stored.Nettable,
		CreatedAt: createdAt,
	}, true, nil
}

// --- fee params ---

type storedFeeParams struct {
	BaseFeeBps       uint32
	MaxExtraFeeBps   uint32
	NetFlowThreshold string
}

// FeeParamsPut stores the fee configuration for the corridor.
func (m *Manager) FeeParamsPut(id corridor.CorridorID, params corridor.FeeParams) error {
	stored := storedFeeParams{
		BaseFeeBps:     params.BaseFeeBps,
		MaxExtraFeeBps: params.MaxExtraFeeBps,
	}
	if params.NetFlowThreshold != nil {
		stored.NetFlowThreshold = params.NetFlowThreshold.String()
	}
	return m.put(feeParamsKey(id), stored)
}

// FeeParamsGet retrieves the fee configuration for the corridor.
func (m *Manager) FeeParamsGet(id corridor.CorridorID) (corridor.FeeParams, bool, error) {
	var stored storedFeeParams
	ok, err := m.get(feeParamsKey(id), &stored)
	if err != nil || !ok {
		return corridor.FeeParams{}, false, err
	}
	params := corridor.FeeParams{
		BaseFeeBps:     stored.BaseFeeBps,
		MaxExtraFeeBps: stored.MaxExtraFeeBps,
	}
	if trimmed := strings.TrimSpace(stored.NetFlowThreshold); trimmed != "" {
		threshold, parsed := new(big.Int).SetString(trimmed, 10)
		if !parsed {
			return corridor.FeeParams{}, false, fmt.Errorf("state: invalid threshold %q", stored.NetFlowThreshold)
		}
		params.NetFlowThreshold = threshold
	}
	return params, true, nil
}

// --- flow accumulator ---

type storedFlow struct {
	Value string
}

// FlowGet returns the signed accumulated flow for the corridor, zero when
// never written.
func (m *Manager) FlowGet(id corridor.CorridorID) (*big.Int, error) {
	var stored storedFlow
	ok, err := m.get(flowKey(id), &stored)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(stored.Value) == "" {
		return big.NewInt(0), nil
	}
	value, parsed := new(big.Int).SetString(strings.TrimSpace(stored.Value), 10)
	if !parsed {
		return nil, fmt.Errorf("state: invalid flow %q", stored.Value)
	}
	return value, nil
}

// FlowPut persists the signed accumulated flow for the corridor.
func (m *Manager) FlowPut(id corridor.CorridorID, flow *big.Int) error {
	stored := storedFlow{Value: "0"}
	if flow != nil {
		stored.Value = flow.String()
	}
	return m.put(flowKey(id), stored)
}

// --- conversions ---

func toStoredIntent(intent *corridor.Intent) (storedIntent, error) {
	stored := storedIntent{
		ID:        intent.ID,
		Owner:     intent.Owner,
		Corridor:  intent.Corridor,
		Direction: uint8(intent.Direction),
		Settled:   intent.Settled,
		Deadline:  int64ToUint64(intent.Deadline),
		CreatedAt: int64ToUint64(intent.CreatedAt),
	}
	if intent.Magnitude != nil {
		if intent.Magnitude.Sign() < 0 {
			return stored, fmt.Errorf("state: negative magnitude")
		}
		stored.Magnitude = intent.Magnitude.String()
	}
	if intent.PriceLimit != nil {
		stored.PriceLimit = intent.PriceLimit.String()
	}
	if intent.MinOut != nil {
		if intent.MinOut.Sign() < 0 {
			return stored, fmt.Errorf("state: negative minimum output")
		}
		stored.MinOut = intent.MinOut.String()
	}
	return stored, nil
}

func fromStoredIntent(stored *storedIntent) (*corridor.Intent, error) {
	if stored == nil {
		return nil, fmt.Errorf("state: nil stored intent")
	}
	deadline, err := uint64ToInt64(stored.Deadline)
	if err != nil {
		return nil, fmt.Errorf("state: deadline overflow: %w", err)
	}
	createdAt, err := uint64ToInt64(stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("state: created at overflow: %w", err)
	}
	intent := &corridor.Intent{
		ID:        stored.ID,
		Owner:     stored.Owner,
		Corridor:  stored.Corridor,
		Direction: corridor.Direction(stored.Direction),
		Deadline:  deadline,
		Settled:   stored.Settled,
		CreatedAt: createdAt,
	}
	intent.Magnitude, err = parseAmount(stored.Magnitude)
	if err != nil {
		return nil, err
	}
	intent.MinOut, err = parseAmount(stored.MinOut)
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(stored.PriceLimit); trimmed != "" {
		limit, parsed := new(big.Int).SetString(trimmed, 10)
		if !parsed {
			return nil, fmt.Errorf("state: invalid price limit %q", stored.PriceLimit)
		}
		intent.PriceLimit = limit
	}
	return intent, nil
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, parsed := new(big.Int).SetString(trimmed, 10)
	if !parsed {
		return nil, fmt.Errorf("state: invalid amount %q", value)
	}
	return amount, nil
}

func int64ToUint64(value int64) uint64 {
	if value < 0 {
		return 0
	}
	return uint64(value)
}

func uint64ToInt64(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("value %d exceeds int64 range", value)
	}
	return int64(value), nil
}
