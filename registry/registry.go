// Package registry tracks the operators and networks known to the
// protocol and the opt-in relationships between (vault, operator,
// network) triples. No delegation or slash is authorized unless the
// corresponding triple is mutually opted in.
//
// Records are persistent for the life of the registry. Operators,
// networks, and opt-ins deactivate rather than delete, so a slash target
// stays addressable after it leaves and the audit trail keeps both the
// opt-in and opt-out epochs.
package registry

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/math"
	"github.com/restakelabs/restaking/types"
)

var (
	// ErrUnknownOperator is returned when the operator was never registered.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrUnknownNetwork is returned when the network was never registered.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrOperatorInactive is returned when the operator has been deactivated.
	ErrOperatorInactive = errors.New("operator is deactivated")
	// ErrNetworkInactive is returned when the network has been deactivated.
	ErrNetworkInactive = errors.New("network is deactivated")
	// ErrAlreadyRegistered is returned when the identity is already taken.
	ErrAlreadyRegistered = errors.New("identity already registered")
	// ErrAlreadyOptedIn is returned when the triple already has an active opt-in.
	ErrAlreadyOptedIn = errors.New("triple already opted in")
)

type optInKey struct {
	vault    types.VaultID
	operator types.OperatorID
	network  types.NetworkID
}

// Registry is the in-memory view of the participant set. It is safe for
// concurrent use.
type Registry struct {
	lock         sync.RWMutex
	operators    map[types.OperatorID]*types.OperatorRecord
	networks     map[types.NetworkID]*types.NetworkRecord
	optIns       map[optInKey]*types.OptInRecord
	activeOptIns uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		operators: make(map[types.OperatorID]*types.OperatorRecord),
		networks:  make(map[types.NetworkID]*types.NetworkRecord),
		optIns:    make(map[optInKey]*types.OptInRecord),
	}
}

// Restore rebuilds the registry from persisted records, replacing any
// current contents. The active opt-in counter is recomputed from the
// records rather than trusted from the caller.
func (r *Registry) Restore(operators []*types.OperatorRecord, networks []*types.NetworkRecord, optIns []*types.OptInRecord) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.operators = make(map[types.OperatorID]*types.OperatorRecord, len(operators))
	r.networks = make(map[types.NetworkID]*types.NetworkRecord, len(networks))
	r.optIns = make(map[optInKey]*types.OptInRecord, len(optIns))
	r.activeOptIns = 0

	for _, rec := range operators {
		cp := *rec
		r.operators[rec.ID] = &cp
	}
	for _, rec := range networks {
		cp := *rec
		r.networks[rec.ID] = &cp
	}
	for _, rec := range optIns {
		if _, ok := r.operators[rec.Operator]; !ok {
			return errors.Wrapf(ErrUnknownOperator, "opt-in references operator %s", rec.Operator)
		}
		if _, ok := r.networks[rec.Network]; !ok {
			return errors.Wrapf(ErrUnknownNetwork, "opt-in references network %s", rec.Network)
		}
		cp := *rec
		r.optIns[optInKey{vault: rec.Vault, operator: rec.Operator, network: rec.Network}] = &cp
		if rec.Active {
			count, err := math.Add64(r.activeOptIns, 1)
			if err != nil {
				return types.ErrArithmeticOverflow
			}
			r.activeOptIns = count
		}
	}
	return nil
}

// RegisterOperator adds a new operator identity. This will error if the
// identity is already registered, active or not.
func (r *Registry) RegisterOperator(id types.OperatorID, name, metadataURI string, epoch types.Epoch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.operators[id]; ok {
		return errors.Wrapf(ErrAlreadyRegistered, "operator %s", id)
	}
	r.operators[id] = &types.OperatorRecord{
		ID:           id,
		Name:         name,
		MetadataURI:  metadataURI,
		RegisteredAt: epoch,
		Active:       true,
	}
	return nil
}

// DeactivateOperator retires an operator. Its record and opt-ins remain
// addressable for slashing and audit. This will error if the operator is
// unknown or already deactivated.
func (r *Registry) DeactivateOperator(id types.OperatorID, epoch types.Epoch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rec, ok := r.operators[id]
	if !ok {
		return errors.Wrapf(ErrUnknownOperator, "operator %s", id)
	}
	if !rec.Active {
		return errors.Wrapf(ErrOperatorInactive, "operator %s", id)
	}
	rec.Active = false
	rec.DeactivatedAt = epoch
	return nil
}

// RegisterNetwork adds a new network identity with its default slashable
// fraction in basis points. A zero fraction falls back to the configured
// protocol default. This will error if the identity is already registered.
func (r *Registry) RegisterNetwork(id types.NetworkID, name string, maxSlashableBps uint64, epoch types.Epoch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.networks[id]; ok {
		return errors.Wrapf(ErrAlreadyRegistered, "network %s", id)
	}
	r.networks[id] = &types.NetworkRecord{
		ID:              id,
		Name:            name,
		MaxSlashableBps: maxSlashableBps,
		RegisteredAt:    epoch,
		Active:          true,
	}
	return nil
}

// DeactivateNetwork retires a network. Its opt-ins stop authorizing new
// delegations and slashes. This will error if the network is unknown or
// already deactivated.
func (r *Registry) DeactivateNetwork(id types.NetworkID, epoch types.Epoch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rec, ok := r.networks[id]
	if !ok {
		return errors.Wrapf(ErrUnknownNetwork, "network %s", id)
	}
	if !rec.Active {
		return errors.Wrapf(ErrNetworkInactive, "network %s", id)
	}
	rec.Active = false
	rec.DeactivatedAt = epoch
	return nil
}

// OptIn activates the (vault, operator, network) triple. Both the
// operator and the network must be registered and active. A deactivated
// opt-in for the same triple is reactivated in place with a fresh opt-in
// epoch. A positive maxSlashableBps overrides the network default for
// this triple only.
func (r *Registry) OptIn(vault types.VaultID, operator types.OperatorID, network types.NetworkID, maxSlashableBps uint64, epoch types.Epoch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	op, ok := r.operators[operator]
	if !ok {
		return errors.Wrapf(ErrUnknownOperator, "operator %s", operator)
	}
	if !op.Active {
		return errors.Wrapf(ErrOperatorInactive, "operator %s", operator)
	}
	nw, ok := r.networks[network]
	if !ok {
		return errors.Wrapf(ErrUnknownNetwork, "network %s", network)
	}
	if !nw.Active {
		return errors.Wrapf(ErrNetworkInactive, "network %s", network)
	}

	key := optInKey{vault: vault, operator: operator, network: network}
	if rec, ok := r.optIns[key]; ok {
		if rec.Active {
			return errors.Wrapf(ErrAlreadyOptedIn, "operator %s network %s vault %s", operator, network, vault)
		}
		newActive, err := math.Add64(r.activeOptIns, 1)
		if err != nil {
			return types.ErrArithmeticOverflow
		}
		rec.Active = true
		rec.OptedInAt = epoch
		rec.OptedOutAt = 0
		rec.MaxSlashableBps = maxSlashableBps
		r.activeOptIns = newActive
		return nil
	}
	newActive, err := math.Add64(r.activeOptIns, 1)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	r.optIns[key] = &types.OptInRecord{
		Vault:           vault,
		Operator:        operator,
		Network:         network,
		MaxSlashableBps: maxSlashableBps,
		OptedInAt:       epoch,
		Active:          true,
	}
	r.activeOptIns = newActive
	return nil
}

// OptOut deactivates the triple's opt-in, keeping the record with its
// opt-out epoch. This will error if no active opt-in exists.
func (r *Registry) OptOut(vault types.VaultID, operator types.OperatorID, network types.NetworkID, epoch types.Epoch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := optInKey{vault: vault, operator: operator, network: network}
	rec, ok := r.optIns[key]
	if !ok || !rec.Active {
		return errors.Wrapf(types.ErrNotOptedIn, "operator %s network %s vault %s", operator, network, vault)
	}
	newActive, err := math.Sub64(r.activeOptIns, 1)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	rec.Active = false
	rec.OptedOutAt = epoch
	r.activeOptIns = newActive
	return nil
}

// IsOptedIn reports whether the exact triple currently authorizes
// delegation and slashing. A deactivated operator or network invalidates
// its opt-ins without deleting them.
func (r *Registry) IsOptedIn(vault types.VaultID, operator types.OperatorID, network types.NetworkID) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.isOptedIn(vault, operator, network)
}

func (r *Registry) isOptedIn(vault types.VaultID, operator types.OperatorID, network types.NetworkID) bool {
	rec, ok := r.optIns[optInKey{vault: vault, operator: operator, network: network}]
	if !ok || !rec.Active {
		return false
	}
	op, ok := r.operators[operator]
	if !ok || !op.Active {
		return false
	}
	nw, ok := r.networks[network]
	if !ok || !nw.Active {
		return false
	}
	return true
}

// AnyNetworkOptIn reports whether the operator holds an active opt-in
// for the vault with at least one network. Delegation requires this.
func (r *Registry) AnyNetworkOptIn(vault types.VaultID, operator types.OperatorID) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for key := range r.optIns {
		if key.vault != vault || key.operator != operator {
			continue
		}
		if r.isOptedIn(vault, operator, key.network) {
			return true
		}
	}
	return false
}

// MaxSlashableBps returns the slashable fraction the network may impose
// on the operator's stake in the vault, in basis points. The opt-in
// record's override wins over the network default, which wins over the
// protocol default. Returns zero when the triple holds no active opt-in.
func (r *Registry) MaxSlashableBps(vault types.VaultID, operator types.OperatorID, network types.NetworkID) uint64 {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if !r.isOptedIn(vault, operator, network) {
		return 0
	}
	rec := r.optIns[optInKey{vault: vault, operator: operator, network: network}]
	if rec.MaxSlashableBps > 0 {
		return rec.MaxSlashableBps
	}
	if nw := r.networks[network]; nw.MaxSlashableBps > 0 {
		return nw.MaxSlashableBps
	}
	return params.RestakingConfig().DefaultMaxSlashableBps
}

// Operator returns a copy of the operator's record.
func (r *Registry) Operator(id types.OperatorID) (types.OperatorRecord, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.operators[id]
	if !ok {
		return types.OperatorRecord{}, false
	}
	return *rec, true
}

// Network returns a copy of the network's record.
func (r *Registry) Network(id types.NetworkID) (types.NetworkRecord, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.networks[id]
	if !ok {
		return types.NetworkRecord{}, false
	}
	return *rec, true
}

// OptInRecord returns a copy of the triple's opt-in record, active or not.
func (r *Registry) OptInRecord(vault types.VaultID, operator types.OperatorID, network types.NetworkID) (types.OptInRecord, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.optIns[optInKey{vault: vault, operator: operator, network: network}]
	if !ok {
		return types.OptInRecord{}, false
	}
	return *rec, true
}

// Operators returns copies of all operator records ordered by id.
func (r *Registry) Operators() []types.OperatorRecord {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]types.OperatorRecord, 0, len(r.operators))
	for _, rec := range r.operators {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].ID[:]) < string(out[j].ID[:])
	})
	return out
}

// Networks returns copies of all network records ordered by id.
func (r *Registry) Networks() []types.NetworkRecord {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]types.NetworkRecord, 0, len(r.networks))
	for _, rec := range r.networks {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].ID[:]) < string(out[j].ID[:])
	})
	return out
}

// OptIns returns copies of all opt-in records, active and retired, in no
// particular order.
func (r *Registry) OptIns() []types.OptInRecord {
	r.lock.RLock()
	defer r.lock.RUnlock()

	out := make([]types.OptInRecord, 0, len(r.optIns))
	for _, rec := range r.optIns {
		out = append(out, *rec)
	}
	return out
}

// ActiveOptIns returns the number of currently active opt-in triples.
func (r *Registry) ActiveOptIns() uint64 {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.activeOptIns
}
