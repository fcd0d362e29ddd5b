// Package substrate owns the mutable neuron/synapse graph. Neurons and
// synapses live in an arena addressed by stable int64 ids; a synapse is valid
// while both endpoint ids are still present. The arena is single-writer per
// simulation tick: callers serialize mutation, concurrent wiring goes through
// the connectivity manager's lock.
package substrate

import (
	"errors"
	"fmt"

	"plexus/internal/model"
)

var (
	ErrRegionNotFound  = errors.New("region not found")
	ErrRegionExists    = errors.New("region already exists")
	ErrNeuronNotFound  = errors.New("neuron not found")
	ErrSynapseNotFound = errors.New("synapse not found")
	ErrNotMember       = errors.New("synapse endpoint not in claimed region")
)

// Neuron is the atomic unit: an activation, a state, and the ids of the
// synapses it feeds and is fed by.
type Neuron struct {
	ID         int64
	Activation float64
	State      model.NeuronState
	In         []int64
	Out        []int64
}

// Synapse is a directed weighted edge between two neurons.
type Synapse struct {
	ID           int64
	Source       int64
	Target       int64
	Weight       float64
	Kind         model.SynapseKind
	Rule         model.PlasticityRule
	LearningRate float64
}

// Region is a named container of neurons plus bookkeeping for synapses that
// stay inside it (Internal) or cross into other regions (Outgoing, Incoming,
// and the generic Inter bucket keyed by the other region's id).
type Region struct {
	ID       int64
	Name     string
	Kind     model.RegionKind
	Pattern  string
	Neurons  []int64
	Internal []int64
	Outgoing map[int64][]int64
	Incoming map[int64][]int64
	Inter    map[int64][]int64
}

// Substrate is the arena holding every region, neuron, and synapse.
type Substrate struct {
	regions       map[int64]*Region
	regionsByName map[string]int64
	regionOrder   []int64
	neurons       map[int64]*Neuron
	synapses      map[int64]*Synapse
	neuronRegion  map[int64]int64

	nextRegion  int64
	nextNeuron  int64
	nextSynapse int64

	weightMin float64
	weightMax float64
}

const (
	DefaultWeightMin = -2.0
	DefaultWeightMax = 2.0
)

func New() *Substrate {
	return NewWithBounds(DefaultWeightMin, DefaultWeightMax)
}

func NewWithBounds(weightMin, weightMax float64) *Substrate {
	if weightMax < weightMin {
		weightMin, weightMax = weightMax, weightMin
	}
	return &Substrate{
		regions:       make(map[int64]*Region),
		regionsByName: make(map[string]int64),
		neurons:       make(map[int64]*Neuron),
		synapses:      make(map[int64]*Synapse),
		neuronRegion:  make(map[int64]int64),
		weightMin:     weightMin,
		weightMax:     weightMax,
	}
}

func (s *Substrate) WeightBounds() (float64, float64) {
	return s.weightMin, s.weightMax
}

// ClampWeight saturates w to the configured weight range.
func (s *Substrate) ClampWeight(w float64) float64 {
	if w > s.weightMax {
		return s.weightMax
	}
	if w < s.weightMin {
		return s.weightMin
	}
	return w
}

func (s *Substrate) CreateRegion(name string, kind model.RegionKind, pattern string) (*Region, error) {
	if name == "" {
		return nil, errors.New("region name is required")
	}
	if _, exists := s.regionsByName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRegionExists, name)
	}

	s.nextRegion++
	region := &Region{
		ID:       s.nextRegion,
		Name:     name,
		Kind:     kind,
		Pattern:  pattern,
		Outgoing: make(map[int64][]int64),
		Incoming: make(map[int64][]int64),
		Inter:    make(map[int64][]int64),
	}
	s.regions[region.ID] = region
	s.regionsByName[name] = region.ID
	s.regionOrder = append(s.regionOrder, region.ID)
	return region, nil
}

// RestoreRegion recreates a region under an explicit id during import.
func (s *Substrate) RestoreRegion(id int64, name string, kind model.RegionKind) (*Region, error) {
	if _, exists := s.regions[id]; exists {
		return nil, fmt.Errorf("%w: id %d", ErrRegionExists, id)
	}
	if name == "" {
		name = fmt.Sprintf("region_%d", id)
	}
	if _, exists := s.regionsByName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRegionExists, name)
	}

	region := &Region{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Outgoing: make(map[int64][]int64),
		Incoming: make(map[int64][]int64),
		Inter:    make(map[int64][]int64),
	}
	s.regions[id] = region
	s.regionsByName[name] = id
	s.regionOrder = append(s.regionOrder, id)
	if id > s.nextRegion {
		s.nextRegion = id
	}
	return region, nil
}

func (s *Substrate) Region(id int64) (*Region, bool) {
	region, ok := s.regions[id]
	return region, ok
}

func (s *Substrate) RegionByName(name string) (*Region, bool) {
	id, ok := s.regionsByName[name]
	if !ok {
		return nil, false
	}
	return s.regions[id], true
}

// RegionOrder returns region ids in creation order. The connectivity matrix
// is indexed by this order.
func (s *Substrate) RegionOrder() []int64 {
	return append([]int64(nil), s.regionOrder...)
}

func (s *Substrate) RemoveRegion(id int64) error {
	region, ok := s.regions[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRegionNotFound, id)
	}

	for _, neuronID := range append([]int64(nil), region.Neurons...) {
		_ = s.RemoveNeuron(neuronID)
	}
	delete(s.regionsByName, region.Name)
	delete(s.regions, id)
	for i, rid := range s.regionOrder {
		if rid == id {
			s.regionOrder = append(s.regionOrder[:i], s.regionOrder[i+1:]...)
			break
		}
	}
	for _, other := range s.regions {
		delete(other.Outgoing, id)
		delete(other.Incoming, id)
		delete(other.Inter, id)
	}
	return nil
}

func (s *Substrate) AddNeuron(regionID int64) (*Neuron, error) {
	region, ok := s.regions[regionID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRegionNotFound, regionID)
	}

	s.nextNeuron++
	neuron := &Neuron{ID: s.nextNeuron, State: model.NeuronInactive}
	s.neurons[neuron.ID] = neuron
	s.neuronRegion[neuron.ID] = regionID
	region.Neurons = append(region.Neurons, neuron.ID)
	return neuron, nil
}

func (s *Substrate) AddNeurons(regionID int64, count int) ([]int64, error) {
	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		neuron, err := s.AddNeuron(regionID)
		if err != nil {
			return ids, err
		}
		ids = append(ids, neuron.ID)
	}
	return ids, nil
}

// RemoveNeuron deletes a neuron from the arena. Synapses referencing it stay
// in place but fail the validity check, so every mutating operation skips
// them from then on.
func (s *Substrate) RemoveNeuron(id int64) error {
	_, ok := s.neurons[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNeuronNotFound, id)
	}

	if regionID, ok := s.neuronRegion[id]; ok {
		if region, ok := s.regions[regionID]; ok {
			for i, nid := range region.Neurons {
				if nid == id {
					region.Neurons = append(region.Neurons[:i], region.Neurons[i+1:]...)
					break
				}
			}
		}
	}
	delete(s.neuronRegion, id)
	delete(s.neurons, id)
	return nil
}

func (s *Substrate) Neuron(id int64) (*Neuron, bool) {
	neuron, ok := s.neurons[id]
	return neuron, ok
}

func (s *Substrate) NeuronRegion(id int64) (int64, bool) {
	regionID, ok := s.neuronRegion[id]
	return regionID, ok
}

func (s *Substrate) NeuronCount() int {
	return len(s.neurons)
}

// SetActivation clamps the value to [0,1] and marks the neuron active when
// nonzero. Inhibited neurons keep their state.
func (s *Substrate) SetActivation(id int64, value float64) error {
	neuron, ok := s.neurons[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNeuronNotFound, id)
	}

	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	neuron.Activation = value
	if neuron.State != model.NeuronInhibited {
		if value > 0 {
			neuron.State = model.NeuronActive
		} else {
			neuron.State = model.NeuronInactive
		}
	}
	return nil
}

func (s *Substrate) SetState(id int64, state model.NeuronState) error {
	neuron, ok := s.neurons[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNeuronNotFound, id)
	}
	neuron.State = state
	return nil
}

func (s *Substrate) AddSynapse(source, target int64, weight float64, rule model.PlasticityRule, learningRate float64) (*Synapse, error) {
	src, ok := s.neurons[source]
	if !ok {
		return nil, fmt.Errorf("%w: source %d", ErrNeuronNotFound, source)
	}
	dst, ok := s.neurons[target]
	if !ok {
		return nil, fmt.Errorf("%w: target %d", ErrNeuronNotFound, target)
	}

	weight = s.ClampWeight(weight)
	kind := model.SynapseExcitatory
	if weight < 0 {
		kind = model.SynapseInhibitory
	}

	s.nextSynapse++
	synapse := &Synapse{
		ID:           s.nextSynapse,
		Source:       source,
		Target:       target,
		Weight:       weight,
		Kind:         kind,
		Rule:         rule,
		LearningRate: learningRate,
	}
	s.synapses[synapse.ID] = synapse
	src.Out = append(src.Out, synapse.ID)
	dst.In = append(dst.In, synapse.ID)
	return synapse, nil
}

func (s *Substrate) Synapse(id int64) (*Synapse, bool) {
	synapse, ok := s.synapses[id]
	return synapse, ok
}

func (s *Substrate) SynapseCount() int {
	return len(s.synapses)
}

// ValidSynapse reports whether the synapse and both of its endpoints are
// still present in the arena.
func (s *Substrate) ValidSynapse(id int64) bool {
	synapse, ok := s.synapses[id]
	if !ok {
		return false
	}
	_, srcOK := s.neurons[synapse.Source]
	_, dstOK := s.neurons[synapse.Target]
	return srcOK && dstOK
}

// ApplyWeightDelta adds delta to a synapse weight, clamped to the configured
// range. Invalid synapses are skipped; the returned delta is the change that
// actually landed after clamping.
func (s *Substrate) ApplyWeightDelta(id int64, delta float64) (float64, bool) {
	if !s.ValidSynapse(id) {
		return 0, false
	}
	synapse := s.synapses[id]
	next := s.ClampWeight(synapse.Weight + delta)
	applied := next - synapse.Weight
	synapse.Weight = next
	return applied, true
}

// RemoveSynapse deletes a synapse from the arena and detaches it from both
// endpoint neurons.
func (s *Substrate) RemoveSynapse(id int64) error {
	synapse, ok := s.synapses[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSynapseNotFound, id)
	}

	if src, ok := s.neurons[synapse.Source]; ok {
		src.Out = removeID(src.Out, id)
	}
	if dst, ok := s.neurons[synapse.Target]; ok {
		dst.In = removeID(dst.In, id)
	}
	delete(s.synapses, id)
	return nil
}

// RegisterInternal records a synapse in its region's intra-region list after
// verifying both endpoints actually live there.
func (s *Substrate) RegisterInternal(regionID, synapseID int64) error {
	region, ok := s.regions[regionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRegionNotFound, regionID)
	}
	synapse, ok := s.synapses[synapseID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSynapseNotFound, synapseID)
	}
	if s.neuronRegion[synapse.Source] != regionID || s.neuronRegion[synapse.Target] != regionID {
		return fmt.Errorf("%w: synapse %d, region %d", ErrNotMember, synapseID, regionID)
	}
	region.Internal = append(region.Internal, synapseID)
	return nil
}

// RegisterInterRegion records a cross-boundary synapse in the bookkeeping of
// both regions. The endpoint-membership check guards against swapped or
// lateral registrations drifting the maps: only metadata is recorded, no
// duplicate synapse is created.
func (s *Substrate) RegisterInterRegion(sourceRegion, targetRegion, synapseID int64) error {
	src, ok := s.regions[sourceRegion]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRegionNotFound, sourceRegion)
	}
	dst, ok := s.regions[targetRegion]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRegionNotFound, targetRegion)
	}
	synapse, ok := s.synapses[synapseID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSynapseNotFound, synapseID)
	}
	if s.neuronRegion[synapse.Source] != sourceRegion {
		return fmt.Errorf("%w: synapse %d source not in region %d", ErrNotMember, synapseID, sourceRegion)
	}
	if s.neuronRegion[synapse.Target] != targetRegion {
		return fmt.Errorf("%w: synapse %d target not in region %d", ErrNotMember, synapseID, targetRegion)
	}

	src.Outgoing[targetRegion] = append(src.Outgoing[targetRegion], synapseID)
	dst.Incoming[sourceRegion] = append(dst.Incoming[sourceRegion], synapseID)
	src.Inter[targetRegion] = append(src.Inter[targetRegion], synapseID)
	dst.Inter[sourceRegion] = append(dst.Inter[sourceRegion], synapseID)
	return nil
}

// UnregisterBetween drops all bookkeeping entries between two regions and
// returns the synapse ids that were recorded outgoing source -> target.
func (s *Substrate) UnregisterBetween(sourceRegion, targetRegion int64) []int64 {
	src, srcOK := s.regions[sourceRegion]
	dst, dstOK := s.regions[targetRegion]
	if !srcOK || !dstOK {
		return nil
	}

	removed := append([]int64(nil), src.Outgoing[targetRegion]...)
	delete(src.Outgoing, targetRegion)
	delete(dst.Incoming, sourceRegion)

	removedSet := make(map[int64]struct{}, len(removed))
	for _, id := range removed {
		removedSet[id] = struct{}{}
	}
	src.Inter[targetRegion] = dropIDs(src.Inter[targetRegion], removedSet)
	if len(src.Inter[targetRegion]) == 0 {
		delete(src.Inter, targetRegion)
	}
	dst.Inter[sourceRegion] = dropIDs(dst.Inter[sourceRegion], removedSet)
	if len(dst.Inter[sourceRegion]) == 0 {
		delete(dst.Inter, sourceRegion)
	}
	return removed
}

// SynapsesTouching returns the deduplicated ids of every synapse recorded in
// the region's internal list or inter-region buckets.
func (s *Substrate) SynapsesTouching(regionID int64) []int64 {
	region, ok := s.regions[regionID]
	if !ok {
		return nil
	}

	seen := make(map[int64]struct{}, len(region.Internal))
	ids := make([]int64, 0, len(region.Internal))
	add := func(id int64) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, id := range region.Internal {
		add(id)
	}
	for _, bucket := range region.Inter {
		for _, id := range bucket {
			add(id)
		}
	}
	return ids
}

// AllSynapseIDs returns every synapse id in the arena, in id order.
func (s *Substrate) AllSynapseIDs() []int64 {
	ids := make([]int64, 0, len(s.synapses))
	for id := int64(1); id <= s.nextSynapse; id++ {
		if _, ok := s.synapses[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// AllNeuronIDs returns every neuron id in the arena, in id order.
func (s *Substrate) AllNeuronIDs() []int64 {
	ids := make([]int64, 0, len(s.neurons))
	for id := int64(1); id <= s.nextNeuron; id++ {
		if _, ok := s.neurons[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func dropIDs(ids []int64, drop map[int64]struct{}) []int64 {
	kept := ids[:0]
	for _, id := range ids {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	return kept
}
