// Package plexus is the embedding facade over the substrate, the wiring
// engine, the learning system, and the telemetry store. One Client owns one
// network and one run.
package plexus

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"plexus/internal/connectivity"
	"plexus/internal/learning"
	"plexus/internal/model"
	"plexus/internal/substrate"
	"plexus/internal/telemetry"
)

const defaultDBPath = "plexus.db"

type Options struct {
	StoreKind string
	DBPath    string
	Seed      int64
	Learning  *learning.Config
}

type Client struct {
	store   telemetry.Store
	sub     *substrate.Substrate
	manager *connectivity.Manager
	system  *learning.System

	runID string
	step  int64
}

type RegionRequest struct {
	Name    string
	Kind    string
	Pattern string
	Neurons int
}

type ConnectRequest struct {
	Source  int64
	Target  int64
	Pattern string

	Topology       string
	Probability    float64
	WeightMean     float64
	WeightStd      float64
	MaxPerNeuron   int
	DistanceDecay  float64
	Distribution   string
	Bidirectional  bool
	PlasticityRate float64
	PlasticityRule string
}

type TickSummary struct {
	Step          int64
	RewardUpdates int
	Stats         model.LearningStats
	Network       model.NetworkProperties
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = telemetry.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	cfg := learning.DefaultConfig()
	if opts.Learning != nil {
		cfg = *opts.Learning
	}

	store, err := telemetry.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	sub := substrate.New()
	system, err := learning.NewSystem(sub, cfg)
	if err != nil {
		return nil, err
	}
	system.SetRandomSeed(seed)

	return &Client{
		store:   store,
		sub:     sub,
		manager: connectivity.NewManager(sub, seed),
		system:  system,
		runID:   uuid.NewString(),
	}, nil
}

func (c *Client) Close() error {
	return telemetry.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) RunID() string {
	return c.runID
}

// SetRandomSeed reseeds both stochastic components for deterministic replay.
func (c *Client) SetRandomSeed(seed int64) {
	c.manager.SetRandomSeed(seed)
	c.system.SetRandomSeed(seed)
}

// CreateRegion creates a named region and populates it with the requested
// number of inactive neurons.
func (c *Client) CreateRegion(req RegionRequest) (int64, error) {
	if req.Name == "" {
		return 0, errors.New("region name is required")
	}
	if req.Neurons < 0 {
		return 0, errors.New("neuron count must be >= 0")
	}

	region, err := c.sub.CreateRegion(req.Name, model.RegionKind(req.Kind), req.Pattern)
	if err != nil {
		return 0, err
	}
	if _, err := c.sub.AddNeurons(region.ID, req.Neurons); err != nil {
		return region.ID, err
	}
	return region.ID, nil
}

func (c *Client) RemoveRegion(id int64) error {
	return c.sub.RemoveRegion(id)
}

func (c *Client) SetActivation(neuronID int64, activation float64) error {
	return c.sub.SetActivation(neuronID, activation)
}

// Connect wires two regions. A named pattern takes precedence; otherwise the
// explicit fields build the parameter set, with zero-value fields falling back
// to the defaults.
func (c *Client) Connect(req ConnectRequest) (int, error) {
	if req.Pattern != "" {
		return c.manager.ConnectWithPattern(req.Source, req.Target, req.Pattern)
	}
	return c.manager.Connect(req.Source, req.Target, paramsFromRequest(req))
}

func (c *Client) Disconnect(sourceID, targetID int64) (int, error) {
	return c.manager.Disconnect(sourceID, targetID)
}

func (c *Client) RegisterPattern(name string, req ConnectRequest) error {
	return c.manager.RegisterPattern(name, paramsFromRequest(req))
}

func (c *Client) LoadPatternsFile(path string) error {
	return c.manager.LoadPatternsFile(path)
}

func (c *Client) EstablishCorticalHierarchy(chain []int64, req ConnectRequest) (int, error) {
	return c.manager.EstablishCorticalHierarchy(chain, paramsFromRequest(req))
}

func (c *Client) EstablishThalamoCorticalConnections(thalamusID int64, corticalIDs []int64, req ConnectRequest) (int, error) {
	return c.manager.EstablishThalamoCorticalConnections(thalamusID, corticalIDs, paramsFromRequest(req))
}

func (c *Client) EstablishLimbicConnections(regionIDs []int64, req ConnectRequest) (int, error) {
	return c.manager.EstablishLimbicConnections(regionIDs, paramsFromRequest(req))
}

func (c *Client) Connections() []model.RegionConnection {
	return c.manager.Connections()
}

func (c *Client) ConnectivityMatrix() [][]float64 {
	return c.manager.ConnectivityMatrix()
}

func (c *Client) AnalyzeNetworkProperties() model.NetworkProperties {
	return c.manager.AnalyzeNetworkProperties()
}

func (c *Client) ExportJSON() ([]byte, error) {
	return c.manager.ExportJSON()
}

func (c *Client) ImportJSON(data []byte) error {
	return c.manager.ImportJSON(data)
}

func (c *Client) ApplyHebbian(regionID int64, rate float64) (int, error) {
	return c.system.ApplyHebbian(regionID, rate)
}

func (c *Client) ApplySTDP(regionID int64, synapseIDs []int64, spikeTimes map[int64]float64) (int, error) {
	return c.system.ApplySTDP(regionID, synapseIDs, spikeTimes)
}

func (c *Client) NotePrePost(synapseID int64, pre, post float64) (float64, error) {
	return c.system.NotePrePost(synapseID, pre, post)
}

func (c *Client) ApplyExternalReward(reward float64) {
	c.system.ApplyExternalReward(reward)
}

func (c *Client) ComputeShapedReward(obs, actions []float64, taskReward float64) float64 {
	return c.system.ComputeShapedReward(obs, actions, taskReward)
}

func (c *Client) ApplyAttentionMap(weights map[int64]float64) (int, error) {
	return c.system.ApplyAttentionMap(weights)
}

func (c *Client) ApplyAttentionBoost(boost float64) int {
	return c.system.ApplyAttentionBoost(boost)
}

func (c *Client) SetCompetence(competence float64) {
	c.system.SetCompetence(competence)
}

func (c *Client) LearningStats() model.LearningStats {
	return c.system.Stats()
}

func (c *Client) ResetLearningStats() {
	c.system.ResetStats()
}

// Tick advances the learning system one step and persists a snapshot of the
// resulting statistics under this client's run id.
func (c *Client) Tick(ctx context.Context) (TickSummary, error) {
	updates := c.system.Tick()
	c.step++

	summary := TickSummary{
		Step:          c.step,
		RewardUpdates: updates,
		Stats:         c.system.Stats(),
		Network:       c.manager.AnalyzeNetworkProperties(),
	}
	snapshot := model.Snapshot{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: telemetry.CurrentSchemaVersion,
			CodecVersion:  telemetry.CurrentCodecVersion,
		},
		RunID:      c.runID,
		Step:       c.step,
		TakenAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Stats:      summary.Stats,
		Network:    summary.Network,
	}
	if err := c.store.SaveSnapshot(ctx, snapshot); err != nil {
		return summary, err
	}
	return summary, nil
}

func (c *Client) Snapshots(ctx context.Context, runID string) ([]model.Snapshot, bool, error) {
	if runID == "" {
		runID = c.runID
	}
	return c.store.ListSnapshots(ctx, runID)
}

func (c *Client) LatestSnapshot(ctx context.Context, runID string) (model.Snapshot, bool, error) {
	if runID == "" {
		runID = c.runID
	}
	return c.store.LatestSnapshot(ctx, runID)
}

func (c *Client) Runs(ctx context.Context) ([]string, error) {
	return c.store.ListRuns(ctx)
}

func paramsFromRequest(req ConnectRequest) connectivity.Params {
	params := connectivity.DefaultParams()
	if req.Topology != "" {
		params.Topology = model.NormalizeTopology(req.Topology)
	}
	if req.Probability != 0 {
		params.Probability = req.Probability
	}
	if req.WeightMean != 0 {
		params.WeightMean = req.WeightMean
	}
	if req.WeightStd != 0 {
		params.WeightStd = req.WeightStd
	}
	if req.MaxPerNeuron != 0 {
		params.MaxPerNeuron = req.MaxPerNeuron
	}
	if req.DistanceDecay != 0 {
		params.DistanceDecay = req.DistanceDecay
	}
	if req.Distribution != "" {
		params.Distribution = model.NormalizeDistribution(req.Distribution)
	}
	if req.PlasticityRate != 0 {
		params.PlasticityRate = req.PlasticityRate
	}
	if req.PlasticityRule != "" {
		params.PlasticityRule = model.NormalizePlasticityRule(req.PlasticityRule)
	}
	params.Bidirectional = req.Bidirectional
	return params
}
