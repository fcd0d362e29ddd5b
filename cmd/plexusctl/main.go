package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"plexus/internal/learning"
	"plexus/internal/telemetry"
	plexusapi "plexus/pkg/plexus"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "demo":
		return runDemo(ctx, args[1:])
	case "run":
		return runScenario(ctx, args[1:])
	case "snapshots":
		return runSnapshots(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: plexusctl <demo|run|snapshots|runs> [flags]", msg)
}

// runDemo builds a small sensory hierarchy with a thalamic relay and a limbic
// pair, runs Hebbian sweeps with a mid-run reward, and prints the resulting
// network properties.
func runDemo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	storeKind := fs.String("store", telemetry.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plexus.db", "sqlite database path")
	seed := fs.Int64("seed", 1, "rng seed")
	ticks := fs.Int("ticks", 10, "tick count")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := plexusapi.New(plexusapi.Options{StoreKind: *storeKind, DBPath: *dbPath, Seed: *seed})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	var cortex []int64
	for _, name := range []string{"v1", "v2", "v4"} {
		id, err := client.CreateRegion(plexusapi.RegionRequest{Name: name, Kind: "cortical", Neurons: 60})
		if err != nil {
			return err
		}
		cortex = append(cortex, id)
	}
	thalamus, err := client.CreateRegion(plexusapi.RegionRequest{Name: "thalamus", Kind: "thalamic", Neurons: 40})
	if err != nil {
		return err
	}
	amygdala, err := client.CreateRegion(plexusapi.RegionRequest{Name: "amygdala", Kind: "limbic", Neurons: 30})
	if err != nil {
		return err
	}
	hippocampus, err := client.CreateRegion(plexusapi.RegionRequest{Name: "hippocampus", Kind: "limbic", Neurons: 30})
	if err != nil {
		return err
	}

	if _, err := client.EstablishCorticalHierarchy(cortex, plexusapi.ConnectRequest{Probability: 0.6, WeightMean: 0.6}); err != nil {
		return err
	}
	if _, err := client.EstablishThalamoCorticalConnections(thalamus, cortex, plexusapi.ConnectRequest{Probability: 0.3, WeightMean: 0.7}); err != nil {
		return err
	}
	if _, err := client.EstablishLimbicConnections([]int64{amygdala, hippocampus}, plexusapi.ConnectRequest{Probability: 0.5, WeightMean: 0.5}); err != nil {
		return err
	}

	for i := 1; i <= *ticks; i++ {
		for _, id := range cortex {
			if _, err := client.ApplyHebbian(id, 0.01); err != nil {
				return err
			}
		}
		if i == *ticks/2 {
			client.ApplyExternalReward(1.0)
		}
		if _, err := client.Tick(ctx); err != nil {
			return err
		}
	}

	props := client.AnalyzeNetworkProperties()
	stats := client.LearningStats()
	fmt.Printf("run=%s regions=%d connections=%d synapses=%d\n",
		client.RunID(), props.RegionCount, props.ConnectionCount, props.TotalSynapses)
	fmt.Printf("updates=%d hebbian=%d reward=%d avg_dw=%.6f\n",
		stats.TotalUpdates, stats.HebbianUpdates, stats.RewardUpdates, stats.AverageWeightChange)
	return nil
}

func runScenario(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	scenarioPath := fs.String("scenario", "", "scenario JSON path (required)")
	patternsPath := fs.String("patterns", "", "optional extra wiring presets YAML path")
	exportPath := fs.String("export", "", "optional topology export JSON path")
	storeKind := fs.String("store", telemetry.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plexus.db", "sqlite database path")
	seed := fs.Int64("seed", 0, "rng seed override (0 uses scenario seed)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scenarioPath == "" {
		return usageError("run requires -scenario")
	}

	scenario, err := loadScenario(*scenarioPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		scenario.Seed = *seed
	}
	if scenario.Seed == 0 {
		scenario.Seed = 1
	}
	if scenario.Learning == nil {
		cfg := learning.DefaultConfig()
		scenario.Learning = &cfg
	}

	client, err := plexusapi.New(plexusapi.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
		Seed:      scenario.Seed,
		Learning:  scenario.Learning,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}
	if *patternsPath != "" {
		if err := client.LoadPatternsFile(*patternsPath); err != nil {
			return err
		}
	}

	regionIDs := make(map[string]int64, len(scenario.Regions))
	for _, region := range scenario.Regions {
		id, err := client.CreateRegion(plexusapi.RegionRequest{
			Name:    region.Name,
			Kind:    region.Kind,
			Neurons: region.Neurons,
		})
		if err != nil {
			return err
		}
		regionIDs[region.Name] = id
	}

	for _, c := range scenario.Connections {
		req := plexusapi.ConnectRequest{
			Source:         regionIDs[c.Source],
			Target:         regionIDs[c.Target],
			Pattern:        c.Pattern,
			Topology:       c.Topology,
			Probability:    c.Probability,
			WeightMean:     c.WeightMean,
			WeightStd:      c.WeightStd,
			MaxPerNeuron:   c.MaxPerNeuron,
			DistanceDecay:  c.DistanceDecay,
			Distribution:   c.Distribution,
			Bidirectional:  c.Bidirectional,
			PlasticityRate: c.PlasticityRate,
			PlasticityRule: c.PlasticityRule,
		}
		if _, err := client.Connect(req); err != nil {
			return fmt.Errorf("connect %s -> %s: %w", c.Source, c.Target, err)
		}
	}
	if len(scenario.Hierarchy) >= 2 {
		chain := make([]int64, 0, len(scenario.Hierarchy))
		for _, name := range scenario.Hierarchy {
			chain = append(chain, regionIDs[name])
		}
		if _, err := client.EstablishCorticalHierarchy(chain, plexusapi.ConnectRequest{Probability: 0.6, WeightMean: 0.6}); err != nil {
			return err
		}
	}

	rewardsByTick := make(map[int]float64, len(scenario.Rewards))
	for _, reward := range scenario.Rewards {
		rewardsByTick[reward.Tick] += reward.Reward
	}

	for tick := 1; tick <= scenario.Ticks; tick++ {
		for _, pass := range scenario.Hebbian {
			if _, err := client.ApplyHebbian(regionIDs[pass.Region], pass.Rate); err != nil {
				return err
			}
		}
		if reward, ok := rewardsByTick[tick]; ok {
			client.ApplyExternalReward(reward)
		}
		if _, err := client.Tick(ctx); err != nil {
			return err
		}
	}

	if *exportPath != "" {
		data, err := client.ExportJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*exportPath, data, 0o644); err != nil {
			return err
		}
	}

	props := client.AnalyzeNetworkProperties()
	stats := client.LearningStats()
	fmt.Printf("run=%s ticks=%d synapses=%d updates=%d cumulative_reward=%.3f\n",
		client.RunID(), scenario.Ticks, props.TotalSynapses, stats.TotalUpdates, stats.CumulativeReward)
	return nil
}

func runSnapshots(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("snapshots", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id (required)")
	limit := fs.Int("limit", 20, "maximum snapshots to print")
	storeKind := fs.String("store", telemetry.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plexus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("snapshots requires -run-id")
	}

	store, err := telemetry.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = telemetry.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	snapshots, ok, err := store.ListSnapshots(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no snapshots for run %s", *runID)
	}
	if len(snapshots) > *limit {
		snapshots = snapshots[len(snapshots)-*limit:]
	}
	for _, snapshot := range snapshots {
		fmt.Printf("step=%d at=%s updates=%d reward=%.3f synapses=%d\n",
			snapshot.Step, snapshot.TakenAtUTC,
			snapshot.Stats.TotalUpdates, snapshot.Stats.CumulativeReward,
			snapshot.Network.TotalSynapses)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", telemetry.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "plexus.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := telemetry.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = telemetry.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, runID := range runs {
		fmt.Println(runID)
	}
	return nil
}
