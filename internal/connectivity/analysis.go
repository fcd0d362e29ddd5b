package connectivity

import (
	"gonum.org/v1/gonum/stat"

	"plexus/internal/model"
)

// ConnectivityMatrix returns an N x N matrix of summed connection strengths,
// indexed by region creation order. Inactive summaries are excluded.
func (m *Manager) ConnectivityMatrix() [][]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order := m.sub.RegionOrder()
	index := make(map[int64]int, len(order))
	for i, id := range order {
		index[id] = i
	}

	matrix := make([][]float64, len(order))
	for i := range matrix {
		matrix[i] = make([]float64, len(order))
	}
	for _, c := range m.connections {
		if !c.Active {
			continue
		}
		i, okSrc := index[c.SourceID]
		j, okDst := index[c.TargetID]
		if !okSrc || !okDst {
			continue
		}
		matrix[i][j] += c.Strength
	}
	return matrix
}

// AnalyzeNetworkProperties aggregates whole-network counters: region and
// connection totals, mean connection strength, and the weight distribution
// over every live synapse.
func (m *Manager) AnalyzeNetworkProperties() model.NetworkProperties {
	m.mu.RLock()
	defer m.mu.RUnlock()

	props := model.NetworkProperties{
		RegionCount:   len(m.sub.RegionOrder()),
		TotalSynapses: m.totalSynapses,
	}

	var strengths []float64
	for _, c := range m.connections {
		if !c.Active {
			continue
		}
		props.ConnectionCount++
		strengths = append(strengths, c.Strength)
	}
	if len(strengths) > 0 {
		props.AverageStrength = stat.Mean(strengths, nil)
	}

	var weights []float64
	for _, id := range m.sub.AllSynapseIDs() {
		if synapse, ok := m.sub.Synapse(id); ok {
			weights = append(weights, synapse.Weight)
		}
	}
	if len(weights) > 0 {
		props.AverageWeight = stat.Mean(weights, nil)
	}
	if len(weights) > 1 {
		props.WeightStdDev = stat.StdDev(weights, nil)
	}
	return props
}
