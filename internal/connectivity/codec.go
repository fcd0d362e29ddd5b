package connectivity

import (
	"encoding/json"
	"fmt"

	"plexus/internal/model"
)

// The export document carries the region list and connection summaries, not
// individual synapses. Key names and the two-array layout are fixed for
// round-trip compatibility with external dashboards.
type exportDocument struct {
	Regions     []exportRegion     `json:"regions"`
	Connections []exportConnection `json:"connections"`
}

type exportRegion struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type exportConnection struct {
	Source         int64   `json:"source"`
	Target         int64   `json:"target"`
	Strength       float64 `json:"strength"`
	Synapses       int     `json:"synapses"`
	PlasticityRate float64 `json:"plasticity_rate"`
	PlasticityRule string  `json:"plasticity_rule"`
}

// ExportJSON serializes the region list and active connection summaries.
func (m *Manager) ExportJSON() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := exportDocument{
		Regions:     []exportRegion{},
		Connections: []exportConnection{},
	}
	for _, id := range m.sub.RegionOrder() {
		region, ok := m.sub.Region(id)
		if !ok {
			continue
		}
		doc.Regions = append(doc.Regions, exportRegion{ID: id, Type: string(region.Kind)})
	}
	for _, c := range m.connections {
		if !c.Active {
			continue
		}
		doc.Connections = append(doc.Connections, exportConnection{
			Source:         c.SourceID,
			Target:         c.TargetID,
			Strength:       c.Strength,
			Synapses:       c.SynapseCount,
			PlasticityRate: c.PlasticityRate,
			PlasticityRule: string(c.PlasticityRule),
		})
	}
	return json.Marshal(doc)
}

// ImportJSON restores the region id set and connection summaries from an
// exported document. Missing regions are recreated empty; summaries are
// metadata only, so no synapses are materialized.
func (m *Manager) ImportJSON(data []byte) error {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse export document: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range doc.Regions {
		if _, ok := m.sub.Region(r.ID); ok {
			continue
		}
		if _, err := m.sub.RestoreRegion(r.ID, "", model.RegionKind(r.Type)); err != nil {
			return fmt.Errorf("restore region %d: %w", r.ID, err)
		}
	}
	for _, c := range doc.Connections {
		m.connections = append(m.connections, model.RegionConnection{
			SourceID:       c.Source,
			TargetID:       c.Target,
			Strength:       c.Strength,
			SynapseCount:   c.Synapses,
			Active:         true,
			PlasticityRate: c.PlasticityRate,
			PlasticityRule: model.NormalizePlasticityRule(c.PlasticityRule),
		})
	}
	return nil
}
