package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ClusterGroup is one named cluster and the bed ids assigned to it.
type ClusterGroup struct {
	Name string
	Beds []int
}

// ClusterMap is an insertion-ordered mapping from cluster name to bed ids.
//
// The dxf-export cluster_dict assigns each cluster a numeric index equal to
// its position in the clustering response's processed_clusters object, so
// the key order of that object is load-bearing. A plain Go map would
// randomize it; ClusterMap decodes and encodes JSON objects preserving key
// order instead.
type ClusterMap struct {
	groups []ClusterGroup
}

// NewClusterMap builds a ClusterMap from groups in the given order.
func NewClusterMap(groups ...ClusterGroup) ClusterMap {
	m := ClusterMap{}
	for _, g := range groups {
		m.Set(g.Name, g.Beds)
	}
	return m
}

// Len returns the number of clusters.
func (m *ClusterMap) Len() int {
	return len(m.groups)
}

// Names returns the cluster names in insertion order.
func (m *ClusterMap) Names() []string {
	names := make([]string, len(m.groups))
	for i, g := range m.groups {
		names[i] = g.Name
	}
	return names
}

// Groups returns the ordered cluster groups.
func (m *ClusterMap) Groups() []ClusterGroup {
	return m.groups
}

// Get returns the bed ids for a cluster name.
func (m *ClusterMap) Get(name string) ([]int, bool) {
	for _, g := range m.groups {
		if g.Name == name {
			return g.Beds, true
		}
	}
	return nil, false
}

// Set replaces the beds for name, or appends a new cluster if absent.
func (m *ClusterMap) Set(name string, beds []int) {
	for i, g := range m.groups {
		if g.Name == name {
			m.groups[i].Beds = beds
			return
		}
	}
	m.groups = append(m.groups, ClusterGroup{Name: name, Beds: beds})
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m ClusterMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range m.groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		beds := g.Beds
		if beds == nil {
			beds = []int{}
		}
		bedsJSON, err := json.Marshal(beds)
		if err != nil {
			return nil, err
		}
		buf.Write(bedsJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (m *ClusterMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	m.groups = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var beds []int
		if err := dec.Decode(&beds); err != nil {
			return fmt.Errorf("cluster %q: %w", name, err)
		}
		m.groups = append(m.groups, ClusterGroup{Name: name, Beds: beds})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// ClusteringRequest is the body of POST /process-clustering. ClustersData is
// the user-drawn assignment; its key order is forwarded to the service
// unchanged so the response's cluster order reflects the drawing order.
type ClusteringRequest struct {
	BedData        []BedRecord            `json:"bed_data"`
	EnhancedColors map[string][][]float64 `json:"enhanced_colors"`
	ClustersData   ClusterMap             `json:"clusters_data"`
}

// ClusteringStatistics summarizes the clustering outcome.
type ClusteringStatistics struct {
	ClusterCount    int                `json:"cluster_count"`
	ClusteredBeds   int                `json:"clustered_beds"`
	TotalBeds       int                `json:"total_beds"`
	CoveragePercent float64            `json:"coverage_percent"`
	ClusterAreas    map[string]float64 `json:"cluster_areas"`
	ClusterCounts   map[string]int     `json:"cluster_counts"`
}

// ClusteringResult is the clustering service's response. FinalLabels holds
// one label per bed: the index of the bed's cluster within
// ProcessedClusters' key order, or -1 for beds left unclustered.
type ClusteringResult struct {
	FinalLabels       []int                `json:"final_labels"`
	ProcessedClusters ClusterMap           `json:"processed_clusters"`
	Statistics        ClusteringStatistics `json:"statistics"`
}

// Validate checks the response shape against the bed count of the owning
// ProcessingResult.
func (r *ClusteringResult) Validate(bedCount int) error {
	if len(r.FinalLabels) != bedCount {
		return fmt.Errorf("final_labels has %d entries, want %d", len(r.FinalLabels), bedCount)
	}
	if r.ProcessedClusters.Len() == 0 {
		return fmt.Errorf("processed_clusters is empty")
	}
	for i, label := range r.FinalLabels {
		if label < -1 || label >= r.ProcessedClusters.Len() {
			return fmt.Errorf("final_labels[%d] = %d references no cluster (have %d)",
				i, label, r.ProcessedClusters.Len())
		}
	}
	return nil
}
