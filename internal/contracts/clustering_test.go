package contracts

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestClusterMapPreservesKeyOrder(t *testing.T) {
	// Keys deliberately out of alphabetical order: a plain map would
	// re-sort them on encode and randomize them on iteration.
	body := `{"zebra": [4], "apple": [0, 1], "mango": [2, 3]}`

	var m ClusterMap
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}

	wantNames := []string{"zebra", "apple", "mango"}
	if got := m.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Names() = %v, want %v", got, wantNames)
	}

	beds, ok := m.Get("apple")
	if !ok {
		t.Fatal("Get(apple) reported missing")
	}
	if !reflect.DeepEqual(beds, []int{0, 1}) {
		t.Errorf("Get(apple) = %v, want [0 1]", beds)
	}

	encoded, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"zebra":[4],"apple":[0,1],"mango":[2,3]}`
	if string(encoded) != want {
		t.Errorf("Marshal = %s, want %s", encoded, want)
	}
}

func TestClusterMapSet(t *testing.T) {
	var m ClusterMap
	m.Set("first", []int{1})
	m.Set("second", []int{2})
	m.Set("first", []int{1, 3})

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if got := m.Names(); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Errorf("Names() = %v, want [first second]", got)
	}
	beds, _ := m.Get("first")
	if !reflect.DeepEqual(beds, []int{1, 3}) {
		t.Errorf("Get(first) = %v, want [1 3]", beds)
	}
}

func TestClusterMapRejectsNonObject(t *testing.T) {
	var m ClusterMap
	if err := json.Unmarshal([]byte(`[1,2,3]`), &m); err == nil {
		t.Error("expected error for JSON array, got nil")
	}
}

func TestClusterMapMarshalEmptyBeds(t *testing.T) {
	m := NewClusterMap(ClusterGroup{Name: "empty"})
	encoded, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(encoded) != `{"empty":[]}` {
		t.Errorf("Marshal = %s, want {\"empty\":[]}", encoded)
	}
}

func TestClusteringResultValidate(t *testing.T) {
	valid := func() ClusteringResult {
		return ClusteringResult{
			FinalLabels: []int{0, 0, 1, -1},
			ProcessedClusters: NewClusterMap(
				ClusterGroup{Name: "bedA", Beds: []int{0, 1}},
				ClusterGroup{Name: "bedB", Beds: []int{2}},
			),
			Statistics: ClusteringStatistics{
				ClusterCount:    2,
				ClusteredBeds:   3,
				TotalBeds:       4,
				CoveragePercent: 75,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ClusteringResult)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(r *ClusteringResult) {},
		},
		{
			name:    "label count mismatch",
			mutate:  func(r *ClusteringResult) { r.FinalLabels = []int{0, 1} },
			wantErr: "final_labels",
		},
		{
			name:    "no clusters",
			mutate:  func(r *ClusteringResult) { r.ProcessedClusters = ClusterMap{} },
			wantErr: "processed_clusters",
		},
		{
			name:    "label out of range",
			mutate:  func(r *ClusteringResult) { r.FinalLabels[0] = 7 },
			wantErr: "references no cluster",
		},
		{
			name:    "label below unclustered sentinel",
			mutate:  func(r *ClusteringResult) { r.FinalLabels[0] = -3 },
			wantErr: "references no cluster",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			err := r.Validate(4)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestClusteringRequestEncodesDrawingOrder(t *testing.T) {
	req := ClusteringRequest{
		BedData: []BedRecord{
			{BedID: 0, RGBMedian: []float64{1, 2, 3}, RGBMean: []float64{1, 2, 3}},
		},
		EnhancedColors: map[string][][]float64{"original": {{1, 2, 3}}},
		ClustersData: NewClusterMap(
			ClusterGroup{Name: "second_drawn", Beds: []int{0}},
			ClusterGroup{Name: "first_drawn", Beds: []int{1}},
		),
	}

	encoded, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(encoded)
	if !strings.Contains(s, `"clusters_data":{"second_drawn":[0],"first_drawn":[1]}`) {
		t.Errorf("clusters_data lost drawing order: %s", s)
	}
}
