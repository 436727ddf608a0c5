package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
)

func TestValidateExport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/validate-export" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req contracts.ValidateExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ClusterDict["0"] != "veggies" {
			t.Errorf("cluster_dict[0] = %q, want veggies", req.ClusterDict["0"])
		}

		json.NewEncoder(w).Encode(contracts.ExportValidation{
			CanExport:     false,
			GDALAvailable: true,
			BedDataValid:  true,
			ClusterCount:  0,
			Messages:      []string{"no clusters"},
		})
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	v, err := adapter.ValidateExport(context.Background(), testBeds(), map[string]string{"0": "veggies"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.CanExport {
		t.Error("CanExport = true, want false")
	}
	if !reflect.DeepEqual(v.Messages, []string{"no clusters"}) {
		t.Errorf("Messages = %v, want [no clusters]", v.Messages)
	}
}

func TestExportDXF(t *testing.T) {
	dxf := []byte("0\nSECTION\n2\nENTITIES\n0\nENDSEC\n0\nEOF\n")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export-dxf" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req contracts.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ExportType != "detailed" {
			t.Errorf("export_type = %q, want detailed", req.ExportType)
		}

		w.Header().Set("Content-Disposition", `attachment; filename="garden_beds.dxf"`)
		w.Header().Set("Content-Type", "application/dxf")
		w.Write(dxf)
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	artifact, err := adapter.ExportDXF(context.Background(), testBeds(),
		map[string]string{"0": "veggies"}, contracts.ExportTypeDetailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Filename != "garden_beds.dxf" {
		t.Errorf("Filename = %q, want garden_beds.dxf", artifact.Filename)
	}
	if !reflect.DeepEqual(artifact.Data, dxf) {
		t.Errorf("artifact bytes differ from served stream")
	}
}

func TestExportDXFFallbackFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "0\nEOF\n")
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	artifact, err := adapter.ExportDXF(context.Background(), testBeds(), nil, contracts.ExportTypeSummary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Filename != "sketchtocad_summary.dxf" {
		t.Errorf("Filename = %q, want sketchtocad_summary.dxf", artifact.Filename)
	}
}

func TestExportDXFInvalidType(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	_, err := adapter.ExportDXF(context.Background(), testBeds(), nil, "full")
	if err == nil || !strings.Contains(err.Error(), "invalid export type") {
		t.Errorf("want invalid-export-type error, got %v", err)
	}
	if callCount != 0 {
		t.Errorf("invalid export type still hit the network %d times", callCount)
	}
}

func TestExportDXFEmptyStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	_, err := adapter.ExportDXF(context.Background(), testBeds(), nil, contracts.ExportTypeSummary)
	if !IsMalformedResponse(err) {
		t.Fatalf("want malformed-response error for empty stream, got %v", err)
	}
}

func TestCapabilities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/capabilities" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(contracts.ExportCapabilities{
			Service:       "dxf-export",
			Version:       "2.1.0",
			GDALAvailable: true,
			ExportTypes:   []string{"summary", "detailed"},
		})
	}))
	defer server.Close()

	adapter := newTestAdapter(server)
	caps, err := adapter.Capabilities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !caps.GDALAvailable {
		t.Error("GDALAvailable = false, want true")
	}
	if len(caps.ExportTypes) != 2 {
		t.Errorf("ExportTypes = %v, want two entries", caps.ExportTypes)
	}
}
