package exportfile

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"service filename kept", "garden_beds_summary.dxf", "garden_beds_summary.dxf"},
		{"directory prefix dropped", "../../etc/passwd", "passwd"},
		{"unsafe characters replaced", "plan:v2*final?.dxf", "plan-v2-final-.dxf"},
		{"empty name falls back", "", "export.dxf"},
		{"dot dot falls back", "..", "export.dxf"},
		{"spaces kept", "garden plan.dxf", "garden plan.dxf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	artifact := &contracts.ExportArtifact{
		Filename: "garden_beds_summary.dxf",
		Data:     []byte("0\nSECTION\n2\nENTITIES\n0\nENDSEC\n0\nEOF\n"),
	}

	path, err := Save(dir, artifact)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "garden_beds_summary.dxf" {
		t.Errorf("saved as %q, want service filename", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(data, artifact.Data) {
		t.Errorf("written bytes differ from artifact data")
	}
}

func TestSaveRejectsEmptyArtifact(t *testing.T) {
	_, err := Save(t.TempDir(), &contracts.ExportArtifact{Filename: "x.dxf"})
	if err == nil {
		t.Fatal("expected error for artifact with no data")
	}
}

func TestWriteBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "garden.zip")
	artifacts := []*contracts.ExportArtifact{
		{Filename: "garden_beds_summary.dxf", Data: []byte("summary dxf")},
		{Filename: "garden_beds_detailed.dxf", Data: []byte("detailed dxf")},
	}

	if err := WriteBundle(path, artifacts); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	defer r.Close()

	if len(r.File) != 2 {
		t.Fatalf("bundle entries = %d, want 2", len(r.File))
	}

	got := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		got[f.Name] = string(data)
	}

	if got["garden_beds_summary.dxf"] != "summary dxf" {
		t.Errorf("summary entry = %q", got["garden_beds_summary.dxf"])
	}
	if got["garden_beds_detailed.dxf"] != "detailed dxf" {
		t.Errorf("detailed entry = %q", got["garden_beds_detailed.dxf"])
	}
}

func TestWriteBundleEmpty(t *testing.T) {
	if err := WriteBundle(filepath.Join(t.TempDir(), "x.zip"), nil); err == nil {
		t.Fatal("expected error for empty bundle")
	}
}
