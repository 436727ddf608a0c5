package contracts

import "testing"

func TestValidExportType(t *testing.T) {
	tests := []struct {
		exportType string
		expected   bool
	}{
		{"summary", true},
		{"detailed", true},
		{"Summary", false},
		{"full", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.exportType, func(t *testing.T) {
			if got := ValidExportType(tt.exportType); got != tt.expected {
				t.Errorf("ValidExportType(%q) = %v, want %v", tt.exportType, got, tt.expected)
			}
		})
	}
}

func TestExportArtifactValidate(t *testing.T) {
	empty := ExportArtifact{Filename: "beds.dxf"}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty stream, got nil")
	}

	ok := ExportArtifact{Filename: "beds.dxf", Data: []byte("0\nSECTION\n")}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
