package backend

import (
	"strings"
	"testing"
)

func TestConfigFromEnvExplicitURLs(t *testing.T) {
	t.Setenv(EnvProcessingURL, "http://proc.internal:9001/")
	t.Setenv(EnvClusteringURL, "http://clus.internal:9002")
	t.Setenv(EnvExportURL, "http://dxf.internal:9003")
	t.Setenv(EnvGatewayURL, "http://gateway.internal")

	cfg := ConfigFromEnv()
	if cfg.ProcessingURL != "http://proc.internal:9001" {
		t.Errorf("ProcessingURL = %q (trailing slash must be stripped)", cfg.ProcessingURL)
	}
	if cfg.ClusteringURL != "http://clus.internal:9002" {
		t.Errorf("ClusteringURL = %q", cfg.ClusteringURL)
	}
	if cfg.ExportURL != "http://dxf.internal:9003" {
		t.Errorf("ExportURL = %q", cfg.ExportURL)
	}
}

func TestConfigFromEnvGatewayTopology(t *testing.T) {
	t.Setenv(EnvProcessingURL, "")
	t.Setenv(EnvClusteringURL, "")
	t.Setenv(EnvExportURL, "")
	t.Setenv(EnvGatewayURL, "https://api.example.com/")

	cfg := ConfigFromEnv()
	if cfg.ProcessingURL != "https://api.example.com/api/v1/image-processing" {
		t.Errorf("ProcessingURL = %q", cfg.ProcessingURL)
	}
	if cfg.ClusteringURL != "https://api.example.com/api/v1/clustering" {
		t.Errorf("ClusteringURL = %q", cfg.ClusteringURL)
	}
	if cfg.ExportURL != "https://api.example.com/api/v1/dxf-export" {
		t.Errorf("ExportURL = %q", cfg.ExportURL)
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvProcessingURL, "")
	t.Setenv(EnvClusteringURL, "")
	t.Setenv(EnvExportURL, "")
	t.Setenv(EnvGatewayURL, "")

	cfg := ConfigFromEnv()
	if cfg.ProcessingURL != DefaultProcessingURL {
		t.Errorf("ProcessingURL = %q, want default", cfg.ProcessingURL)
	}
	if cfg.ClusteringURL != DefaultClusteringURL {
		t.Errorf("ClusteringURL = %q, want default", cfg.ClusteringURL)
	}
	if cfg.ExportURL != DefaultExportURL {
		t.Errorf("ExportURL = %q, want default", cfg.ExportURL)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg: Config{
				ProcessingURL: "http://localhost:8001",
				ClusteringURL: "http://localhost:8002",
				ExportURL:     "https://dxf.example.com",
			},
		},
		{
			name: "empty url",
			cfg: Config{
				ProcessingURL: "http://localhost:8001",
				ClusteringURL: "",
				ExportURL:     "http://localhost:8003",
			},
			wantErr: "clustering",
		},
		{
			name: "bad scheme",
			cfg: Config{
				ProcessingURL: "ftp://files.example.com",
				ClusteringURL: "http://localhost:8002",
				ExportURL:     "http://localhost:8003",
			},
			wantErr: "scheme",
		},
		{
			name: "no host",
			cfg: Config{
				ProcessingURL: "http://localhost:8001",
				ClusteringURL: "http://localhost:8002",
				ExportURL:     "http://",
			},
			wantErr: "host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
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
