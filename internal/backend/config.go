package backend

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Environment variables for service addressing. Each service URL can be set
// directly; when one is unset and a gateway URL is configured, the service
// is reached through the gateway under /api/v1/{service}.
const (
	EnvProcessingURL = "SKETCHTOCAD_PROCESSING_URL"
	EnvClusteringURL = "SKETCHTOCAD_CLUSTERING_URL"
	EnvExportURL     = "SKETCHTOCAD_EXPORT_URL"
	EnvGatewayURL    = "SKETCHTOCAD_GATEWAY_URL"
)

// Default direct-deployment addresses.
const (
	DefaultProcessingURL = "http://localhost:8001"
	DefaultClusteringURL = "http://localhost:8002"
	DefaultExportURL     = "http://localhost:8003"
)

// Gateway path prefixes, one per service.
const (
	gatewayProcessingPath = "/api/v1/image-processing"
	gatewayClusteringPath = "/api/v1/clustering"
	gatewayExportPath     = "/api/v1/dxf-export"
)

// Config holds the three logical base URLs. The adapter is agnostic to
// whether they point at directly deployed services or at one gateway; the
// topology is resolved here and nowhere else.
type Config struct {
	ProcessingURL string
	ClusteringURL string
	ExportURL     string
}

// ConfigFromEnv builds a Config from the environment. Explicit service URLs
// win over the gateway; the gateway wins over the direct-deployment
// defaults.
func ConfigFromEnv() Config {
	gateway := strings.TrimRight(os.Getenv(EnvGatewayURL), "/")

	resolve := func(envVar, gatewayPath, fallback string) string {
		if v := os.Getenv(envVar); v != "" {
			return strings.TrimRight(v, "/")
		}
		if gateway != "" {
			return gateway + gatewayPath
		}
		return fallback
	}

	return Config{
		ProcessingURL: resolve(EnvProcessingURL, gatewayProcessingPath, DefaultProcessingURL),
		ClusteringURL: resolve(EnvClusteringURL, gatewayClusteringPath, DefaultClusteringURL),
		ExportURL:     resolve(EnvExportURL, gatewayExportPath, DefaultExportURL),
	}
}

// Validate checks that all three base URLs are absolute http(s) URLs.
func (c Config) Validate() error {
	for _, entry := range []struct {
		name string
		url  string
	}{
		{ServiceProcessing, c.ProcessingURL},
		{ServiceClustering, c.ClusteringURL},
		{ServiceExport, c.ExportURL},
	} {
		if entry.url == "" {
			return fmt.Errorf("%s service URL is empty", entry.name)
		}
		u, err := url.Parse(entry.url)
		if err != nil {
			return fmt.Errorf("%s service URL %q: %w", entry.name, entry.url, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s service URL %q: scheme must be http or https", entry.name, entry.url)
		}
		if u.Host == "" {
			return fmt.Errorf("%s service URL %q has no host", entry.name, entry.url)
		}
	}
	return nil
}
