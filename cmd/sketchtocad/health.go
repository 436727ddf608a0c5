package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AJ662/sketchtocad-cli/internal/logging"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend services are reachable",
		Long: `Health probes the image-processing, clustering, and dxf-export services
concurrently and reports status, version, and export capabilities.

Exits non-zero when any service is unreachable or unhealthy.`,
		RunE: runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	adapter, cfg, err := newAdapter()
	if err != nil {
		return err
	}

	logging.NewStartupLogger("health").
		Version(version).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Service("imageProcessing", cfg.ProcessingURL).
		Service("clustering", cfg.ClusteringURL).
		Service("dxfExport", cfg.ExportURL).
		Config("logLevel", logging.EnvOrDefault(logging.EnvLogLevel, "info")).
		Log()

	ctx := cmd.Context()
	reports := adapter.CheckAll(ctx)

	fmt.Println("============================================")
	fmt.Println("🩺 Service Health")
	fmt.Println("============================================")

	unhealthy := 0
	for _, report := range reports {
		if report.OK() {
			serviceVersion := report.Health.Version
			if serviceVersion == "" {
				serviceVersion = "unknown"
			}
			fmt.Printf("✅ %-16s %s (version %s)\n", report.Service, report.URL, serviceVersion)
			continue
		}

		unhealthy++
		reason := "unhealthy"
		if report.Err != nil {
			reason = failureMessage(report.Err)
		} else if report.Health.Status != "" {
			reason = fmt.Sprintf("status %q", report.Health.Status)
		}
		fmt.Printf("❌ %-16s %s (%s)\n", report.Service, report.URL, reason)
	}

	// Export capabilities ride along when the export service is up.
	if caps, err := adapter.Capabilities(ctx); err == nil {
		fmt.Println("--------------------------------------------")
		gdal := "missing"
		if caps.GDALAvailable {
			gdal = "available"
		}
		fmt.Printf("GDAL: %s\n", gdal)
		if len(caps.ExportTypes) > 0 {
			fmt.Printf("Export types: %s\n", strings.Join(caps.ExportTypes, ", "))
		}
	}

	fmt.Println("--------------------------------------------")
	if unhealthy > 0 {
		return fmt.Errorf("%d of %d services unhealthy", unhealthy, len(reports))
	}
	fmt.Println("All services healthy")
	return nil
}
