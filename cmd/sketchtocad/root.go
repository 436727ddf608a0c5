package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AJ662/sketchtocad-cli/internal/backend"
	"github.com/AJ662/sketchtocad-cli/internal/logging"
)

// Persistent flags shared by every subcommand.
var (
	gatewayFlag    string
	processingFlag string
	clusteringFlag string
	exportURLFlag  string
	logLevelFlag   string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sketchtocad",
		Short: "Turn a garden sketch photo into CAD-ready DXF files",
		Long: `SketchToCAD drives the garden bed analysis pipeline from the terminal:
upload a sketch photo to the image-processing service, pick a color
enhancement method, group the detected beds into named clusters, and
export the result as DXF.

Service addresses come from flags, SKETCHTOCAD_* environment variables,
or a .env file, in that order. With none set, the tool expects the
services on localhost:8001-8003.

Examples:
  sketchtocad run
  sketchtocad run --image garden.jpg --method pca_features
  sketchtocad health --gateway-url https://api.example.com
  sketchtocad session delete 4f7c2a`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			applyFlagOverrides()
			logging.Init()
		},
	}

	cmd.PersistentFlags().StringVar(&gatewayFlag, "gateway-url", "", "API gateway base URL (overrides "+backend.EnvGatewayURL+")")
	cmd.PersistentFlags().StringVar(&processingFlag, "processing-url", "", "Image-processing service URL (overrides "+backend.EnvProcessingURL+")")
	cmd.PersistentFlags().StringVar(&clusteringFlag, "clustering-url", "", "Clustering service URL (overrides "+backend.EnvClusteringURL+")")
	cmd.PersistentFlags().StringVar(&exportURLFlag, "export-url", "", "DXF-export service URL (overrides "+backend.EnvExportURL+")")
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (overrides "+logging.EnvLogLevel+")")

	cmd.AddCommand(newRunCmd(), newHealthCmd(), newSessionCmd())
	return cmd
}

// applyFlagOverrides pushes flag values into the environment so the
// env readers (backend.ConfigFromEnv, logging.Init) stay the single
// source of truth for configuration.
func applyFlagOverrides() {
	for _, override := range []struct {
		value  string
		envVar string
	}{
		{gatewayFlag, backend.EnvGatewayURL},
		{processingFlag, backend.EnvProcessingURL},
		{clusteringFlag, backend.EnvClusteringURL},
		{exportURLFlag, backend.EnvExportURL},
		{logLevelFlag, logging.EnvLogLevel},
	} {
		if override.value != "" {
			_ = os.Setenv(override.envVar, override.value)
		}
	}
}

// newAdapter resolves the service topology and builds the backend adapter.
func newAdapter() (*backend.Adapter, backend.Config, error) {
	cfg := backend.ConfigFromEnv()
	adapter, err := backend.NewAdapter(cfg)
	if err != nil {
		return nil, cfg, err
	}
	return adapter, cfg, nil
}
