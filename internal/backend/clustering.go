package backend

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
)

// CreateEnhancedColors asks the clustering service to derive enhancement
// color sets for the given beds. The call is idempotent: the same bed list
// yields equivalent output, which is what lets the workflow layer skip it
// when a cached set already exists.
func (a *Adapter) CreateEnhancedColors(ctx context.Context, beds []contracts.BedRecord) (*contracts.EnhancedColorSet, error) {
	const operation = "create-enhanced-colors"

	req := contracts.EnhancementRequest{BedData: beds}
	var set contracts.EnhancedColorSet
	err := a.postJSON(ctx, ServiceClustering, operation,
		a.clusteringURL+"/create-enhanced-colors", callTimeout, req, &set)
	if err != nil {
		return nil, err
	}
	if err := set.Validate(len(beds)); err != nil {
		return nil, malformedResponse(ServiceClustering, operation, err)
	}

	log.Info().
		Strs("methods", set.EnhancementMethods).
		Int("bedCount", len(beds)).
		Msg("Enhanced color sets created")

	return &set, nil
}

// ProcessClustering submits the user-drawn cluster assignment together with
// the bed list and enhanced colors. Not idempotent on the server (it may
// persist), but safe to repeat when the user edits and resubmits.
func (a *Adapter) ProcessClustering(ctx context.Context, beds []contracts.BedRecord, colors map[string][][]float64, assignment contracts.ClusterMap) (*contracts.ClusteringResult, error) {
	const operation = "process-clustering"

	req := contracts.ClusteringRequest{
		BedData:        beds,
		EnhancedColors: colors,
		ClustersData:   assignment,
	}
	var result contracts.ClusteringResult
	err := a.postJSON(ctx, ServiceClustering, operation,
		a.clusteringURL+"/process-clustering", callTimeout, req, &result)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(len(beds)); err != nil {
		return nil, malformedResponse(ServiceClustering, operation, err)
	}

	log.Info().
		Int("clusterCount", result.ProcessedClusters.Len()).
		Float64("coveragePercent", result.Statistics.CoveragePercent).
		Msg("Clustering processed")

	return &result, nil
}

// ClusteringHealth probes the clustering service.
func (a *Adapter) ClusteringHealth(ctx context.Context) (contracts.HealthStatus, error) {
	var h contracts.HealthStatus
	err := a.getJSON(ctx, ServiceClustering, "health",
		a.clusteringURL+"/health", healthTimeout, &h)
	return h, err
}
