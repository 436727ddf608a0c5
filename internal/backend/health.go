package backend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
)

// ServiceReport is the outcome of one service's health probe.
type ServiceReport struct {
	Service string
	URL     string
	Health  contracts.HealthStatus
	Err     error
}

// OK reports whether the probe succeeded and the service declared itself
// healthy.
func (r ServiceReport) OK() bool {
	return r.Err == nil && r.Health.OK()
}

// CheckAll probes all three services concurrently and returns one report
// per service, in processing/clustering/export order.
//
// This is the only place the adapter issues concurrent calls: the probes
// are read-only and share no workflow state.
func (a *Adapter) CheckAll(ctx context.Context) []ServiceReport {
	reports := make([]ServiceReport, 3)
	reports[0] = ServiceReport{Service: ServiceProcessing, URL: a.processingURL}
	reports[1] = ServiceReport{Service: ServiceClustering, URL: a.clusteringURL}
	reports[2] = ServiceReport{Service: ServiceExport, URL: a.exportURL}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reports[0].Health, reports[0].Err = a.ProcessingHealth(ctx)
		return nil
	})
	g.Go(func() error {
		reports[1].Health, reports[1].Err = a.ClusteringHealth(ctx)
		return nil
	})
	g.Go(func() error {
		reports[2].Health, reports[2].Err = a.ExportHealth(ctx)
		return nil
	})
	// Probe errors are carried in the reports, never returned.
	_ = g.Wait()

	return reports
}
