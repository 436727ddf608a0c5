package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
)

// ValidateExport runs the dxf-export service's read-only precondition
// check. A can_export=false answer is returned as data, not as an error;
// the workflow layer decides what to do with it.
func (a *Adapter) ValidateExport(ctx context.Context, beds []contracts.BedRecord, clusterDict map[string]string) (*contracts.ExportValidation, error) {
	req := contracts.ValidateExportRequest{BedData: beds, ClusterDict: clusterDict}
	var v contracts.ExportValidation
	err := a.postJSON(ctx, ServiceExport, "validate-export",
		a.exportURL+"/validate-export", callTimeout, req, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ExportDXF generates a DXF file for the clustered beds. The response is a
// binary stream; the suggested filename comes from Content-Disposition when
// the service provides one. Runs under the longer export deadline.
func (a *Adapter) ExportDXF(ctx context.Context, beds []contracts.BedRecord, clusterDict map[string]string, exportType string) (*contracts.ExportArtifact, error) {
	const operation = "export-dxf"

	if !contracts.ValidExportType(exportType) {
		return nil, fmt.Errorf("invalid export type %q (want %s or %s)",
			exportType, contracts.ExportTypeSummary, contracts.ExportTypeDetailed)
	}

	payload, err := json.Marshal(contracts.ExportRequest{
		BedData:     beds,
		ClusterDict: clusterDict,
		ExportType:  exportType,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", operation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.exportURL+"/export-dxf",
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, header, err := a.send(req, ServiceExport, operation, exportTimeout)
	if err != nil {
		return nil, err
	}

	artifact := &contracts.ExportArtifact{
		Filename: filenameFromHeader(header.Get("Content-Disposition"),
			fmt.Sprintf("sketchtocad_%s.dxf", exportType)),
		Data: body,
	}
	if err := artifact.Validate(); err != nil {
		return nil, malformedResponse(ServiceExport, operation, err)
	}

	log.Info().
		Str("exportType", exportType).
		Str("filename", artifact.Filename).
		Int("sizeBytes", len(artifact.Data)).
		Msg("DXF export generated")

	return artifact, nil
}

// Capabilities fetches the dxf-export service's capability record.
func (a *Adapter) Capabilities(ctx context.Context) (*contracts.ExportCapabilities, error) {
	var caps contracts.ExportCapabilities
	err := a.getJSON(ctx, ServiceExport, "capabilities",
		a.exportURL+"/capabilities", healthTimeout, &caps)
	if err != nil {
		return nil, err
	}
	return &caps, nil
}

// ExportHealth probes the dxf-export service.
func (a *Adapter) ExportHealth(ctx context.Context) (contracts.HealthStatus, error) {
	var h contracts.HealthStatus
	err := a.getJSON(ctx, ServiceExport, "health",
		a.exportURL+"/health", healthTimeout, &h)
	return h, err
}

// filenameFromHeader parses a Content-Disposition header for the filename
// parameter, returning fallback when absent or unparseable.
func filenameFromHeader(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	if name := params["filename"]; name != "" {
		return name
	}
	return fallback
}
