package contracts

import "fmt"

// Export types accepted by POST /export-dxf.
const (
	ExportTypeSummary  = "summary"
	ExportTypeDetailed = "detailed"
)

// ValidExportType reports whether t is an export type the dxf-export
// service accepts.
func ValidExportType(t string) bool {
	return t == ExportTypeSummary || t == ExportTypeDetailed
}

// ValidateExportRequest is the body of POST /validate-export. ClusterDict
// maps a cluster's stringified numeric index to its name ("0" -> "bedA").
type ValidateExportRequest struct {
	BedData     []BedRecord       `json:"bed_data"`
	ClusterDict map[string]string `json:"cluster_dict"`
}

// ExportRequest is the body of POST /export-dxf.
type ExportRequest struct {
	BedData     []BedRecord       `json:"bed_data"`
	ClusterDict map[string]string `json:"cluster_dict"`
	ExportType  string            `json:"export_type"`
}

// ExportValidation is the read-only precondition check for an export. A
// false CanExport is a normal outcome, not a service failure; Messages
// carries the reasons for the user.
type ExportValidation struct {
	CanExport     bool     `json:"can_export"`
	GDALAvailable bool     `json:"gdal_available"`
	BedDataValid  bool     `json:"bed_data_valid"`
	ClusterCount  int      `json:"cluster_count"`
	Messages      []string `json:"messages"`
}

// ExportArtifact is a generated DXF file. It is transient: the workflow
// layer hands it straight to delivery and never caches it.
type ExportArtifact struct {
	Filename string
	Data     []byte
}

// Validate rejects an empty export stream.
func (a *ExportArtifact) Validate() error {
	if len(a.Data) == 0 {
		return fmt.Errorf("export stream is empty")
	}
	return nil
}

// ExportCapabilities is the dxf-export service's GET /capabilities record.
type ExportCapabilities struct {
	Service       string   `json:"service"`
	Version       string   `json:"version"`
	GDALAvailable bool     `json:"gdal_available"`
	ExportTypes   []string `json:"export_types"`
}
