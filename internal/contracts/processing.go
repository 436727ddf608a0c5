package contracts

import "fmt"

// ProcessingResult is the image-processing service's response to an upload.
// The session_id scopes every later call made for this image; a new upload
// always produces a new session.
type ProcessingResult struct {
	SessionID        string               `json:"session_id"`
	BedCount         int                  `json:"bed_count"`
	BedData          []BedRecord          `json:"bed_data"`
	Statistics       ProcessingStatistics `json:"statistics"`
	ImageShape       []int                `json:"image_shape"`
	ProcessingTimeMS float64              `json:"processing_time_ms"`
}

// ProcessingStatistics aggregates bed areas for display. The service may
// omit fields; they are informational and never gate a stage transition.
type ProcessingStatistics struct {
	TotalArea   float64 `json:"total_area"`
	AverageArea float64 `json:"average_area"`
	MinArea     float64 `json:"min_area"`
	MaxArea     float64 `json:"max_area"`
}

// Validate checks the response shape before it is cached.
func (r *ProcessingResult) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("missing session_id")
	}
	if r.BedCount != len(r.BedData) {
		return fmt.Errorf("bed_count %d does not match %d bed_data entries", r.BedCount, len(r.BedData))
	}
	if n := len(r.ImageShape); n != 2 && n != 3 {
		return fmt.Errorf("image_shape has %d dimensions, want 2 or 3", n)
	}
	for i := range r.BedData {
		if err := r.BedData[i].Validate(); err != nil {
			return fmt.Errorf("bed_data[%d]: %w", i, err)
		}
	}
	return nil
}

// SessionInfo is the metadata record returned by GET /session/{id}.
type SessionInfo struct {
	SessionID  string `json:"session_id"`
	CreatedAt  string `json:"created_at"`
	BedCount   int    `json:"bed_count"`
	ImageShape []int  `json:"image_shape"`
}
