// Package contracts defines the wire-level request and response shapes for
// the three SketchToCAD backend services (image-processing, clustering, and
// dxf-export), together with the structural validation applied to every
// response before the workflow layer accepts it into its stage cache.
//
// The types here are pure data. Validation is shape checking only (required
// fields, row counts, label ranges) — image content and geometry are owned
// by the backend services and never interpreted client-side.
package contracts

import "fmt"

// Position is a bed's optional centroid in image pixel coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BedRecord is one detected region of interest in the uploaded image.
// Records are immutable after decode; later stages reference them by
// position in the owning ProcessingResult's bed list.
type BedRecord struct {
	BedID           int       `json:"bed_id"`
	Area            float64   `json:"area"`
	RGBMedian       []float64 `json:"rgb_median"`
	RGBMean         []float64 `json:"rgb_mean"`
	CleanPixelCount int       `json:"clean_pixel_count"`
	Position        *Position `json:"position,omitempty"`
}

// Validate checks the structural invariants of a single bed record.
func (b *BedRecord) Validate() error {
	if b.BedID < 0 {
		return fmt.Errorf("bed_id %d is negative", b.BedID)
	}
	if err := validateColorTriple("rgb_median", b.RGBMedian); err != nil {
		return fmt.Errorf("bed %d: %w", b.BedID, err)
	}
	if err := validateColorTriple("rgb_mean", b.RGBMean); err != nil {
		return fmt.Errorf("bed %d: %w", b.BedID, err)
	}
	return nil
}

// validateColorTriple checks that a color value is a 3-component vector.
func validateColorTriple(field string, c []float64) error {
	if len(c) != 3 {
		return fmt.Errorf("%s has %d components, want 3", field, len(c))
	}
	return nil
}
