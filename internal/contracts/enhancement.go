package contracts

import "fmt"

// MethodOriginal is the enhancement method that carries the beds' raw RGB
// colors through unchanged. The clustering service is expected to include
// it, but the workflow layer tolerates its absence by falling back to each
// bed's raw median color.
const MethodOriginal = "original"

// EnhancementRequest is the body of POST /create-enhanced-colors.
type EnhancementRequest struct {
	BedData []BedRecord `json:"bed_data"`
}

// EnhancedColorSet maps each enhancement method name to a rectangular array
// of derived color coordinates, one row per bed, order-aligned with the
// owning ProcessingResult's bed list.
type EnhancedColorSet struct {
	EnhancedColors     map[string][][]float64 `json:"enhanced_colors"`
	EnhancementMethods []string               `json:"enhancement_methods"`
}

// Validate checks the response shape against the bed count of the
// ProcessingResult the colors were derived from. A row-count mismatch means
// the coordinates can no longer be aligned with beds and is fatal.
func (s *EnhancedColorSet) Validate(bedCount int) error {
	if len(s.EnhancementMethods) == 0 {
		return fmt.Errorf("enhancement_methods is empty")
	}
	if len(s.EnhancedColors) == 0 {
		return fmt.Errorf("enhanced_colors is empty")
	}
	for _, method := range s.EnhancementMethods {
		rows, ok := s.EnhancedColors[method]
		if !ok {
			return fmt.Errorf("method %q listed but absent from enhanced_colors", method)
		}
		if len(rows) != bedCount {
			return fmt.Errorf("method %q has %d rows, want %d", method, len(rows), bedCount)
		}
		for i, row := range rows {
			if len(row) == 0 {
				return fmt.Errorf("method %q row %d is empty", method, i)
			}
			if len(row) != len(rows[0]) {
				return fmt.Errorf("method %q is ragged: row %d has %d components, row 0 has %d",
					method, i, len(row), len(rows[0]))
			}
		}
	}
	return nil
}

// Has reports whether method is available in the set.
func (s *EnhancedColorSet) Has(method string) bool {
	_, ok := s.EnhancedColors[method]
	return ok
}
