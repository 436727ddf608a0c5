package workflow

import (
	"strings"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
)

// EnhancementSelection is the derived record produced when the user picks
// an enhancement method: the chosen method's rows as 2-D plot coordinates,
// axis labels, the beds' original RGB colors for rendering, and the full
// color set so clustering can be recomputed against a different projection
// without another network round trip.
type EnhancementSelection struct {
	Method         string
	PlotData       [][]float64
	XLabel         string
	YLabel         string
	OriginalColors [][]float64
	ColorSet       contracts.EnhancedColorSet
}

// BuildSelection validates method against set and derives the selection.
// An unknown method returns a *SelectionError.
//
// OriginalColors prefers the set's "original" rows; when the service omits
// that method, each bed's raw rgb_median stands in. The fallback mirrors
// the shipped product behavior and keeps point coloring working even if
// the clustering service drops the passthrough method.
func BuildSelection(method string, set *contracts.EnhancedColorSet, beds []contracts.BedRecord) (*EnhancementSelection, error) {
	rows, ok := set.EnhancedColors[method]
	if !ok {
		return nil, &SelectionError{Method: method, Available: set.EnhancementMethods}
	}

	original, ok := set.EnhancedColors[contracts.MethodOriginal]
	if !ok {
		original = make([][]float64, len(beds))
		for i := range beds {
			original[i] = beds[i].RGBMedian
		}
	}

	xLabel, yLabel := axisLabels(method)

	return &EnhancementSelection{
		Method:         method,
		PlotData:       rows,
		XLabel:         xLabel,
		YLabel:         yLabel,
		OriginalColors: original,
		ColorSet:       *set,
	}, nil
}

// axisAcronyms are method-name words rendered uppercase in axis labels.
var axisAcronyms = map[string]string{
	"pca": "PCA",
	"rgb": "RGB",
	"hsv": "HSV",
	"lab": "LAB",
}

// axisLabels derives human-readable plot axis labels from a method name:
// "pca_features" becomes "PCA Features 1" / "PCA Features 2".
func axisLabels(method string) (x, y string) {
	words := strings.Split(method, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		if acronym, ok := axisAcronyms[strings.ToLower(w)]; ok {
			words[i] = acronym
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	base := strings.Join(words, " ")
	return base + " 1", base + " 2"
}
