package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisLabels(t *testing.T) {
	tests := []struct {
		method string
		x      string
		y      string
	}{
		{"pca_features", "PCA Features 1", "PCA Features 2"},
		{"original", "Original 1", "Original 2"},
		{"lab_space", "LAB Space 1", "LAB Space 2"},
		{"hsv", "HSV 1", "HSV 2"},
		{"enhanced_rgb", "Enhanced RGB 1", "Enhanced RGB 2"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			x, y := axisLabels(tt.method)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestBuildSelectionPrefersServiceOriginal(t *testing.T) {
	set := colorSetFixture(3)
	sel, err := BuildSelection("original", set, bedFixture(3))
	require.NoError(t, err)
	assert.Equal(t, set.EnhancedColors["original"], sel.PlotData)
	assert.Equal(t, set.EnhancedColors["original"], sel.OriginalColors,
		"the service's original rows win over the raw medians")
}

func TestBuildSelectionUnknownMethod(t *testing.T) {
	set := colorSetFixture(2)
	_, err := BuildSelection("thermal", set, bedFixture(2))
	var selErr *SelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Equal(t, "thermal", selErr.Method)
	assert.Contains(t, selErr.Error(), "original, pca_features")
}

func TestBuildSelectionKeepsFullColorSet(t *testing.T) {
	set := colorSetFixture(2)
	sel, err := BuildSelection("pca_features", set, bedFixture(2))
	require.NoError(t, err)
	assert.Equal(t, *set, sel.ColorSet,
		"clustering needs every method's rows, not just the chosen one")
}
