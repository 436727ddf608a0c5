package workflow

// cache.go holds the last successful artifact of each stage so repeated or
// backward navigation never repeats network work that is still valid. The
// enhanced color set is keyed by the session id it was derived from; a
// lookup under any other session misses, which is what invalidates it the
// moment a new image is processed. See DDR-011: Stage Cache Invalidation.

import (
	"github.com/rs/zerolog/log"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
	"github.com/AJ662/sketchtocad-cli/internal/imagefile"
)

// Cache stores per-stage artifacts. It has no locking of its own: the
// orchestrator owns it and serializes every access.
type Cache struct {
	processing    *contracts.ProcessingResult
	capture       *imagefile.CaptureMetadata // EXIF of the processed image, nil when absent
	colorsSession string                     // session id the color set belongs to
	colors        *contracts.EnhancedColorSet
	selection     *EnhancementSelection
	clustering    *contracts.ClusteringResult
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// SetProcessing stores a new processing result together with the capture
// metadata of the image it came from, and clears everything downstream: a
// new image invalidates colors, selection, and clustering.
func (c *Cache) SetProcessing(r *contracts.ProcessingResult, capture *imagefile.CaptureMetadata) {
	c.processing = r
	c.capture = capture
	c.colors = nil
	c.colorsSession = ""
	c.selection = nil
	c.clustering = nil

	log.Debug().
		Str("session_id", r.SessionID).
		Int("bed_count", r.BedCount).
		Msg("Processing result cached, downstream artifacts cleared")
}

// Processing returns the cached processing result, or nil.
func (c *Cache) Processing() *contracts.ProcessingResult {
	return c.processing
}

// Capture returns the EXIF capture metadata of the processed image, or
// nil when the image carried none. It shares the processing result's
// lifecycle: displaced by the next upload, untouched by navigation.
func (c *Cache) Capture() *imagefile.CaptureMetadata {
	return c.capture
}

// SetColors stores the enhanced color set derived from sessionID's beds.
func (c *Cache) SetColors(sessionID string, s *contracts.EnhancedColorSet) {
	c.colors = s
	c.colorsSession = sessionID
}

// Colors returns the cached color set if it was derived from sessionID.
func (c *Cache) Colors(sessionID string) (*contracts.EnhancedColorSet, bool) {
	if c.colors == nil || c.colorsSession != sessionID {
		return nil, false
	}
	return c.colors, true
}

// SetSelection stores the derived enhancement selection.
func (c *Cache) SetSelection(sel *EnhancementSelection) {
	c.selection = sel
}

// Selection returns the cached enhancement selection.
func (c *Cache) Selection() (*EnhancementSelection, bool) {
	if c.selection == nil {
		return nil, false
	}
	return c.selection, true
}

// SetClustering stores the clustering result.
func (c *Cache) SetClustering(r *contracts.ClusteringResult) {
	c.clustering = r
}

// Clustering returns the cached clustering result.
func (c *Cache) Clustering() (*contracts.ClusteringResult, bool) {
	if c.clustering == nil {
		return nil, false
	}
	return c.clustering, true
}

// ClearDownstream removes every artifact strictly downstream of target,
// implementing the backward-navigation cascade:
//
//	-> upload       colors, selection, clustering cleared (processing, capture kept)
//	-> enhancement  selection, clustering cleared (colors reusable)
//	-> clustering   clustering cleared (selection kept)
func (c *Cache) ClearDownstream(target Stage) {
	if target <= StageUpload {
		c.colors = nil
		c.colorsSession = ""
	}
	if target <= StageEnhancement {
		c.selection = nil
	}
	if target <= StageClustering {
		c.clustering = nil
	}

	log.Debug().
		Str("target_stage", target.String()).
		Msg("Downstream artifacts cleared for backward navigation")
}

// Reset clears every cached artifact.
func (c *Cache) Reset() {
	c.processing = nil
	c.capture = nil
	c.colors = nil
	c.colorsSession = ""
	c.selection = nil
	c.clustering = nil

	log.Debug().Msg("Stage cache reset")
}
