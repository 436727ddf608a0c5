package workflow

import (
	"github.com/AJ662/sketchtocad-cli/internal/contracts"
	"github.com/AJ662/sketchtocad-cli/internal/imagefile"
)

// Snapshot is the stage-keyed view the presentation layer renders from.
// It is rebuilt wholesale on every transition and never mutated in place,
// so two snapshots can be compared field by field in tests. Fields carry
// data only when the current stage is allowed to see it: an artifact
// invalidated by backward navigation is absent, not stale.
//
// The pointers reference results that are immutable once received, so
// holding an old snapshot is always safe.
type Snapshot struct {
	RunID   string
	Stage   Stage
	Loading bool

	// Err is the user-facing message of the last failed transition,
	// empty after a success.
	Err string

	SessionID string
	BedCount  int

	// Methods lists the available enhancement methods once the color set
	// has been fetched; only populated in the enhancement stage.
	Methods []string

	Processing *contracts.ProcessingResult
	Selection  *EnhancementSelection
	Clustering *contracts.ClusteringResult

	// Capture is the EXIF metadata of the uploaded image, shown next to
	// the session it produced; nil when the image carried none.
	Capture *imagefile.CaptureMetadata
}

// rebuildSnapshot recomputes the presentation view from current state.
// Callers must hold o.mu.
func (o *Orchestrator) rebuildSnapshot() {
	snap := Snapshot{
		RunID:   o.runID,
		Stage:   o.stage,
		Loading: o.loading,
		Err:     o.lastErr,
	}

	if o.stage >= StageEnhancement {
		if proc := o.cache.Processing(); proc != nil {
			snap.Processing = proc
			snap.SessionID = proc.SessionID
			snap.BedCount = proc.BedCount
			snap.Capture = o.cache.Capture()

			if o.stage == StageEnhancement {
				if colors, ok := o.cache.Colors(proc.SessionID); ok {
					snap.Methods = colors.EnhancementMethods
				}
			}
		}
	}
	if o.stage >= StageClustering {
		if sel, ok := o.cache.Selection(); ok {
			snap.Selection = sel
		}
	}
	if o.stage >= StageResults {
		if result, ok := o.cache.Clustering(); ok {
			snap.Clustering = result
		}
	}

	o.snap = snap
}
