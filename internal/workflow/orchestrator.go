// Package workflow implements the client-side state machine that drives
// the four-stage analysis pipeline: upload, enhancement selection, manual
// clustering, and export. It decides when a transition may call the
// backend, when a cached artifact makes the call unnecessary, and which
// data each stage is allowed to see.
//
// Exactly one workflow instance is active at a time and at most one
// backend call is in flight. Forward entry points reject with ErrBusy
// while a call is pending; Back and Reset are the cancel-equivalent
// actions allowed during loading. A transition that resumes after the
// workflow moved on discards its result (ErrStale) instead of writing
// into a stage it was not issued against.
//
// See DDR-003: Workflow State Machine for the transition diagram.
package workflow

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/AJ662/sketchtocad-cli/internal/backend"
	"github.com/AJ662/sketchtocad-cli/internal/contracts"
	"github.com/AJ662/sketchtocad-cli/internal/imagefile"
)

// Backend is the remote-call surface the orchestrator drives. It is
// satisfied by *backend.Adapter; tests substitute counting mocks.
type Backend interface {
	UploadImage(ctx context.Context, path string) (*contracts.ProcessingResult, *imagefile.CaptureMetadata, error)
	CreateEnhancedColors(ctx context.Context, beds []contracts.BedRecord) (*contracts.EnhancedColorSet, error)
	ProcessClustering(ctx context.Context, beds []contracts.BedRecord, colors map[string][][]float64, assignment contracts.ClusterMap) (*contracts.ClusteringResult, error)
	ValidateExport(ctx context.Context, beds []contracts.BedRecord, clusterDict map[string]string) (*contracts.ExportValidation, error)
	ExportDXF(ctx context.Context, beds []contracts.BedRecord, clusterDict map[string]string, exportType string) (*contracts.ExportArtifact, error)
}

var _ Backend = (*backend.Adapter)(nil)

// Orchestrator is the workflow state machine. All mutation of stage and
// cache happens under mu, strictly after an awaited call has settled and
// strictly before control returns to the caller.
type Orchestrator struct {
	backend Backend

	mu      sync.Mutex
	cache   *Cache
	stage   Stage
	loading bool
	epoch   uint64
	runID   string
	lastErr string
	snap    Snapshot
}

// New creates an Orchestrator in the upload stage.
func New(b Backend) *Orchestrator {
	o := &Orchestrator{
		backend: b,
		cache:   NewCache(),
		stage:   StageUpload,
		runID:   uuid.NewString(),
	}
	o.rebuildSnapshot()
	return o
}

// Snapshot returns the current presentation view.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Stage returns the active stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

// RunID returns the identifier correlating this workflow's log entries.
func (o *Orchestrator) RunID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runID
}

// Selection returns the current enhancement selection, or ErrNotReady
// when no method has been chosen for the active session.
func (o *Orchestrator) Selection() (*EnhancementSelection, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sel, ok := o.cache.Selection()
	if !ok {
		return nil, ErrNotReady
	}
	return sel, nil
}

// Clustering returns the current clustering result, or ErrNotReady.
func (o *Orchestrator) Clustering() (*contracts.ClusteringResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	result, ok := o.cache.Clustering()
	if !ok {
		return nil, ErrNotReady
	}
	return result, nil
}

// SubmitImage uploads the image at path and, on success, moves from
// upload to enhancement. The new processing result displaces the previous
// session's artifacts entirely. On failure the stage and cache are
// untouched and the upload may simply be retried.
func (o *Orchestrator) SubmitImage(ctx context.Context, path string) error {
	epoch, err := o.begin(StageUpload)
	if err != nil {
		return err
	}

	result, capture, err := o.backend.UploadImage(ctx, path)
	if err != nil {
		return o.fail(epoch, StageUpload, err)
	}

	return o.commit(epoch, StageUpload, func() {
		o.cache.SetProcessing(result, capture)
		o.stage = StageEnhancement
		log.Info().
			Str("run_id", o.runID).
			Str("session_id", result.SessionID).
			Int("bed_count", result.BedCount).
			Msg("Image processed, entering enhancement stage")
	})
}

// AvailableMethods returns the enhancement methods offered for the
// current session, fetching the color set on first use. The stage does
// not change; a later SelectMethod reuses the now-cached set.
func (o *Orchestrator) AvailableMethods(ctx context.Context) ([]string, error) {
	epoch, err := o.begin(StageEnhancement)
	if err != nil {
		return nil, err
	}

	_, colors, err := o.ensureColors(ctx, epoch)
	if err != nil {
		return nil, err
	}

	if err := o.commit(epoch, StageEnhancement, func() {}); err != nil {
		return nil, err
	}
	return colors.EnhancementMethods, nil
}

// SelectMethod chooses an enhancement method and, on success, moves from
// enhancement to clustering. The color set is fetched only when none is
// cached for the current session; a fetched set is cached as soon as it
// arrives, so a later attempt after an invalid method name needs no
// network call at all.
func (o *Orchestrator) SelectMethod(ctx context.Context, method string) error {
	epoch, err := o.begin(StageEnhancement)
	if err != nil {
		return err
	}

	proc, colors, err := o.ensureColors(ctx, epoch)
	if err != nil {
		return err
	}

	sel, err := BuildSelection(method, colors, proc.BedData)
	if err != nil {
		return o.fail(epoch, StageEnhancement, err)
	}

	return o.commit(epoch, StageEnhancement, func() {
		o.cache.SetSelection(sel)
		o.stage = StageClustering
		log.Info().
			Str("run_id", o.runID).
			Str("method", method).
			Msg("Enhancement method selected, entering clustering stage")
	})
}

// SubmitAssignment sends the user-drawn cluster assignment and, on
// success, moves from clustering to results. The assignment itself stays
// owned by the caller: on failure it is untouched and can be resubmitted
// without redrawing.
func (o *Orchestrator) SubmitAssignment(ctx context.Context, assignment contracts.ClusterMap) error {
	epoch, err := o.begin(StageClustering)
	if err != nil {
		return err
	}

	o.mu.Lock()
	proc := o.cache.Processing()
	sel, haveSel := o.cache.Selection()
	o.mu.Unlock()

	if proc == nil || proc.BedCount < 1 || !haveSel {
		return o.fail(epoch, StageClustering, ErrNotReady)
	}
	if assignment.Len() == 0 {
		return o.fail(epoch, StageClustering, fmt.Errorf("cluster assignment is empty"))
	}

	result, err := o.backend.ProcessClustering(ctx, proc.BedData, sel.ColorSet.EnhancedColors, assignment)
	if err != nil {
		return o.fail(epoch, StageClustering, err)
	}

	return o.commit(epoch, StageClustering, func() {
		o.cache.SetClustering(result)
		o.stage = StageResults
		log.Info().
			Str("run_id", o.runID).
			Int("cluster_count", result.ProcessedClusters.Len()).
			Float64("coverage_percent", result.Statistics.CoveragePercent).
			Msg("Clustering accepted, entering results stage")
	})
}

// Export validates and generates a DXF export. The stage does not change.
// ValidateExport always runs first; a can_export=false answer surfaces as
// *ExportBlockedError and the export call is never made. The returned
// artifact is handed to the caller for delivery and is never cached.
func (o *Orchestrator) Export(ctx context.Context, exportType string) (*contracts.ExportArtifact, error) {
	if !contracts.ValidExportType(exportType) {
		return nil, fmt.Errorf("invalid export type %q (want %s or %s)",
			exportType, contracts.ExportTypeSummary, contracts.ExportTypeDetailed)
	}

	epoch, err := o.begin(StageResults)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	proc := o.cache.Processing()
	clustering, haveClustering := o.cache.Clustering()
	o.mu.Unlock()

	if proc == nil || !haveClustering {
		return nil, o.fail(epoch, StageResults, ErrNotReady)
	}

	dict := clusterDict(clustering)

	validation, err := o.backend.ValidateExport(ctx, proc.BedData, dict)
	if err != nil {
		return nil, o.fail(epoch, StageResults, err)
	}
	if !validation.CanExport {
		return nil, o.fail(epoch, StageResults, &ExportBlockedError{Messages: validation.Messages})
	}

	// The workflow may have been navigated away from while validation ran.
	if err := o.store(epoch, StageResults, func() {}); err != nil {
		return nil, err
	}

	artifact, err := o.backend.ExportDXF(ctx, proc.BedData, dict, exportType)
	if err != nil {
		return nil, o.fail(epoch, StageResults, err)
	}

	if err := o.commit(epoch, StageResults, func() {
		log.Info().
			Str("run_id", o.runID).
			Str("export_type", exportType).
			Str("filename", artifact.Filename).
			Msg("Export generated")
	}); err != nil {
		return nil, err
	}
	return artifact, nil
}

// Back navigates one stage backward, clearing exactly the artifacts
// strictly downstream of the target. Permitted while a call is in flight:
// the pending call's result will be discarded as stale when it settles.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stage == StageUpload {
		return ErrInvalidStage
	}

	target := o.stage.prev()
	o.epoch++
	o.loading = false
	o.lastErr = ""
	o.cache.ClearDownstream(target)
	o.stage = target
	o.rebuildSnapshot()

	log.Info().
		Str("run_id", o.runID).
		Str("stage", target.String()).
		Msg("Navigated back")
	return nil
}

// Reset returns to the upload stage with every cached artifact cleared
// and a fresh run id. Equivalent to starting a new session; permitted at
// any time, including while a call is in flight.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.epoch++
	o.loading = false
	o.lastErr = ""
	o.cache.Reset()
	o.stage = StageUpload
	o.runID = uuid.NewString()
	o.rebuildSnapshot()

	log.Info().Str("run_id", o.runID).Msg("Workflow reset")
}

// ensureColors returns the processing result and the color set for the
// current session, fetching and caching the set when absent. Runs between
// begin and commit; on error the transition has already been failed.
func (o *Orchestrator) ensureColors(ctx context.Context, epoch uint64) (*contracts.ProcessingResult, *contracts.EnhancedColorSet, error) {
	o.mu.Lock()
	runID := o.runID
	proc := o.cache.Processing()
	var colors *contracts.EnhancedColorSet
	if proc != nil {
		colors, _ = o.cache.Colors(proc.SessionID)
	}
	o.mu.Unlock()

	if proc == nil {
		return nil, nil, o.fail(epoch, StageEnhancement, ErrNotReady)
	}
	if colors != nil {
		log.Debug().
			Str("run_id", runID).
			Str("session_id", proc.SessionID).
			Msg("Reusing cached enhancement colors")
		return proc, colors, nil
	}

	set, err := o.backend.CreateEnhancedColors(ctx, proc.BedData)
	if err != nil {
		return nil, nil, o.fail(epoch, StageEnhancement, err)
	}
	if err := o.store(epoch, StageEnhancement, func() {
		o.cache.SetColors(proc.SessionID, set)
	}); err != nil {
		return nil, nil, err
	}
	return proc, set, nil
}

// begin opens a transition from the given stage: rejects if a call is
// already in flight or the stage does not match, then sets the loading
// flag and returns the epoch the transition must commit against.
func (o *Orchestrator) begin(from Stage) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.loading {
		return 0, ErrBusy
	}
	if o.stage != from {
		return 0, fmt.Errorf("%w: in %s, operation belongs to %s", ErrInvalidStage, o.stage, from)
	}

	o.loading = true
	o.lastErr = ""
	o.rebuildSnapshot()
	return o.epoch, nil
}

// store applies a mid-transition cache write while the call remains in
// flight. Returns ErrStale, leaving the loading flag alone, when the
// workflow has moved on since begin.
func (o *Orchestrator) store(epoch uint64, from Stage, apply func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if epoch != o.epoch || o.stage != from {
		return ErrStale
	}
	apply()
	return nil
}

// commit finishes a successful transition: verifies it is still current,
// clears loading, applies the writes, and rebuilds the snapshot. A stale
// transition is discarded without touching anything.
func (o *Orchestrator) commit(epoch uint64, from Stage, apply func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if epoch != o.epoch || o.stage != from {
		log.Debug().
			Str("stage", from.String()).
			Msg("Discarding stale transition result")
		return ErrStale
	}

	o.loading = false
	o.lastErr = ""
	apply()
	o.rebuildSnapshot()
	return nil
}

// fail finishes a failed transition: the stage and cache stay untouched,
// the error is reduced to a user-facing message on the snapshot, and the
// original error is returned for the caller to inspect.
func (o *Orchestrator) fail(epoch uint64, from Stage, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if epoch != o.epoch || o.stage != from {
		return ErrStale
	}

	o.loading = false
	o.lastErr = userMessage(err)
	o.rebuildSnapshot()

	log.Warn().
		Str("run_id", o.runID).
		Str("stage", from.String()).
		Err(err).
		Msg("Transition failed")
	return err
}

// userMessage reduces a transition error to the single message shown to
// the user. Backend call errors already carry one; everything else prints
// itself.
func userMessage(err error) string {
	if ce, ok := backend.AsCallError(err); ok {
		return ce.Message
	}
	return err.Error()
}

// clusterDict derives the export service's cluster_dict from a clustering
// result: the cluster name at position i of the preserved response order
// gets index "i".
func clusterDict(result *contracts.ClusteringResult) map[string]string {
	dict := make(map[string]string, result.ProcessedClusters.Len())
	for i, name := range result.ProcessedClusters.Names() {
		dict[strconv.Itoa(i)] = name
	}
	return dict
}
