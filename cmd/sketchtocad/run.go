package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AJ662/sketchtocad-cli/internal/backend"
	"github.com/AJ662/sketchtocad-cli/internal/contracts"
	"github.com/AJ662/sketchtocad-cli/internal/exportfile"
	"github.com/AJ662/sketchtocad-cli/internal/logging"
	"github.com/AJ662/sketchtocad-cli/internal/workflow"
)

// run command flags. Each value is consumed once so that after a failure
// or backward navigation the wizard falls back to prompting.
var (
	imageFlag      string
	methodFlag     string
	clustersFlag   string
	exportTypeFlag string
	outputFlag     string
	bundleFlag     bool
)

// Navigation sentinels recognized at every prompt.
var (
	errQuit  = errors.New("quit requested")
	errBack  = errors.New("back requested")
	errReset = errors.New("reset requested")
)

var stdin = bufio.NewReader(os.Stdin)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Walk through the sketch-to-DXF workflow",
		Long: `Run walks through the full analysis workflow: upload a sketch image,
pick a color enhancement method, group the detected beds into named
clusters, and export DXF files.

Prompts can be skipped by providing the matching flags. At any prompt,
'back' returns to the previous stage, 'reset' starts over, and 'quit'
exits.

Examples:
  sketchtocad run
  sketchtocad run --image garden.jpg --method pca_features
  sketchtocad run --image garden.jpg --clusters '{"herbs":[0,1],"flowers":[2]}' --export-type both --bundle
  sketchtocad run --clusters @clusters.json --output ./exports`,
		RunE: runWorkflow,
	}

	cmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Sketch image to upload (skips the file picker)")
	cmd.Flags().StringVarP(&methodFlag, "method", "m", "", "Enhancement method to select (e.g. original, pca_features)")
	cmd.Flags().StringVar(&clustersFlag, "clusters", "", "Cluster assignment as inline JSON or @file")
	cmd.Flags().StringVarP(&exportTypeFlag, "export-type", "t", "", "Export type: summary, detailed, or both")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", ".", "Directory for exported files")
	cmd.Flags().BoolVar(&bundleFlag, "bundle", false, "Write all exports into a single zip archive")
	return cmd
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	adapter, cfg, err := newAdapter()
	if err != nil {
		return err
	}

	logging.NewStartupLogger("run").
		Version(version).
		CommitHash(commitHash).
		BuildTime(buildTime).
		Service("imageProcessing", cfg.ProcessingURL).
		Service("clustering", cfg.ClusteringURL).
		Service("dxfExport", cfg.ExportURL).
		Feature("bundle", bundleFlag).
		Config("output", outputFlag).
		Config("logLevel", logging.EnvOrDefault(logging.EnvLogLevel, "info")).
		Log()

	o := workflow.New(adapter)
	ctx := cmd.Context()

	fmt.Println("============================================")
	fmt.Println("🌱 SketchToCAD Workflow")
	fmt.Println("============================================")

	for {
		var stepErr error
		switch o.Stage() {
		case workflow.StageUpload:
			stepErr = stepUpload(ctx, o)
		case workflow.StageEnhancement:
			stepErr = stepEnhancement(ctx, o)
		case workflow.StageClustering:
			stepErr = stepClustering(ctx, o)
		case workflow.StageResults:
			stepErr = stepResults(ctx, o)
		}
		if stepErr == nil {
			continue
		}

		switch {
		case errors.Is(stepErr, errQuit):
			return nil
		case errors.Is(stepErr, errBack):
			if backErr := o.Back(); backErr != nil {
				fmt.Println("❌ Already at the first stage")
			}
		case errors.Is(stepErr, errReset):
			o.Reset()
			fmt.Println("🔄 Starting over")
		default:
			return stepErr
		}
	}
}

// --- stages ---

func stepUpload(ctx context.Context, o *workflow.Orchestrator) error {
	path, err := promptForImage()
	if err != nil {
		return err
	}

	fmt.Printf("⏳ Uploading %s...\n", filepath.Base(path))
	if err := o.SubmitImage(ctx, path); err != nil {
		return reportFailure(err)
	}

	snap := o.Snapshot()
	fmt.Printf("✅ %d beds detected (session %s)\n", snap.BedCount, snap.SessionID)
	if snap.Capture != nil {
		if summary := snap.Capture.Summary(); summary != "" {
			fmt.Printf("   📷 %s\n", summary)
		}
	}
	return nil
}

func stepEnhancement(ctx context.Context, o *workflow.Orchestrator) error {
	methods, err := o.AvailableMethods(ctx)
	if err != nil {
		return reportFailure(err)
	}

	snap := o.Snapshot()
	fmt.Println()
	fmt.Println("--------------------------------------------")
	fmt.Printf("🎨 Enhancement (%d beds)\n", snap.BedCount)
	for i, m := range methods {
		fmt.Printf("   %d. %s\n", i+1, m)
	}

	method, err := promptForMethod(methods)
	if err != nil {
		return err
	}
	if err := o.SelectMethod(ctx, method); err != nil {
		return reportFailure(err)
	}

	sel, err := o.Selection()
	if err != nil {
		return reportFailure(err)
	}
	fmt.Printf("✅ %s selected (%s / %s)\n", sel.Method, sel.XLabel, sel.YLabel)
	return nil
}

func stepClustering(ctx context.Context, o *workflow.Orchestrator) error {
	sel, err := o.Selection()
	if err != nil {
		return reportFailure(err)
	}
	snap := o.Snapshot()

	fmt.Println()
	fmt.Println("--------------------------------------------")
	fmt.Printf("🗂  Clustering (%d beds, %s vs %s)\n", snap.BedCount, sel.XLabel, sel.YLabel)

	assignment, err := promptForClusters(snap.BedCount)
	if err != nil {
		return err
	}

	fmt.Println("⏳ Submitting cluster assignment...")
	if err := o.SubmitAssignment(ctx, assignment); err != nil {
		return reportFailure(err)
	}

	result, err := o.Clustering()
	if err != nil {
		return reportFailure(err)
	}
	stats := result.Statistics
	fmt.Printf("✅ %d clusters cover %d of %d beds (%.1f%%)\n",
		stats.ClusterCount, stats.ClusteredBeds, stats.TotalBeds, stats.CoveragePercent)
	return nil
}

func stepResults(ctx context.Context, o *workflow.Orchestrator) error {
	result, err := o.Clustering()
	if err != nil {
		return reportFailure(err)
	}
	printResults(result)

	exportType, err := promptForExportType()
	if err != nil {
		return err
	}
	if exportType == "skip" {
		fmt.Println("👋 Done (nothing exported)")
		return errQuit
	}

	types := []string{exportType}
	if exportType == "both" {
		types = []string{contracts.ExportTypeSummary, contracts.ExportTypeDetailed}
	}

	var artifacts []*contracts.ExportArtifact
	for _, kind := range types {
		fmt.Printf("⏳ Exporting %s DXF...\n", kind)
		artifact, err := o.Export(ctx, kind)
		if err != nil {
			var blocked *workflow.ExportBlockedError
			if errors.As(err, &blocked) {
				fmt.Println("❌ Export blocked:")
				for _, msg := range blocked.Messages {
					fmt.Printf("   - %s\n", msg)
				}
				return nil
			}
			return reportFailure(err)
		}
		artifacts = append(artifacts, artifact)
	}

	if bundleFlag {
		bundlePath := filepath.Join(outputFlag, "sketchtocad_exports.zip")
		if err := exportfile.WriteBundle(bundlePath, artifacts); err != nil {
			return err
		}
		fmt.Printf("💾 %s\n", bundlePath)
	} else {
		for _, artifact := range artifacts {
			path, err := exportfile.Save(outputFlag, artifact)
			if err != nil {
				return err
			}
			fmt.Printf("💾 %s\n", path)
		}
	}

	fmt.Println()
	fmt.Println("✅ Workflow complete!")
	fmt.Println("============================================")
	return errQuit
}

// --- prompts ---

// readLine reads one trimmed line from stdin. EOF quits the wizard so a
// piped input stream that runs dry does not loop forever.
func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", errQuit
	}
	return strings.TrimSpace(line), nil
}

// readInput reads a line and intercepts the navigation words.
func readInput() (string, error) {
	input, err := readLine()
	if err != nil {
		return "", err
	}
	switch strings.ToLower(input) {
	case "quit", "q", "exit":
		return "", errQuit
	case "back":
		return "", errBack
	case "reset":
		return "", errReset
	}
	return input, nil
}

func promptForImage() (string, error) {
	if imageFlag != "" {
		path := imageFlag
		imageFlag = ""
		return path, nil
	}

	for {
		fmt.Println()
		fmt.Print("Sketch image (Enter opens the file picker): ")
		input, err := readInput()
		if err != nil {
			return "", err
		}
		if input != "" {
			return input, nil
		}

		selected, err := zenity.SelectFile(
			zenity.Title("Select sketch image"),
			zenity.FileFilters{
				{
					Name:     "Images",
					Patterns: []string{"*.jpg", "*.jpeg", "*.png", "*.tif", "*.tiff", "*.bmp", "*.webp"},
				},
			},
		)
		if err != nil {
			if errors.Is(err, zenity.ErrCanceled) {
				continue
			}
			log.Warn().Err(err).Msg("File picker failed, type the path instead")
			continue
		}
		return selected, nil
	}
}

func promptForMethod(methods []string) (string, error) {
	if methodFlag != "" {
		method := methodFlag
		methodFlag = ""
		return method, nil
	}

	for {
		fmt.Print("Method (name or number): ")
		input, err := readInput()
		if err != nil {
			return "", err
		}
		if input == "" {
			continue
		}
		if n, convErr := strconv.Atoi(input); convErr == nil {
			if n >= 1 && n <= len(methods) {
				return methods[n-1], nil
			}
			fmt.Printf("Pick a number between 1 and %d\n", len(methods))
			continue
		}
		return input, nil
	}
}

func promptForClusters(bedCount int) (contracts.ClusterMap, error) {
	if clustersFlag != "" {
		raw := clustersFlag
		clustersFlag = ""
		return parseClusters(raw)
	}

	fmt.Printf("Group beds 0-%d into named clusters. An empty name finishes.\n", bedCount-1)
	assignment := contracts.NewClusterMap()
	assigned := make(map[int]bool)

	for {
		fmt.Printf("Cluster %d name: ", assignment.Len()+1)
		name, err := readInput()
		if err != nil {
			return contracts.ClusterMap{}, err
		}
		if name == "" {
			if assignment.Len() == 0 {
				fmt.Println("Define at least one cluster")
				continue
			}
			break
		}
		if _, exists := assignment.Get(name); exists {
			fmt.Printf("Cluster %q already defined\n", name)
			continue
		}

		beds, err := promptForBedIDs(name, bedCount, assigned)
		if err != nil {
			return contracts.ClusterMap{}, err
		}
		assignment.Set(name, beds)
		for _, id := range beds {
			assigned[id] = true
		}
	}

	var unassigned []string
	for i := 0; i < bedCount; i++ {
		if !assigned[i] {
			unassigned = append(unassigned, strconv.Itoa(i))
		}
	}
	if len(unassigned) > 0 {
		fmt.Printf("⚠️  Beds left unclustered: %s\n", strings.Join(unassigned, ", "))
	}
	return assignment, nil
}

func promptForBedIDs(name string, bedCount int, assigned map[int]bool) ([]int, error) {
	for {
		fmt.Printf("Bed ids for %q (comma-separated): ", name)
		input, err := readInput()
		if err != nil {
			return nil, err
		}
		beds, parseErr := parseBedIDs(input, bedCount, assigned)
		if parseErr != nil {
			fmt.Printf("❌ %v\n", parseErr)
			continue
		}
		return beds, nil
	}
}

func promptForExportType() (string, error) {
	if exportTypeFlag != "" {
		exportType := strings.ToLower(exportTypeFlag)
		exportTypeFlag = ""
		if exportType != "both" && !contracts.ValidExportType(exportType) {
			return "", fmt.Errorf("invalid --export-type %q (want summary, detailed, or both)", exportType)
		}
		return exportType, nil
	}

	for {
		fmt.Print("Export type (summary/detailed/both/skip) [summary]: ")
		input, err := readInput()
		if err != nil {
			return "", err
		}
		switch strings.ToLower(input) {
		case "":
			return contracts.ExportTypeSummary, nil
		case contracts.ExportTypeSummary, contracts.ExportTypeDetailed, "both", "skip":
			return strings.ToLower(input), nil
		}
		fmt.Println("Pick summary, detailed, both, or skip")
	}
}

// --- parsing & reporting ---

// parseClusters accepts inline JSON or @file, preserving cluster order.
func parseClusters(raw string) (contracts.ClusterMap, error) {
	if rest, ok := strings.CutPrefix(raw, "@"); ok {
		data, err := os.ReadFile(rest)
		if err != nil {
			return contracts.ClusterMap{}, fmt.Errorf("read clusters file: %w", err)
		}
		raw = string(data)
	}

	var assignment contracts.ClusterMap
	if err := json.Unmarshal([]byte(raw), &assignment); err != nil {
		return contracts.ClusterMap{}, fmt.Errorf("parse clusters: %w", err)
	}
	return assignment, nil
}

func parseBedIDs(input string, bedCount int, assigned map[int]bool) ([]int, error) {
	var ids []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a bed id", part)
		}
		if id < 0 || id >= bedCount {
			return nil, fmt.Errorf("bed %d is out of range (0-%d)", id, bedCount-1)
		}
		if assigned[id] {
			return nil, fmt.Errorf("bed %d is already in another cluster", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no bed ids given")
	}
	return ids, nil
}

func printResults(result *contracts.ClusteringResult) {
	stats := result.Statistics
	fmt.Println()
	fmt.Println("============================================")
	fmt.Println("📊 Results")
	fmt.Println("============================================")
	fmt.Printf("Clusters: %d\n", stats.ClusterCount)
	fmt.Printf("Coverage: %.1f%% (%d of %d beds)\n",
		stats.CoveragePercent, stats.ClusteredBeds, stats.TotalBeds)
	for _, group := range result.ProcessedClusters.Groups() {
		line := fmt.Sprintf("   %s: %d beds", group.Name, len(group.Beds))
		if area, ok := stats.ClusterAreas[group.Name]; ok {
			line += fmt.Sprintf(", area %.1f", area)
		}
		fmt.Println(line)
	}
	fmt.Println("--------------------------------------------")
}

// reportFailure prints a transition failure and keeps the wizard on the
// same stage. Interrupts abort; stale results need no message because the
// user already navigated away.
func reportFailure(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, workflow.ErrStale) {
		return nil
	}

	fmt.Printf("❌ %s\n", failureMessage(err))
	if ce, ok := backend.AsCallError(err); ok && ce.Type == backend.ErrTypeNetwork {
		fmt.Println("   Check the service URLs with 'sketchtocad health'.")
	}
	return nil
}

func failureMessage(err error) string {
	if ce, ok := backend.AsCallError(err); ok {
		return ce.Message
	}
	return err.Error()
}
