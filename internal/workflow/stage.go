package workflow

// Stage identifies the active step of the analysis pipeline. Exactly one
// stage is active at a time; the numeric order defines forward progress,
// while backward moves are explicit transitions, never implied.
type Stage int

const (
	StageUpload Stage = iota
	StageEnhancement
	StageClustering
	StageResults
)

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageEnhancement:
		return "enhancement"
	case StageClustering:
		return "clustering"
	case StageResults:
		return "results"
	default:
		return "unknown"
	}
}

// prev returns the stage one step back, or StageUpload when already there.
func (s Stage) prev() Stage {
	if s <= StageUpload {
		return StageUpload
	}
	return s - 1
}
