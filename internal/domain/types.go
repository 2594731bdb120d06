package domain

// JobState tracks the lifecycle of a single file-cleaning job.
type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
	JobStateCancelled JobState = "cancelled"
)

// Terminal reports whether a state has no outgoing transitions.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateCompleted, JobStateFailed, JobStateCancelled:
		return true
	default:
		return false
	}
}

// ValidationMode selects how website values are checked.
type ValidationMode string

const (
	// ValidationModeDefault applies the built-in URL well-formedness check.
	ValidationModeDefault ValidationMode = "default"
	// ValidationModePattern applies a user-supplied regular expression.
	ValidationModePattern ValidationMode = "pattern"
)

// ValidationConfig is immutable once a job has been submitted.
type ValidationConfig struct {
	Mode    ValidationMode `json:"mode"`
	Pattern string         `json:"pattern,omitempty"`
}

// ColumnAliases lists candidate header names for each semantic role.
type ColumnAliases struct {
	Title   []string `json:"title"`
	Website []string `json:"website"`
}

// JobSpec is everything a collaborator supplies to submit one file.
type JobSpec struct {
	InputPath  string
	OutputPath string
	ChunkSize  int
	Validation ValidationConfig
	Aliases    ColumnAliases
}

// Job is a snapshot of one job's identity and lifecycle state.
type Job struct {
	ID         string   `json:"id"`
	InputPath  string   `json:"inputPath"`
	OutputPath string   `json:"outputPath"`
	State      JobState `json:"state"`
}

// Settings contains user-selectable runtime configuration persisted
// between runs.
type Settings struct {
	LastPattern    string   `json:"lastPattern"`
	NumThreads     int      `json:"numThreads"`
	ChunkSize      int      `json:"chunkSize"`
	OutputDir      string   `json:"outputDir"`
	OutputBaseName string   `json:"outputBaseName"`
	OutputFormat   string   `json:"outputFormat"`
	TitleAliases   []string `json:"titleAliases"`
	WebsiteAliases []string `json:"websiteAliases"`
}
