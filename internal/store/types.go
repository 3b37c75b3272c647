package store

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// Run is one translation of a script.
type Run struct {
	Seq               int64  `json:"seq"`
	ID                string `json:"id"`
	ScriptPath        string `json:"script_path"`
	ScriptHash        string `json:"script_hash"`
	OutputBase        string `json:"output_base"`
	TranslatorVersion string `json:"translator_version"`
	OutputVersion     string `json:"output_version"`
	Status            string `json:"status"`
	Error             string `json:"error,omitempty"`
}

// Artifact is one MiniZinc file written by a run.
type Artifact struct {
	RunID       string `json:"run_id"`
	CheckPoint  int    `json:"check_point"`
	Path        string `json:"path"`
	ContentHash string `json:"content_hash"`
	// Strategy is "satisfy", "single", "box" or "lex".
	Strategy   string `json:"strategy"`
	Vars       int    `json:"vars"`
	Hard       int    `json:"hard"`
	Soft       int    `json:"soft"`
	Objectives int    `json:"objectives"`
}
