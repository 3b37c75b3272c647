package harness

// File is one emitted MiniZinc file.
type File struct {
	// Name is the base name, e.g. "out_1.mzn".
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Files holds the emitted files in check-point order.
	Files []File `json:"files"`

	// Strategies holds the ledger strategy of each file.
	Strategies []string `json:"strategies"`

	// ErrorCode is the code of the translation error, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Err is the translation error, if any.
	Err error `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(name string) *Result {
	return &Result{
		Name:       name,
		Pass:       true,
		Files:      []File{},
		Strategies: []string{},
		Errors:     []string{},
	}
}

// AddError records a validation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Pass = false
	r.Errors = append(r.Errors, err)
}
