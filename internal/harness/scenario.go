package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cespio/omtmzn/internal/config"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the inline script text.
	Script string `yaml:"script,omitempty"`

	// ScriptFile is a script path, relative to the scenario file.
	// Mutually exclusive with Script.
	ScriptFile string `yaml:"script_file,omitempty"`

	// Config overrides the default translator settings.
	Config *config.Config `yaml:"config,omitempty"`

	// Expect describes the expected outcome.
	Expect Expect `yaml:"expect"`
}

// Expect specifies expected translation behavior.
type Expect struct {
	// Files is the expected number of emitted files. Nil skips the check.
	Files *int `yaml:"files,omitempty"`

	// Error is the expected error code (e.g. SCOPE_UNDERFLOW). Empty means
	// the translation must succeed.
	Error string `yaml:"error,omitempty"`

	// Strategies lists the expected solve strategy of each file.
	Strategies []string `yaml:"strategies,omitempty"`

	// Contains lists text that must appear in a file.
	Contains []TextClause `yaml:"contains,omitempty"`

	// Absent lists text that must not appear in a file.
	Absent []TextClause `yaml:"absent,omitempty"`
}

// TextClause selects a file by its 1-based check-point index.
type TextClause struct {
	File int    `yaml:"file"`
	Text string `yaml:"text"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.ScriptFile != "" && scenario.Script == "" {
		scriptPath := scenario.ScriptFile
		if !filepath.IsAbs(scriptPath) {
			scriptPath = filepath.Join(filepath.Dir(path), scriptPath)
		}
		script, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: script_file: %w", err)
		}
		scenario.Script = string(script)
	} else if scenario.ScriptFile != "" {
		return nil, fmt.Errorf("invalid scenario: script and script_file are mutually exclusive")
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Script == "" {
		return fmt.Errorf("script or script_file is required")
	}

	if s.Config != nil {
		if err := s.Config.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	if s.Expect.Files != nil && *s.Expect.Files < 0 {
		return fmt.Errorf("expect.files must be >= 0, got %d", *s.Expect.Files)
	}

	for i, c := range s.Expect.Contains {
		if err := validateTextClause("contains", i, c); err != nil {
			return err
		}
	}
	for i, c := range s.Expect.Absent {
		if err := validateTextClause("absent", i, c); err != nil {
			return err
		}
	}

	return nil
}

func validateTextClause(field string, index int, c TextClause) error {
	if c.File < 1 {
		return fmt.Errorf("expect.%s[%d]: file must be >= 1", field, index)
	}
	if c.Text == "" {
		return fmt.Errorf("expect.%s[%d]: text is required", field, index)
	}
	return nil
}
