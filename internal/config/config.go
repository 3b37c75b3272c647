// Package config loads translator settings from YAML or CUE files.
//
// Both formats are checked against the embedded CUE schema (schema.cue), so a
// setting means the same thing whichever format carries it.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/cespio/omtmzn/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds translator settings.
type Config struct {
	// SoftIDType is the sort of soft group aggregates: Int, Real or BV<n>.
	SoftIDType string `yaml:"soft_id_type" json:"soft_id_type,omitempty"`

	// MergeAssertions emits hard assertions as one conjunction.
	MergeAssertions bool `yaml:"merge_assertions" json:"merge_assertions,omitempty"`

	// Output is the base output path, e.g. "out.mzn".
	Output string `yaml:"output" json:"output,omitempty"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{SoftIDType: string(ir.SortInt)}
}

// SoftSort returns SoftIDType as a sort.
func (c Config) SoftSort() (ir.Sort, error) {
	if c.SoftIDType == "" {
		return ir.SortInt, nil
	}
	return ir.ParseSort(c.SoftIDType)
}

// Validate checks c against the schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema, err := schemaValue(ctx)
	if err != nil {
		return err
	}
	v := schema.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Load reads a configuration file. The format follows the extension: .yaml
// and .yml are YAML, .cue is CUE. Fields missing from the file keep their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, path)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, filepath.Ext(path))
	}
}

// ParseYAML decodes YAML settings. Unknown keys are rejected.
func ParseYAML(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseCUE evaluates CUE settings. The top-level struct is unified with the
// schema, so unknown fields and ill-typed values are rejected.
func ParseCUE(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	schema, err := schemaValue(ctx)
	if err != nil {
		return Config{}, err
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg := Default()
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

func schemaValue(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile config schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}
