package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespio/omtmzn/internal/config"
	"github.com/cespio/omtmzn/internal/ir"
	"github.com/cespio/omtmzn/internal/store"
)

// LoadError represents an error that occurred while loading command input.
type LoadError struct {
	Code       string
	Message    string
	Line       int // script line if available
	CheckPoint int // check-point being translated, if any
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E002" // Path not found
	ErrCodeInvalidConfig = "E003" // Config file rejected
	ErrCodeWriteFailed   = "E004" // File write error
	ErrCodeLedger        = "E005" // Ledger open/read/write error

	// Translation errors
	ErrCodeParse              = "E101" // Malformed script
	ErrCodeScopeUnderflow     = "E102" // pop past the base scope
	ErrCodeNameCollision      = "E103" // Name declared twice
	ErrCodeUnboundedWeight    = "E104" // Non-literal soft weight
	ErrCodeUnsupportedOption  = "E105" // Unknown opt.priority
	ErrCodeUnsupportedExpr    = "E106" // Term with no MiniZinc form
	ErrCodeTranslationAborted = "E107" // Cancelled or interrupted

	// Harness errors
	ErrCodeScenarioFailed = "E201" // One or more scenarios failed
)

// MapTranslateErrorCode maps a translation error code to a CLI error code.
func MapTranslateErrorCode(code ir.ErrorCode) string {
	switch code {
	case ir.ErrCodeParse:
		return ErrCodeParse
	case ir.ErrCodeScopeUnderflow:
		return ErrCodeScopeUnderflow
	case ir.ErrCodeNameCollision:
		return ErrCodeNameCollision
	case ir.ErrCodeUnboundedWeight:
		return ErrCodeUnboundedWeight
	case ir.ErrCodeUnsupportedOption:
		return ErrCodeUnsupportedOption
	case ir.ErrCodeUnsupportedExpr:
		return ErrCodeUnsupportedExpr
	default:
		return ErrCodeGeneric
	}
}

// convertTranslateError converts a translation error to a LoadError with
// the script line when known.
func convertTranslateError(err error) *LoadError {
	var te *ir.TranslateError
	if errors.As(err, &te) {
		return &LoadError{
			Code:       MapTranslateErrorCode(te.Code),
			Message:    te.Error(),
			Line:       te.Line,
			CheckPoint: te.CheckPoint,
		}
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	if errors.Is(err, store.ErrRunNotFound) {
		return &LoadError{Code: ErrCodeLedger, Message: err.Error()}
	}
	if errors.Is(err, os.ErrNotExist) {
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeTranslationAborted, Message: err.Error()}
}

// LoadConfig reads the config file at path, or returns the defaults when
// path is empty.
func LoadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, &LoadError{Code: ErrCodeInvalidConfig, Message: err.Error()}
	}
	return cfg, nil
}

// ReadScript reads the script at path. "-" reads stdin.
func ReadScript(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading stdin: %v", err)}
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("script not found: %s", path)}
	}
	if err != nil {
		return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading script: %v", err)}
	}
	return string(data), nil
}
