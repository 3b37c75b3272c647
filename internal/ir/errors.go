package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes translation errors.
type ErrorCode string

const (
	// ErrCodeScopeUnderflow indicates a pop deeper than the open scopes.
	ErrCodeScopeUnderflow ErrorCode = "SCOPE_UNDERFLOW"

	// ErrCodeNameCollision indicates a name declared twice with different meaning.
	ErrCodeNameCollision ErrorCode = "NAME_COLLISION"

	// ErrCodeUnboundedWeight indicates a soft weight that is not a numeric literal.
	ErrCodeUnboundedWeight ErrorCode = "UNBOUNDED_WEIGHT"

	// ErrCodeUnsupportedOption indicates an unrecognized opt.priority value.
	ErrCodeUnsupportedOption ErrorCode = "UNSUPPORTED_OPTION"

	// ErrCodeUnsupportedExpr indicates a term the serializer cannot express.
	ErrCodeUnsupportedExpr ErrorCode = "UNSUPPORTED_EXPR"

	// ErrCodeParse indicates malformed script text.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
)

// Sentinels for errors.Is. A *TranslateError matches the sentinel of its code.
var (
	ErrScopeUnderflow    = errors.New("scope underflow")
	ErrNameCollision     = errors.New("name collision")
	ErrUnboundedWeight   = errors.New("unbounded weight")
	ErrUnsupportedOption = errors.New("unsupported option")
	ErrUnsupportedExpr   = errors.New("unsupported expression")
	ErrParse             = errors.New("parse error")
)

var sentinels = map[ErrorCode]error{
	ErrCodeScopeUnderflow:    ErrScopeUnderflow,
	ErrCodeNameCollision:     ErrNameCollision,
	ErrCodeUnboundedWeight:   ErrUnboundedWeight,
	ErrCodeUnsupportedOption: ErrUnsupportedOption,
	ErrCodeUnsupportedExpr:   ErrUnsupportedExpr,
	ErrCodeParse:             ErrParse,
}

// TranslateError is a fatal error raised while translating a script.
//
// CheckPoint, Command and Line locate the failure; any of them may be zero
// when the stage that raised the error does not know it. The engine fills in
// the check-point index before returning the error to its caller.
type TranslateError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// CheckPoint is the 1-based check-point index being translated.
	CheckPoint int

	// Command is the kind of the offending command.
	Command CommandKind

	// Line is the script line of the offending command.
	Line int
}

// Error implements the error interface.
func (e *TranslateError) Error() string {
	var loc []string
	if e.CheckPoint > 0 {
		loc = append(loc, fmt.Sprintf("check-point=%d", e.CheckPoint))
	}
	if e.Command != "" {
		loc = append(loc, fmt.Sprintf("command=%s", e.Command))
	}
	if e.Line > 0 {
		loc = append(loc, fmt.Sprintf("line=%d", e.Line))
	}
	if len(loc) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(loc, ", "))
}

// Is reports whether target is the sentinel matching e's code.
func (e *TranslateError) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

// NewError creates a TranslateError located at cmd. cmd may be nil.
func NewError(code ErrorCode, cmd Command, format string, args ...any) *TranslateError {
	te := &TranslateError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	if cmd != nil {
		te.Command = cmd.Kind()
		te.Line = cmd.Pos().Line
	}
	return te
}

// AtCheckPoint stamps the check-point index on err if it is a TranslateError
// without one. Other errors are returned unchanged.
func AtCheckPoint(err error, index int) error {
	var te *TranslateError
	if errors.As(err, &te) && te.CheckPoint == 0 {
		te.CheckPoint = index
	}
	return err
}

// CodeOf extracts the error code, or "" when err is not a TranslateError.
func CodeOf(err error) ErrorCode {
	var te *TranslateError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsScopeUnderflow returns true if err is a scope underflow error.
func IsScopeUnderflow(err error) bool { return errors.Is(err, ErrScopeUnderflow) }

// IsNameCollision returns true if err is a name collision error.
func IsNameCollision(err error) bool { return errors.Is(err, ErrNameCollision) }

// IsUnboundedWeight returns true if err is an unbounded weight error.
func IsUnboundedWeight(err error) bool { return errors.Is(err, ErrUnboundedWeight) }

// IsUnsupportedOption returns true if err is an unsupported option error.
func IsUnsupportedOption(err error) bool { return errors.Is(err, ErrUnsupportedOption) }

// Locate stamps the command kind and line of cmd on err if it is a
// TranslateError that does not carry them yet.
func Locate(err error, cmd Command) error {
	var te *TranslateError
	if cmd != nil && errors.As(err, &te) && te.Command == "" {
		te.Command = cmd.Kind()
		te.Line = cmd.Pos().Line
	}
	return err
}
