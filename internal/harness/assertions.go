package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Expectation that failed: files, error, strategies, contains, absent
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Files    []File // Emitted files for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Files) > 0 {
		fmt.Fprintf(&buf, "\nEmitted files:\n")
		for _, f := range e.Files {
			fmt.Fprintf(&buf, "  %s (%d bytes)\n", f.Name, len(f.Content))
		}
	}

	return buf.String()
}

func assertFiles(result *Result, want int) error {
	if len(result.Files) == want {
		return nil
	}
	return &AssertionError{
		Type:     "files",
		Expected: fmt.Sprintf("%d emitted file(s)", want),
		Actual:   fmt.Sprintf("%d emitted file(s)", len(result.Files)),
		Files:    result.Files,
	}
}

func assertError(result *Result, want string) error {
	if result.ErrorCode == want {
		return nil
	}
	expected, actual := "success", "success"
	if want != "" {
		expected = "error " + want
	}
	if result.Err != nil {
		actual = result.Err.Error()
	}
	return &AssertionError{
		Type:     "error",
		Expected: expected,
		Actual:   actual,
		Files:    result.Files,
	}
}

func assertStrategies(result *Result, want []string) error {
	if strings.Join(result.Strategies, ",") == strings.Join(want, ",") {
		return nil
	}
	return &AssertionError{
		Type:     "strategies",
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", result.Strategies),
		Files:    result.Files,
	}
}

// assertText checks that a file contains (or lacks) a piece of text.
func assertText(result *Result, clause TextClause, present bool) error {
	kind := "contains"
	if !present {
		kind = "absent"
	}

	if clause.File < 1 || clause.File > len(result.Files) {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("file %d to exist", clause.File),
			Actual:   fmt.Sprintf("%d emitted file(s)", len(result.Files)),
			Files:    result.Files,
		}
	}

	f := result.Files[clause.File-1]
	if strings.Contains(f.Content, clause.Text) == present {
		return nil
	}

	expected := fmt.Sprintf("%s to contain %q", f.Name, clause.Text)
	if !present {
		expected = fmt.Sprintf("%s not to contain %q", f.Name, clause.Text)
	}
	return &AssertionError{
		Type:     kind,
		Expected: expected,
		Actual:   f.Content,
		Files:    result.Files,
	}
}

// EvaluateExpect checks all expectations against a result.
// Returns a list of error messages for failed expectations.
func EvaluateExpect(result *Result, expect Expect) []string {
	var errs []error

	if err := assertError(result, expect.Error); err != nil {
		errs = append(errs, err)
	}
	if expect.Files != nil {
		if err := assertFiles(result, *expect.Files); err != nil {
			errs = append(errs, err)
		}
	}
	if expect.Strategies != nil {
		if err := assertStrategies(result, expect.Strategies); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range expect.Contains {
		if err := assertText(result, c, true); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range expect.Absent {
		if err := assertText(result, c, false); err != nil {
			errs = append(errs, err)
		}
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return msgs
}
