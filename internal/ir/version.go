package ir

// Version constants for the translator and its output format.
const (
	// OutputVersion is bumped whenever the emitted MiniZinc layout changes.
	OutputVersion = "1"

	// TranslatorVersion is the omtmzn release version.
	TranslatorVersion = "0.1.0"
)
