// Package preprocess rewrites raw OMT script text before it reaches the
// SMT-LIB parser.
//
// The rewrite is purely line based and keeps every line at its original
// number, so parser line numbers point into the source script:
//   - comment lines are blanked and trailing comments stripped
//   - the first weighted assertion of every group is prefixed, on the same
//     line, with a synthetic declaration of the group's penalty variable
//   - set-option lines get their keyword separator re-spaced
//
// Malformed input is passed through; the parser reports it.
package preprocess

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cespio/omtmzn/internal/ir"
)

// CommentMarker starts an SMT-LIB comment.
const CommentMarker = ";"

// idPattern extracts the group id of an assert-soft line.
var idPattern = regexp.MustCompile(`:id\s+(\|[^|]*\||[^\s()]+)`)

// simpleSymbol matches SMT-LIB symbols that need no |quoting|.
var simpleSymbol = regexp.MustCompile(`^[A-Za-z~!@$%^&*_+=<>.?/-][0-9A-Za-z~!@$%^&*_+=<>.?/-]*$`)

// Preprocessor holds the settings of the rewrite.
type Preprocessor struct {
	// SoftIDType is the sort given to synthesized group declarations.
	SoftIDType ir.Sort
}

// New creates a Preprocessor declaring group variables of the given sort.
// An empty sort defaults to Int.
func New(softIDType ir.Sort) *Preprocessor {
	if softIDType == "" {
		softIDType = ir.SortInt
	}
	return &Preprocessor{SoftIDType: softIDType}
}

// Process rewrites src. The output always ends with a newline when non-empty.
func (p *Preprocessor) Process(src string) string {
	var b strings.Builder
	// Process never fails on a strings.Reader.
	_ = p.ProcessTo(&b, strings.NewReader(src))
	return b.String()
}

// ProcessTo streams the rewrite of r into w.
func (p *Preprocessor) ProcessTo(w io.Writer, r io.Reader) error {
	declared := make(map[string]bool)
	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		line := norm.NFC.String(strings.TrimRight(sc.Text(), "\r"))
		if strings.HasPrefix(line, CommentMarker) {
			line = ""
		}
		line = StripComment(line)

		if strings.Contains(line, "assert-soft") {
			group := GroupID(line)
			if !declared[group] {
				declared[group] = true
				line = p.declaration(group) + " " + line
			}
		}
		if strings.Contains(line, "(set-option") {
			line = RespaceOption(line)
		}

		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

func (p *Preprocessor) declaration(group string) string {
	return "(declare-fun " + quoteSymbol(group) + " () " + sortText(p.SoftIDType) + ")"
}

// quoteSymbol wraps name in |bars| unless it is a simple symbol.
func quoteSymbol(name string) string {
	if simpleSymbol.MatchString(name) {
		return name
	}
	return "|" + name + "|"
}

// sortText renders a sort tag back in SMT-LIB syntax.
func sortText(s ir.Sort) string {
	if width, ok := s.BitVecWidth(); ok {
		return "(_ BitVec " + strconv.Itoa(width) + ")"
	}
	return string(s)
}

// GroupID returns the :id of an assert-soft line, or the default group.
func GroupID(line string) string {
	m := idPattern.FindStringSubmatch(line)
	if m == nil {
		return ir.DefaultGroup
	}
	return strings.Trim(m[1], "|")
}

// StripComment removes a trailing ';' comment, ignoring semicolons inside
// string literals and |quoted| symbols.
func StripComment(line string) string {
	inString := false
	inQuoted := false
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; {
		case ch == '"' && !inQuoted:
			inString = !inString
		case ch == '|' && !inString:
			inQuoted = !inQuoted
		case ch == ';' && !inString && !inQuoted:
			return line[:i]
		}
	}
	return line
}

// RespaceOption puts spaces around every ':' outside string literals so the
// keyword separator always tokenizes on its own.
func RespaceOption(line string) string {
	var b strings.Builder
	inString := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if ch == '"' {
			inString = !inString
		}
		if ch == ':' && !inString {
			b.WriteString(" : ")
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}
