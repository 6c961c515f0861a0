// Package scanner makes a single forward pass over the lines of a source file
// and counts what each line is: blank, comment, docstring or code, and for
// code lines which constructs they open.
package scanner

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"codeintel/internal/lang"
)

// Category is a classification a code line may receive from the rule table.
type Category int

const (
	Import Category = iota
	Loop
	Conditional
	Exception
)

// IndentSample records the leading spaces and leading tabs of one code line.
type IndentSample struct {
	Spaces int
	Tabs   int
}

// Result holds the counters accumulated over one scan.
type Result struct {
	Lines           int
	CodeLines       int
	CommentLines    int
	BlankLines      int
	TotalLineLength int
	MaxLineLength   int
	MaxNesting      int
	Imports         int
	Loops           int
	Conditionals    int
	Exceptions      int
	HasDocstring    bool
	Tokens          int
	TokenLines      int
	KeywordHits     int
	Indents         []IndentSample
}

// state is the mutable part of a scan that is not itself a reported counter.
type state struct {
	inDocstring bool
	depth       int
}

// A word boundary that also treats non-ASCII letters and digits as word
// characters, which Go's \b does not.
const wordEnd = `(?:[^\p{L}\p{N}_]|$)`

var (
	// Closing delimiters are not paired with the opening style, and the
	// string prefix only applies to the double-quoted form.
	docstringRe = regexp.MustCompile(`^\s*[ru]?"""|^'''`)
	tokenRe     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

type rule struct {
	category Category
	langs    []lang.Language // nil applies to every language
	match    func(stripped string) bool
}

func prefixRule(words ...string) func(string) bool {
	re := regexp.MustCompile(`^\s*(?:` + strings.Join(words, "|") + `)` + wordEnd)
	return re.MatchString
}

// rules are evaluated in order against every code line; each matching rule
// increments its category.
var rules = []rule{
	{Import, []lang.Language{lang.Python}, func(s string) bool {
		return strings.HasPrefix(s, "import") || strings.HasPrefix(s, "from")
	}},
	{Import, []lang.Language{lang.JavaScript}, func(s string) bool {
		return strings.HasPrefix(s, "import") || strings.Contains(s, "require")
	}},
	{Loop, nil, prefixRule("for", "while")},
	{Conditional, nil, prefixRule("if", "elif", "else", "else if")},
	{Exception, nil, prefixRule("try", "except", "catch", "finally")},
}

func (r rule) applies(l lang.Language) bool {
	if r.langs == nil {
		return true
	}
	for _, x := range r.langs {
		if x == l {
			return true
		}
	}
	return false
}

// Scan classifies lines, which must not carry line terminators. Keyword hits
// are counted against keywords, which may be nil.
func Scan(lines []string, l lang.Language, keywords lang.KeywordSet) Result {
	res := Result{Lines: len(lines)}
	var st state

	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		res.TotalLineLength += n
		if n > res.MaxLineLength {
			res.MaxLineLength = n
		}

		stripped := strip(line)
		switch {
		case stripped == "":
			res.BlankLines++
			continue
		case l == lang.Python && strings.HasPrefix(stripped, "#"):
			res.CommentLines++
			continue
		case l == lang.JavaScript && strings.HasPrefix(stripped, "//"):
			res.CommentLines++
			continue
		}

		if l == lang.Python {
			if docstringRe.MatchString(stripped) {
				res.HasDocstring = true
				st.inDocstring = !st.inDocstring
				continue
			}
			if st.inDocstring {
				res.CommentLines++
				continue
			}
		}

		res.CodeLines++
		res.Indents = append(res.Indents, IndentSample{
			Spaces: leading(line, ' '),
			Tabs:   leading(line, '\t'),
		})

		if l == lang.JavaScript {
			// Net change per line: an open and close on the same line
			// never registers as a deeper level.
			st.depth += strings.Count(line, "{") - strings.Count(line, "}")
			res.MaxNesting = max(res.MaxNesting, st.depth)
		}

		for _, r := range rules {
			if r.applies(l) && r.match(stripped) {
				res.add(r.category)
			}
		}

		tokens := tokenRe.FindAllString(stripped, -1)
		res.Tokens += len(tokens)
		res.TokenLines++
		for _, t := range tokens {
			if keywords.Contains(t) {
				res.KeywordHits++
			}
		}
	}
	return res
}

func (r *Result) add(c Category) {
	switch c {
	case Import:
		r.Imports++
	case Loop:
		r.Loops++
	case Conditional:
		r.Conditionals++
	case Exception:
		r.Exceptions++
	}
}

// IndentationConsistency is 1/(1+max-min) over the lines indented with
// spaces, or over the lines indented with tabs when none use spaces, and 0
// for a file with no indented code.
func (r Result) IndentationConsistency() float64 {
	var spaces, tabs []int
	for _, s := range r.Indents {
		if s.Spaces > 0 {
			spaces = append(spaces, s.Spaces)
		}
		if s.Tabs > 0 {
			tabs = append(tabs, s.Tabs)
		}
	}
	switch {
	case len(spaces) > 0:
		return spread(spaces)
	case len(tabs) > 0:
		return spread(tabs)
	}
	return 0
}

func spread(levels []int) float64 {
	lo, hi := levels[0], levels[0]
	for _, v := range levels[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return 1 / float64(1+hi-lo)
}

func leading(line string, c byte) int {
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	return n
}

// strip trims Unicode whitespace and the ASCII separator controls
// U+001C through U+001F.
func strip(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
	})
}
