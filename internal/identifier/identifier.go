// Package identifier scores how readable an identifier is by splitting it into
// words and checking them against a dictionary.
package identifier

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the identifier length above which scores are penalized.
const DefaultMaxLength = 30

//go:embed words.txt
var embeddedWords string

// Dictionary is an immutable set of lowercase words.
type Dictionary struct {
	words map[string]struct{}
}

// LoadDictionary returns the dictionary built from the embedded word list.
func LoadDictionary() *Dictionary {
	d, _ := ParseDictionary(strings.NewReader(embeddedWords))
	return d
}

// LoadDictionaryFile reads a word list with one word per line.
func LoadDictionaryFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return ParseDictionary(f)
}

// ParseDictionary reads one word per line. Words are trimmed and lowercased;
// blank lines are ignored.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{words: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" {
			continue
		}
		d.words[w] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return d, nil
}

// NewDictionary builds a dictionary from an explicit word list.
func NewDictionary(words ...string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		d.words[strings.ToLower(w)] = struct{}{}
	}
	return d
}

// Contains reports whether word is known. A nil dictionary knows nothing.
func (d *Dictionary) Contains(word string) bool {
	if d == nil {
		return false
	}
	_, ok := d.words[word]
	return ok
}

// Len returns the number of words.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// Split breaks an identifier into lowercase word tokens. Parts separated by
// underscores are split on case boundaries: an optional capital followed by
// lowercase letters is one word, and a run of capitals ending before another
// capital or at the end of the part is one word. Digits and other characters
// never form tokens.
func Split(name string) []string {
	var tokens []string
	for _, part := range strings.Split(name, "_") {
		for _, w := range splitCase(part) {
			tokens = append(tokens, strings.ToLower(w))
		}
	}
	return tokens
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

func splitCase(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		// Capitalized or lowercase word.
		start := i
		j := i
		if isUpper(s[j]) && j+1 < len(s) && isLower(s[j+1]) {
			j++
		}
		if isLower(s[j]) {
			for j < len(s) && isLower(s[j]) {
				j++
			}
			out = append(out, s[start:j])
			i = j
			continue
		}

		// Acronym: the whole capital run at the end of the part, otherwise
		// all but its last letter, which starts the next word.
		if isUpper(s[i]) {
			j = i
			for j < len(s) && isUpper(s[j]) {
				j++
			}
			switch {
			case j == len(s):
				out = append(out, s[i:j])
				i = j
				continue
			case j-i >= 2:
				out = append(out, s[i:j-1])
				i = j - 1
				continue
			}
		}
		i++
	}
	return out
}

// Score rates name in [0,1]: the fraction of its tokens found in dict, scaled
// down when the name is longer than maxLength characters.
func Score(dict *Dictionary, name string, maxLength int) float64 {
	tokens := Split(name)
	if len(tokens) == 0 {
		return 0.0
	}
	valid := 0
	for _, t := range tokens {
		if dict.Contains(t) {
			valid++
		}
	}
	frac := float64(valid) / float64(len(tokens))

	penalty := 1.0
	if n := utf8.RuneCountInString(name); n > maxLength {
		penalty = float64(maxLength) / float64(n)
	}
	return frac * penalty
}

// Average is the mean score over names, or 0 when there are none.
func Average(dict *Dictionary, names []string, maxLength int) float64 {
	if len(names) == 0 {
		return 0.0
	}
	var sum float64
	for _, n := range names {
		sum += Score(dict, n, maxLength)
	}
	return sum / float64(len(names))
}
