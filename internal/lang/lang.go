// Package lang identifies the scanner language of a source file and holds the
// reserved-word sets used for keyword density.
package lang

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Language is the scanner language tag reported in the feature vector.
type Language string

const (
	Python     Language = "Python"
	JavaScript Language = "JavaScript"
	Unknown    Language = "Unknown"
)

// Detect maps a file path to its language. Only the exact extensions .py and
// .js are recognized; everything else is Unknown.
func Detect(path string) Language {
	switch filepath.Ext(path) {
	case ".py":
		return Python
	case ".js":
		return JavaScript
	default:
		return Unknown
	}
}

//go:embed keywords.yaml
var keywordsYAML []byte

// KeywordSet is an immutable set of reserved words.
type KeywordSet map[string]struct{}

// Contains reports whether word is a reserved word. A nil set contains nothing.
func (k KeywordSet) Contains(word string) bool {
	_, ok := k[word]
	return ok
}

// Len returns the number of words in the set.
func (k KeywordSet) Len() int { return len(k) }

// Keywords holds one reserved-word set per supported language.
type Keywords struct {
	python     KeywordSet
	javascript KeywordSet
}

type keywordFile struct {
	Python     []string `yaml:"python"`
	JavaScript []string `yaml:"javascript"`
}

// LoadKeywords parses the embedded keyword configuration.
func LoadKeywords() (*Keywords, error) {
	return ParseKeywords(keywordsYAML)
}

// ParseKeywords parses a YAML document with "python" and "javascript" lists.
func ParseKeywords(data []byte) (*Keywords, error) {
	var f keywordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}
	return &Keywords{
		python:     toSet(f.Python),
		javascript: toSet(f.JavaScript),
	}, nil
}

// For returns the keyword set of a language. Unknown gets an empty set.
func (k *Keywords) For(l Language) KeywordSet {
	if k == nil {
		return nil
	}
	switch l {
	case Python:
		return k.python
	case JavaScript:
		return k.javascript
	}
	return nil
}

func toSet(words []string) KeywordSet {
	set := make(KeywordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
