package filter

import (
	"regexp"
	"strings"

	"github.com/amishk599/liveroles/internal/model"
)

// gate is one include or exclude condition: a posting matches when any
// pattern or any term matches. A gate with neither is unset.
type gate struct {
	patterns []*regexp.Regexp
	terms    []string
}

func newGate(patterns []*regexp.Regexp, terms ...[]string) gate {
	g := gate{patterns: patterns}
	for _, t := range terms {
		g.terms = append(g.terms, t...)
	}
	return g
}

func (g gate) defined() bool {
	return len(g.patterns) > 0 || len(g.terms) > 0
}

func (g gate) match(text string) bool {
	return matchAny(text, g.patterns) || includesAnyTerm(text, g.terms)
}

// Compile turns patterns into case-insensitive regular expressions.
func Compile(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(text string, patterns []*regexp.Regexp) bool {
	if text == "" {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// includesAnyTerm reports whether normalized text contains any non-blank
// normalized term. No terms never match.
func includesAnyTerm(text string, terms []string) bool {
	base := model.Normalize(text)
	if base == "" {
		return false
	}
	for _, t := range terms {
		needle := model.Normalize(t)
		if needle != "" && strings.Contains(base, needle) {
			return true
		}
	}
	return false
}

// includesAllTerms reports whether normalized text contains every term.
// No terms always match; a blank term never does.
func includesAllTerms(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	base := model.Normalize(text)
	if base == "" {
		return false
	}
	for _, t := range terms {
		needle := model.Normalize(t)
		if needle == "" || !strings.Contains(base, needle) {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
