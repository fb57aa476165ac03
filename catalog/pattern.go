package catalog

import (
	"path"
	"regexp"
	"strings"
	"sync"
)

// PatternSet compiles a caller-supplied list of glob patterns into cached
// regular expressions and answers whether a given path matches any of
// them. A nil PatternSet (via NewPatternSet(nil)) matches everything; one
// built from an empty, non-nil slice matches nothing.
type PatternSet struct {
	matchAll bool
	matchNone bool

	mu       sync.Mutex
	compiled []*regexp.Regexp
}

// NewPatternSet compiles patterns once, up front. patterns == nil means
// "all files"; an empty, non-nil slice means "none"; otherwise the result
// matches the union of all patterns, per the specification.
func NewPatternSet(patterns []string) *PatternSet {
	if patterns == nil {
		return &PatternSet{matchAll: true}
	}
	if len(patterns) == 0 {
		return &PatternSet{matchNone: true}
	}
	ps := &PatternSet{compiled: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		ps.compiled = append(ps.compiled, regexp.MustCompile(globToRegex(p)))
	}
	return ps
}

// Match reports whether name matches the pattern set.
func (ps *PatternSet) Match(name string) bool {
	if ps.matchAll {
		return true
	}
	if ps.matchNone {
		return false
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, re := range ps.compiled {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// globToRegex converts one glob pattern into an anchored, case-insensitive
// regular expression, per the specification: escape every regex
// metacharacter except '*' and '?', replace '*' with ".*" and '?' with
// ".", treat path separators literally, and expand a trailing separator
// to "*.*". Such a pattern matches a path under that directory, at any
// depth, only when the rest of the path contains a '.'.
func globToRegex(pattern string) string {
	if strings.HasSuffix(pattern, "/") || strings.HasSuffix(pattern, string(path.Separator)) {
		pattern += "*.*"
	}

	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			if isRegexMeta(r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('$')
	return b.String()
}

func isRegexMeta(r rune) bool {
	switch r {
	case '.', '+', '(', ')', '|', '[', ']', '{', '}', '^', '$', '\\':
		return true
	}
	return false
}
