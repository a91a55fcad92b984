package roster

import (
	"fmt"
	"regexp"
)

// Patterns are regular expressions anchored at the start of the string they
// are matched against. An empty set matches nothing.
type Patterns []*regexp.Regexp

// CompilePatterns compiles each pattern with a start anchor.
func CompilePatterns(patterns []string) (Patterns, error) {
	out := make(Patterns, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// MatchAny reports whether any pattern matches s.
func (ps Patterns) MatchAny(s string) bool {
	for _, re := range ps {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
