package crawler

import (
	"fmt"
	"regexp"

	"github.com/BenjaminSRussell/gositemap/internal/types"
)

// Pattern tests a URL
type Pattern interface {
	Match(url string) bool
}

// PatternFunc adapts a plain function to Pattern
type PatternFunc func(url string) bool

func (f PatternFunc) Match(url string) bool { return f(url) }

// RegexPattern matches when the expression is found anywhere in the URL
type RegexPattern struct {
	re *regexp.Regexp
}

func (p RegexPattern) Match(url string) bool { return p.re.MatchString(url) }

func (p RegexPattern) String() string { return p.re.String() }

// CompilePatterns compiles regular expressions into patterns
func CompilePatterns(exprs []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", types.ErrInvalidPattern, expr, err)
		}
		patterns = append(patterns, RegexPattern{re: re})
	}
	return patterns, nil
}

// PatternFilter combines include and exclude patterns. Exclusion always wins;
// an empty include list admits everything that is not excluded.
type PatternFilter struct {
	include []Pattern
	exclude []Pattern
}

func NewPatternFilter(include, exclude []Pattern) *PatternFilter {
	return &PatternFilter{
		include: include,
		exclude: exclude,
	}
}

// Matches reports whether url passes the filter
func (f *PatternFilter) Matches(url string) bool {
	for _, p := range f.exclude {
		if p.Match(url) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, p := range f.include {
		if p.Match(url) {
			return true
		}
	}
	return false
}
