package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pagewatch-dev/pagewatch/internal/types"
)

// Result is the outcome of evaluating page content against a pattern.
type Result struct {
	Matched bool
	Snippet string
}

// Evaluate tests content against pattern according to patternType. It is
// a pure function: identical inputs always yield identical results. An
// invalid regex or unknown pattern type is returned as an error, which
// callers surface as a check-level "error" status rather than "not_found".
func Evaluate(content, pattern, patternType string) (Result, error) {
	switch patternType {
	case types.PatternContains:
		index := indexFold(content, pattern)

		if index < 0 {
			return Result{}, nil
		}

		return Result{
			Matched: true,
			Snippet: contextSnippet(content, index, index+len(pattern)),
		}, nil

	case types.PatternNotContains:
		return Result{Matched: indexFold(content, pattern) < 0}, nil

	case types.PatternRegex:
		re, err := regexp.Compile("(?i)" + pattern)

		if err != nil {
			return Result{}, fmt.Errorf("invalid regex pattern: %v", err)
		}

		loc := re.FindStringIndex(content)

		if loc == nil {
			return Result{}, nil
		}

		return Result{
			Matched: true,
			Snippet: contextSnippet(content, loc[0], loc[1]),
		}, nil

	default:
		return Result{}, fmt.Errorf("unsupported pattern type: %s", patternType)
	}
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

// contextSnippet excerpts the match plus up to SnippetContext characters
// of surrounding context on each side, trimmed of whitespace.
func contextSnippet(content string, start, end int) string {
	from := start - types.SnippetContext

	if from < 0 {
		from = 0
	}

	to := end + types.SnippetContext

	if to > len(content) {
		to = len(content)
	}

	return strings.TrimSpace(content[from:to])
}
