package matcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagewatch-dev/pagewatch/internal/types"
)

func TestEvaluateContains(t *testing.T) {
	content := "Welcome to our store, please Buy Now today before the sale ends."

	result, err := Evaluate(content, "Buy Now", types.PatternContains)

	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Contains(t, strings.ToLower(result.Snippet), "buy now")
}

func TestEvaluateContainsCaseInsensitive(t *testing.T) {
	result, err := Evaluate("item is IN STOCK now", "in stock", types.PatternContains)

	require.NoError(t, err)
	assert.True(t, result.Matched)
}

func TestEvaluateContainsMiss(t *testing.T) {
	result, err := Evaluate("sold out, sorry", "Buy Now", types.PatternContains)

	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Empty(t, result.Snippet)
}

func TestEvaluateContainsSnippetBounds(t *testing.T) {
	padding := strings.Repeat("x", 200)
	content := padding + "TARGET" + padding

	result, err := Evaluate(content, "target", types.PatternContains)

	require.NoError(t, err)
	require.True(t, result.Matched)
	// 50 chars each side plus the match itself.
	assert.LessOrEqual(t, len(result.Snippet), len("TARGET")+2*types.SnippetContext)
	assert.Contains(t, result.Snippet, "TARGET")
}

func TestEvaluateContainsSnippetAtStart(t *testing.T) {
	result, err := Evaluate("TARGET then a long tail of content", "TARGET", types.PatternContains)

	require.NoError(t, err)
	require.True(t, result.Matched)
	assert.True(t, strings.HasPrefix(result.Snippet, "TARGET"))
}

func TestEvaluateNotContains(t *testing.T) {
	result, err := Evaluate("everything is fine", "out of stock", types.PatternNotContains)

	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Empty(t, result.Snippet)

	result, err = Evaluate("currently OUT OF STOCK", "out of stock", types.PatternNotContains)

	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestEvaluateRegex(t *testing.T) {
	result, err := Evaluate("Price: $49.99 per unit", `\$\d+\.\d{2}`, types.PatternRegex)

	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Contains(t, result.Snippet, "$49.99")
}

func TestEvaluateRegexCaseInsensitive(t *testing.T) {
	result, err := Evaluate("STATUS: AVAILABLE", "status: available", types.PatternRegex)

	require.NoError(t, err)
	assert.True(t, result.Matched)
}

func TestEvaluateRegexInvalid(t *testing.T) {
	_, err := Evaluate("content", "([unclosed", types.PatternRegex)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid regex")
}

func TestEvaluateUnsupportedType(t *testing.T) {
	_, err := Evaluate("content", "pattern", "fuzzy")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported pattern type")
}

func TestEvaluateIdempotent(t *testing.T) {
	content := "the quick brown fox jumps over the lazy dog"

	first, err := Evaluate(content, "brown fox", types.PatternContains)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Evaluate(content, "brown fox", types.PatternContains)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
