package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	t.Run("drops stop words and short tokens", func(t *testing.T) {
		set := ExtractKeywords("The transformer and the attention at scale")
		assert.True(t, set.Contains("transformer"))
		assert.True(t, set.Contains("attention"))
		assert.True(t, set.Contains("scale"))
		assert.False(t, set.Contains("the"))
		assert.False(t, set.Contains("and"))
		assert.False(t, set.Contains("at"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		lower := ExtractKeywords("neural networks for vision")
		mixed := ExtractKeywords("Neural NETWORKS For Vision")
		assert.Equal(t, lower, mixed)
	})

	t.Run("strips punctuation", func(t *testing.T) {
		set := ExtractKeywords("graph-based, retrieval; (augmented) generation!")
		assert.True(t, set.Contains("graph"))
		assert.True(t, set.Contains("based"))
		assert.True(t, set.Contains("retrieval"))
		assert.True(t, set.Contains("augmented"))
		assert.True(t, set.Contains("generation"))
	})

	t.Run("chinese stop words filtered", func(t *testing.T) {
		set := ExtractKeywords("深度学习模型 的 性能评估")
		assert.True(t, set.Contains("深度学习模型"))
		assert.True(t, set.Contains("性能评估"))
		assert.False(t, set.Contains("的"))
	})

	t.Run("empty input yields empty set", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords(""))
		assert.Empty(t, ExtractKeywords("a an at"))
	})
}

func TestJaccard(t *testing.T) {
	a := ExtractKeywords("transformer attention sequence")
	b := ExtractKeywords("attention sequence recurrent")

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
	})

	t.Run("reflexive for non-empty sets", func(t *testing.T) {
		assert.Equal(t, 1.0, Jaccard(a, a))
	})

	t.Run("empty set scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Jaccard(a, KeywordSet{}))
		assert.Equal(t, 0.0, Jaccard(KeywordSet{}, a))
		assert.Equal(t, 0.0, Jaccard(KeywordSet{}, KeywordSet{}))
	})

	t.Run("bounded in unit interval", func(t *testing.T) {
		s := Jaccard(a, b)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		// {attention, sequence} over {transformer, attention, sequence, recurrent}
		assert.InDelta(t, 0.5, s, 1e-9)
	})

	t.Run("disjoint sets score zero", func(t *testing.T) {
		c := ExtractKeywords("protein folding dynamics")
		assert.Equal(t, 0.0, Jaccard(a, c))
	})
}

func TestBestMatch(t *testing.T) {
	signatures := map[string]KeywordSet{
		"doc-1": ExtractKeywords("transformer attention sequence"),
		"doc-2": ExtractKeywords("protein folding dynamics"),
	}

	candidate := ExtractKeywords("attention sequence transformer")
	assert.Equal(t, 1.0, BestMatch(candidate, signatures))

	unrelated := ExtractKeywords("quantum error correction")
	assert.Equal(t, 0.0, BestMatch(unrelated, signatures))

	assert.Equal(t, 0.0, BestMatch(candidate, nil))
}

func TestQueryTerms(t *testing.T) {
	t.Run("caps at max and ranks by frequency", func(t *testing.T) {
		text := "retrieval retrieval retrieval augmented augmented generation models knowledge graphs embeddings"
		terms := QueryTerms(text, 5)
		assert.Len(t, terms, 5)
		assert.Equal(t, "retrieval", terms[0])
		assert.Equal(t, "augmented", terms[1])
	})

	t.Run("ties break by first appearance", func(t *testing.T) {
		terms := QueryTerms("zebra apple zebra apple", 5)
		assert.Equal(t, []string{"zebra", "apple"}, terms)
	})

	t.Run("skips stop words and short tokens", func(t *testing.T) {
		terms := QueryTerms("the cat sat on mats with deep learning", 5)
		assert.NotContains(t, terms, "the")
		assert.NotContains(t, terms, "cat")
		assert.NotContains(t, terms, "with")
		assert.Contains(t, terms, "learning")
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, QueryTerms("", 5))
	})
}
