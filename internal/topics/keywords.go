// Package topics derives bag-of-keywords topic signatures from document
// analyses and scores them against each other with Jaccard overlap.
package topics

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopWords covers common function words in the two working languages.
var stopWords = map[string]struct{}{
	"的": {}, "是": {}, "在": {}, "了": {}, "和": {}, "与": {},
	"或": {}, "但": {}, "而": {}, "为": {}, "以": {}, "及": {},
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
}

// KeywordSet is a bag of keywords with set semantics: no frequency
// weighting, no stemming.
type KeywordSet map[string]struct{}

// Contains reports whether the set holds the given keyword.
func (s KeywordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// ExtractKeywords tokenizes free text into a keyword set. Text is
// lowercased, punctuation is stripped, and tokens of length <= 2 or in the
// stop-word list are discarded.
func ExtractKeywords(text string) KeywordSet {
	keywords := make(KeywordSet)
	for _, word := range tokenize(text) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords[word] = struct{}{}
	}
	return keywords
}

// Jaccard computes |A∩B| / |A∪B| for two keyword sets. Returns 0 when
// either set is empty.
func Jaccard(a, b KeywordSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for word := range a {
		if _, ok := b[word]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// BestMatch returns the maximum Jaccard similarity between candidate and any
// of the given signatures. Best-match semantics, not average: a candidate
// close to one of the user's documents is a good candidate.
func BestMatch(candidate KeywordSet, signatures map[string]KeywordSet) float64 {
	best := 0.0
	for _, sig := range signatures {
		if s := Jaccard(candidate, sig); s > best {
			best = s
		}
	}
	return best
}

// QueryTerms picks up to max search terms from free text, ranked by
// frequency with ties broken by first appearance. Terms of length <= 3 and
// stop-words are skipped so the resulting query stays specific.
func QueryTerms(text string, max int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, word := range tokenize(text) {
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, seen := counts[word]; !seen {
			firstSeen[word] = i
		}
		counts[word]++
	}

	terms := make([]string, 0, len(counts))
	for word := range counts {
		terms = append(terms, word)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return firstSeen[terms[i]] < firstSeen[terms[j]]
	})

	if max > 0 && len(terms) > max {
		terms = terms[:max]
	}
	return terms
}

// tokenize lowercases text, replaces everything that is not a letter, digit
// or whitespace with a space, and splits on whitespace.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(text))

	return strings.Fields(cleaned)
}
