package analyzer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopWords are filtered out of keyword extraction. Keeping them would
// drown the useful terms in grammatical noise.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"what": {}, "which": {}, "who": {}, "when": {}, "where": {}, "why": {},
	"how": {}, "all": {}, "each": {}, "every": {}, "both": {}, "few": {},
	"more": {}, "most": {}, "other": {}, "some": {}, "such": {}, "no": {},
	"nor": {}, "not": {}, "only": {}, "own": {}, "same": {}, "so": {},
	"than": {}, "too": {}, "very": {}, "as": {}, "by": {}, "from": {},
}

// ExtractKeywords pulls candidate keywords out of free text. Words are
// lowercased, punctuation-split, and kept only when longer than two
// characters, purely alphabetic, and not a stop word.
func ExtractKeywords(text string) map[string]struct{} {
	keywords := make(map[string]struct{})
	if text == "" {
		return keywords
	}

	normalized := strings.ToLower(text)
	normalized = strings.ReplaceAll(normalized, ",", " ")
	normalized = strings.ReplaceAll(normalized, ".", " ")
	normalized = strings.ReplaceAll(normalized, "\n", " ")

	for _, word := range strings.Fields(normalized) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if !isAlpha(word) {
			continue
		}
		keywords[word] = struct{}{}
	}

	return keywords
}

// MergeKeywords combines keyword sets into a single sorted slice
func MergeKeywords(sets ...map[string]struct{}) []string {
	merged := make(map[string]struct{})
	for _, set := range sets {
		for word := range set {
			merged[word] = struct{}{}
		}
	}

	result := make([]string, 0, len(merged))
	for word := range merged {
		result = append(result, word)
	}
	sort.Strings(result)

	return result
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
