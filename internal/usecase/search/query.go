package search

import (
	"strings"
	"unicode/utf8"
)

// minWordLen is the shortest word treated as a keyword. Shorter words
// ("in", "at", "to") carry little signal and are dropped.
const minWordLen = 3

// Decompose turns a raw query into prioritized match candidates: the full
// phrase first, then contiguous word windows from longest to shortest (at
// least two words), then single keywords. Duplicates are skipped.
func Decompose(query string) []string {
	phrase := Phrase(query)
	if phrase == "" {
		return []string{}
	}

	words := Keywords(phrase)
	combos := []string{phrase}
	seen := map[string]struct{}{phrase: {}}

	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		combos = append(combos, c)
	}

	for size := len(words) - 1; size >= 2; size-- {
		for i := 0; i+size <= len(words); i++ {
			add(strings.Join(words[i:i+size], " "))
		}
	}

	for _, w := range words {
		add(w)
	}

	return combos
}

// Phrase lower-cases the query and collapses its whitespace.
func Phrase(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Keywords returns the words of s that are long enough to match on their own.
func Keywords(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minWordLen {
			words = append(words, f)
		}
	}
	return words
}

// isMultiWord reports whether a combination spans more than one word.
func isMultiWord(c string) bool {
	return strings.Contains(c, " ")
}
