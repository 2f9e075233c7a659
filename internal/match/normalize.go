package match

import (
	"strings"
	"unicode"
)

// NormalizeKey folds a key for comparison: camelCase is split, everything is
// lowercased and separators ('_', '-', '.', ' ') are dropped.
//
//	NormalizeKey("publishedAt")  == "publishedat"
//	NormalizeKey("published_at") == "publishedat"
func NormalizeKey(s string) string {
	return strings.Join(Tokens(s), "")
}

// Tokens splits a key into lowercase words.
//
//	Tokens("getHTTPResponse") == []string{"get", "http", "response"}
//	Tokens("x-template-items") == []string{"x", "template", "items"}
func Tokens(s string) []string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}

	return words
}

func splitWords(s string) []string {
	var (
		words   []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsWord(runes, i) {
			flush()
		}

		current = append(current, r)
	}

	flush()

	return words
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// startsWord reports whether runes[i] begins a new camelCase word:
// "orderID" splits before 'I', "XMLParser" splits before 'P'.
func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
