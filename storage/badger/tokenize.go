package badger

import "strings"

// Stop words excluded from the lexical token index
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenize splits text into words, lowercases, trims punctuation, and
// removes stop words and duplicates. Used both when indexing chunk content
// and when parsing lexical queries.
func tokenize(text string) []string {
	words := strings.Fields(text)
	seen := make(map[string]bool, len(words))
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned == "" || stopWords[cleaned] || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		tokens = append(tokens, cleaned)
	}

	return tokens
}
