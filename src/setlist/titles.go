package setlist

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reTitleWord  = regexp.MustCompile(`[\w']+`)
)

// minimal punctuation fixes applied before matching and display.
var titleReplacements = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
)

// DisplayTitle produces a clean Title Case rendition of a raw song title
// for storage. Source listings are inconsistent about case and unicode
// punctuation.
func DisplayTitle(raw string) string {
	raw = titleReplacements.Replace(strings.TrimSpace(raw))
	if raw == "" {
		return "Unknown Title"
	}
	words := reWhitespace.Split(raw, -1)
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}

// TitleKey reduces a raw title to an ascii-folded lowercase word sequence
// used to match the same song across differently spelled listings.
func TitleKey(raw string) string {
	folded := unidecode.Unidecode(titleReplacements.Replace(raw))
	words := reTitleWord.FindAllString(strings.ToLower(folded), -1)
	return strings.Join(words, " ")
}
