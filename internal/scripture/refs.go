package scripture

import (
	"regexp"
	"strings"
)

// referencePattern matches chapter-and-verse citations such as 约翰福音3:16,
// 腓立比书4:6, or 约3:16, with either ASCII or full-width colons and optional
// surrounding parentheses.
var referencePattern = regexp.MustCompile(buildReferencePattern())

func buildReferencePattern() string {
	names := bookNames()
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = regexp.QuoteMeta(name)
	}
	var b strings.Builder
	b.WriteString(`[（(]?`)
	b.WriteString(`(?:`)
	b.WriteString(strings.Join(quoted, "|"))
	b.WriteString(`)`)
	b.WriteString(`\s*`)
	b.WriteString(`[0-9]+[:：][0-9]+`)
	b.WriteString(`[）)]?`)
	return b.String()
}

// Reference is a detected scripture citation with byte offsets into the
// scanned text.
type Reference struct {
	Start int
	End   int
	Text  string
}

// FindReferences returns every citation in the text in document order.
func FindReferences(text string) []Reference {
	matches := referencePattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{Start: m[0], End: m[1], Text: text[m[0]:m[1]]})
	}
	return refs
}

// ContainsReference reports whether the text holds at least one citation.
func ContainsReference(text string) bool {
	return referencePattern.MatchString(text)
}
