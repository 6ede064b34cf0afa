package scripture

import "unicode/utf8"

// Span is a verbatim passage the transformer must not alter. Offsets are byte
// positions into the scanned text and include the quotation marks.
type Span struct {
	Start int
	End   int
	Text  string
}

// quotePairs maps opening quotation marks to their closing counterparts.
var quotePairs = map[rune]rune{
	'“': '”',
	'「': '」',
	'『': '』',
	'"': '"',
}

// connector runes may appear between a citation and its quoted passage,
// as in 约翰福音3:16说："..." .
var connectorRunes = map[rune]struct{}{
	'说': {},
	'道': {},
	'：': {},
	':': {},
	'，': {},
	',': {},
	'、': {},
	' ': {},
	'\t': {},
	'）': {},
	')': {},
}

// maxConnectorRunes bounds how far past a citation the opening quote may sit.
const maxConnectorRunes = 4

// DetectSpans scans text for quoted passages that directly follow a scripture
// citation and returns them in document order. Overlapping candidates resolve
// to the earliest quote; each quoted passage is reported once.
func DetectSpans(text string) []Span {
	refs := FindReferences(text)
	if len(refs) == 0 {
		return nil
	}

	var spans []Span
	lastEnd := 0
	for _, ref := range refs {
		if ref.End < lastEnd {
			continue
		}
		span, ok := quotedSpanAfter(text, ref.End)
		if !ok || span.Start < lastEnd {
			continue
		}
		spans = append(spans, span)
		lastEnd = span.End
	}
	return spans
}

func quotedSpanAfter(text string, offset int) (Span, bool) {
	pos := offset
	for skipped := 0; skipped <= maxConnectorRunes && pos < len(text); skipped++ {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if closing, ok := quotePairs[r]; ok {
			end, found := findClosing(text, pos+size, r, closing)
			if !found {
				return Span{}, false
			}
			return Span{Start: pos, End: end, Text: text[pos:end]}, true
		}
		if _, ok := connectorRunes[r]; !ok {
			return Span{}, false
		}
		pos += size
	}
	return Span{}, false
}

func findClosing(text string, from int, opening, closing rune) (int, bool) {
	depth := 1
	for pos := from; pos < len(text); {
		r, size := utf8.DecodeRuneInString(text[pos:])
		switch {
		case r == closing:
			depth--
			if depth == 0 {
				return pos + size, true
			}
		case r == opening && opening != closing:
			depth++
		}
		pos += size
	}
	return 0, false
}
