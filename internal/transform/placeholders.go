package transform

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"redraft/internal/scripture"
)

// Masked pairs placeholder tokens with the verbatim passages they replace.
type Masked struct {
	Text   string
	Tokens []Token
}

// Token is one placeholder substitution.
type Token struct {
	Placeholder string
	Original    string
}

const tokenPrefix = "[[REDRAFT-QUOTE-"

// Mask replaces every preserved span with a unique placeholder token that the
// rewrite model is instructed to leave untouched. The nonce is re-rolled if a
// candidate token already occurs in the text, so tokens can never collide
// with document content.
func Mask(text string, spans []scripture.Span) (Masked, error) {
	if len(spans) == 0 {
		return Masked{Text: text}, nil
	}

	nonce, err := freshNonce(text)
	if err != nil {
		return Masked{}, err
	}

	var b strings.Builder
	b.Grow(len(text))
	tokens := make([]Token, 0, len(spans))
	last := 0
	for i, span := range spans {
		placeholder := fmt.Sprintf("%s%s-%d]]", tokenPrefix, nonce, i)
		b.WriteString(text[last:span.Start])
		b.WriteString(placeholder)
		tokens = append(tokens, Token{Placeholder: placeholder, Original: span.Text})
		last = span.End
	}
	b.WriteString(text[last:])

	return Masked{Text: b.String(), Tokens: tokens}, nil
}

// Restore substitutes every placeholder back with its original passage. It
// fails if the rewritten text dropped or altered any placeholder.
func Restore(rewritten string, tokens []Token) (string, error) {
	result := rewritten
	for _, token := range tokens {
		if !strings.Contains(result, token.Placeholder) {
			return "", &MissingPlaceholderError{Placeholder: token.Placeholder}
		}
		result = strings.ReplaceAll(result, token.Placeholder, token.Original)
	}
	return result, nil
}

// MissingPlaceholderError reports a placeholder the rewrite model dropped.
type MissingPlaceholderError struct {
	Placeholder string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("placeholder %s missing from rewritten text", e.Placeholder)
}

func freshNonce(text string) (string, error) {
	for attempt := 0; attempt < 8; attempt++ {
		buf := make([]byte, 6)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate nonce: %w", err)
		}
		nonce := hex.EncodeToString(buf)
		if !strings.Contains(text, tokenPrefix+nonce) {
			return nonce, nil
		}
	}
	return "", fmt.Errorf("could not find collision-free nonce")
}
