package transform

import (
	"strings"
	"testing"

	"redraft/internal/scripture"
)

const sampleText = `牧师引用约翰福音3:16说：“神爱世人。”接着他讲了一个故事。后来他又引用诗篇23:1说：“耶和华是我的牧者。”会众很受感动。`

func TestMaskReplacesEverySpan(t *testing.T) {
	spans := scripture.DetectSpans(sampleText)
	if len(spans) != 2 {
		t.Fatalf("setup: expected 2 spans, got %d", len(spans))
	}

	masked, err := Mask(sampleText, spans)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if len(masked.Tokens) != 2 {
		t.Fatalf("tokens = %d", len(masked.Tokens))
	}
	for _, token := range masked.Tokens {
		if strings.Contains(masked.Text, token.Original) {
			t.Errorf("original span still present after masking: %q", token.Original)
		}
		if strings.Count(masked.Text, token.Placeholder) != 1 {
			t.Errorf("placeholder %q should appear exactly once", token.Placeholder)
		}
	}
	if masked.Tokens[0].Placeholder == masked.Tokens[1].Placeholder {
		t.Error("placeholders must be unique per span")
	}
}

func TestMaskNoSpansIsIdentity(t *testing.T) {
	masked, err := Mask("普通文本", nil)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if masked.Text != "普通文本" || len(masked.Tokens) != 0 {
		t.Fatalf("unexpected mask result: %#v", masked)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	spans := scripture.DetectSpans(sampleText)
	masked, err := Mask(sampleText, spans)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}

	restored, err := Restore(masked.Text, masked.Tokens)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored != sampleText {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", restored, sampleText)
	}
}

func TestRestoreAfterRewriteKeepsSpansVerbatim(t *testing.T) {
	spans := scripture.DetectSpans(sampleText)
	masked, err := Mask(sampleText, spans)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}

	// Simulate the model rewording everything around the placeholders.
	rewritten := "改写后的开头。" + masked.Tokens[0].Placeholder + "改写后的中间。" + masked.Tokens[1].Placeholder + "改写后的结尾。"

	restored, err := Restore(rewritten, masked.Tokens)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for _, span := range spans {
		if !strings.Contains(restored, span.Text) {
			t.Errorf("span %q not verbatim in result", span.Text)
		}
	}
}

func TestRestoreFailsOnDroppedPlaceholder(t *testing.T) {
	spans := scripture.DetectSpans(sampleText)
	masked, err := Mask(sampleText, spans)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}

	rewritten := strings.Replace(masked.Text, masked.Tokens[1].Placeholder, "", 1)
	if _, err := Restore(rewritten, masked.Tokens); err == nil {
		t.Fatal("expected error for dropped placeholder")
	}
}

func TestMaskAvoidsTokenCollision(t *testing.T) {
	text := "开头[[REDRAFT-QUOTE-也许撞上]]约翰福音3:16说：“经文。”结尾"
	spans := scripture.DetectSpans(text)
	if len(spans) != 1 {
		t.Fatalf("setup: spans = %v", spans)
	}
	masked, err := Mask(text, spans)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	restored, err := Restore(masked.Text, masked.Tokens)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored != text {
		t.Errorf("round trip mismatch with pre-existing bracket text")
	}
}
