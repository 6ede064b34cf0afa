package scripture

import (
	"strings"
	"testing"
)

func TestFindReferences(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"full name", "正如约翰福音3:16所说的那样。", []string{"约翰福音3:16"}},
		{"abbreviation", "参见腓4:6的教导。", []string{"腓4:6"}},
		{"fullwidth colon", "诗篇23：1是熟悉的经文。", []string{"诗篇23：1"}},
		{"parenthesized", "这段话（罗马书8:28）很重要。", []string{"（罗马书8:28）"}},
		{"multiple", "马太福音5:3和路加福音6:20平行。", []string{"马太福音5:3", "路加福音6:20"}},
		{"none", "今天天气很好。", nil},
		{"no verse number", "约翰福音第三章讲重生。", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			refs := FindReferences(tc.text)
			if len(refs) != len(tc.want) {
				t.Fatalf("got %d refs %v, want %d", len(refs), refs, len(tc.want))
			}
			for i, ref := range refs {
				if ref.Text != tc.want[i] {
					t.Errorf("ref[%d] = %q, want %q", i, ref.Text, tc.want[i])
				}
				if tc.text[ref.Start:ref.End] != ref.Text {
					t.Errorf("offsets do not slice to text: %q", ref.Text)
				}
			}
		})
	}
}

func TestFindReferencesPrefersFullBookName(t *testing.T) {
	refs := FindReferences("约翰福音3:16")
	if len(refs) != 1 || refs[0].Text != "约翰福音3:16" {
		t.Fatalf("expected full name match, got %v", refs)
	}
}

func TestDetectSpansBasic(t *testing.T) {
	text := `牧师引用约翰福音3:16说："神爱世人，甚至将他的独生子赐给他们。"然后继续讲道。`
	spans := DetectSpans(text)
	if len(spans) != 1 {
		t.Fatalf("got %d spans: %v", len(spans), spans)
	}
	span := spans[0]
	if !strings.HasPrefix(span.Text, `"`) || !strings.HasSuffix(span.Text, `"`) {
		t.Errorf("span should include quote marks: %q", span.Text)
	}
	if text[span.Start:span.End] != span.Text {
		t.Errorf("offsets do not slice to text")
	}
	if !strings.Contains(span.Text, "神爱世人") {
		t.Errorf("span content wrong: %q", span.Text)
	}
}

func TestDetectSpansFullWidthQuotes(t *testing.T) {
	text := "诗篇23:1说：“耶和华是我的牧者，我必不致缺乏。”这是大卫的诗。"
	spans := DetectSpans(text)
	if len(spans) != 1 {
		t.Fatalf("got %d spans: %v", len(spans), spans)
	}
	if spans[0].Text != "“耶和华是我的牧者，我必不致缺乏。”" {
		t.Errorf("span = %q", spans[0].Text)
	}
}

func TestDetectSpansCornerQuotes(t *testing.T) {
	text := "马太福音5:3「虚心的人有福了」是登山宝训的开头。"
	spans := DetectSpans(text)
	if len(spans) != 1 || spans[0].Text != "「虚心的人有福了」" {
		t.Fatalf("spans = %v", spans)
	}
}

func TestDetectSpansIgnoresUnanchoredQuotes(t *testing.T) {
	text := "他说：“这只是普通的引用，没有经文出处。”"
	if spans := DetectSpans(text); spans != nil {
		t.Fatalf("expected no spans, got %v", spans)
	}
}

func TestDetectSpansIgnoresDistantQuotes(t *testing.T) {
	text := "约翰福音3:16是整本圣经中最广为人知的一节经文“引用”"
	if spans := DetectSpans(text); spans != nil {
		t.Fatalf("expected no spans for distant quote, got %v", spans)
	}
}

func TestDetectSpansUnterminatedQuote(t *testing.T) {
	text := "诗篇23:1说：“耶和华是我的牧者"
	if spans := DetectSpans(text); spans != nil {
		t.Fatalf("expected no spans for unterminated quote, got %v", spans)
	}
}

func TestDetectSpansMultiple(t *testing.T) {
	text := "诗篇23:1说：“耶和华是我的牧者。”而约翰福音3:16说：“神爱世人。”两处都很有名。"
	spans := DetectSpans(text)
	if len(spans) != 2 {
		t.Fatalf("got %d spans: %v", len(spans), spans)
	}
	if spans[0].End > spans[1].Start {
		t.Error("spans should not overlap and must be ordered")
	}
}

func TestContainsReference(t *testing.T) {
	if !ContainsReference("林前13:4") {
		t.Error("expected reference detection for 林前13:4")
	}
	if ContainsReference("没有经文的一句话") {
		t.Error("unexpected reference detection")
	}
}
