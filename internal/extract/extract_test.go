package extract

import (
	"strings"
	"testing"
)

func TestTextPlain(t *testing.T) {
	got, err := Text("notes.txt", strings.NewReader("  cell   biology\nnotes  "))
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	if got != "cell biology notes" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestTextHTMLStripsMarkupAndScripts(t *testing.T) {
	page := `<html><head><script>var x=1;</script><style>p{}</style></head>
<body><h1>Photosynthesis</h1><p>Plants make sugar.</p></body></html>`
	got, err := Text("page.html", strings.NewReader(page))
	if err != nil {
		t.Fatalf("extract html: %v", err)
	}
	if !strings.Contains(got, "Photosynthesis") || !strings.Contains(got, "Plants make sugar.") {
		t.Fatalf("content missing from %q", got)
	}
	if strings.Contains(got, "var x=1") {
		t.Fatalf("script text must be stripped, got %q", got)
	}
}

func TestTextEmptyFileErrors(t *testing.T) {
	if _, err := Text("empty.txt", strings.NewReader("   ")); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestPreviewCutsLongText(t *testing.T) {
	long := strings.Repeat("a", PreviewRunes+50)
	preview := Preview(long)
	if len([]rune(preview)) != PreviewRunes+1 {
		t.Fatalf("preview should cut at %d runes plus ellipsis, got %d", PreviewRunes, len([]rune(preview)))
	}
	short := "short text"
	if Preview(short) != short {
		t.Fatalf("short text should pass through")
	}
}
