package render

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"slidecast/app/internal/deck"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	renderer, err := NewRenderer(Options{CodeStyle: "monokai", Logger: logger})
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}
	return renderer
}

func TestRendererConvertsMarkdown(t *testing.T) {
	t.Parallel()

	renderer := testRenderer(t)

	html, err := renderer.Slide(deck.Slide{Body: "# Request Lifecycle\n\nMiddleware runs **first**.\n"})
	if err != nil {
		t.Fatalf("Slide returned error: %v", err)
	}

	if !strings.Contains(html, "<h1") {
		t.Errorf("expected heading in output, got %q", html)
	}
	if !strings.Contains(html, "<strong>first</strong>") {
		t.Errorf("expected bold text in output, got %q", html)
	}
}

func TestRendererHighlightsCodeBlocks(t *testing.T) {
	t.Parallel()

	renderer := testRenderer(t)

	body := "```go\nfunc main() {}\n```\n"
	html, err := renderer.Slide(deck.Slide{Body: body})
	if err != nil {
		t.Fatalf("Slide returned error: %v", err)
	}

	if !strings.Contains(html, "<pre") {
		t.Errorf("expected highlighted pre block, got %q", html)
	}
	if !strings.Contains(html, "main") {
		t.Errorf("expected code content in output, got %q", html)
	}
}

func TestRendererHandlesUnknownLanguage(t *testing.T) {
	t.Parallel()

	renderer := testRenderer(t)

	body := "```nosuchlang\nplain text\n```\n"
	html, err := renderer.Slide(deck.Slide{Body: body})
	if err != nil {
		t.Fatalf("Slide returned error: %v", err)
	}

	if !strings.Contains(html, "plain text") {
		t.Errorf("expected code content preserved for unknown language, got %q", html)
	}
}

func TestRendererStripsEmbeddedScripts(t *testing.T) {
	t.Parallel()

	renderer := testRenderer(t)

	body := "Safe paragraph.\n\n<script>alert('x')</script>\n"
	html, err := renderer.Slide(deck.Slide{Body: body})
	if err != nil {
		t.Fatalf("Slide returned error: %v", err)
	}

	if strings.Contains(html, "<script") {
		t.Errorf("expected script tag removed, got %q", html)
	}
	if !strings.Contains(html, "Safe paragraph.") {
		t.Errorf("expected safe content preserved, got %q", html)
	}
}

func TestSanitizeStripsEventHandlers(t *testing.T) {
	t.Parallel()

	clean, err := Sanitize(`<a href="/next" onclick="steal()">next</a>`)
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}

	if strings.Contains(clean, "onclick") {
		t.Errorf("expected onclick removed, got %q", clean)
	}
	if !strings.Contains(clean, `href="/next"`) {
		t.Errorf("expected safe href preserved, got %q", clean)
	}
}

func TestSanitizeBlocksScriptSchemes(t *testing.T) {
	t.Parallel()

	clean, err := Sanitize(`<a href="javascript:alert(1)">boom</a>`)
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}

	if strings.Contains(clean, "javascript:") {
		t.Errorf("expected javascript href removed, got %q", clean)
	}
	if !strings.Contains(clean, "boom") {
		t.Errorf("expected link text preserved, got %q", clean)
	}
}

func TestSanitizeRemovesNestedBlockedElements(t *testing.T) {
	t.Parallel()

	clean, err := Sanitize(`<div>ok<iframe src="https://example.com"></iframe></div>`)
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}

	if strings.Contains(clean, "<iframe") {
		t.Errorf("expected iframe removed, got %q", clean)
	}
	if !strings.Contains(clean, "ok") {
		t.Errorf("expected surrounding content preserved, got %q", clean)
	}
}
