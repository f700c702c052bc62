package deck

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

const sampleDeck = `---
title: Request Lifecycle
theme: seriph
colorScheme: dark
highlighter: monokai
---

# Intro

Welcome to the talk.

---
layout: center
---

# Step 1

The middleware runs first.

` + "```ts {1,3-4}\napp.use(logger);\nconst guard = new AuthGuard();\napp.useGlobalGuards(guard);\napp.listen(3000);\n```" + `

---
layout: end
---

# Thank you
`

func testParser() *Parser {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewParser(logger)
}

func TestParseDeckConfigAndSlides(t *testing.T) {
	t.Parallel()

	parsed, err := testParser().Parse(sampleDeck)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if parsed.Config.Title != "Request Lifecycle" {
		t.Errorf("expected deck title 'Request Lifecycle', got %q", parsed.Config.Title)
	}
	if parsed.Config.Theme != "seriph" {
		t.Errorf("expected theme seriph, got %q", parsed.Config.Theme)
	}
	if parsed.Config.ColorScheme != "dark" {
		t.Errorf("expected color scheme dark, got %q", parsed.Config.ColorScheme)
	}
	if parsed.Config.Highlighter != "monokai" {
		t.Errorf("expected highlighter monokai, got %q", parsed.Config.Highlighter)
	}
	if parsed.Config.Wrap {
		t.Errorf("expected wrap disabled by default")
	}

	if parsed.Len() != 3 {
		t.Fatalf("expected 3 slides, got %d", parsed.Len())
	}

	expectedTitles := []string{"Intro", "Step 1", "Thank you"}
	expectedLayouts := []Layout{LayoutDefault, LayoutCenter, LayoutEnd}
	for i, slide := range parsed.Slides {
		if slide.Title != expectedTitles[i] {
			t.Errorf("slide %d: expected title %q, got %q", i, expectedTitles[i], slide.Title)
		}
		if slide.Layout != expectedLayouts[i] {
			t.Errorf("slide %d: expected layout %q, got %q", i, expectedLayouts[i], slide.Layout)
		}
	}
}

func TestParseCodeBlockHighlights(t *testing.T) {
	t.Parallel()

	parsed, err := testParser().Parse(sampleDeck)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	code := parsed.Slides[1].Code
	if len(code) != 1 {
		t.Fatalf("expected 1 code block on slide 1, got %d", len(code))
	}

	block := code[0]
	if block.Lang != "ts" {
		t.Errorf("expected code language ts, got %q", block.Lang)
	}

	expected := []LineRange{{Start: 1, End: 1}, {Start: 3, End: 4}}
	if len(block.Highlights) != len(expected) {
		t.Fatalf("expected %d highlight ranges, got %d", len(expected), len(block.Highlights))
	}
	for i, want := range expected {
		if block.Highlights[i] != want {
			t.Errorf("highlight %d: expected %+v, got %+v", i, want, block.Highlights[i])
		}
	}
}

func TestParseUnknownLayoutFallsBack(t *testing.T) {
	t.Parallel()

	source := "# First\n\n---\nlayout: sideways\n---\n\n# Second\n"
	parsed, err := testParser().Parse(source)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if parsed.Len() != 2 {
		t.Fatalf("expected 2 slides, got %d", parsed.Len())
	}
	if parsed.Slides[1].Layout != LayoutDefault {
		t.Errorf("expected unknown layout to fall back to default, got %q", parsed.Slides[1].Layout)
	}
}

func TestParseDelimiterInsideCodeFence(t *testing.T) {
	t.Parallel()

	source := "# Only slide\n\n```yaml\n---\nkey: value\n---\n```\n"
	parsed, err := testParser().Parse(source)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if parsed.Len() != 1 {
		t.Fatalf("expected delimiter inside fence to be ignored, got %d slides", parsed.Len())
	}
}

func TestParseSlideMetadataCarriesImage(t *testing.T) {
	t.Parallel()

	source := "# First\n\n---\nlayout: image-right\nimage: /assets/lifecycle.png\ncaption: The big picture\n---\n\n# Second\n"
	parsed, err := testParser().Parse(source)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	slide := parsed.Slides[1]
	if slide.Layout != LayoutImageRight {
		t.Errorf("expected image-right layout, got %q", slide.Layout)
	}
	if slide.Meta["image"] != "/assets/lifecycle.png" {
		t.Errorf("expected image metadata, got %q", slide.Meta["image"])
	}
	if slide.Meta["caption"] != "The big picture" {
		t.Errorf("expected caption metadata, got %q", slide.Meta["caption"])
	}
}

func TestParseTitleFallsBackToFirstLine(t *testing.T) {
	t.Parallel()

	parsed, err := testParser().Parse("Just a plain line of text.\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if parsed.Slides[0].Title != "Just a plain line of text." {
		t.Errorf("expected fallback title, got %q", parsed.Slides[0].Title)
	}
}

func TestParseEmptyDocumentFails(t *testing.T) {
	t.Parallel()

	if _, err := testParser().Parse("\n\n"); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestParseWrapConfig(t *testing.T) {
	t.Parallel()

	source := "---\nwrap: true\n---\n\n# Slide\n"
	parsed, err := testParser().Parse(source)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if !parsed.Config.Wrap {
		t.Errorf("expected wrap to be enabled")
	}
}

func TestParseHighlightsRejectsMalformedSpec(t *testing.T) {
	t.Parallel()

	if _, err := ParseHighlights("{1,abc}"); err == nil {
		t.Fatalf("expected error for malformed highlight spec")
	}

	if _, err := ParseHighlights("{9-2}"); err == nil {
		t.Fatalf("expected error for inverted highlight range")
	}

	ranges, err := ParseHighlights("{2,5-7}")
	if err != nil {
		t.Fatalf("ParseHighlights returned error: %v", err)
	}
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
}

func TestParseMalformedMetadataDegradesToBody(t *testing.T) {
	t.Parallel()

	source := `# Intro

Welcome.

---
layout: [unclosed
caption: "missing quote
---

# Step 1

Still here.
`

	logger, hook := logrustest.NewNullLogger()
	parsed, err := NewParser(logger).Parse(source)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	// The broken block is kept as a slide of its own rather than eaten
	// as metadata for the slide that follows.
	if parsed.Len() != 3 {
		t.Fatalf("expected 3 slides, got %d", parsed.Len())
	}

	broken, _ := parsed.Slide(1)
	if broken.Layout != LayoutDefault {
		t.Errorf("expected default layout for degraded block, got %q", broken.Layout)
	}
	if !strings.Contains(broken.Body, "layout: [unclosed") {
		t.Errorf("expected raw metadata text preserved in body, got %q", broken.Body)
	}

	last, _ := parsed.Slide(2)
	if last.Title != "Step 1" {
		t.Errorf("expected following slide untouched, got title %q", last.Title)
	}

	found := false
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && strings.Contains(entry.Message, "malformed slide metadata") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about malformed metadata, got %v", hook.AllEntries())
	}
}
