package deck

import (
	"sort"
	"strconv"
	"strings"
)

// Serialize renders the deck back into canonical source form. Parsing the
// result yields the same ordered (layout, title, body) slide tuples, which
// is what the export surface relies on.
func Serialize(d *Deck) string {
	if d == nil || len(d.Slides) == 0 {
		return ""
	}

	var out strings.Builder

	opening := deckConfigLines(d.Config)
	opening = append(opening, slideMetaLines(d.Slides[0])...)
	if len(opening) > 0 {
		writeMetaBlock(&out, opening)
	}
	out.WriteString(strings.Trim(d.Slides[0].Body, "\n"))
	out.WriteString("\n")

	for _, slide := range d.Slides[1:] {
		out.WriteString("\n---\n")
		if lines := slideMetaLines(slide); len(lines) > 0 {
			writeMetaLines(&out, lines)
			out.WriteString("---\n")
		}
		out.WriteString("\n")
		out.WriteString(strings.Trim(slide.Body, "\n"))
		out.WriteString("\n")
	}

	return out.String()
}

func deckConfigLines(cfg Config) []string {
	var lines []string
	if cfg.Title != "" {
		lines = append(lines, metaLine("title", cfg.Title))
	}
	if cfg.Theme != "" {
		lines = append(lines, metaLine("theme", cfg.Theme))
	}
	if cfg.ColorScheme != "" {
		lines = append(lines, metaLine("colorscheme", cfg.ColorScheme))
	}
	if cfg.Highlighter != "" {
		lines = append(lines, metaLine("highlighter", cfg.Highlighter))
	}
	if cfg.Wrap {
		lines = append(lines, metaLine("wrap", "true"))
	}
	return lines
}

func slideMetaLines(slide Slide) []string {
	var lines []string
	if slide.Layout != LayoutDefault {
		lines = append(lines, metaLine("layout", string(slide.Layout)))
	}

	keys := make([]string, 0, len(slide.Meta))
	for key := range slide.Meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		lines = append(lines, metaLine(key, slide.Meta[key]))
	}
	return lines
}

func metaLine(key, value string) string {
	if needsQuoting(value) {
		value = strconv.Quote(value)
	}
	return key + ": " + value
}

// needsQuoting reports whether a metadata value would not survive a YAML
// round trip unquoted.
func needsQuoting(value string) bool {
	if value == "" {
		return false
	}
	if strings.TrimSpace(value) != value {
		return true
	}
	return strings.ContainsAny(value, ":#{}[]&*!|>'\"%@`,\n")
}

func writeMetaBlock(out *strings.Builder, lines []string) {
	out.WriteString("---\n")
	writeMetaLines(out, lines)
	out.WriteString("---\n\n")
}

func writeMetaLines(out *strings.Builder, lines []string) {
	for _, line := range lines {
		out.WriteString(line)
		out.WriteString("\n")
	}
}
