package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Parser turns a slide deck source document into a Deck. Slides are
// separated by "---" delimiter lines and may open with a YAML metadata
// block terminated by another delimiter.
type Parser struct {
	logger *logrus.Logger
}

// NewParser constructs a parser. The logger is optional; warnings about
// degraded input are dropped when it is nil.
func NewParser(logger *logrus.Logger) *Parser {
	return &Parser{logger: logger}
}

var (
	headingPattern = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)
	fenceOpen      = regexp.MustCompile("^```([A-Za-z0-9_+-]*)\\s*(\\{[^}]*\\})?\\s*$")
)

// Parse reads the full source document and returns the deck it describes.
// Malformed slide metadata degrades to body text with a warning; an
// unknown layout tag falls back to the default layout. The only fatal
// condition is a document with no slides at all.
func (p *Parser) Parse(source string) (*Deck, error) {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	segments, leadingDelimiter := splitSegments(normalized)

	deck := &Deck{}
	var pendingMeta map[string]string

	for idx := 0; idx < len(segments); idx++ {
		segment := segments[idx]

		if strings.TrimSpace(segment) == "" {
			continue
		}

		meta, isMeta := parseMetaBlock(segment)
		if !isMeta && looksLikeMetaBlock(segment) {
			p.warn(logrus.Fields{"segment": idx}, "malformed slide metadata; treating as body text")
		}
		if isMeta {
			if idx == 0 && leadingDelimiter {
				pendingMeta = p.applyDeckConfig(deck, meta)
				continue
			}
			if idx == len(segments)-1 {
				p.warn(logrus.Fields{"segment": idx}, "trailing metadata block has no slide; treating as body text")
			} else {
				pendingMeta = meta
				continue
			}
		}

		slide := p.buildSlide(segment, pendingMeta)
		deck.Slides = append(deck.Slides, slide)
		pendingMeta = nil
	}

	if len(deck.Slides) == 0 {
		return nil, eris.New("deck contains no slides")
	}

	if deck.Config.Title == "" {
		deck.Config.Title = deck.Slides[0].Title
	}

	return deck, nil
}

// splitSegments divides the document at "---" lines, ignoring delimiters
// inside fenced code blocks. The boolean reports whether the document
// opened with a delimiter, which marks the first segment as deck config.
func splitSegments(source string) ([]string, bool) {
	lines := strings.Split(source, "\n")

	var (
		segments []string
		current  []string
		inFence  bool
		leading  bool
	)

	flush := func() {
		segments = append(segments, strings.Join(current, "\n"))
		current = current[:0]
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")

		if strings.HasPrefix(strings.TrimSpace(trimmed), "```") {
			inFence = !inFence
			current = append(current, line)
			continue
		}

		if !inFence && trimmed == "---" {
			if len(segments) == 0 && strings.TrimSpace(strings.Join(current, "")) == "" {
				leading = true
				current = current[:0]
				continue
			}
			flush()
			continue
		}

		current = append(current, line)
	}
	flush()

	// A leading delimiter with nothing before it leaves no empty segment
	// to drop; any other empty segments are filtered by the caller.
	return segments, leading
}

// parseMetaBlock reports whether the segment is a pure YAML key/value
// block and returns its entries stringified.
func parseMetaBlock(segment string) (map[string]string, bool) {
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" {
		return nil, false
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}

	meta := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			meta[strings.ToLower(key)] = v
		case nil:
			meta[strings.ToLower(key)] = ""
		default:
			meta[strings.ToLower(key)] = fmt.Sprint(v)
		}
	}

	return meta, true
}

var metaKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*\s*:`)

// looksLikeMetaBlock reports whether a segment that failed YAML parsing
// was most likely intended as metadata: every non-blank line opens with a
// key. Used only to decide whether degrading to body text deserves a
// warning.
func looksLikeMetaBlock(segment string) bool {
	seen := false
	for _, line := range strings.Split(segment, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !metaKeyPattern.MatchString(trimmed) {
			return false
		}
		seen = true
	}
	return seen
}

// applyDeckConfig consumes deck-wide keys from the opening metadata block
// and returns whatever remains as metadata for the first slide.
func (p *Parser) applyDeckConfig(deck *Deck, meta map[string]string) map[string]string {
	rest := make(map[string]string, len(meta))
	for key, value := range meta {
		switch key {
		case "title":
			deck.Config.Title = value
		case "theme":
			deck.Config.Theme = value
		case "colorscheme", "colorschema":
			deck.Config.ColorScheme = value
		case "highlighter":
			deck.Config.Highlighter = value
		case "wrap":
			wrap, err := strconv.ParseBool(value)
			if err != nil {
				p.warn(logrus.Fields{"wrap": value}, "invalid wrap value in deck config; defaulting to false")
				continue
			}
			deck.Config.Wrap = wrap
		default:
			rest[key] = value
		}
	}

	if len(rest) == 0 {
		return nil
	}
	return rest
}

func (p *Parser) buildSlide(segment string, meta map[string]string) Slide {
	slide := Slide{
		Layout: LayoutDefault,
		Body:   trimBlankLines(segment),
	}

	if len(meta) > 0 {
		slide.Meta = make(map[string]string, len(meta))
		for key, value := range meta {
			slide.Meta[key] = value
		}
	}

	if tag, ok := slide.Meta["layout"]; ok {
		layout, known := ParseLayout(tag)
		if !known {
			p.warn(logrus.Fields{"layout": tag}, "unknown layout tag; falling back to default")
		}
		slide.Layout = layout
		delete(slide.Meta, "layout")
	}
	if len(slide.Meta) == 0 {
		slide.Meta = nil
	}

	slide.Title = extractTitle(slide.Body)
	slide.Code = p.extractCode(slide.Body)

	return slide
}

// extractTitle picks the first ATX heading, falling back to the first
// non-empty line outside code fences.
func extractTitle(body string) string {
	var fallback string
	inFence := false

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" {
			continue
		}
		if match := headingPattern.FindStringSubmatch(trimmed); match != nil {
			return match[1]
		}
		if fallback == "" {
			fallback = trimmed
		}
	}

	return fallback
}

func (p *Parser) extractCode(body string) []CodeBlock {
	var (
		blocks  []CodeBlock
		current *CodeBlock
		lines   []string
	)

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if current == nil {
			match := fenceOpen.FindStringSubmatch(trimmed)
			if match == nil {
				continue
			}
			current = &CodeBlock{Lang: match[1]}
			if match[2] != "" {
				ranges, err := ParseHighlights(match[2])
				if err != nil {
					p.warn(logrus.Fields{"spec": match[2]}, "invalid highlight ranges; ignoring")
				}
				current.Highlights = ranges
			}
			lines = lines[:0]
			continue
		}

		if trimmed == "```" {
			current.Source = strings.Join(lines, "\n")
			blocks = append(blocks, *current)
			current = nil
			continue
		}

		lines = append(lines, line)
	}

	return blocks
}

// ParseHighlights reads a "{1,4-6}" style highlight spec into line ranges.
// Valid ranges found before a malformed entry are returned alongside the
// error so callers can degrade.
func ParseHighlights(spec string) ([]LineRange, error) {
	trimmed := strings.TrimSpace(spec)
	trimmed = strings.TrimPrefix(trimmed, "{")
	trimmed = strings.TrimSuffix(trimmed, "}")
	if strings.TrimSpace(trimmed) == "" {
		return nil, nil
	}

	var ranges []LineRange
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if start, end, found := strings.Cut(part, "-"); found {
			from, err := strconv.Atoi(strings.TrimSpace(start))
			if err != nil {
				return ranges, eris.Wrapf(err, "invalid highlight range start: %s", part)
			}
			to, err := strconv.Atoi(strings.TrimSpace(end))
			if err != nil {
				return ranges, eris.Wrapf(err, "invalid highlight range end: %s", part)
			}
			if to < from {
				return ranges, eris.Errorf("highlight range ends before it starts: %s", part)
			}
			ranges = append(ranges, LineRange{Start: from, End: to})
			continue
		}

		line, err := strconv.Atoi(part)
		if err != nil {
			return ranges, eris.Wrapf(err, "invalid highlight line: %s", part)
		}
		ranges = append(ranges, LineRange{Start: line, End: line})
	}

	return ranges, nil
}

func trimBlankLines(segment string) string {
	return strings.Trim(segment, "\n") + "\n"
}

func (p *Parser) warn(fields logrus.Fields, message string) {
	if p.logger == nil {
		return
	}
	p.logger.WithFields(fields).Warn(message)
}
