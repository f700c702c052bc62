package deck

import "strings"

// Layout names the visual template a slide is arranged with.
type Layout string

const (
	LayoutDefault    Layout = "default"
	LayoutCover      Layout = "cover"
	LayoutCenter     Layout = "center"
	LayoutSection    Layout = "section"
	LayoutQuote      Layout = "quote"
	LayoutFact       Layout = "fact"
	LayoutImageRight Layout = "image-right"
	LayoutImageLeft  Layout = "image-left"
	LayoutTwoCols    Layout = "two-cols"
	LayoutEnd        Layout = "end"
)

var knownLayouts = map[Layout]bool{
	LayoutDefault:    true,
	LayoutCover:      true,
	LayoutCenter:     true,
	LayoutSection:    true,
	LayoutQuote:      true,
	LayoutFact:       true,
	LayoutImageRight: true,
	LayoutImageLeft:  true,
	LayoutTwoCols:    true,
	LayoutEnd:        true,
}

// ParseLayout maps a layout tag from slide metadata onto a known layout.
// The boolean reports whether the tag was recognised; unrecognised tags
// resolve to LayoutDefault so callers can degrade with a warning.
func ParseLayout(tag string) (Layout, bool) {
	normalized := Layout(strings.ToLower(strings.TrimSpace(tag)))
	if normalized == "" {
		return LayoutDefault, true
	}
	if knownLayouts[normalized] {
		return normalized, true
	}
	return LayoutDefault, false
}

// LineRange marks an inclusive span of highlighted lines inside a code block.
type LineRange struct {
	Start int
	End   int
}

// CodeBlock is a fenced code sample extracted from a slide body.
type CodeBlock struct {
	Lang       string
	Source     string
	Highlights []LineRange
}

// Slide is one page of a presentation. Slides are immutable once parsed;
// the viewer only ever reads them.
type Slide struct {
	Layout Layout
	Title  string
	Body   string
	Meta   map[string]string
	Code   []CodeBlock
}

// Config carries deck-wide presentation settings taken from the opening
// metadata block of the source document.
type Config struct {
	Title       string
	Theme       string
	ColorScheme string
	Highlighter string
	Wrap        bool
}

// Deck is the ordered collection of slides plus deck-wide configuration.
// Slide order matches source order and never changes after parsing.
type Deck struct {
	Config Config
	Slides []Slide
}

// Len returns the number of slides in the deck.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// Slide returns the slide at position i. The boolean is false when the
// index falls outside the deck.
func (d *Deck) Slide(i int) (Slide, bool) {
	if d == nil || i < 0 || i >= len(d.Slides) {
		return Slide{}, false
	}
	return d.Slides[i], true
}
