package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"slidecast/app/internal/deck"
)

// Options configures the slide renderer.
type Options struct {
	// CodeStyle names the chroma style used for fenced code blocks.
	// Unknown names fall back to chroma's default style.
	CodeStyle string
	Logger    *logrus.Logger
}

// Renderer converts slide bodies from markdown into sanitised HTML.
// Rendering is a pure function of the slide and the configured style, so
// a single renderer is shared across requests.
type Renderer struct {
	md     goldmark.Markdown
	logger *logrus.Logger
}

// NewRenderer constructs the renderer with code highlighting wired in.
func NewRenderer(opts Options) (*Renderer, error) {
	style := styles.Get(opts.CodeStyle)
	if style == nil {
		style = styles.Fallback
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&codeBlockRenderer{style: style, logger: opts.Logger}, 100),
			),
		),
	)

	return &Renderer{md: md, logger: opts.Logger}, nil
}

// Slide renders the slide body to HTML. Raw HTML embedded in the body
// passes through markdown conversion and is then sanitised.
func (r *Renderer) Slide(slide deck.Slide) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(slide.Body), &buf); err != nil {
		return "", eris.Wrap(err, "converting slide markdown")
	}

	clean, err := Sanitize(buf.String())
	if err != nil {
		return "", eris.Wrap(err, "sanitising slide html")
	}

	return clean, nil
}

// codeBlockRenderer replaces goldmark's fenced code output with chroma
// highlighted HTML, honouring {1,4-6} style highlight ranges from the
// fence info string.
type codeBlockRenderer struct {
	style  *chroma.Style
	logger *logrus.Logger
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	block, ok := node.(*ast.FencedCodeBlock)
	if !ok {
		return ast.WalkContinue, nil
	}

	var code strings.Builder
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(source))
	}

	language := string(block.Language(source))
	highlights := r.highlightRanges(block, source)

	if err := r.writeHighlighted(w, language, code.String(), highlights); err != nil {
		return ast.WalkStop, err
	}

	return ast.WalkContinue, nil
}

func (r *codeBlockRenderer) highlightRanges(block *ast.FencedCodeBlock, source []byte) [][2]int {
	if block.Info == nil {
		return nil
	}

	info := string(block.Info.Segment.Value(source))
	brace := strings.Index(info, "{")
	if brace < 0 {
		return nil
	}

	ranges, err := deck.ParseHighlights(info[brace:])
	if err != nil && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"info": info, "error": err.Error()}).Warn("invalid highlight spec in code fence")
	}

	if len(ranges) == 0 {
		return nil
	}

	pairs := make([][2]int, 0, len(ranges))
	for _, lineRange := range ranges {
		pairs = append(pairs, [2]int{lineRange.Start, lineRange.End})
	}
	return pairs
}

func (r *codeBlockRenderer) writeHighlighted(w util.BufWriter, language, code string, highlights [][2]int) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return eris.Wrapf(err, "tokenising %s code block", language)
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(false),
		chromahtml.HighlightLines(highlights),
	)

	if err := formatter.Format(w, r.style, iterator); err != nil {
		return eris.Wrapf(err, "formatting %s code block", language)
	}

	return nil
}
