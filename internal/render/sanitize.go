package render

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Slide bodies may embed raw HTML. Script-bearing elements and inline
// event handlers are stripped before the fragment reaches a browser.
var blockedElements = map[string]bool{
	"script": true,
	"object": true,
	"embed":  true,
	"iframe": true,
}

var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
}

// Sanitize parses an HTML fragment and re-renders it with unsafe elements
// and attributes removed.
func Sanitize(fragment string) (string, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return "", eris.Wrap(err, "parsing html fragment")
	}

	var out strings.Builder
	for _, node := range nodes {
		if isBlocked(node) {
			continue
		}
		scrub(node)
		if err := html.Render(&out, node); err != nil {
			return "", eris.Wrap(err, "rendering sanitised fragment")
		}
	}

	return out.String(), nil
}

func isBlocked(node *html.Node) bool {
	return node.Type == html.ElementNode && blockedElements[strings.ToLower(node.Data)]
}

func scrub(node *html.Node) {
	if node.Type == html.ElementNode {
		node.Attr = cleanAttributes(node.Attr)
	}

	child := node.FirstChild
	for child != nil {
		next := child.NextSibling
		if isBlocked(child) {
			node.RemoveChild(child)
		} else {
			scrub(child)
		}
		child = next
	}
}

func cleanAttributes(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if urlAttributes[key] && hasScriptScheme(attr.Val) {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func hasScriptScheme(value string) bool {
	normalized := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(normalized, "javascript:") || strings.HasPrefix(normalized, "vbscript:") || strings.HasPrefix(normalized, "data:text/html")
}
