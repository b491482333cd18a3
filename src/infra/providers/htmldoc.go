package providers

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/k3a/html2text"
	"golang.org/x/net/html"
)

var blankRun = regexp.MustCompile(`\n{3,}`)

// findElements walks the document in order and returns every element match accepts.
// The subtree of a matched element is not searched further.
func findElements(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node

	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			found = append(found, node)
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			traverse(child)
		}
	}

	traverse(root)
	return found
}

func attrValue(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(node *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(node, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// isDiv returns a matcher for div elements carrying attribute key=val.
func isDiv(key, val string) func(*html.Node) bool {
	return func(node *html.Node) bool {
		return node.Data == "div" && attrValue(node, key) == val
	}
}

// prune removes comments and every element drop accepts from the subtree below node.
func prune(node *html.Node, drop func(*html.Node) bool) {
	child := node.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.CommentNode || (child.Type == html.ElementNode && drop(child)) {
			node.RemoveChild(child)
		} else {
			prune(child, drop)
		}
		child = next
	}
}

// nodeText renders the children of node and converts them to plain text.
func nodeText(node *html.Node, opts ...html2text.Option) string {
	var b bytes.Buffer
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&b, child); err != nil {
			return ""
		}
	}
	opts = append(opts, html2text.WithUnixLineBreaks())
	return cleanLyricsText(html2text.HTML2TextWithOptions(b.String(), opts...))
}

// innerText concatenates the text nodes below node.
func innerText(node *html.Node) string {
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			traverse(child)
		}
	}
	traverse(node)
	return strings.TrimSpace(b.String())
}

func cleanLyricsText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRun.ReplaceAllString(text, "\n\n"))
}
