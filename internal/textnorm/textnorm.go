// Package textnorm flattens rich-text requirement descriptions into plain
// text for search and tabular export, and extracts a clean body fragment
// for rich document export.
package textnorm

import (
	"bytes"
	"html"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skippedElements are dropped together with their contents.
var skippedElements = map[atom.Atom]bool{
	atom.Style:  true,
	atom.Script: true,
	atom.Title:  true,
}

// blockElements mark word boundaries: each start or end becomes a space.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true,
	atom.Blockquote: true, atom.Body: true, atom.Br: true, atom.Dd: true,
	atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Html: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true,
	atom.Pre: true, atom.Section: true, atom.Table: true, atom.Tbody: true,
	atom.Td: true, atom.Tfoot: true, atom.Th: true, atom.Thead: true,
	atom.Tr: true, atom.Ul: true,
}

// maxPasses bounds the flattening loop in ToPlainText.
const maxPasses = 8

// ToPlainText strips markup from s: style and script blocks are removed
// with their contents, block boundaries and line breaks become a single
// space, remaining tags are dropped, entities are decoded, and runs of
// whitespace collapse to one space with the ends trimmed. Angle-bracket
// words that are not HTML elements, such as <TBD>, are kept as text.
//
// The result is a fixed point: ToPlainText(ToPlainText(s)) equals
// ToPlainText(s). Text that decodes to markup is flattened again, so
// "&lt;b&gt;x" yields "x".
func ToPlainText(s string) string {
	out := flatten(s)
	for i := 0; i < maxPasses; i++ {
		next := flatten(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func flatten(s string) string {
	if s == "" {
		return ""
	}
	z := nethtml.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			// An unterminated tag at the end of input is text ("a<b").
			if skip == 0 && z.Err() == io.EOF {
				b.Write(z.Raw())
			}
			return collapse(b.String())
		case nethtml.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case nethtml.CommentToken:
			// "</ y" is a bogus comment to the tokenizer but text to a reader.
			if skip == 0 && !bytes.HasPrefix(z.Raw(), []byte("<!")) {
				b.Write(z.Raw())
			}
		case nethtml.StartTagToken, nethtml.EndTagToken, nethtml.SelfClosingTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == 0 {
				if skip == 0 {
					b.WriteString(raw)
				}
				continue
			}
			if skippedElements[a] {
				switch tt {
				case nethtml.StartTagToken:
					skip++
				case nethtml.EndTagToken:
					if skip > 0 {
						skip--
					}
				}
				continue
			}
			if blockElements[a] {
				b.WriteByte(' ')
			}
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsMarkup reports whether s looks like markup rather than plain text.
// Older data files stored plain descriptions, and plain text may contain
// angle brackets ("<TBD>", "a<b"). Only a document declaration, a comment
// or a tag naming a real HTML element counts as markup.
func IsMarkup(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	z := nethtml.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return false
		case nethtml.DoctypeToken:
			return true
		case nethtml.CommentToken:
			// "</ x" and "<?x" also tokenize as comments.
			if bytes.HasPrefix(z.Raw(), []byte("<!--")) {
				return true
			}
		case nethtml.StartTagToken, nethtml.EndTagToken, nethtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) != 0 {
				return true
			}
		}
	}
}

// FromPlain converts plain text into the stored rich-text form: a single
// paragraph with the text escaped and line breaks kept as <br>. An empty
// or blank input yields "".
func FromPlain(s string) string {
	body := escapeLines(s)
	if body == "" {
		return ""
	}
	return "<p>" + body + "</p>"
}

func escapeLines(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(strings.TrimRight(l, "\r"))
	}
	return strings.Join(lines, "<br>")
}

// Fragment returns the body content of s as an HTML fragment suitable for
// embedding in a table cell: document, head, style and script wrappers are
// removed. Plain text is escaped and its line breaks become <br>.
func Fragment(s string) string {
	if !IsMarkup(s) {
		return escapeLines(s)
	}
	doc, err := nethtml.Parse(strings.NewReader(s))
	if err != nil {
		return html.EscapeString(ToPlainText(s))
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return html.EscapeString(ToPlainText(s))
	}
	removeElements(body)

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := nethtml.Render(&buf, c); err != nil {
			return html.EscapeString(ToPlainText(s))
		}
	}
	return strings.TrimSpace(buf.String())
}

func findElement(n *nethtml.Node, a atom.Atom) *nethtml.Node {
	if n.Type == nethtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// removeElements drops skipped elements and event handler attributes
// below n.
func removeElements(n *nethtml.Node) {
	var toRemove []*nethtml.Node
	var collect func(*nethtml.Node)
	collect = func(node *nethtml.Node) {
		if node.Type == nethtml.ElementNode {
			if skippedElements[node.DataAtom] {
				toRemove = append(toRemove, node)
				return
			}
			attrs := node.Attr[:0]
			for _, a := range node.Attr {
				if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
					attrs = append(attrs, a)
				}
			}
			node.Attr = attrs
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	for _, node := range toRemove {
		node.Parent.RemoveChild(node)
	}
}
