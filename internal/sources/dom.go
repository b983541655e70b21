package sources

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/username/hu-holidays/pkg/textutil"
)

// Generic DOM helpers. They extract text and tables; the interpretation of
// dates and names belongs to each adapter.

func parseHTML(body []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return doc, nil
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.Td: true, atom.Th: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Section: true, atom.Article: true,
	atom.Table: true, atom.Ul: true, atom.Ol: true, atom.Dd: true, atom.Dt: true,
}

// textLines returns the visible text of n split at block boundaries, with
// whitespace collapsed and empty lines dropped.
func textLines(n *html.Node) []string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Noscript {
				return
			}
			if blockElements[n.DataAtom] {
				sb.WriteByte('\n')
				defer sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	var lines []string
	for _, raw := range strings.Split(sb.String(), "\n") {
		if line := textutil.CollapseSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// nodeText returns the collapsed text content of n
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return textutil.CollapseSpace(sb.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// flatten lists element nodes in document order
func flatten(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// findAll returns all elements under root matching pred, in document order
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for _, n := range flatten(root) {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// find returns the first element under root matching pred
func find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	for _, n := range flatten(root) {
		if pred(n) {
			return n
		}
	}
	return nil
}

// findAfter returns the first element matching pred that follows marker in
// document order
func findAfter(root, marker *html.Node, pred func(*html.Node) bool) *html.Node {
	passed := false
	for _, n := range flatten(root) {
		if n == marker {
			passed = true
			continue
		}
		if passed && pred(n) && !contains(marker, n) {
			return n
		}
	}
	return nil
}

func contains(parent, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == parent {
			return true
		}
	}
	return false
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.DataAtom == a }
}

// tableRow is one <tr> of a table: its cells and the row node itself
type tableRow struct {
	node  *html.Node
	cells []*html.Node
}

// text returns the collapsed text of cell i, or "" when absent
func (r tableRow) text(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return nodeText(r.cells[i])
}

// tableRows returns the body rows of table; header rows made only of <th>
// cells are skipped.
func tableRows(table *html.Node) []tableRow {
	var rows []tableRow
	for _, tr := range findAll(table, isElement(atom.Tr)) {
		row := tableRow{node: tr}
		hasData := false
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Td:
				hasData = true
				row.cells = append(row.cells, c)
			case atom.Th:
				row.cells = append(row.cells, c)
			}
		}
		if hasData {
			rows = append(rows, row)
		}
	}
	return rows
}
