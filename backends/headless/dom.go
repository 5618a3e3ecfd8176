package headless

import (
	"bytes"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/locator"
)

// finder evaluates locator expressions below a scope root, which is a document node or a form.
type finder struct {
	root *html.Node
}

var _ locator.Finder[*html.Node] = finder{}

func (f finder) FindAll(xpath string) ([]*html.Node, error) {
	return findFrom(f.root, xpath)
}

func (f finder) FindFrom(node *html.Node, xpath string) ([]*html.Node, error) {
	return findFrom(node, xpath)
}

func (f finder) Attribute(node *html.Node, name string) (string, bool, error) {
	v, ok := getAttr(node, name)
	return v, ok, nil
}

// findFrom evaluates an expression and returns the matches in document order. The XPath
// library does not guarantee document order for the results of a union.
func findFrom(node *html.Node, xpath string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(node, xpath)
	if err != nil {
		return nil, err
	}
	if len(nodes) > 1 && strings.Contains(xpath, "|") {
		order := documentOrder(rootOf(node))
		sort.SliceStable(nodes, func(i, j int) bool { return order[nodes[i]] < order[nodes[j]] })
	}
	return nodes, nil
}

func documentOrder(root *html.Node) map[*html.Node]int {
	order := make(map[*html.Node]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		order[n] = len(order)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return order
}

func rootOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func getAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
}

// addAttr adds or updates an attribute.
func addAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := make([]html.Attribute, 0, len(n.Attr))
	for _, attr := range n.Attr {
		if attr.Key != key {
			attrs = append(attrs, attr)
		}
	}
	n.Attr = attrs
}

func setFlag(n *html.Node, key string, on bool) {
	if on {
		addAttr(n, key, key)
	} else {
		removeAttr(n, key)
	}
}

func inputType(n *html.Node) string {
	if n.Data != "input" {
		return ""
	}
	t := strings.ToLower(htmlquery.SelectAttr(n, "type"))
	if t == "" {
		return "text"
	}
	return t
}

func isCheckable(n *html.Node) bool {
	t := inputType(n)
	return t == "checkbox" || t == "radio"
}

// controlValue returns the current value of a form control.
func controlValue(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return htmlquery.InnerText(n)
	case "select":
		selected := selectedOptions(n)
		if len(selected) == 0 {
			return ""
		}
		return optionValue(selected[0])
	case "input":
		if isCheckable(n) {
			if v, ok := getAttr(n, "value"); ok {
				return v
			}
			return "on"
		}
	}
	return htmlquery.SelectAttr(n, "value")
}

func setControlValue(n *html.Node, value string) {
	if n.Data == "textarea" {
		setText(n, value)
		return
	}
	addAttr(n, "value", value)
}

func setText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func options(sel *html.Node) []*html.Node {
	return htmlquery.Find(sel, ".//option")
}

func optionValue(opt *html.Node) string {
	if v, ok := getAttr(opt, "value"); ok {
		return v
	}
	return normalizedText(opt)
}

// selectedOptions returns the selected options; a single-choice select with nothing marked
// selected reports its first option, as browsers do.
func selectedOptions(sel *html.Node) []*html.Node {
	all := options(sel)
	var selected []*html.Node
	for _, o := range all {
		if hasAttr(o, "selected") {
			selected = append(selected, o)
		}
	}
	if len(selected) == 0 && !hasAttr(sel, "multiple") && len(all) > 0 {
		return all[:1]
	}
	return selected
}

func ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

// normalizedText is the text of a node with scripts removed and whitespace collapsed.
func normalizedText(n *html.Node) string {
	sel := goquery.NewDocumentFromNode(n).Selection.Clone()
	sel.Find("script, style").Remove()
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func renderNode(n *html.Node) string {
	var b bytes.Buffer
	_ = html.Render(&b, n)
	return b.String()
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// insertHTML parses markup in the context of parent and inserts the resulting nodes before
// ref, or at the end of parent if ref is nil.
func insertHTML(parent, ref *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return err
	}
	for _, c := range nodes {
		parent.InsertBefore(c, ref)
	}
	return nil
}

func setInnerHTML(n *html.Node, markup string) error {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	return insertHTML(n, nil, markup)
}
