package headless

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

func (e *Engine) ClickLink(id string) error { return e.clickOnPage(engine.Link(id)) }

func (e *Engine) ClickLinkWithText(text string, index int) error {
	return e.clickOnPage(engine.LinkWithText(text, index))
}

func (e *Engine) ClickLinkWithExactText(text string, index int) error {
	return e.clickOnPage(engine.LinkWithExactText(text, index))
}

func (e *Engine) ClickLinkWithImage(imageFileName string, index int) error {
	return e.clickOnPage(engine.LinkWithImage(imageFileName, index))
}

func (e *Engine) ClickButton(id string) error {
	n, p, err := e.resolveControl(engine.Button(id))
	if err != nil {
		return err
	}
	return e.act(func() error { return e.click(p, n) })
}

func (e *Engine) ClickButtonWithText(text string) error {
	n, p, err := e.resolveControl(engine.ButtonWithText(text))
	if err != nil {
		return err
	}
	return e.act(func() error { return e.click(p, n) })
}

// ClickElementByXPath clicks the first element matching the expression, evaluated against the
// document of the active frame.
func (e *Engine) ClickElementByXPath(xpath string) error {
	_, p, err := e.pageFinder()
	if err != nil {
		return err
	}
	nodes, err := findFrom(p.doc, xpath)
	if err != nil {
		return fmt.Errorf("invalid XPath %q: %w", xpath, err)
	}
	if len(nodes) == 0 {
		return framework.ElementNotFoundError{Locator: xpath}
	}
	return e.act(func() error { return e.click(p, nodes[0]) })
}

func (e *Engine) clickOnPage(l locator.Locator) error {
	f, p, err := e.pageFinder()
	if err != nil {
		return err
	}
	n, err := locator.Resolve[*html.Node](f, l)
	if err != nil {
		return err
	}
	return e.act(func() error { return e.click(p, n) })
}

// click runs the element's onclick handler and then, unless the handler returned false, the
// element's default action.
func (e *Engine) click(p *page, n *html.Node) error {
	if code, ok := getAttr(n, "onclick"); ok && e.scripting {
		proceed, err := p.scriptHost(e).runHandler(n, code)
		if err != nil || !proceed {
			return err
		}
	}
	switch n.Data {
	case "a", "area":
		return e.followLink(p, n)
	case "input":
		switch inputType(n) {
		case "checkbox":
			setFlag(n, "checked", !hasAttr(n, "checked"))
		case "radio":
			checkRadio(n)
		case "submit", "image":
			if form := ancestor(n, "form"); form != nil {
				return e.submit(p, form, n)
			}
		case "reset":
			if form := ancestor(n, "form"); form != nil {
				p.reset(form)
			}
		}
	case "button":
		form := ancestor(n, "form")
		if form == nil {
			return nil
		}
		switch strings.ToLower(htmlquery.SelectAttr(n, "type")) {
		case "", "submit":
			return e.submit(p, form, n)
		case "reset":
			p.reset(form)
		}
	}
	return nil
}

func (e *Engine) followLink(p *page, n *html.Node) error {
	href, ok := getAttr(n, "href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		if !e.scripting {
			return nil
		}
		return p.scriptHost(e).runURL(href)
	}
	u, err := p.resolve(href)
	if err != nil {
		return err
	}
	return e.navigate(p, htmlquery.SelectAttr(n, "target"), getRequest(u, p.url.String()))
}

// checkRadio checks a radio button and unchecks the others in its group.
func checkRadio(n *html.Node) {
	scope := ancestor(n, "form")
	if scope == nil {
		scope = rootOf(n)
	}
	name := htmlquery.SelectAttr(n, "name")
	for _, other := range htmlquery.Find(scope, ".//input") {
		if inputType(other) == "radio" && htmlquery.SelectAttr(other, "name") == name {
			removeAttr(other, "checked")
		}
	}
	setFlag(n, "checked", true)
}
