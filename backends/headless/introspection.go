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

// GetPageSource returns the document of the active frame as the server sent it.
func (e *Engine) GetPageSource() (string, error) {
	p, err := e.activePage()
	if err != nil {
		return "", err
	}
	return p.source, nil
}

// GetPageText returns the visible text of the active frame with whitespace collapsed.
func (e *Engine) GetPageText() (string, error) {
	p, err := e.activePage()
	if err != nil {
		return "", err
	}
	if body := htmlquery.FindOne(p.doc, "//body"); body != nil {
		return normalizedText(body), nil
	}
	return normalizedText(p.doc), nil
}

// GetPageTitle returns the title of the top-level document of the active window.
func (e *Engine) GetPageTitle() (string, error) {
	w, err := e.activeWindow()
	if err != nil {
		return "", err
	}
	if w.top.page == nil {
		return "", engine.ErrNoSession
	}
	return w.top.page.title(), nil
}

// GetServerResponse returns the status, headers and body of the response for the active frame.
func (e *Engine) GetServerResponse() (string, error) {
	p, err := e.activePage()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s\n", p.status, p.statusText)
	fmt.Fprintf(&b, "Location: %s\n", p.url)
	for _, line := range sortedHeaderLines(p.header) {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(p.source)
	return b.String(), nil
}

func (e *Engine) GetFormElementValue(name string) (string, error) {
	l := engine.FormControl(name)
	f, _, err := e.controlFinder(l)
	if err != nil {
		return "", err
	}
	nodes, err := locator.ResolveAll[*html.Node](f, l)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", framework.ElementNotFoundError{Locator: l.String()}
	}
	if isCheckable(nodes[0]) {
		for _, n := range nodes {
			if isCheckable(n) && hasAttr(n, "checked") {
				return controlValue(n), nil
			}
		}
		return "", nil
	}
	i, err := l.Pick(len(nodes))
	if err != nil {
		return "", err
	}
	return controlValue(nodes[i]), nil
}

func (e *Engine) GetTextFieldValue(name string) (string, error) {
	n, _, err := e.resolveControl(engine.TextField(name))
	if err != nil {
		return "", err
	}
	return controlValue(n), nil
}

func (e *Engine) GetHiddenFieldValue(name string) (string, error) {
	n, _, err := e.resolveControl(engine.HiddenField(name))
	if err != nil {
		return "", err
	}
	return controlValue(n), nil
}

// GetSelectedRadio returns the value of the checked radio button in the group, or "" if none
// is checked.
func (e *Engine) GetSelectedRadio(group string) (string, error) {
	l := engine.RadioGroup(group)
	f, _, err := e.controlFinder(l)
	if err != nil {
		return "", err
	}
	radios, err := locator.ResolveAll[*html.Node](f, l)
	if err != nil {
		return "", err
	}
	if len(radios) == 0 {
		return "", framework.ElementNotFoundError{Locator: l.String()}
	}
	for _, r := range radios {
		if hasAttr(r, "checked") {
			return controlValue(r), nil
		}
	}
	return "", nil
}

func (e *Engine) GetSelectedOptions(selectName string) ([]string, error) {
	sel, _, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return nil, err
	}
	values := []string{}
	for _, o := range selectedOptions(sel) {
		values = append(values, optionValue(o))
	}
	return values, nil
}

func (e *Engine) GetSelectOptionValues(selectName string) ([]string, error) {
	sel, _, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return nil, err
	}
	values := []string{}
	for _, o := range options(sel) {
		values = append(values, optionValue(o))
	}
	return values, nil
}

func (e *Engine) GetSelectOptionValueForLabel(selectName, label string) (string, error) {
	o, err := e.resolveOption(selectName, engine.OptionWithLabel(label))
	if err != nil {
		return "", err
	}
	return optionValue(o), nil
}

func (e *Engine) GetSelectOptionLabelForValue(selectName, value string) (string, error) {
	o, err := e.resolveOption(selectName, engine.OptionWithValue(value))
	if err != nil {
		return "", err
	}
	return normalizedText(o), nil
}

func (e *Engine) resolveOption(selectName string, option locator.Locator) (*html.Node, error) {
	sel, _, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return nil, err
	}
	return locator.Resolve[*html.Node](finder{root: sel}, option)
}

// GetElementTextByXPath returns the text of the first element matching the expression.
func (e *Engine) GetElementTextByXPath(xpath string) (string, error) {
	n, err := e.firstByXPath(xpath)
	if err != nil {
		return "", err
	}
	return normalizedText(n), nil
}

// GetElementAttributeByXPath returns an attribute of the first element matching the
// expression, or "" if the element does not have it.
func (e *Engine) GetElementAttributeByXPath(xpath, attribute string) (string, error) {
	n, err := e.firstByXPath(xpath)
	if err != nil {
		return "", err
	}
	return htmlquery.SelectAttr(n, attribute), nil
}

func (e *Engine) firstByXPath(xpath string) (*html.Node, error) {
	_, p, err := e.pageFinder()
	if err != nil {
		return nil, err
	}
	nodes, err := findFrom(p.doc, xpath)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath %q: %w", xpath, err)
	}
	if len(nodes) == 0 {
		return nil, framework.ElementNotFoundError{Locator: xpath}
	}
	return nodes[0], nil
}
