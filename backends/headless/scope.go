package headless

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

// pageFinder searches the whole document of the active frame. Links, tables, frames and forms
// themselves are found this way, as are user-supplied XPath expressions.
func (e *Engine) pageFinder() (finder, *page, error) {
	p, err := e.activePage()
	if err != nil {
		return finder{}, nil, err
	}
	return finder{root: p.doc}, p, nil
}

// formFinder searches for form controls. With a working form set it searches that form. With
// none, it searches the first form that has a match for the expression, or the whole document
// if no form has one.
func (e *Engine) formFinder(xpath string) (finder, *page, error) {
	p, err := e.activePage()
	if err != nil {
		return finder{}, nil, err
	}
	if form, err := e.workingForm(p); err != nil || form != nil {
		return finder{root: form}, p, err
	}
	forms, err := findFrom(p.doc, "//form")
	if err != nil {
		return finder{}, nil, err
	}
	for _, form := range forms {
		matches, err := findFrom(form, xpath)
		if err != nil {
			return finder{}, nil, err
		}
		if len(matches) > 0 {
			return finder{root: form}, p, nil
		}
	}
	return finder{root: p.doc}, p, nil
}

// labelFinder is formFinder for a label query. Without a working form the label text must be
// unique in the whole frame, not only in the form that would be chosen.
func (e *Engine) labelFinder(lq locator.Label) (finder, *page, error) {
	if !e.State().Form().IsDefined() {
		p, err := e.activePage()
		if err != nil {
			return finder{}, nil, err
		}
		labels, err := findFrom(p.doc, lq.LabelXPath("."))
		if err != nil {
			return finder{}, nil, err
		}
		if len(labels) > 1 {
			return finder{}, nil, framework.AmbiguousLocatorError{Locator: lq.String(), Count: len(labels)}
		}
	}
	return e.formFinder(lq.LabelXPath("."))
}

func (e *Engine) controlFinder(l locator.Locator) (finder, *page, error) {
	return e.formFinder(l.XPath("."))
}

// workingForm returns the form selected with SetWorkingForm, or nil if none is selected.
func (e *Engine) workingForm(p *page) (*html.Node, error) {
	sel := e.State().Form()
	if !sel.IsDefined() {
		return nil, nil
	}
	forms, err := findFrom(p.doc, sel.Value().XPath())
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, framework.ElementNotFoundError{Locator: sel.Value().String()}
	}
	return forms[0], nil
}

// formForAction returns the working form, or the first form of the page.
func (e *Engine) formForAction() (*html.Node, *page, error) {
	p, err := e.activePage()
	if err != nil {
		return nil, nil, err
	}
	form, err := e.workingForm(p)
	if err != nil || form != nil {
		return form, p, err
	}
	form, err = locator.Resolve[*html.Node](finder{root: p.doc}, engine.AnyForm())
	return form, p, err
}

func indexDetail(index, count int) string {
	return fmt.Sprintf("index %d but there are %d", index, count)
}
