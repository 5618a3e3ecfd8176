package webdriver

import (
	"github.com/tebeka/selenium"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

// finder evaluates expressions in the browser, against the current document if root is nil or
// within root otherwise.
type finder struct {
	e    *Engine
	root element
}

var _ locator.Finder[element] = finder{}

func (f finder) FindAll(xpath string) ([]element, error) {
	if f.root == nil {
		return f.e.findElements(xpath)
	}
	return f.FindFrom(f.root, xpath)
}

func (f finder) FindFrom(node element, xpath string) ([]element, error) {
	found, err := node.FindElements(selenium.ByXPATH, xpath)
	if err != nil {
		return nil, driverError("find elements "+xpath, err)
	}
	return found, nil
}

func (f finder) Attribute(node element, name string) (string, bool, error) {
	return f.e.attribute(node, name)
}

func (e *Engine) findElements(xpath string) ([]element, error) {
	found, err := e.wd.FindElements(selenium.ByXPATH, xpath)
	if err != nil {
		return nil, driverError("find elements "+xpath, err)
	}
	return found, nil
}

func frameLocator(name string) locator.Locator {
	return locator.Element("frame", "iframe").WithIDOrName(name).First()
}

// pageFinder searches the whole document of the active frame.
func (e *Engine) pageFinder() (finder, error) {
	if err := e.enter(); err != nil {
		return finder{}, err
	}
	return finder{e: e}, nil
}

// formFinder searches for form controls: in the working form if one is set, otherwise in the
// first form that has a match for the expression, or in the whole document if none has.
func (e *Engine) formFinder(xpath string) (finder, error) {
	if err := e.enter(); err != nil {
		return finder{}, err
	}
	if form, err := e.workingForm(); err != nil || form != nil {
		return finder{e: e, root: form}, err
	}
	forms, err := e.findElements("//form")
	if err != nil {
		return finder{}, err
	}
	for _, form := range forms {
		matches, err := finder{e: e}.FindFrom(form, xpath)
		if err != nil {
			return finder{}, err
		}
		if len(matches) > 0 {
			return finder{e: e, root: form}, nil
		}
	}
	return finder{e: e}, nil
}

// labelFinder is formFinder for a label query. Without a working form the label text must be
// unique in the whole frame, not only in the form that would be chosen.
func (e *Engine) labelFinder(lq locator.Label) (finder, error) {
	if !e.State().Form().IsDefined() {
		if err := e.enter(); err != nil {
			return finder{}, err
		}
		labels, err := e.findElements(lq.LabelXPath("."))
		if err != nil {
			return finder{}, err
		}
		if len(labels) > 1 {
			return finder{}, framework.AmbiguousLocatorError{Locator: lq.String(), Count: len(labels)}
		}
	}
	return e.formFinder(lq.LabelXPath("."))
}

func (e *Engine) controlFinder(l locator.Locator) (finder, error) {
	return e.formFinder(l.XPath("."))
}

func (e *Engine) workingForm() (element, error) {
	sel := e.State().Form()
	if !sel.IsDefined() {
		return nil, nil
	}
	forms, err := e.findElements(sel.Value().XPath())
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, framework.ElementNotFoundError{Locator: sel.Value().String()}
	}
	return forms[0], nil
}

// formForAction returns the working form, or the first form of the active frame.
func (e *Engine) formForAction() (element, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	form, err := e.workingForm()
	if err != nil || form != nil {
		return form, err
	}
	return locator.Resolve[element](finder{e: e}, engine.AnyForm())
}

func (e *Engine) resolveOnPage(l locator.Locator) (element, error) {
	f, err := e.pageFinder()
	if err != nil {
		return nil, err
	}
	return locator.Resolve[element](f, l)
}

func (e *Engine) resolveControl(l locator.Locator) (element, error) {
	f, err := e.controlFinder(l)
	if err != nil {
		return nil, err
	}
	return locator.Resolve[element](f, l)
}

// firstByXPath evaluates a user-supplied expression against the document of the active frame.
func (e *Engine) firstByXPath(xpath string) (element, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	found, err := e.findElements(xpath)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, framework.ElementNotFoundError{Locator: xpath}
	}
	return found[0], nil
}
