package headless

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/locator"
)

func (e *Engine) pageHas(l locator.Locator) (bool, error) {
	f, _, err := e.pageFinder()
	if err != nil {
		return false, err
	}
	return locator.Exists[*html.Node](f, l)
}

func (e *Engine) formHas(l locator.Locator) (bool, error) {
	f, _, err := e.controlFinder(l)
	if err != nil {
		return false, err
	}
	return locator.Exists[*html.Node](f, l)
}

func (e *Engine) HasElement(id string) (bool, error) { return e.pageHas(engine.ElementByID(id)) }

func (e *Engine) HasElementByXPath(xpath string) (bool, error) {
	_, p, err := e.pageFinder()
	if err != nil {
		return false, err
	}
	nodes, err := findFrom(p.doc, xpath)
	if err != nil {
		return false, fmt.Errorf("invalid XPath %q: %w", xpath, err)
	}
	return len(nodes) > 0, nil
}

func (e *Engine) HasLink(id string) (bool, error) { return e.pageHas(engine.Link(id)) }

func (e *Engine) HasLinkWithText(text string, index int) (bool, error) {
	return e.pageHas(engine.LinkWithText(text, index))
}

func (e *Engine) HasLinkWithExactText(text string, index int) (bool, error) {
	return e.pageHas(engine.LinkWithExactText(text, index))
}

func (e *Engine) HasLinkWithImage(imageFileName string, index int) (bool, error) {
	return e.pageHas(engine.LinkWithImage(imageFileName, index))
}

func (e *Engine) HasButton(id string) (bool, error) { return e.formHas(engine.Button(id)) }

func (e *Engine) HasButtonWithText(text string) (bool, error) {
	return e.formHas(engine.ButtonWithText(text))
}

func (e *Engine) HasForm() (bool, error) { return e.pageHas(engine.AnyForm()) }

func (e *Engine) HasFormNamed(nameOrID string) (bool, error) {
	return e.pageHas(engine.FormNamed(nameOrID))
}

func (e *Engine) HasFormParameterNamed(name string) (bool, error) {
	return e.formHas(engine.FormControl(name))
}

func (e *Engine) HasFrame(name string) (bool, error) {
	_, p, err := e.pageFinder()
	if err != nil {
		return false, err
	}
	if p.frame(name) != nil {
		return true, nil
	}
	return e.pageHas(engine.Frame(name))
}

func (e *Engine) HasTable(summaryNameOrID string) (bool, error) {
	return e.pageHas(engine.Table(summaryNameOrID))
}

func (e *Engine) HasRadioOption(group, value string) (bool, error) {
	return e.formHas(engine.RadioOption(group, value))
}

func (e *Engine) HasSelectOption(selectName, label string) (bool, error) {
	return e.hasOption(selectName, engine.OptionWithLabel(label))
}

func (e *Engine) HasSelectOptionValue(selectName, value string) (bool, error) {
	return e.hasOption(selectName, engine.OptionWithValue(value))
}

func (e *Engine) hasOption(selectName string, option locator.Locator) (bool, error) {
	l := engine.Select(selectName)
	f, _, err := e.controlFinder(l)
	if err != nil {
		return false, err
	}
	selects, err := locator.ResolveAll[*html.Node](f, l)
	if err != nil {
		return false, err
	}
	for _, sel := range selects {
		if found, err := locator.Exists[*html.Node](finder{root: sel}, option); err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func (e *Engine) HasSubmitButton() (bool, error) { return e.formHas(engine.SubmitButtons()) }

func (e *Engine) HasSubmitButtonNamed(nameOrID string) (bool, error) {
	return e.formHas(engine.SubmitButton(nameOrID))
}

func (e *Engine) HasSubmitButtonWithValue(nameOrID, value string) (bool, error) {
	return e.formHas(engine.SubmitButtonWithValue(nameOrID, value))
}

func (e *Engine) HasResetButton() (bool, error) { return e.formHas(engine.ResetButtons()) }

func (e *Engine) HasResetButtonNamed(nameOrID string) (bool, error) {
	return e.formHas(engine.ResetButton(nameOrID))
}

func (e *Engine) IsCheckboxSelected(name string) (bool, error) {
	return e.isChecked(engine.Checkbox(name))
}

func (e *Engine) IsCheckboxSelectedWithValue(name, value string) (bool, error) {
	return e.isChecked(engine.CheckboxWithValue(name, value))
}

func (e *Engine) isChecked(l locator.Locator) (bool, error) {
	n, _, err := e.resolveControl(l)
	if err != nil {
		return false, err
	}
	return hasAttr(n, "checked"), nil
}

func (e *Engine) IsTextInElement(id, text string) (bool, error) {
	n, err := e.resolveOnPage(engine.ElementByID(id))
	if err != nil {
		return false, err
	}
	return strings.Contains(normalizedText(n), text), nil
}

func (e *Engine) IsMatchInElement(id, regex string) (bool, error) {
	re, err := regexp.Compile(regex)
	if err != nil {
		return false, fmt.Errorf("invalid regular expression %q: %w", regex, err)
	}
	n, err := e.resolveOnPage(engine.ElementByID(id))
	if err != nil {
		return false, err
	}
	return re.MatchString(normalizedText(n)), nil
}

func (e *Engine) resolveOnPage(l locator.Locator) (*html.Node, error) {
	f, _, err := e.pageFinder()
	if err != nil {
		return nil, err
	}
	return locator.Resolve[*html.Node](f, l)
}

func (e *Engine) resolveControl(l locator.Locator) (*html.Node, *page, error) {
	f, p, err := e.controlFinder(l)
	if err != nil {
		return nil, nil, err
	}
	n, err := locator.Resolve[*html.Node](f, l)
	return n, p, err
}
