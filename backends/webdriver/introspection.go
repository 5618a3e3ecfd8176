package webdriver

import (
	"strings"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

// GetPageSource returns the browser's serialization of the active frame's document, which
// includes changes made by scripts.
func (e *Engine) GetPageSource() (string, error) {
	if err := e.enter(); err != nil {
		return "", err
	}
	source, err := e.wd.PageSource()
	return source, wrapDriverError("get page source", err)
}

func (e *Engine) GetPageText() (string, error) {
	body, err := e.firstByXPath("//body")
	if err != nil {
		return "", err
	}
	return text(body)
}

// GetPageTitle returns the title of the top-level document of the active window.
func (e *Engine) GetPageTitle() (string, error) {
	if err := e.enterWindow(); err != nil {
		return "", err
	}
	title, err := e.wd.Title()
	return title, wrapDriverError("get title", err)
}

func (e *Engine) GetServerResponse() (string, error) {
	return "", e.Unsupported("GetServerResponse")
}

func (e *Engine) GetFormElementValue(name string) (string, error) {
	l := engine.FormControl(name)
	f, err := e.controlFinder(l)
	if err != nil {
		return "", err
	}
	controls, err := locator.ResolveAll[element](f, l)
	if err != nil {
		return "", err
	}
	if len(controls) == 0 {
		return "", framework.ElementNotFoundError{Locator: l.String()}
	}
	checkable, err := e.isCheckable(controls[0])
	if err != nil {
		return "", err
	}
	if checkable {
		return e.checkedValue(controls)
	}
	i, err := l.Pick(len(controls))
	if err != nil {
		return "", err
	}
	return e.value(controls[i])
}

func (e *Engine) GetTextFieldValue(name string) (string, error) {
	el, err := e.resolveControl(engine.TextField(name))
	if err != nil {
		return "", err
	}
	return e.value(el)
}

func (e *Engine) GetHiddenFieldValue(name string) (string, error) {
	el, err := e.resolveControl(engine.HiddenField(name))
	if err != nil {
		return "", err
	}
	return e.value(el)
}

// GetSelectedRadio returns the value of the checked radio button in the group, or "" if none
// is checked.
func (e *Engine) GetSelectedRadio(group string) (string, error) {
	l := engine.RadioGroup(group)
	f, err := e.controlFinder(l)
	if err != nil {
		return "", err
	}
	radios, err := locator.ResolveAll[element](f, l)
	if err != nil {
		return "", err
	}
	if len(radios) == 0 {
		return "", framework.ElementNotFoundError{Locator: l.String()}
	}
	return e.checkedValue(radios)
}

func (e *Engine) GetSelectedOptions(selectName string) ([]string, error) {
	return e.optionValues(selectName, true)
}

func (e *Engine) GetSelectOptionValues(selectName string) ([]string, error) {
	return e.optionValues(selectName, false)
}

func (e *Engine) optionValues(selectName string, selectedOnly bool) ([]string, error) {
	sel, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return nil, err
	}
	options, err := finder{e: e}.FindFrom(sel, ".//option")
	if err != nil {
		return nil, err
	}
	values := []string{}
	for _, o := range options {
		if selectedOnly {
			selected, err := isSelected(o)
			if err != nil {
				return nil, err
			}
			if !selected {
				continue
			}
		}
		v, err := e.value(o)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (e *Engine) GetSelectOptionValueForLabel(selectName, label string) (string, error) {
	o, err := e.resolveOption(selectName, engine.OptionWithLabel(label))
	if err != nil {
		return "", err
	}
	return e.value(o)
}

func (e *Engine) GetSelectOptionLabelForValue(selectName, value string) (string, error) {
	o, err := e.resolveOption(selectName, engine.OptionWithValue(value))
	if err != nil {
		return "", err
	}
	return text(o)
}

func (e *Engine) resolveOption(selectName string, option locator.Locator) (element, error) {
	sel, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return nil, err
	}
	return locator.Resolve[element](finder{e: e, root: sel}, option)
}

// GetElementTextByXPath returns the rendered text of the first element matching the
// expression.
func (e *Engine) GetElementTextByXPath(xpath string) (string, error) {
	el, err := e.firstByXPath(xpath)
	if err != nil {
		return "", err
	}
	return text(el)
}

// GetElementAttributeByXPath returns an attribute of the first element matching the
// expression, or "" if the element does not have it.
func (e *Engine) GetElementAttributeByXPath(xpath, attribute string) (string, error) {
	el, err := e.firstByXPath(xpath)
	if err != nil {
		return "", err
	}
	v, _, err := e.attribute(el, attribute)
	return v, err
}

func (e *Engine) value(el element) (string, error) {
	v, err := e.property(el, "value")
	return v.StringValue(), err
}

func (e *Engine) isCheckable(el element) (bool, error) {
	inputType, _, err := e.attribute(el, "type")
	inputType = strings.ToLower(inputType)
	return inputType == "checkbox" || inputType == "radio", err
}

// checkedValue returns the value of the first checked control, or "" if none is checked.
func (e *Engine) checkedValue(controls []element) (string, error) {
	for _, el := range controls {
		selected, err := isSelected(el)
		if err != nil {
			return "", err
		}
		if selected {
			return e.value(el)
		}
	}
	return "", nil
}
