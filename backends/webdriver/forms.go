package webdriver

import (
	"fmt"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

// SetTextField replaces the text of a field by clearing it and typing the new value. A file
// input is only typed into; the value is the path of the file to upload.
func (e *Engine) SetTextField(name, value string) error {
	el, err := e.resolveControl(engine.TextField(name))
	if err != nil {
		return err
	}
	_, readOnly, err := e.attribute(el, "readonly")
	if err != nil {
		return err
	}
	if readOnly {
		return fmt.Errorf("text field %q is read-only", name)
	}
	inputType, _, err := e.attribute(el, "type")
	if err != nil {
		return err
	}
	return e.act(func() error {
		if inputType != "file" {
			if err := el.Clear(); err != nil {
				return driverError("clear field", err)
			}
		}
		return wrapDriverError("type into field", el.SendKeys(value))
	})
}

func (e *Engine) CheckCheckbox(name string) error {
	return e.setChecked(engine.Checkbox(name), true)
}

func (e *Engine) CheckCheckboxWithValue(name, value string) error {
	return e.setChecked(engine.CheckboxWithValue(name, value), true)
}

func (e *Engine) UncheckCheckbox(name string) error {
	return e.setChecked(engine.Checkbox(name), false)
}

func (e *Engine) UncheckCheckboxWithValue(name, value string) error {
	return e.setChecked(engine.CheckboxWithValue(name, value), false)
}

func (e *Engine) setChecked(l locator.Locator, checked bool) error {
	el, err := e.resolveControl(l)
	if err != nil {
		return err
	}
	return e.toggle(el, checked)
}

// toggle clicks a checkbox or radio button if its state differs from the wanted one. A radio
// button cannot be unchecked by clicking, so it is unchecked by script.
func (e *Engine) toggle(el element, checked bool) error {
	selected, err := isSelected(el)
	if err != nil || selected == checked {
		return err
	}
	if !checked {
		inputType, _, err := e.attribute(el, "type")
		if err != nil {
			return err
		}
		if inputType == "radio" {
			return e.act(func() error {
				_, err := e.script(scriptUncheck, el)
				return err
			})
		}
	}
	return e.click(el)
}

func (e *Engine) CheckCheckboxWithLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label), true)
}

func (e *Engine) CheckCheckboxBeforeLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label, locator.ControlBeforeLabel), true)
}

func (e *Engine) CheckCheckboxAfterLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label, locator.ControlAfterLabel), true)
}

func (e *Engine) UncheckCheckboxWithLabel(label string) error {
	return e.setCheckedByLabel(e.LabelQuery(label), false)
}

func (e *Engine) setCheckedByLabel(lq locator.Label, checked bool) error {
	f, err := e.labelFinder(lq)
	if err != nil {
		return err
	}
	el, err := locator.ResolveLabel[element](f, lq)
	if err != nil {
		return err
	}
	return e.toggle(el, checked)
}

// SelectOptions selects options by value by clicking them, as a user would.
func (e *Engine) SelectOptions(selectName string, values ...string) error {
	sel, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return err
	}
	multiple, err := e.property(sel, "multiple")
	if err != nil {
		return err
	}
	if !multiple.BoolValue() && len(values) > 1 {
		return fmt.Errorf("select %q allows only one option but %d were given", selectName, len(values))
	}
	chosen, err := e.resolveOptions(sel, values)
	if err != nil {
		return err
	}
	for _, o := range chosen {
		selected, err := isSelected(o)
		if err != nil {
			return err
		}
		if !selected {
			if err := e.click(o); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) UnselectOptions(selectName string, values ...string) error {
	sel, err := e.resolveControl(engine.Select(selectName))
	if err != nil {
		return err
	}
	chosen, err := e.resolveOptions(sel, values)
	if err != nil {
		return err
	}
	return e.act(func() error {
		for _, o := range chosen {
			if _, err := e.script(scriptDeselect, o, sel); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) resolveOptions(sel element, values []string) ([]element, error) {
	chosen := make([]element, 0, len(values))
	for _, v := range values {
		o, err := locator.Resolve[element](finder{e: e, root: sel}, engine.OptionWithValue(v))
		if err != nil {
			return nil, err
		}
		chosen = append(chosen, o)
	}
	return chosen, nil
}

func (e *Engine) ClickRadioOption(group, value string) error {
	el, err := e.resolveControl(engine.RadioOption(group, value))
	if err != nil {
		return err
	}
	return e.click(el)
}

// Submit submits the working form, or the first form. If the form has exactly one submit
// button it is clicked; otherwise the form is submitted by script.
func (e *Engine) Submit() error {
	form, err := e.formForAction()
	if err != nil {
		return err
	}
	buttons, err := locator.ResolveAll[element](finder{e: e, root: form}, engine.SubmitButtons())
	if err != nil {
		return err
	}
	if len(buttons) == 1 {
		return e.click(buttons[0])
	}
	return e.act(func() error {
		_, err := e.script(scriptSubmit, form)
		return err
	})
}

func (e *Engine) SubmitWithButton(nameOrID string) error {
	return e.clickSubmitter(engine.SubmitButton(nameOrID))
}

func (e *Engine) SubmitWithButtonValue(nameOrID, value string) error {
	return e.clickSubmitter(engine.SubmitButtonWithValue(nameOrID, value))
}

func (e *Engine) clickSubmitter(l locator.Locator) error {
	el, err := e.resolveControl(l)
	if err != nil {
		return err
	}
	form, err := e.property(el, "form")
	if err != nil {
		return err
	}
	if form.IsNull() {
		return framework.ElementNotFoundError{Locator: l.String(), Detail: "button is not inside a form"}
	}
	return e.click(el)
}

func (e *Engine) Reset() error {
	form, err := e.formForAction()
	if err != nil {
		return err
	}
	return e.act(func() error {
		_, err := e.script(scriptReset, form)
		return err
	})
}

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
	el, err := e.resolveControl(engine.Button(id))
	if err != nil {
		return err
	}
	return e.click(el)
}

func (e *Engine) ClickButtonWithText(text string) error {
	el, err := e.resolveControl(engine.ButtonWithText(text))
	if err != nil {
		return err
	}
	return e.click(el)
}

// ClickElementByXPath clicks the first element matching the expression.
func (e *Engine) ClickElementByXPath(xpath string) error {
	el, err := e.firstByXPath(xpath)
	if err != nil {
		return err
	}
	return e.click(el)
}

func (e *Engine) clickOnPage(l locator.Locator) error {
	el, err := e.resolveOnPage(l)
	if err != nil {
		return err
	}
	return e.click(el)
}

func (e *Engine) click(el element) error {
	return e.act(func() error { return wrapDriverError("click", el.Click()) })
}
