package engine

import (
	"github.com/webunit/testing-engine/locator"
)

// The locators below define what each contract operation looks for. Both backends use them,
// which keeps the two in agreement about what "a submit button" or "a text field" is.

var textInputTypes = []string{ //nolint:gochecknoglobals
	"text", "password", "file", "email", "number", "search", "tel", "url", "date", "datetime-local", "month",
	"time", "week", "color", "range",
}

func ElementByID(id string) locator.Locator { return locator.ByID(id) }

func Link(id string) locator.Locator { return locator.ByID(id, "a") }

func LinkWithText(text string, index int) locator.Locator {
	return locator.Element("a").WithText(text).At(index)
}

func LinkWithExactText(text string, index int) locator.Locator {
	return locator.Element("a").WithExactText(text).At(index)
}

func LinkWithImage(imageFileName string, index int) locator.Locator {
	return locator.Element("a").Containing("img/@src", imageFileName).At(index)
}

func Button(id string) locator.Locator {
	return locator.ByID(id, "button").
		Or(locator.ByID(id, "input").WithType("button", "submit", "reset", "image"))
}

func ButtonWithText(text string) locator.Locator {
	return locator.Element("button").WithText(text).
		Or(locator.Element("input").WithType("button", "submit", "reset").Containing("@value", text)).
		First()
}

func AnyForm() locator.Locator { return locator.Element("form").First() }

func FormNamed(nameOrID string) locator.Locator {
	return locator.Element("form").WithIDOrName(nameOrID).First()
}

// FormControl is any named control that submits a parameter.
func FormControl(name string) locator.Locator {
	return locator.ByName(name, "input", "select", "textarea", "button")
}

func Frame(name string) locator.Locator { return locator.ByName(name, "frame", "iframe") }

func Table(summaryNameOrID string) locator.Locator {
	q := locator.Quote(summaryNameOrID)
	return locator.Element("table").Where("@id=" + q + " or @name=" + q + " or @summary=" + q).First()
}

func RadioOption(group, value string) locator.Locator {
	return locator.ByName(group, "input").WithType("radio").WithAttribute("value", value)
}

func RadioGroup(group string) locator.Locator {
	return locator.ByName(group, "input").WithType("radio")
}

func Select(name string) locator.Locator { return locator.ByName(name, "select") }

// Option matches the options of a select element by value.
func OptionWithValue(value string) locator.Locator {
	return locator.Element("option").WithAttribute("value", value).First()
}

// OptionWithLabel matches the options of a select element by their visible text.
func OptionWithLabel(label string) locator.Locator {
	return locator.Element("option").WithExactText(label).First()
}

func SubmitButtons() locator.Locator {
	return locator.Element("input").WithType("submit", "image").
		Or(locator.Element("button").Where("not(@type) or @type='submit'")).
		First()
}

func SubmitButton(nameOrID string) locator.Locator {
	return SubmitButtons().WithIDOrName(nameOrID)
}

func SubmitButtonWithValue(nameOrID, value string) locator.Locator {
	q := locator.Quote(value)
	return locator.Element("input").WithType("submit", "image").WithIDOrName(nameOrID).WithAttribute("value", value).
		Or(locator.Element("button").Where("not(@type) or @type='submit'").WithIDOrName(nameOrID).
			Where("@value=" + q + " or normalize-space(.)=" + q)).
		First()
}

func ResetButtons() locator.Locator {
	return locator.Element("input").WithType("reset").
		Or(locator.Element("button").WithType("reset")).
		First()
}

func ResetButton(nameOrID string) locator.Locator {
	return ResetButtons().WithIDOrName(nameOrID)
}

func Checkbox(name string) locator.Locator {
	return locator.ByName(name, "input").WithType("checkbox")
}

func CheckboxWithValue(name, value string) locator.Locator {
	return Checkbox(name).WithAttribute("value", value)
}

// Checkable matches checkboxes and radio buttons, the controls that can be checked by label.
func Checkable() locator.Locator {
	return locator.Element("input").WithType("checkbox", "radio")
}

// TextField matches text-like inputs, including inputs with no type, and text areas.
func TextField(name string) locator.Locator {
	textual := locator.ByName(name, "input").Where("not(@type)").
		Or(locator.ByName(name, "input").WithType(textInputTypes...))
	return textual.Or(locator.ByName(name, "textarea"))
}

func HiddenField(name string) locator.Locator {
	return locator.ByName(name, "input").WithType("hidden")
}
