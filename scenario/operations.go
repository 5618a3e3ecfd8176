package scenario

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/webunit/testing-engine/engine"
)

// operation calls one engine method with parameters taken from a step. Methods that return
// nothing but an error produce a null result.
type operation func(e engine.TestingEngine, s Step) (ldvalue.Value, error)

//nolint:gochecknoglobals
var operations = map[string]operation{
	// lifecycle and navigation
	"beginAt":             func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.BeginAt(s.URL)) },
	"closeBrowser":        func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.CloseBrowser()) },
	"setScriptingEnabled": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.SetScriptingEnabled(s.Enabled)) },
	"gotoPage":            func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GotoPage(s.URL)) },
	"goBack":              func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GoBack()) },
	"refresh":             func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.Refresh()) },
	"getPageURL":          func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetPageURL()) },

	// queries
	"hasElement":           func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasElement(s.ID)) },
	"hasElementByXPath":    func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasElementByXPath(s.XPath)) },
	"hasLink":              func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasLink(s.ID)) },
	"hasLinkWithText":      func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasLinkWithText(s.Text, s.Index)) },
	"hasLinkWithExactText": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasLinkWithExactText(s.Text, s.Index)) },
	"hasLinkWithImage":     func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasLinkWithImage(s.Image, s.Index)) },
	"hasButton":            func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasButton(s.ID)) },
	"hasButtonWithText":    func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasButtonWithText(s.Text)) },
	"hasForm":              func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasForm()) },
	"hasFormNamed":         func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasFormNamed(s.Name)) },
	"hasFormParameterNamed": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return boolean(e.HasFormParameterNamed(s.Name))
	},
	"hasFrame":             func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasFrame(s.Name)) },
	"hasTable":             func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasTable(s.Name)) },
	"hasRadioOption":       func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasRadioOption(s.Name, s.Value)) },
	"hasSelectOption":      func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasSelectOption(s.Name, s.Label)) },
	"hasSelectOptionValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasSelectOptionValue(s.Name, s.Value)) },
	"hasSubmitButton":      func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasSubmitButton()) },
	"hasSubmitButtonNamed": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasSubmitButtonNamed(s.Name)) },
	"hasSubmitButtonWithValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return boolean(e.HasSubmitButtonWithValue(s.Name, s.Value))
	},
	"hasResetButton":      func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasResetButton()) },
	"hasResetButtonNamed": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasResetButtonNamed(s.Name)) },
	"isCheckboxSelected":  func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.IsCheckboxSelected(s.Name)) },
	"isCheckboxSelectedWithValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return boolean(e.IsCheckboxSelectedWithValue(s.Name, s.Value))
	},
	"isTextInElement":  func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.IsTextInElement(s.ID, s.Text)) },
	"isMatchInElement": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.IsMatchInElement(s.ID, s.Regex)) },
	"hasWindow":        func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasWindow(s.Name)) },
	"hasWindowByTitle": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return boolean(e.HasWindowByTitle(s.Title)) },

	// forms
	"setWorkingForm":      func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.SetWorkingForm(s.Name, s.Index)) },
	"setWorkingFormIndex": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.SetWorkingFormIndex(s.Index)) },
	"clearWorkingForm": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		e.ClearWorkingForm()
		return done(nil)
	},
	"setTextField":           func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.SetTextField(s.Name, s.Value)) },
	"checkCheckbox":          func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.CheckCheckbox(s.Name)) },
	"checkCheckboxWithValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.CheckCheckboxWithValue(s.Name, s.Value)) },
	"uncheckCheckbox":        func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.UncheckCheckbox(s.Name)) },
	"uncheckCheckboxWithValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return done(e.UncheckCheckboxWithValue(s.Name, s.Value))
	},
	"checkCheckboxWithLabel":   func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.CheckCheckboxWithLabel(s.Label)) },
	"checkCheckboxBeforeLabel": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.CheckCheckboxBeforeLabel(s.Label)) },
	"checkCheckboxAfterLabel":  func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.CheckCheckboxAfterLabel(s.Label)) },
	"uncheckCheckboxWithLabel": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.UncheckCheckboxWithLabel(s.Label)) },
	"selectOptions":            func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.SelectOptions(s.Name, s.Values...)) },
	"unselectOptions":          func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.UnselectOptions(s.Name, s.Values...)) },
	"clickRadioOption":         func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickRadioOption(s.Name, s.Value)) },
	"submit":                   func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.Submit()) },
	"submitWithButton":         func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.SubmitWithButton(s.Name)) },
	"submitWithButtonValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return done(e.SubmitWithButtonValue(s.Name, s.Value))
	},
	"reset": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.Reset()) },

	// clicks
	"clickLink":              func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickLink(s.ID)) },
	"clickLinkWithText":      func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickLinkWithText(s.Text, s.Index)) },
	"clickLinkWithExactText": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickLinkWithExactText(s.Text, s.Index)) },
	"clickLinkWithImage":     func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickLinkWithImage(s.Image, s.Index)) },
	"clickButton":            func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickButton(s.ID)) },
	"clickButtonWithText":    func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickButtonWithText(s.Text)) },
	"clickElementByXPath":    func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.ClickElementByXPath(s.XPath)) },

	// windows and frames
	"gotoWindow":        func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GotoWindow(s.Name)) },
	"gotoWindowByIndex": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GotoWindowByIndex(s.Index)) },
	"gotoWindowByTitle": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GotoWindowByTitle(s.Title)) },
	"gotoRootWindow":    func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GotoRootWindow()) },
	"gotoFrame":         func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GotoFrame(s.Name)) },
	"gotoTopFrame":      func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.GotoTopFrame()) },
	"getWindowCount":    func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return number(e.GetWindowCount()) },
	"closeWindow":       func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return done(e.CloseWindow()) },

	// introspection
	"getPageSource":       func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetPageSource()) },
	"getPageText":         func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetPageText()) },
	"getPageTitle":        func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetPageTitle()) },
	"getServerResponse":   func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetServerResponse()) },
	"getFormElementValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetFormElementValue(s.Name)) },
	"getTextFieldValue":   func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetTextFieldValue(s.Name)) },
	"getHiddenFieldValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetHiddenFieldValue(s.Name)) },
	"getSelectedRadio":    func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetSelectedRadio(s.Name)) },
	"getSelectedOptions":  func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return strs(e.GetSelectedOptions(s.Name)) },
	"getSelectOptionValues": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return strs(e.GetSelectOptionValues(s.Name))
	},
	"getSelectOptionValueForLabel": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return str(e.GetSelectOptionValueForLabel(s.Name, s.Label))
	},
	"getSelectOptionLabelForValue": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return str(e.GetSelectOptionLabelForValue(s.Name, s.Value))
	},
	"getElementTextByXPath": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetElementTextByXPath(s.XPath)) },
	"getElementAttributeByXPath": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return str(e.GetElementAttributeByXPath(s.XPath, s.Attribute))
	},

	// dialogs
	"expectAlert": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		messages := s.Messages
		if s.Message != "" {
			messages = append([]string{s.Message}, messages...)
		}
		e.SetExpectedJavaScriptAlert(messages...)
		return done(nil)
	},
	"expectConfirm": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		e.SetExpectedJavaScriptConfirm(s.Message, s.Accept)
		return done(nil)
	},
	"expectPrompt": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		e.SetExpectedJavaScriptPrompt(s.Message, s.Response)
		return done(nil)
	},
	"clearExpectedDialogs": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		e.ClearExpectedDialogs()
		return done(nil)
	},
	"getPendingDialogCount": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) {
		return ldvalue.Int(len(e.PendingDialogs())), nil
	},
	"getJavascriptAlert": func(e engine.TestingEngine, s Step) (ldvalue.Value, error) { return str(e.GetJavascriptAlert()) },
}

func done(err error) (ldvalue.Value, error) { return ldvalue.Null(), err }

func boolean(b bool, err error) (ldvalue.Value, error) { return ldvalue.Bool(b), err }

func str(s string, err error) (ldvalue.Value, error) { return ldvalue.String(s), err }

func number(n int, err error) (ldvalue.Value, error) { return ldvalue.Int(n), err }

func strs(ss []string, err error) (ldvalue.Value, error) {
	if err != nil {
		return ldvalue.Null(), err
	}
	b := ldvalue.ArrayBuildWithCapacity(len(ss))
	for _, s := range ss {
		b.Add(ldvalue.String(s))
	}
	return b.Build(), nil
}
