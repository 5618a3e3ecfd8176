package webdriver

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/webunit/testing-engine/dialog"
	"github.com/webunit/testing-engine/framework"
)

// Scripts run in the browser through ExecuteScript. Elements are passed as arguments.
const (
	scriptReadyState   = "return document.readyState;"
	scriptLocation     = "return document.location.href;"
	scriptWindowName   = "return window.name;"
	scriptMarkDocument = "var seen = window.__webunitSeen === true; window.__webunitSeen = true; return seen;"
	scriptAttribute    = "return arguments[0].getAttribute(arguments[1]);"
	scriptProperty     = "return arguments[0][arguments[1]];"
	scriptSubmit       = "var f = arguments[0]; if (f.requestSubmit) { f.requestSubmit(); } else { f.submit(); }"
	scriptReset        = "arguments[0].reset();"
	scriptUncheck      = "arguments[0].checked = false; arguments[0].dispatchEvent(new Event('change', {bubbles: true}));"
	scriptDeselect     = "arguments[0].selected = false; arguments[1].dispatchEvent(new Event('change', {bubbles: true}));"
)

// script runs code in the current document and converts the result, which the driver decodes
// from JSON, to an ldvalue.Value. A script that returns nothing gives ldvalue.Null().
func (e *Engine) script(code string, args ...interface{}) (ldvalue.Value, error) {
	result, err := e.wd.ExecuteScript(code, args)
	if err != nil {
		return ldvalue.Null(), driverError("execute script", err)
	}
	return ldvalue.CopyArbitraryValue(result), nil
}

// attribute returns an element's attribute; ok is false if the element does not have it.
func (e *Engine) attribute(el element, name string) (value string, ok bool, err error) {
	v, err := e.script(scriptAttribute, el, name)
	if err != nil || v.IsNull() {
		return "", false, err
	}
	return v.StringValue(), true, nil
}

// property returns a DOM property, which for form controls reflects what the user has done
// rather than the markup.
func (e *Engine) property(el element, name string) (ldvalue.Value, error) {
	return e.script(scriptProperty, el, name)
}

// answerDialog answers the open dialog, if there is one, with the response from the head of
// the dialog queue. It returns false if no dialog is open. A dialog that does not match the
// queue is dismissed and reported as an error.
func (e *Engine) answerDialog() (bool, error) {
	message, err := e.wd.AlertText()
	if err != nil {
		return false, nil //nolint:nilerr
	}
	resp, err := e.DialogQueue().Fire(dialog.KindUnknown, message)
	if err != nil {
		if dismissErr := e.wd.DismissAlert(); dismissErr != nil {
			e.Logger().Printf("Could not dismiss dialog: %s", dismissErr)
		}
		return true, err
	}
	if resp.Input.IsDefined() {
		if err := e.wd.SetAlertText(resp.Input.Value()); err != nil {
			return true, driverError("answer prompt", err)
		}
	}
	if resp.Accept {
		err = e.wd.AcceptAlert()
	} else {
		err = e.wd.DismissAlert()
	}
	if err != nil {
		return true, framework.ResponseError{Operation: "answer dialog", Err: err}
	}
	return true, nil
}
