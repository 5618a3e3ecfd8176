// Package engine defines the TestingEngine contract: the semantic operations a web acceptance
// test performs, independent of how a page is loaded and inspected. The backends directory
// contains the implementations, and the session package creates one from a Config.
//
// All operations that locate an element fail with framework.ElementNotFoundError when nothing
// matches and with framework.AmbiguousLocatorError when several elements match an operation
// that needs exactly one. Operations that can cause the page to raise JavaScript dialogs match
// them against the expectations set with the SetExpected methods before returning.
package engine

import (
	"github.com/webunit/testing-engine/dialog"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
	"github.com/webunit/testing-engine/navigation"
)

// Names of optional capabilities reported by TestingEngine.Capabilities.
const (
	// CapabilityServerResponse means GetServerResponse is supported.
	CapabilityServerResponse = "server-response"
	// CapabilityScriptingToggle means scripting can be disabled with SetScriptingEnabled.
	CapabilityScriptingToggle = "scripting-toggle"
	// CapabilityWindowByTitle means GotoWindowByTitle and HasWindowByTitle are supported.
	CapabilityWindowByTitle = "window-by-title"
	// CapabilityLiveBrowser means pages are rendered by a real browser.
	CapabilityLiveBrowser = "live-browser"
	// CapabilityDialogKinds means the backend can tell alert, confirm and prompt apart.
	CapabilityDialogKinds = "dialog-kinds"
)

// TestingEngine is the contract implemented by every backend. An engine is driven from one
// goroutine at a time and owns its navigation state and dialog queue.
type TestingEngine interface {
	Lifecycle
	Navigator
	Queries
	Forms
	Clicks
	Windows
	Introspection
	Dialogs
}

// Lifecycle covers session management and metadata.
type Lifecycle interface {
	// BeginAt starts the session, if necessary, and loads the URL in the root window. A URL
	// without a scheme is resolved against Config.BaseURL.
	BeginAt(url string) error
	// CloseBrowser ends the session and releases the browser. It is safe to call more than once.
	CloseBrowser() error
	Backend() Backend
	Capabilities() framework.Capabilities
	Config() Config
	// Scope is a read-only view of the navigation context.
	Scope() Scope
	// SetScriptingEnabled turns JavaScript on or off for subsequent page loads.
	SetScriptingEnabled(enabled bool) error
}

// Scope is the part of navigation.State visible to callers.
type Scope interface {
	Window() opt.Maybe[string]
	FramePath() []string
	Form() opt.Maybe[navigation.FormSelector]
	ScopePrefix() string
}

// Navigator covers top-level navigation of the active window.
type Navigator interface {
	GotoPage(url string) error
	GoBack() error
	Refresh() error
	GetPageURL() (string, error)
}

// Queries are read-only checks for the presence of elements in the active scope.
type Queries interface {
	HasElement(id string) (bool, error)
	HasElementByXPath(xpath string) (bool, error)
	HasLink(id string) (bool, error)
	HasLinkWithText(text string, index int) (bool, error)
	HasLinkWithExactText(text string, index int) (bool, error)
	HasLinkWithImage(imageFileName string, index int) (bool, error)
	HasButton(id string) (bool, error)
	HasButtonWithText(text string) (bool, error)
	HasForm() (bool, error)
	HasFormNamed(nameOrID string) (bool, error)
	HasFormParameterNamed(name string) (bool, error)
	HasFrame(name string) (bool, error)
	HasTable(summaryNameOrID string) (bool, error)
	HasRadioOption(group, value string) (bool, error)
	HasSelectOption(selectName, label string) (bool, error)
	HasSelectOptionValue(selectName, value string) (bool, error)
	HasSubmitButton() (bool, error)
	HasSubmitButtonNamed(nameOrID string) (bool, error)
	HasSubmitButtonWithValue(nameOrID, value string) (bool, error)
	HasResetButton() (bool, error)
	HasResetButtonNamed(nameOrID string) (bool, error)
	IsCheckboxSelected(name string) (bool, error)
	IsCheckboxSelectedWithValue(name, value string) (bool, error)
	IsTextInElement(id, text string) (bool, error)
	IsMatchInElement(id, regex string) (bool, error)
}

// Forms manipulate form controls. They act within the working form if one is set. Otherwise
// they act within the first form of the active frame that has a matching control, or the whole
// frame if no form has one.
type Forms interface {
	SetWorkingForm(nameOrID string, index int) error
	SetWorkingFormIndex(index int) error
	ClearWorkingForm()
	SetTextField(name, value string) error
	CheckCheckbox(name string) error
	CheckCheckboxWithValue(name, value string) error
	UncheckCheckbox(name string) error
	UncheckCheckboxWithValue(name, value string) error
	// CheckCheckboxWithLabel checks the checkbox or radio button associated with the label,
	// trying "for", nesting, and then the configured sibling placement.
	CheckCheckboxWithLabel(label string) error
	// CheckCheckboxBeforeLabel checks the control placed before the label.
	CheckCheckboxBeforeLabel(label string) error
	// CheckCheckboxAfterLabel checks the control placed after the label.
	CheckCheckboxAfterLabel(label string) error
	UncheckCheckboxWithLabel(label string) error
	SelectOptions(selectName string, values ...string) error
	UnselectOptions(selectName string, values ...string) error
	ClickRadioOption(group, value string) error
	Submit() error
	SubmitWithButton(nameOrID string) error
	SubmitWithButtonValue(nameOrID, value string) error
	Reset() error
}

// Clicks activate links, buttons and arbitrary elements.
type Clicks interface {
	ClickLink(id string) error
	ClickLinkWithText(text string, index int) error
	ClickLinkWithExactText(text string, index int) error
	ClickLinkWithImage(imageFileName string, index int) error
	ClickButton(id string) error
	ClickButtonWithText(text string) error
	ClickElementByXPath(xpath string) error
}

// Windows switch between windows and frames.
type Windows interface {
	GotoWindow(name string) error
	GotoWindowByIndex(index int) error
	GotoWindowByTitle(title string) error
	GotoRootWindow() error
	// GotoFrame enters a child frame of the active frame, or a top-level frame of the active
	// window if the active frame has no child with that name.
	GotoFrame(name string) error
	GotoTopFrame() error
	GetWindowCount() (int, error)
	HasWindow(name string) (bool, error)
	HasWindowByTitle(title string) (bool, error)
	// CloseWindow closes the active window and returns to the root window.
	CloseWindow() error
}

// Introspection reads page content and form values.
type Introspection interface {
	GetPageSource() (string, error)
	GetPageText() (string, error)
	GetPageTitle() (string, error)
	GetServerResponse() (string, error)
	// GetFormElementValue returns a control's value; for a checkbox or radio group it is the
	// value of the checked control, or "" if none is checked.
	GetFormElementValue(name string) (string, error)
	GetTextFieldValue(name string) (string, error)
	GetHiddenFieldValue(name string) (string, error)
	GetSelectedRadio(group string) (string, error)
	GetSelectedOptions(selectName string) ([]string, error)
	GetSelectOptionValues(selectName string) ([]string, error)
	GetSelectOptionValueForLabel(selectName, label string) (string, error)
	GetSelectOptionLabelForValue(selectName, value string) (string, error)
	GetElementTextByXPath(xpath string) (string, error)
	GetElementAttributeByXPath(xpath, attribute string) (string, error)
}

// Dialogs manage JavaScript dialog expectations.
//
// Expectations are checked per action. Once set, the next action (a page load, a click, a
// checkbox toggle, a form submission and so on) must raise at least one of them, or it fails
// with ExpectedDialogMissingError even though the action itself took effect. Set
// expectations immediately before the action that raises the dialogs. A toggle that leaves
// the control unchanged is not an action and does not check them.
type Dialogs interface {
	// SetExpectedJavaScriptAlert expects alerts with these messages, in order.
	SetExpectedJavaScriptAlert(messages ...string)
	SetExpectedJavaScriptConfirm(message string, accept bool)
	// SetExpectedJavaScriptPrompt expects a prompt, answered with input or cancelled if input is
	// undefined.
	SetExpectedJavaScriptPrompt(message string, input opt.Maybe[string])
	ExpectDialogs(expectations ...dialog.Expectation)
	ClearExpectedDialogs()
	PendingDialogs() []dialog.Expectation
	// GetJavascriptAlert returns the oldest alert message not yet retrieved.
	GetJavascriptAlert() (string, error)
}
