package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webunit/testing-engine/dialog"
	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
)

func TestExpectedAlert(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptAlert("Foo Bar")
	require.NoError(t, e.BeginAt("/JavaScriptTest/Alert.html"))
	assert.Len(t, e.PendingDialogs(), 0)

	message, err := e.GetJavascriptAlert()
	require.NoError(t, err)
	assert.Equal(t, "Foo Bar", message)
	_, err = e.GetJavascriptAlert()
	assert.True(t, framework.IsElementNotFound(err))
}

func TestUnexpectedAlert(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.BeginAt("/JavaScriptTest/Alert.html")
	assert.True(t, framework.IsUnexpectedDialog(err))
}

func TestAlertWithWrongMessage(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptAlert("Other")
	err := e.BeginAt("/JavaScriptTest/Alert.html")
	require.True(t, framework.IsUnexpectedDialog(err))
	var ude framework.UnexpectedDialogError
	require.ErrorAs(t, err, &ude)
	assert.Equal(t, "Foo Bar", ude.Message)
	assert.Equal(t, []dialog.Expectation{dialog.Alert("Other")}, e.PendingDialogs())
}

func TestMultipleAlertsInOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptAlert("Alert 1", "Alert 2")
	require.NoError(t, e.BeginAt("/JavaScriptTest/MultipleAlerts.html"))

	err := e.Refresh()
	assert.True(t, framework.IsUnexpectedDialog(err))
}

func TestAlertsOutOfOrder(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptAlert("Alert 2", "Alert 1")
	assert.True(t, framework.IsUnexpectedDialog(e.BeginAt("/JavaScriptTest/MultipleAlerts.html")))
}

func TestTooFewAlertsExpected(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptAlert("Alert 1")
	assert.True(t, framework.IsUnexpectedDialog(e.BeginAt("/JavaScriptTest/MultipleAlerts.html")))
}

func TestExpectedDialogMissing(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptAlert("Foo Bar")
	err := e.BeginAt("/JavaScriptTest/Target.html")
	assert.True(t, framework.IsExpectedDialogMissing(err))
	assert.Len(t, e.PendingDialogs(), 1)

	e.ClearExpectedDialogs()
	require.NoError(t, e.Refresh())
}

func TestConfirm(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		e, _ := newTestEngine(t)
		e.SetExpectedJavaScriptConfirm("Foo Bar", true)
		require.NoError(t, e.BeginAt("/JavaScriptTest/Confirm.html"))
		isTrue(t)(e.HasLink("Yes"))
		isFalse(t)(e.HasLink("No"))
	})

	t.Run("dismissed", func(t *testing.T) {
		e, _ := newTestEngine(t)
		e.SetExpectedJavaScriptConfirm("Foo Bar", false)
		require.NoError(t, e.BeginAt("/JavaScriptTest/Confirm.html"))
		isTrue(t)(e.HasLink("No"))
		isFalse(t)(e.HasLink("Yes"))
	})
}

func TestConfirmExpectedButAlertRaised(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptConfirm("Foo Bar", true)
	assert.True(t, framework.IsUnexpectedDialog(e.BeginAt("/JavaScriptTest/Alert.html")))
}

func TestPrompt(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptPrompt("Foo Bar", opt.Some("Blah"))
	require.NoError(t, e.BeginAt("/JavaScriptTest/Prompt.html"))
	isTrue(t)(e.HasLinkWithExactText("Blah", 0))

	e.SetExpectedJavaScriptPrompt("Foo Bar", opt.None[string]())
	require.NoError(t, e.Refresh())
	isTrue(t)(e.HasLink("Cancelled"))
}

func TestExpectDialogsSequence(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt("/JavaScriptTest/Clicks.html"))
	e.ExpectDialogs(dialog.Alert("Clicked"))
	require.NoError(t, e.ClickLink("AlertLink"))
	e.ExpectDialogs(dialog.Alert("From href"))
	require.NoError(t, e.ClickLink("ScriptLink"))
	requireTitle(t, e, "Clicks")

	assert.True(t, framework.IsUnexpectedDialog(e.ClickLink("AlertLink")))
}

func TestConfirmCancelsNavigation(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt("/JavaScriptTest/Clicks.html"))
	e.SetExpectedJavaScriptConfirm("Leave this page?", false)
	require.NoError(t, e.ClickLink("ConfirmLink"))
	requireTitle(t, e, "Clicks")

	e.SetExpectedJavaScriptConfirm("Leave this page?", true)
	require.NoError(t, e.ClickLink("ConfirmLink"))
	requireTitle(t, e, "Target")
}

func TestScriptNavigation(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt("/JavaScriptTest/Clicks.html"))
	require.NoError(t, e.ClickLink("LocationLink"))
	requireTitle(t, e, "Target")
}

func TestScriptChangesElements(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt("/JavaScriptTest/Clicks.html"))
	require.NoError(t, e.ClickButton("fill"))
	requireValue(t, "filled")(e.GetTextFieldValue("field"))
	requireValue(t, "done")(e.GetElementTextByXPath("//div[@id='out']"))
	isTrue(t)(e.HasElementByXPath("//div[@id='out']/b"))
}

func TestDocumentWrite(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt("/JavaScriptTest/DocumentWrite.html"))
	isTrue(t)(e.HasElement("written"))
	requireValue(t, "Hello World")(e.GetElementTextByXPath("//p[@id='written']"))
	requireTitle(t, e, "Written title")
}

func TestUserAgentIsVisibleToScripts(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt("/JavaScriptTest/UserAgent.html"))
	isTrue(t)(e.IsTextInElement("agent", "Mozilla"))
}

func TestScriptingDisabled(t *testing.T) {
	e, _ := newTestEngine(t, engine.WithScripting(false))
	require.NoError(t, e.BeginAt("/JavaScriptTest/Alert.html"))
	require.NoError(t, e.BeginAt("/JavaScriptTest/DocumentWrite.html"))
	isFalse(t)(e.HasElement("written"))

	require.NoError(t, e.SetScriptingEnabled(true))
	require.NoError(t, e.Refresh())
	isTrue(t)(e.HasElement("written"))
}

func TestClearExpectedDialogs(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetExpectedJavaScriptAlert("a", "b")
	e.ClearExpectedDialogs()
	assert.Len(t, e.PendingDialogs(), 0)
	require.NoError(t, e.BeginAt("/JavaScriptTest/Target.html"))
}

func TestExpectationArmedBeforeToggleWithoutDialog(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt("/FormSubmissionTest/CheckboxFormWithLabels.html"))
	e.SetExpectedJavaScriptAlert("Foo Bar")

	err := e.CheckCheckboxWithValue("chk", "1")
	assert.True(t, framework.IsExpectedDialogMissing(err), "error was: %s", err)
	isTrue(t)(e.IsCheckboxSelectedWithValue("chk", "1"))
	assert.Len(t, e.PendingDialogs(), 1)

	require.NoError(t, e.CheckCheckboxWithValue("chk", "1"))
}
