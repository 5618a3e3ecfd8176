package webdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
)

func TestAlertsAreAnsweredInOrder(t *testing.T) {
	e, d := startEngine(t)
	e.SetExpectedJavaScriptAlert("First", "Second")
	require.NoError(t, e.ClickLink("alerting"))
	requireTitle(t, e, "Second")
	assert.Equal(t, []string{"accept First", "accept Second"}, d.log)
	assert.Len(t, e.PendingDialogs(), 0)

	s, err := e.GetJavascriptAlert()
	requireValue(t, "First", s, err)
	s, err = e.GetJavascriptAlert()
	requireValue(t, "Second", s, err)
	_, err = e.GetJavascriptAlert()
	assert.True(t, framework.IsElementNotFound(err))
}

func TestUnexpectedDialogIsDismissed(t *testing.T) {
	t.Run("nothing expected", func(t *testing.T) {
		e, d := startEngine(t)
		err := e.ClickLink("confirming")
		assert.True(t, framework.IsUnexpectedDialog(err), "error was %v", err)
		assert.Equal(t, []string{"dismiss Leave?"}, d.log)
		requireTitle(t, e, "Start")
	})

	t.Run("different message", func(t *testing.T) {
		e, d := startEngine(t)
		e.SetExpectedJavaScriptConfirm("Stay?", true)
		err := e.ClickLink("confirming")
		assert.True(t, framework.IsUnexpectedDialog(err), "error was %v", err)
		assert.Equal(t, []string{"dismiss Leave?"}, d.log)
		assert.Len(t, e.PendingDialogs(), 1)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		e, d := startEngine(t)
		e.SetExpectedJavaScriptConfirm("Leave?", true)
		require.NoError(t, e.ClickLink("confirming"))
		assert.Equal(t, []string{"accept Leave?"}, d.log)
		requireTitle(t, e, "Second")
	})

	t.Run("dismissed", func(t *testing.T) {
		e, d := startEngine(t)
		e.SetExpectedJavaScriptConfirm("Leave?", false)
		require.NoError(t, e.ClickLink("confirming"))
		assert.Equal(t, []string{"dismiss Leave?"}, d.log)
		requireTitle(t, e, "Start")
	})
}

func TestPrompt(t *testing.T) {
	t.Run("answered", func(t *testing.T) {
		e, d := startEngine(t)
		e.SetExpectedJavaScriptPrompt("Name?", opt.Some("Bob"))
		require.NoError(t, e.ClickLink("prompting"))
		assert.Equal(t, []string{"input Bob", "accept Name?"}, d.log)
	})

	t.Run("cancelled", func(t *testing.T) {
		e, d := startEngine(t)
		e.SetExpectedJavaScriptPrompt("Name?", opt.None[string]())
		require.NoError(t, e.ClickLink("prompting"))
		assert.Equal(t, []string{"dismiss Name?"}, d.log)
	})
}

func TestExpectedDialogThatNeverAppears(t *testing.T) {
	e, _ := startEngine(t)
	e.SetExpectedJavaScriptAlert("Never")
	err := e.ClickLink("next")
	assert.True(t, framework.IsExpectedDialogMissing(err), "error was %v", err)
	requireTitle(t, e, "Second")

	e.ClearExpectedDialogs()
	require.NoError(t, e.GoBack())
}

func TestFrames(t *testing.T) {
	e, _ := startEngine(t)
	require.NoError(t, e.GotoFrame("inner"))
	assert.Equal(t, []string{"inner"}, e.Scope().FramePath())
	isTrue(t)(e.HasElement("innerContent"))
	isFalse(t)(e.HasElement("heading"))
	s, err := e.GetTextFieldValue("inner")
	requireValue(t, "inside", s, err)
	requireTitle(t, e, "Start")

	require.NoError(t, e.GotoFrame("inner"))
	assert.Equal(t, []string{"inner"}, e.Scope().FramePath())

	assert.True(t, framework.IsElementNotFound(e.GotoFrame("missing")))
	assert.Equal(t, []string{"inner"}, e.Scope().FramePath())

	require.NoError(t, e.GotoTopFrame())
	assert.Len(t, e.Scope().FramePath(), 0)
	isTrue(t)(e.HasElement("heading"))
}

func TestPageLoadLeavesFrames(t *testing.T) {
	e, _ := startEngine(t)
	require.NoError(t, e.GotoFrame("inner"))
	require.NoError(t, e.GotoPage("/start.html"))
	assert.Len(t, e.Scope().FramePath(), 0)
	isTrue(t)(e.HasElement("heading"))
}

func TestWindows(t *testing.T) {
	e, _ := startEngine(t)
	n, err := e.GetWindowCount()
	requireValue(t, 1, n, err)

	require.NoError(t, e.ClickLink("popup"))
	requireTitle(t, e, "Start")
	n, err = e.GetWindowCount()
	requireValue(t, 2, n, err)
	isTrue(t)(e.HasWindow("popup"))
	isFalse(t)(e.HasWindow("other"))

	require.NoError(t, e.GotoWindow("popup"))
	assert.True(t, e.Scope().Window().IsDefined())
	requireTitle(t, e, "Second")
	isTrue(t)(e.HasElement("arrived"))
	assert.True(t, framework.IsElementNotFound(e.GotoWindow("other")))

	require.NoError(t, e.GotoWindowByIndex(0))
	assert.False(t, e.Scope().Window().IsDefined())
	requireTitle(t, e, "Start")
	require.NoError(t, e.GotoWindowByIndex(1))
	requireTitle(t, e, "Second")
	assert.True(t, framework.IsElementNotFound(e.GotoWindowByIndex(2)))

	require.NoError(t, e.GotoWindow(""))
	requireTitle(t, e, "Start")
}

func TestCloseWindow(t *testing.T) {
	e, d := startEngine(t)
	require.NoError(t, e.ClickLink("popup"))
	require.NoError(t, e.GotoWindow("popup"))
	require.NoError(t, e.CloseWindow())
	assert.False(t, e.Scope().Window().IsDefined())
	n, err := e.GetWindowCount()
	requireValue(t, 1, n, err)
	requireTitle(t, e, "Start")

	require.NoError(t, e.CloseWindow())
	assert.True(t, d.quit)
	_, err = e.GetPageTitle()
	assert.ErrorIs(t, err, engine.ErrNoSession)
}

func TestWindowClosedByPage(t *testing.T) {
	e, d := startEngine(t)
	require.NoError(t, e.ClickLink("popup"))
	require.NoError(t, e.GotoWindow("popup"))
	handle := e.Scope().Window().Value()
	require.NoError(t, d.CloseWindow(handle))

	_, err := e.GetPageTitle()
	assert.True(t, framework.IsElementNotFound(err), "error was %v", err)
	assert.False(t, e.Scope().Window().IsDefined())
	requireTitle(t, e, "Start")
}
