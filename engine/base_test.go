package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/dialog"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
	"github.com/webunit/testing-engine/locator"
)

func newTestBase(t *testing.T, options ...Option) *Base {
	c, err := NewConfig(options...)
	require.NoError(t, err)
	return NewBase(BackendHeadless, c, nil)
}

func TestActionReportsMissingDialog(t *testing.T) {
	b := newTestBase(t)
	b.SetExpectedJavaScriptAlert("Foo Bar")
	err := b.Action(func() error { return nil })
	assert.True(t, framework.IsExpectedDialogMissing(err))
	assert.Len(t, b.PendingDialogs(), 1)

	err = b.Action(func() error {
		_, err := b.DialogQueue().Fire(dialog.KindAlert, "Foo Bar")
		return err
	})
	assert.NoError(t, err)

	msg, err := b.GetJavascriptAlert()
	require.NoError(t, err)
	assert.Equal(t, "Foo Bar", msg)
}

func TestActionErrorTakesPrecedence(t *testing.T) {
	b := newTestBase(t)
	b.SetExpectedJavaScriptConfirm("c", true)
	cause := errors.New("load failed")
	assert.Equal(t, cause, b.Action(func() error { return cause }))
}

func TestDialogExpectationMethods(t *testing.T) {
	b := newTestBase(t)
	b.SetExpectedJavaScriptAlert("a1", "a2")
	b.SetExpectedJavaScriptConfirm("c", false)
	b.SetExpectedJavaScriptPrompt("p", opt.Some("x"))
	b.ExpectDialogs(dialog.Alert("last"))
	assert.Equal(t, []dialog.Expectation{
		dialog.Alert("a1"), dialog.Alert("a2"), dialog.Confirm("c", false),
		dialog.Prompt("p", opt.Some("x")), dialog.Alert("last"),
	}, b.PendingDialogs())
	b.ClearExpectedDialogs()
	assert.Empty(t, b.PendingDialogs())
}

func TestWorkingForm(t *testing.T) {
	b := newTestBase(t)
	require.NoError(t, b.SetWorkingForm("f", 1))
	assert.Equal(t, "(//form[@name='f' or @id='f'])[2]", b.Scope().ScopePrefix())
	require.NoError(t, b.SetWorkingFormIndex(0))
	assert.Equal(t, "(//form)[1]", b.Scope().ScopePrefix())
	b.ClearWorkingForm()
	assert.Equal(t, "", b.Scope().ScopePrefix())
	assert.Error(t, b.SetWorkingForm("f", -1))
}

func TestUnsupported(t *testing.T) {
	b := newTestBase(t)
	err := b.Unsupported("getServerResponse")
	assert.True(t, framework.IsUnsupported(err))
	assert.Contains(t, err.Error(), "headless")
}

func TestLabelQueryStrategies(t *testing.T) {
	b := newTestBase(t)
	assert.Equal(t, []locator.Strategy{locator.AssociationFor, locator.AssociationNested, locator.ControlBeforeLabel},
		b.LabelQuery("x").Strategies())
	assert.Equal(t, []locator.Strategy{locator.ControlAfterLabel},
		b.LabelQuery("x", locator.ControlAfterLabel).Strategies())

	after := newTestBase(t, WithLabelPolicy(locator.ControlAfterLabel, locator.SiblingImmediate))
	assert.Equal(t, locator.ControlAfterLabel, after.LabelQuery("x").Strategies()[2])
}

type nodeFinder struct{ root *html.Node }

func (f nodeFinder) FindAll(xpath string) ([]*html.Node, error) { return htmlquery.QueryAll(f.root, xpath) }

func (f nodeFinder) FindFrom(n *html.Node, xpath string) ([]*html.Node, error) {
	return htmlquery.QueryAll(n, xpath)
}

func (f nodeFinder) Attribute(n *html.Node, name string) (string, bool, error) {
	return htmlquery.SelectAttr(n, name), htmlquery.ExistsAttr(n, name), nil
}

const formPage = `<html><body>
<form name="f1">
  <input name="t1"/><input type="password" name="pw"/><textarea name="ta">x</textarea>
  <input type="hidden" name="h" value="secret"/>
  <input type="submit" name="go" value="Go"/>
  <button name="go2" value="v2">Second</button>
  <button type="button" id="plain">Plain</button>
  <input type="reset" id="rst"/>
</form>
<a id="home" href="/">Home page</a><a href="/x">Home</a>
<a href="/img"><img src="/images/logo.png"/></a>
<table summary="totals"></table>
</body></html>`

func TestLocatorsAgainstDocument(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(formPage))
	require.NoError(t, err)
	f := nodeFinder{doc}

	value := func(l locator.Locator, attr string) string {
		n, err := locator.Resolve[*html.Node](f, l)
		require.NoError(t, err, l.String())
		return htmlquery.SelectAttr(n, attr)
	}
	exists := func(l locator.Locator) bool {
		ok, err := locator.Exists[*html.Node](f, l)
		require.NoError(t, err)
		return ok
	}

	assert.Equal(t, "t1", value(TextField("t1"), "name"))
	assert.Equal(t, "pw", value(TextField("pw"), "name"))
	assert.Equal(t, "ta", value(TextField("ta"), "name"))
	assert.False(t, exists(TextField("h")))
	assert.Equal(t, "secret", value(HiddenField("h"), "value"))

	assert.Equal(t, "go", value(SubmitButtons(), "name"), "first submit button in document order")
	assert.Equal(t, "go2", value(SubmitButton("go2"), "name"))
	assert.Equal(t, "go2", value(SubmitButtonWithValue("go2", "v2"), "name"))
	assert.Equal(t, "go", value(SubmitButtonWithValue("go", "Go"), "name"))
	assert.False(t, exists(SubmitButton("plain")))
	assert.Equal(t, "rst", value(ResetButton("rst"), "id"))
	assert.True(t, exists(Button("plain")))
	assert.True(t, exists(ButtonWithText("Second")))

	assert.True(t, exists(LinkWithText("Home", 1)))
	assert.False(t, exists(LinkWithText("Home", 2)))
	assert.Equal(t, "/x", value(LinkWithExactText("Home", 0), "href"))
	assert.Equal(t, "/img", value(LinkWithImage("logo.png", 0), "href"))
	assert.Equal(t, "home", value(Link("home"), "id"))

	assert.True(t, exists(FormNamed("f1")))
	assert.True(t, exists(FormControl("ta")))
	assert.True(t, exists(Table("totals")))
	assert.False(t, exists(Table("other")))
}
