package headless

import (
	"net/http"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

const multiFormPage = "/FormSubmissionTest/MultiForm.html"
const checkboxPage = "/FormSubmissionTest/CheckboxFormWithLabels.html"

func requireValue(t *testing.T, expected string) func(string, error) {
	return func(value string, err error) {
		t.Helper()
		require.NoError(t, err)
		assert.Equal(t, expected, value)
	}
}

func requirePageText(t *testing.T, e *Engine) string {
	t.Helper()
	text, err := e.GetPageText()
	require.NoError(t, err)
	return text
}

func TestFirstFormWithControlIsUsedWithoutWorkingForm(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))
	requireValue(t, "blue")(e.GetTextFieldValue("color"))
	requireValue(t, "v3")(e.GetTextFieldValue("field3"))
}

func TestWorkingForm(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))

	require.NoError(t, e.SetWorkingForm("form2", 0))
	requireValue(t, "green")(e.GetTextFieldValue("color"))
	require.NoError(t, e.SetWorkingForm("form2", 1))
	requireValue(t, "yellow")(e.GetTextFieldValue("color"))
	require.NoError(t, e.SetWorkingFormIndex(0))
	requireValue(t, "blue")(e.GetTextFieldValue("color"))

	_, err := e.GetTextFieldValue("field3")
	assert.True(t, framework.IsElementNotFound(err))

	require.NoError(t, e.SetWorkingForm("nothing", 0))
	_, err = e.GetTextFieldValue("color")
	assert.True(t, framework.IsElementNotFound(err))

	e.ClearWorkingForm()
	requireValue(t, "blue")(e.GetTextFieldValue("color"))
}

func TestFormQueries(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))

	isTrue(t)(e.HasForm())
	isTrue(t)(e.HasFormNamed("first"))
	isTrue(t)(e.HasFormNamed("form3"))
	isFalse(t)(e.HasFormNamed("form4"))
	isTrue(t)(e.HasFormParameterNamed("secret"))
	isFalse(t)(e.HasFormParameterNamed("nothing"))
	isTrue(t)(e.HasSubmitButton())
	isTrue(t)(e.HasSubmitButtonNamed("save"))
	isTrue(t)(e.HasSubmitButtonNamed("saveButton"))
	isTrue(t)(e.HasSubmitButtonWithValue("save", "Save As"))
	isFalse(t)(e.HasSubmitButtonWithValue("save", "Discard"))
	isTrue(t)(e.HasResetButton())
	isTrue(t)(e.HasResetButtonNamed("resetButton"))
	isTrue(t)(e.HasRadioOption("size", "small"))
	isFalse(t)(e.HasRadioOption("size", "medium"))
	isTrue(t)(e.HasSelectOption("single", "One"))
	isTrue(t)(e.HasSelectOptionValue("multi", "g"))
	isFalse(t)(e.HasSelectOptionValue("single", "9"))

	requireValue(t, "h1")(e.GetHiddenFieldValue("hidden"))
	requireValue(t, "Some text")(e.GetFormElementValue("comments"))
	requireValue(t, "large")(e.GetSelectedRadio("size"))
	requireValue(t, "3")(e.GetSelectOptionValueForLabel("single", "Three"))
	requireValue(t, "Green")(e.GetSelectOptionLabelForValue("multi", "g"))

	values, err := e.GetSelectOptionValues("multi")
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "g", "b"}, values)

	_, err = e.IsCheckboxSelected("options")
	assert.True(t, framework.IsAmbiguousLocator(err))
	isTrue(t)(e.IsCheckboxSelectedWithValue("options", "a"))
	isFalse(t)(e.IsCheckboxSelected("agree"))
}

func TestChangingControls(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))
	require.NoError(t, e.SetWorkingForm("form1", 0))

	require.NoError(t, e.SetTextField("color", "red"))
	requireValue(t, "red")(e.GetTextFieldValue("color"))
	require.NoError(t, e.SetTextField("comments", "New text"))
	requireValue(t, "New text")(e.GetFormElementValue("comments"))
	assert.True(t, framework.IsElementNotFound(e.SetTextField("hidden", "x")))

	require.NoError(t, e.CheckCheckbox("agree"))
	isTrue(t)(e.IsCheckboxSelected("agree"))
	require.NoError(t, e.CheckCheckbox("agree"))
	isTrue(t)(e.IsCheckboxSelected("agree"))
	require.NoError(t, e.UncheckCheckboxWithValue("options", "a"))
	require.NoError(t, e.CheckCheckboxWithValue("options", "b"))
	requireValue(t, "b")(e.GetFormElementValue("options"))
	assert.True(t, framework.IsAmbiguousLocator(e.CheckCheckbox("options")))

	require.NoError(t, e.ClickRadioOption("size", "small"))
	requireValue(t, "small")(e.GetSelectedRadio("size"))

	require.NoError(t, e.SelectOptions("single", "3"))
	selected, err := e.GetSelectedOptions("single")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, selected)
	assert.Error(t, e.SelectOptions("single", "1", "2"))
	assert.True(t, framework.IsElementNotFound(e.SelectOptions("single", "9")))

	require.NoError(t, e.SelectOptions("multi", "r"))
	require.NoError(t, e.UnselectOptions("multi", "b"))
	selected, err = e.GetSelectedOptions("multi")
	require.NoError(t, err)
	assert.Equal(t, []string{"r"}, selected)

	require.NoError(t, e.Reset())
	requireValue(t, "blue")(e.GetTextFieldValue("color"))
	requireValue(t, "Some text")(e.GetFormElementValue("comments"))
	requireValue(t, "large")(e.GetSelectedRadio("size"))
	isFalse(t)(e.IsCheckboxSelected("agree"))
	selected, err = e.GetSelectedOptions("single")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, selected)
}

func TestSubmitWithButtonValue(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))
	require.NoError(t, e.SetTextField("color", "red"))
	require.NoError(t, e.CheckCheckbox("agree"))
	require.NoError(t, e.SubmitWithButtonValue("save", "Save As"))

	requireTitle(t, e, "Submitted parameters")
	text := requirePageText(t, e)
	assert.Contains(t, text, "agree=yes")
	assert.Contains(t, text, "color=red")
	assert.Contains(t, text, "save=Save As")
	assert.Contains(t, text, "multi=b")
	assert.Contains(t, text, "single=2")
	assert.NotContains(t, text, "resetButton")

	require.NoError(t, e.ClickLink("return"))
	requireTitle(t, e, "Form submission")
}

func TestSubmitUsesOnlySubmitButton(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))
	require.NoError(t, e.SetWorkingForm("form2", 0))
	require.NoError(t, e.Submit())
	text := requirePageText(t, e)
	assert.Contains(t, text, "color=green")
	assert.Contains(t, text, "send=sent")
}

func TestSubmitWithButtonOnPost(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))
	require.NoError(t, e.SubmitWithButton("send"))
	assert.Contains(t, requirePageText(t, e), "send=sent")
	assert.True(t, framework.IsElementNotFound(e.SubmitWithButton("nothing")))
}

func TestMultipartSubmit(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(multiFormPage))
	require.NoError(t, e.SetWorkingForm("form2", 1))
	require.NoError(t, e.Submit())
	assert.Contains(t, requirePageText(t, e), "color=yellow")
}

func TestCheckboxByLabel(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.BeginAt(checkboxPage))

	require.NoError(t, e.CheckCheckboxWithLabel("Check 20"))
	requireValue(t, "20")(e.GetFormElementValue("chk"))
	require.NoError(t, e.UncheckCheckboxWithLabel("Check 20"))
	requireValue(t, "")(e.GetFormElementValue("chk"))

	require.NoError(t, e.CheckCheckboxAfterLabel("Check 2"))
	isTrue(t)(e.IsCheckboxSelectedWithValue("chk", "2"))
	require.NoError(t, e.CheckCheckboxBeforeLabel("Check 1"))
	isTrue(t)(e.IsCheckboxSelectedWithValue("chk", "1"))
	require.NoError(t, e.CheckCheckboxWithLabel("Check 5"))
	isTrue(t)(e.IsCheckboxSelectedWithValue("chk", "5"))
	require.NoError(t, e.CheckCheckboxWithLabel("Check 7"))
	isTrue(t)(e.IsCheckboxSelectedWithValue("chk", "7"))

	require.NoError(t, e.CheckCheckboxBeforeLabel("Radio 10"))
	requireValue(t, "10")(e.GetSelectedRadio("radio"))
	require.NoError(t, e.CheckCheckboxBeforeLabel("Radio 11"))
	requireValue(t, "11")(e.GetSelectedRadio("radio"))

	assert.True(t, framework.IsAmbiguousLocator(e.CheckCheckboxWithLabel("Twice")))
	assert.True(t, framework.IsElementNotFound(e.CheckCheckboxWithLabel("Nothing")))

	require.NoError(t, e.SubmitWithButton("go"))
	text := requirePageText(t, e)
	assert.Contains(t, text, "chk=1,2,5,7")
	assert.Contains(t, text, "radio=11")
}

func TestLabelInTwoFormsIsAmbiguousWithoutWorkingForm(t *testing.T) {
	e, site := newTestEngine(t)
	site.Handle("/labels", httphelpers.HandlerWithResponse(200, http.Header{"Content-Type": {"text/html"}},
		[]byte(`<html><body>
<form name="first"><label>Agree<input type="checkbox" name="a" value="1"/></label></form>
<form name="second"><label>Agree<input type="checkbox" name="a" value="2"/></label></form>
</body></html>`)))
	require.NoError(t, e.BeginAt("/labels"))
	assert.True(t, framework.IsAmbiguousLocator(e.CheckCheckboxWithLabel("Agree")))

	require.NoError(t, e.SetWorkingForm("second", 0))
	require.NoError(t, e.CheckCheckboxWithLabel("Agree"))
	isTrue(t)(e.IsCheckboxSelectedWithValue("a", "2"))
	require.NoError(t, e.SetWorkingForm("first", 0))
	isFalse(t)(e.IsCheckboxSelectedWithValue("a", "1"))
}

func TestCheckboxByLabelWithImmediateSiblingPolicy(t *testing.T) {
	e, _ := newTestEngine(t, engine.WithLabelPolicy(locator.ControlBeforeLabel, locator.SiblingImmediate))
	require.NoError(t, e.BeginAt(checkboxPage))

	assert.True(t, framework.IsElementNotFound(e.CheckCheckboxBeforeLabel("Radio 10")))
	require.NoError(t, e.CheckCheckboxBeforeLabel("Radio 11"))
	require.NoError(t, e.CheckCheckboxWithLabel("Check 20"))
	isTrue(t)(e.IsCheckboxSelectedWithValue("chk", "20"))
}

func TestCheckboxByLabelWithAfterPlacement(t *testing.T) {
	e, _ := newTestEngine(t, engine.WithLabelPolicy(locator.ControlAfterLabel, locator.SiblingNearest))
	require.NoError(t, e.BeginAt(checkboxPage))

	require.NoError(t, e.CheckCheckboxWithLabel("Check 2"))
	isTrue(t)(e.IsCheckboxSelectedWithValue("chk", "2"))
	assert.True(t, framework.IsElementNotFound(e.CheckCheckboxWithLabel("Orphan")))
}
