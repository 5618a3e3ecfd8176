package scenario

import (
	"reflect"
	"strings"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webunit/testing-engine/dialog"
	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
	"github.com/webunit/testing-engine/session"
)

// Engine methods that are reached from scenarios under a different name, or not at all.
var renamedOrOmittedMethods = map[string]string{ //nolint:gochecknoglobals
	"Backend":                      "",
	"Capabilities":                 "",
	"Config":                       "",
	"Scope":                        "",
	"ExpectDialogs":                "",
	"SetExpectedJavaScriptAlert":   "expectAlert",
	"SetExpectedJavaScriptConfirm": "expectConfirm",
	"SetExpectedJavaScriptPrompt":  "expectPrompt",
	"PendingDialogs":               "getPendingDialogCount",
}

func TestEveryEngineOperationHasAStep(t *testing.T) {
	engineType := reflect.TypeOf((*engine.TestingEngine)(nil)).Elem()
	for i := 0; i < engineType.NumMethod(); i++ {
		method := engineType.Method(i).Name
		name, renamed := renamedOrOmittedMethods[method]
		if !renamed {
			name = strings.ToLower(method[:1]) + method[1:]
		}
		if name == "" {
			continue
		}
		assert.Contains(t, operations, name, "no scenario operation for %s", method)
	}
}

func openEngine(t *testing.T, startURL string) engine.TestingEngine {
	e, err := session.Open(siteConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.CloseBrowser() })
	if startURL != "" {
		require.NoError(t, e.BeginAt(startURL))
	}
	return e
}

func runOp(t *testing.T, e engine.TestingEngine, step Step) ldvalue.Value {
	t.Helper()
	result, err := operations[step.Do](e, step)
	require.NoError(t, err, step.Do)
	return result
}

func TestOperationResults(t *testing.T) {
	e := openEngine(t, "/FormSubmissionTest/MultiForm.html")

	m.In(t).Assert(runOp(t, e, Step{Do: "hasForm"}), m.JSONStrEqual(`true`))
	m.In(t).Assert(runOp(t, e, Step{Do: "getPageTitle"}), m.JSONStrEqual(`"Form submission"`))
	m.In(t).Assert(runOp(t, e, Step{Do: "getWindowCount"}), m.JSONStrEqual(`1`))
	m.In(t).Assert(runOp(t, e, Step{Do: "getSelectOptionValues", Name: "single"}), m.JSONStrEqual(`["1", "2", "3"]`))
	m.In(t).Assert(runOp(t, e, Step{Do: "setTextField", Name: "color", Value: "red"}), m.JSONStrEqual(`null`))
	m.In(t).Assert(runOp(t, e, Step{Do: "getTextFieldValue", Name: "color"}), m.JSONStrEqual(`"red"`))

	_, err := operations["getSelectedOptions"](e, Step{Name: "nothing"})
	assert.True(t, framework.IsElementNotFound(err))
}

func TestDialogOperations(t *testing.T) {
	e := openEngine(t, "")

	runOp(t, e, Step{Do: "expectAlert", Message: "a", Messages: []string{"b", "c"}})
	runOp(t, e, Step{Do: "expectConfirm", Message: "sure?", Accept: true})
	runOp(t, e, Step{Do: "expectPrompt", Message: "name?", Response: opt.Some("Bob")})
	runOp(t, e, Step{Do: "expectPrompt", Message: "again?"})
	assert.Equal(t, []dialog.Expectation{
		dialog.Alert("a"),
		dialog.Alert("b"),
		dialog.Alert("c"),
		dialog.Confirm("sure?", true),
		dialog.Prompt("name?", opt.Some("Bob")),
		dialog.Prompt("again?", opt.None[string]()),
	}, e.PendingDialogs())
	m.In(t).Assert(runOp(t, e, Step{Do: "getPendingDialogCount"}), m.JSONStrEqual(`6`))

	runOp(t, e, Step{Do: "clearExpectedDialogs"})
	assert.Len(t, e.PendingDialogs(), 0)
}
