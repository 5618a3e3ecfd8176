package scenario

import (
	"fmt"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
	"github.com/webunit/testing-engine/session"
)

// RunConfig controls a scenario run.
type RunConfig struct {
	// Engine is the configuration every scenario's engine is opened with.
	Engine  engine.Config
	Filters RegexFilters
	Logger  Logger
}

// Run runs each suite in order, with a fresh engine for every scenario.
func Run(suites []Suite, config RunConfig) Results {
	return runRoot(config.Filters, config.Logger, func(t *T) {
		for _, suite := range suites {
			suite := suite
			t.Run(suite.Name, func(t *T) {
				for _, sc := range suite.Scenarios {
					sc := sc
					t.Run(sc.Name, func(t *T) {
						runScenario(t, config.Engine, sc)
					})
				}
			})
		}
	})
}

func runScenario(t *T, config engine.Config, sc Scenario) {
	e, err := session.Open(config, t.DebugLogger(), sc.engineOptions()...)
	if err != nil {
		t.Errorf("could not open engine: %s", err)
		t.FailNow()
	}
	t.Defer(func() {
		if err := e.CloseBrowser(); err != nil {
			t.Debug("error closing browser: %s", err)
		}
	})

	if missing := e.Capabilities().Missing(sc.requiredCapabilities()...); len(missing) != 0 {
		t.SkipWithReason(fmt.Sprintf("%s backend lacks %s", e.Backend(), strings.Join(missing, ", ")))
	}

	for i, step := range sc.Steps {
		runStep(t, e, i+1, step)
	}
}

func (sc Scenario) requiredCapabilities() []string {
	if sc.Scripting.IsDefined() && !sc.Scripting.Value() {
		return helpers.Deduplicate(append(slices.Clone(sc.Requires), engine.CapabilityScriptingToggle))
	}
	return sc.Requires
}

func (sc Scenario) engineOptions() []engine.Option {
	var options []engine.Option
	if sc.UserAgent.IsDefined() {
		options = append(options, engine.WithUserAgent(sc.UserAgent.Value()))
	}
	if sc.Scripting.IsDefined() {
		options = append(options, engine.WithScripting(sc.Scripting.Value()))
	}
	return options
}

func runStep(t *T, e engine.TestingEngine, n int, step Step) {
	t.Debug("step %d: %s", n, step)
	result, err := operations[step.Do](e, step)
	if failure := checkStep(n, step, result, err); failure != nil {
		t.Errorf("%w", failure)
		t.FailNow()
	}
}

// checkStep compares what an operation did with what the step expects, returning the failure
// if they differ.
func checkStep(n int, step Step, result ldvalue.Value, err error) error {
	if step.ExpectError.IsDefined() {
		if kind := framework.ErrorKind(err); kind != step.ExpectError.Value() {
			return fmt.Errorf("step %d (%s): expected %s error, got %s", n, step, step.ExpectError.Value(), describeError(err))
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("step %d (%s): %w", n, step, err)
	}
	if step.Expect.IsNull() {
		return nil
	}
	var recorder helpers.TestRecorder
	assert.JSONEq(&recorder, step.Expect.JSONString(), result.JSONString(), "step %d (%s)", n, step)
	return recorder.Err()
}

func describeError(err error) string {
	if err == nil {
		return "no error"
	}
	if kind := framework.ErrorKind(err); kind != "" {
		return fmt.Sprintf("%s error (%s)", kind, err)
	}
	return fmt.Sprintf("error (%s)", err)
}
