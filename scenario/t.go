package scenario

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
)

type environment struct {
	filters RegexFilters
	logger  Logger
	results Results
}

// T is the scope of a suite or a scenario. Like Go's testing.T, a failure can be recorded
// with Errorf and the scope ended early with FailNow; T implements both helpers.TestContext
// and testify's assert.TestingT.
type T struct {
	env         *environment
	id          ID
	debugLogger framework.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	cleanups    []func()
	errors      []error
}

var _ helpers.TestContext = (*T)(nil)

// runRoot starts the unnamed root scope, inside which suites are run with T.Run.
func runRoot(filters RegexFilters, logger Logger, action func(*T)) Results {
	if logger == nil {
		logger = nullLogger{}
	}
	env := &environment{filters: filters, logger: logger}
	t := &T{env: env}
	t.run(action)
	return env.results
}

func (t *T) run(action func(*T)) (result Result) {
	result.ID = t.id
	defer func() {
		if r := recover(); r != nil && !t.skipped {
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("scenario failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.errors = append(t.errors, addError)
				t.env.logger.Error(t.id, addError)
			}
		}
		for i := len(t.cleanups) - 1; i >= 0; i-- {
			t.cleanups[i]()
		}
		if t.skipped || len(t.id) == 0 {
			return
		}
		result.Errors = t.errors
		if t.failed {
			t.env.results.Failures = append(t.env.results.Failures, result)
		}
		t.env.results.Tests = append(t.env.results.Tests, result)
	}()

	action(t)
	return result
}

// ID returns the full name of the scope.
func (t *T) ID() ID {
	return t.id
}

// Run runs a child scope. It is skipped without being started if the filters exclude it.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	if !t.env.filters.Match(id) {
		t.env.results.Skipped = append(t.env.results.Skipped, id)
		t.env.logger.Skipped(id, "excluded by filter parameters")
		return
	}
	t.env.logger.Started(id)
	child := &T{id: id, env: t.env}
	child.run(action)
	if child.skipped {
		t.env.results.Skipped = append(t.env.results.Skipped, id)
		t.env.logger.Skipped(id, child.skipReason)
		return
	}
	t.env.logger.Finished(id, child.failed, child.debugLogger.Output())
}

// Errorf records a failure without ending the scope.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := reformatError(fmt.Errorf(format, args...))
	t.errors = append(t.errors, err)
	t.env.logger.Error(t.id, err)
}

// FailNow ends the scope immediately and marks it as failed.
func (t *T) FailNow() {
	t.failed = true
	panic(t)
}

func (t *T) Failed() bool { return t.failed }

// Skip ends the scope immediately and marks it as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug writes a message to the scope's debug output.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns the Logger that captures the scope's debug output. The runner gives it to
// the scenario's engine, so the engine's log can be shown when the scenario fails.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a function to be called when the scope exits for any reason.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}
