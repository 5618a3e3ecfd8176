package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
)

var consoleErrorColor = color.New(color.FgYellow)              //nolint:gochecknoglobals
var consoleFailedColor = color.New(color.FgRed)                //nolint:gochecknoglobals
var consoleSkippedColor = color.New(color.Faint, color.FgBlue) //nolint:gochecknoglobals
var consoleDebugOutputColor = color.New(color.Faint)           //nolint:gochecknoglobals
var allPassedColor = color.New(color.FgGreen)                  //nolint:gochecknoglobals

// Logger receives progress reports as a run proceeds.
type Logger interface {
	Started(id ID)
	Error(id ID, err error)
	Finished(id ID, failed bool, debugOutput framework.CapturedOutput)
	Skipped(id ID, reason string)
}

type nullLogger struct{}

func (nullLogger) Started(ID)                                  {}
func (nullLogger) Error(ID, error)                             {}
func (nullLogger) Finished(ID, bool, framework.CapturedOutput) {}
func (nullLogger) Skipped(ID, string)                          {}

// ConsoleLogger prints progress to standard output. The engine's debug output for a scenario
// is printed after it finishes if the corresponding option is set.
type ConsoleLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleLogger) Started(id ID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleLogger) Error(id ID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		_, _ = consoleErrorColor.Printf("  %s\n", line)
	}
}

func (c ConsoleLogger) Finished(id ID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		_, _ = consoleFailedColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 && helpers.IfElse(failed, c.DebugOutputOnFailure, c.DebugOutputOnSuccess) {
		_, _ = consoleDebugOutputColor.Println(debugOutput.ToString("    DEBUG "))
	}
}

func (c ConsoleLogger) Skipped(id ID, reason string) {
	if reason == "" {
		_, _ = consoleSkippedColor.Printf("  SKIPPED: %s\n", id)
	} else {
		_, _ = consoleSkippedColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

// MultiLogger forwards every report to each of its loggers.
type MultiLogger []Logger

func (m MultiLogger) Started(id ID) {
	for _, l := range m {
		l.Started(id)
	}
}

func (m MultiLogger) Error(id ID, err error) {
	for _, l := range m {
		l.Error(id, err)
	}
}

func (m MultiLogger) Finished(id ID, failed bool, debugOutput framework.CapturedOutput) {
	for _, l := range m {
		l.Finished(id, failed, debugOutput)
	}
}

func (m MultiLogger) Skipped(id ID, reason string) {
	for _, l := range m {
		l.Skipped(id, reason)
	}
}

// PrintResults writes a summary of the run: a success line, or the IDs of the failed scopes.
func PrintResults(out io.Writer, results Results) {
	if results.OK() {
		_, _ = allPassedColor.Fprintf(out, "All scenarios passed (%d run, %d skipped)\n",
			len(results.Tests), len(results.Skipped))
		return
	}
	_, _ = consoleFailedColor.Fprintf(out, "FAILED SCENARIOS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		_, _ = consoleFailedColor.Fprintf(out, "  * %s\n", f.ID)
	}
}

// PrintFilterDescription explains which scenarios the filters will skip.
func PrintFilterDescription(filters RegexFilters) {
	if !filters.MustMatch.IsDefined() && !filters.MustNotMatch.IsDefined() {
		return
	}
	fmt.Println("Some scenarios will be skipped based on the filter criteria for this run:")
	if filters.MustMatch.IsDefined() {
		fmt.Printf("  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Printf("  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Println()
}
