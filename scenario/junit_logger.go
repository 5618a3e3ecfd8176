package scenario

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
	"github.com/webunit/testing-engine/framework/opt"
)

// JUnitLogger collects results and writes them as a JUnit XML report when the run ends. Each
// suite becomes a testsuite element with one testcase per scenario.
type JUnitLogger struct {
	filePath string
	config   engine.Config
	filters  RegexFilters
	ids      []ID // in the order the scopes were started
	statuses map[string]jUnitStatus
	lock     sync.Mutex
}

type jUnitStatus struct {
	failures  []error
	skipped   opt.Maybe[string]
	output    string
	startTime time.Time
	duration  time.Duration
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

func NewJUnitLogger(filePath string, config engine.Config, filters RegexFilters) *JUnitLogger {
	return &JUnitLogger{
		filePath: filePath,
		config:   config,
		filters:  filters,
		statuses: make(map[string]jUnitStatus),
	}
}

func (j *JUnitLogger) Started(id ID) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.ids = append(j.ids, id)
	j.statuses[id.String()] = jUnitStatus{startTime: time.Now()}
}

func (j *JUnitLogger) Error(id ID, err error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.statuses[id.String()]
	status.failures = append(status.failures, err)
	j.statuses[id.String()] = status
}

func (j *JUnitLogger) Finished(id ID, failed bool, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.statuses[id.String()]
	status.output = debugOutput.ToString("")
	status.duration = time.Since(status.startTime)
	j.statuses[id.String()] = status
}

func (j *JUnitLogger) Skipped(id ID, reason string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status, started := j.statuses[id.String()]
	if !started {
		j.ids = append(j.ids, id)
	}
	status.skipped = opt.Some(reason)
	status.duration = 0
	j.statuses[id.String()] = status
}

// Write produces the report. Only scenarios are listed; suites appear as testsuite elements.
func (j *JUnitLogger) Write() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	properties := []jUnitXMLProperty{
		{Name: "engine.backend", Value: string(j.config.Backend)},
		{Name: "engine.baseURL", Value: j.config.BaseURL},
		{Name: "filter.mustMatch", Value: j.filters.MustMatch.String()},
		{Name: "filter.mustNotMatch", Value: j.filters.MustNotMatch.String()},
	}
	if j.config.Backend == engine.BackendWebDriver {
		properties = append(properties, jUnitXMLProperty{Name: "engine.browser", Value: j.config.Driver.Browser})
	}

	var doc jUnitXMLDocument
	for _, suiteName := range topLevelNames(j.ids) {
		suite := jUnitXMLTestSuite{Name: suiteName, Properties: properties}
		var total time.Duration
		for _, id := range j.ids {
			if len(id) != 2 || id[0] != suiteName {
				continue
			}
			status := j.statuses[id.String()]
			suite.Tests++
			total += status.duration

			testCase := jUnitXMLTestCase{
				Classname: suiteName,
				Name:      id[1],
				Time:      jUnitDurationString(status.duration),
			}
			if status.skipped.IsDefined() {
				suite.Skipped++
				testCase.SkipMessage = &jUnitXMLSkipMessage{Message: status.skipped.Value()}
			}
			if len(status.failures) != 0 {
				suite.Failures++
				messages := make([]string, 0, len(status.failures))
				for _, e := range status.failures {
					messages = append(messages, e.Error())
				}
				testCase.Failure = &jUnitXMLFailure{
					Message:  strings.Join(messages, "\n"),
					Type:     failureType(status.failures),
					Contents: status.output,
				}
			}
			suite.TestCases = append(suite.TestCases, testCase)
		}
		suite.Time = jUnitDurationString(total)
		doc.Suites = append(doc.Suites, suite)
	}

	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	bytes = append([]byte(xml.Header), append(bytes, '\n')...)
	return os.WriteFile(j.filePath, bytes, 0644) //nolint:gosec
}

func failureType(errs []error) string {
	for _, err := range errs {
		if kind := framework.ErrorKind(err); kind != "" {
			return kind
		}
	}
	return "assertion"
}

func topLevelNames(ids []ID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if len(id) != 0 {
			names = append(names, id[0])
		}
	}
	return helpers.Deduplicate(names)
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
