package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/webunit/testing-engine/framework/opt"
)

//go:embed scenarios
var builtinRoot embed.FS

const builtinBasePath = "scenarios"

// Suite is a named list of scenarios, read from one file.
type Suite struct {
	Name      string     `json:"name"`
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is a sequence of steps run against a fresh engine. The first step is normally
// beginAt; dialog expectations that a page raises while loading must be set before it.
type Scenario struct {
	Name string `json:"name"`
	// Requires lists engine capabilities; the scenario is skipped if the engine lacks any.
	Requires []string `json:"requires"`
	// UserAgent and Scripting, if set, override the engine configuration for this scenario.
	UserAgent opt.Maybe[string] `json:"userAgent"`
	Scripting opt.Maybe[bool]   `json:"scripting"`
	Steps     []Step            `json:"steps"`
}

// Step calls one engine operation. Do names the operation; the other fields are its
// parameters, and only those the operation uses are read.
type Step struct {
	Do        string   `json:"do"`
	URL       string   `json:"url"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Value     string   `json:"value"`
	Values    []string `json:"values"`
	Label     string   `json:"label"`
	Text      string   `json:"text"`
	Regex     string   `json:"regex"`
	Image     string   `json:"image"`
	XPath     string   `json:"xpath"`
	Attribute string   `json:"attribute"`
	Title     string   `json:"title"`
	Index     int      `json:"index"`
	Message   string   `json:"message"`
	Messages  []string `json:"messages"`
	Accept    bool     `json:"accept"`
	Enabled   bool     `json:"enabled"`
	// Response answers a prompt: a string is typed in, null or absent cancels it.
	Response opt.Maybe[string] `json:"response"`
	// Expect, if not null, is compared with the operation's result as JSON.
	Expect ldvalue.Value `json:"expect"`
	// ExpectError names the kind of error the operation must fail with, as returned by
	// framework.ErrorKind.
	ExpectError opt.Maybe[string] `json:"expectError"`
}

func (s Step) String() string {
	return s.Do
}

// Parse reads a suite from JSON or YAML data. The source is used in error messages.
func Parse(data []byte, source string) (Suite, error) {
	var suite Suite
	if err := parseJSONOrYAML(data, &suite); err != nil {
		return Suite{}, fmt.Errorf("error parsing %s: %w", source, err)
	}
	if err := suite.validate(); err != nil {
		return Suite{}, fmt.Errorf("error in %s: %w", source, err)
	}
	return suite, nil
}

func (s Suite) validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite has no name")
	}
	names := make(map[string]bool)
	for _, sc := range s.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("suite %q has a scenario with no name", s.Name)
		}
		if names[sc.Name] {
			return fmt.Errorf("suite %q has more than one scenario named %q", s.Name, sc.Name)
		}
		names[sc.Name] = true
		for i, step := range sc.Steps {
			if _, ok := operations[step.Do]; !ok {
				return fmt.Errorf("scenario %q step %d: unknown operation %q", sc.Name, i+1, step.Do)
			}
		}
	}
	return nil
}

// LoadFile reads a suite from a JSON or YAML file.
func LoadFile(filePath string) (Suite, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Suite{}, err
	}
	return Parse(data, filePath)
}

// LoadDir reads every .yaml, .yml and .json file in a directory of fsys, in name order.
func LoadDir(fsys fs.FS, dir string) ([]Suite, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		switch path.Ext(entry.Name()) {
		case ".yaml", ".yml", ".json":
			if !entry.IsDir() {
				files = append(files, path.Join(dir, entry.Name()))
			}
		}
	}
	sort.Strings(files)
	suites := make([]Suite, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		suite, err := Parse(data, file)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

// Builtin returns the suites compiled into the program. They run against the fixture site in
// framework/harness.
func Builtin() ([]Suite, error) {
	return LoadDir(builtinRoot, builtinBasePath)
}
