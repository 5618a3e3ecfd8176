package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/scenario"
)

type commandParams struct {
	configFile     string
	backend        string
	baseURL        string
	driverHost     string
	driverPort     int
	driverPath     string
	browser        string
	headless       bool
	servePort      int
	scenariosDir   string
	filters        scenario.RegexFilters
	skipFile       string
	recordFailures string
	debug          bool
	debugAll       bool
	jUnitFile      string

	setFlags map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML file with the engine configuration")
	fs.StringVar(&c.backend, "backend", "", `engine backend: "headless" or "webdriver"`)
	fs.StringVar(&c.baseURL, "base-url", "", "URL that relative scenario URLs are resolved against")
	fs.StringVar(&c.driverHost, "driver-host", "", "WebDriver host")
	fs.IntVar(&c.driverPort, "driver-port", 0, "WebDriver port")
	fs.StringVar(&c.driverPath, "driver-path", "", `WebDriver base path, such as "/wd/hub"`)
	fs.StringVar(&c.browser, "browser", "", `browser for the webdriver backend: "chrome" or "firefox"`)
	fs.BoolVar(&c.headless, "headless", true, "run the webdriver browser without a window")
	fs.IntVar(&c.servePort, "serve", 0, "serve the fixture site on this port and use it as the base URL")
	fs.StringVar(&c.scenariosDir, "scenarios", "", "directory of scenario files to run instead of the built-in ones")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	fs.StringVar(&c.skipFile, "skip-from", "", "file listing IDs of scenarios not to run, one per line")
	fs.StringVar(&c.recordFailures, "record-failures", "", "write IDs of failed scenarios to this file")
	fs.BoolVar(&c.debug, "debug", false, "show engine debug output for failed scenarios")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show engine debug output for all scenarios")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	c.setFlags = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.setFlags[f.Name] = true })
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false
	}
	return true
}

// EngineConfig reads the configuration file, if any, and applies the flags that were given
// on top of it.
func (c *commandParams) EngineConfig() (engine.Config, error) {
	var config engine.Config
	if c.configFile != "" {
		var err error
		if config, err = engine.LoadConfig(c.configFile); err != nil {
			return engine.Config{}, err
		}
	}
	if c.setFlags["backend"] {
		config.Backend = engine.Backend(c.backend)
	}
	if c.setFlags["base-url"] {
		config.BaseURL = c.baseURL
	}
	if c.setFlags["driver-host"] {
		config.Driver.Host = c.driverHost
	}
	if c.setFlags["driver-port"] {
		config.Driver.Port = c.driverPort
	}
	if c.setFlags["driver-path"] {
		config.Driver.Path = c.driverPath
	}
	if c.setFlags["browser"] {
		config.Driver.Browser = c.browser
	}
	if c.setFlags["headless"] || c.configFile == "" {
		config.Driver.Headless = c.headless
	}
	if c.servePort != 0 && config.BaseURL == "" {
		config.BaseURL = fmt.Sprintf("http://localhost:%d", c.servePort)
	}
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return engine.Config{}, err
	}
	return config, nil
}
