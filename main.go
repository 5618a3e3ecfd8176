package main

import (
	"bufio"
	"context"
	_ "embed" // this is required in order for go:embed to work
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/harness"
	"github.com/webunit/testing-engine/scenario"
)

const serverShutdownTimeout = time.Second * 5

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("webunit v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*scenario.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	config, err := params.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if config.BaseURL == "" {
		return nil, errors.New("a base URL is required; use -base-url, -serve, or baseURL in the configuration file")
	}

	suites, err := loadSuites(params.scenariosDir)
	if err != nil {
		return nil, err
	}

	if params.servePort != 0 {
		server, err := harness.StartServer(params.servePort, harness.NewSite(mainDebugLogger))
		if err != nil {
			return nil, fmt.Errorf("cannot start fixture site: %w", err)
		}
		fmt.Printf("Serving fixture site on port %d\n", params.servePort)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	fmt.Printf("Running scenarios with the %s backend against %s\n\n", config.Backend, config.BaseURL)
	scenario.PrintFilterDescription(params.filters)

	var logger scenario.Logger = scenario.ConsoleLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	var junit *scenario.JUnitLogger
	if params.jUnitFile != "" {
		junit = scenario.NewJUnitLogger(params.jUnitFile, config, params.filters)
		logger = scenario.MultiLogger{logger, junit}
	}

	results := scenario.Run(suites, scenario.RunConfig{
		Engine:  config,
		Filters: params.filters,
		Logger:  logger,
	})

	fmt.Println()
	scenario.PrintResults(os.Stdout, results)

	if junit != nil {
		fmt.Printf("Writing JUnit data to %s\n", params.jUnitFile)
		if err := junit.Write(); err != nil {
			return nil, fmt.Errorf("error writing log: %v", err)
		}
	}

	if params.recordFailures != "" {
		f, err := os.Create(params.recordFailures)
		if err != nil {
			return nil, fmt.Errorf("cannot create suppression file: %v", err)
		}
		for _, failure := range results.Failures {
			fmt.Fprintln(f, failure.ID)
		}
		_ = f.Close()
	}

	return &results, nil
}

func loadSuites(dir string) ([]scenario.Suite, error) {
	if dir == "" {
		return scenario.Builtin()
	}
	return scenario.LoadDir(os.DirFS(dir), ".")
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %v", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore blank lines
		if strings.TrimSpace(line) == "" {
			continue
		}
		// each component of the ID is matched exactly
		parts := strings.Split(line, "/")
		for i, p := range parts {
			parts[i] = "^" + regexp.QuoteMeta(p) + "$"
		}
		if err := params.filters.MustNotMatch.Set(strings.Join(parts, "/")); err != nil {
			return fmt.Errorf("cannot parse suppression: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %v", err)
	}
	return nil
}
