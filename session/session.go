// Package session creates testing engines from configuration and scopes their lifetime.
package session

import (
	"errors"
	"fmt"

	"github.com/webunit/testing-engine/backends/headless"
	"github.com/webunit/testing-engine/backends/webdriver"
	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
)

// Open creates the engine selected by config.Backend. The options are applied to the config,
// then defaults, and the result is validated. No page is loaded and no browser is started
// until BeginAt.
func Open(config engine.Config, logger framework.Logger, options ...engine.Option) (engine.TestingEngine, error) {
	config, err := config.With(options...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger = framework.OrNullLogger(logger)
	switch config.Backend {
	case engine.BackendWebDriver:
		return webdriver.New(config, logger), nil
	default:
		return headless.New(config, logger), nil
	}
}

// Run opens an engine, loads startURL and calls fn. The browser is closed when Run returns,
// whether fn returns normally, fails, or panics; a panic is re-raised after closing.
func Run(config engine.Config, logger framework.Logger, startURL string, fn func(engine.TestingEngine) error) (err error) {
	e, err := Open(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := e.CloseBrowser()
		if r := recover(); r != nil {
			panic(r)
		}
		if closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing browser: %w", closeErr))
		}
	}()
	if err := e.BeginAt(startURL); err != nil {
		return err
	}
	return fn(e)
}
