package engine

import (
	"time"

	"github.com/webunit/testing-engine/framework/helpers"
	"github.com/webunit/testing-engine/framework/opt"
	"github.com/webunit/testing-engine/locator"
)

// Option modifies a Config being built by NewConfig.
type Option helpers.ConfigOption[Config]

func option(fn func(*Config)) Option {
	return helpers.ConfigOptionFunc[Config](func(c *Config) error {
		fn(c)
		return nil
	})
}

// NewConfig builds a Config from options, applies defaults and validates it.
func NewConfig(options ...Option) (Config, error) {
	return Config{}.With(options...)
}

// With returns a copy of the Config with the options applied, defaults filled in, and the
// result validated.
func (c Config) With(options ...Option) (Config, error) {
	if err := helpers.ApplyOptions(&c, options...); err != nil {
		return Config{}, err
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func WithBackend(b Backend) Option { return option(func(c *Config) { c.Backend = b }) }

func WithBaseURL(u string) Option { return option(func(c *Config) { c.BaseURL = u }) }

func WithPageLoadTimeout(d time.Duration) Option {
	return option(func(c *Config) { c.PageLoadTimeout = d })
}

func WithDialogTimeout(d time.Duration) Option {
	return option(func(c *Config) { c.DialogTimeout = d })
}

func WithScripting(enabled bool) Option {
	return option(func(c *Config) { c.ScriptingEnabled = opt.Some(enabled) })
}

func WithUserAgent(ua string) Option { return option(func(c *Config) { c.UserAgent = ua }) }

// WithDriverEndpoint sets the WebDriver host, port and base path.
func WithDriverEndpoint(host string, port int, path string) Option {
	return option(func(c *Config) {
		c.Driver.Host = host
		c.Driver.Port = port
		c.Driver.Path = path
	})
}

func WithBrowser(browser string, headless bool) Option {
	return option(func(c *Config) {
		c.Driver.Browser = browser
		c.Driver.Headless = headless
	})
}

// WithLabelPolicy sets the default placement for CheckCheckboxWithLabel and the sibling policy.
func WithLabelPolicy(placement locator.Strategy, sibling locator.SiblingPolicy) Option {
	return option(func(c *Config) {
		c.Labels.DefaultPlacement = placement.String()
		c.Labels.Sibling = sibling.String()
	})
}
