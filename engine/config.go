package engine

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/webunit/testing-engine/framework/opt"
	"github.com/webunit/testing-engine/locator"
)

// Backend names an implementation of TestingEngine.
type Backend string

const (
	// BackendHeadless parses pages and runs their scripts in-process.
	BackendHeadless Backend = "headless"
	// BackendWebDriver drives a real browser through a WebDriver endpoint.
	BackendWebDriver Backend = "webdriver"
)

const (
	DefaultPageLoadTimeout     = time.Second * 30
	DefaultDialogTimeout       = time.Second * 2
	DefaultDriverStatusTimeout = time.Second * 10
	DefaultDriverHost          = "localhost"
	DefaultDriverPort          = 4444
	DefaultBrowser             = "chrome"
	DefaultUserAgent           = "Mozilla/5.0 (compatible; webunit-headless/1.0)"
)

// Config is the engine configuration. It is treated as immutable once an engine is created.
type Config struct {
	Backend Backend `yaml:"backend"`
	// BaseURL is prepended to any URL passed to BeginAt or GotoPage that has no scheme.
	BaseURL string `yaml:"baseURL"`
	// PageLoadTimeout bounds each page load, and script execution in the headless backend.
	PageLoadTimeout time.Duration `yaml:"pageLoadTimeout"`
	// DialogTimeout bounds how long the WebDriver backend waits for an expected dialog to
	// appear after an action.
	DialogTimeout time.Duration `yaml:"dialogTimeout"`
	// ScriptingEnabled defaults to true.
	ScriptingEnabled opt.Maybe[bool] `yaml:"scriptingEnabled"`
	UserAgent        string          `yaml:"userAgent"`
	Labels           LabelConfig     `yaml:"labels"`
	Driver           DriverConfig    `yaml:"driver"`
}

// LabelConfig is the policy for associating labels with checkboxes and radio buttons.
type LabelConfig struct {
	// DefaultPlacement is "controlBeforeLabel" or "controlAfterLabel"; it is the sibling
	// direction tried by CheckCheckboxWithLabel after "for" and nesting.
	DefaultPlacement string `yaml:"defaultPlacement"`
	// Sibling is "nearest" or "immediate".
	Sibling string `yaml:"sibling"`
}

// DriverConfig describes the WebDriver endpoint.
type DriverConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Path is the endpoint's base path, such as "/wd/hub" for Selenium Grid; empty for a
	// standalone driver like chromedriver.
	Path          string        `yaml:"path"`
	Browser       string        `yaml:"browser"`
	Headless      bool          `yaml:"headless"`
	Args          []string      `yaml:"args"`
	StatusTimeout time.Duration `yaml:"statusTimeout"`
}

// URL returns the base URL of the WebDriver endpoint.
func (d DriverConfig) URL() string {
	return fmt.Sprintf("http://%s:%d%s", d.Host, d.Port, strings.TrimRight(d.Path, "/"))
}

// LoadConfig reads a YAML or JSON configuration file and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML or JSON configuration data and applies defaults. Durations are
// written as strings such as "5s".
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("malformed config: %w", err)
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// WithDefaults returns a copy with every unset field given its default value.
func (c Config) WithDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendHeadless
	}
	if c.PageLoadTimeout == 0 {
		c.PageLoadTimeout = DefaultPageLoadTimeout
	}
	if c.DialogTimeout == 0 {
		c.DialogTimeout = DefaultDialogTimeout
	}
	if !c.ScriptingEnabled.IsDefined() {
		c.ScriptingEnabled = opt.Some(true)
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Labels.DefaultPlacement == "" {
		c.Labels.DefaultPlacement = locator.ControlBeforeLabel.String()
	}
	if c.Labels.Sibling == "" {
		c.Labels.Sibling = locator.SiblingNearest.String()
	}
	if c.Driver.Host == "" {
		c.Driver.Host = DefaultDriverHost
	}
	if c.Driver.Port == 0 {
		c.Driver.Port = DefaultDriverPort
	}
	if c.Driver.Browser == "" {
		c.Driver.Browser = DefaultBrowser
	}
	if c.Driver.StatusTimeout == 0 {
		c.Driver.StatusTimeout = DefaultDriverStatusTimeout
	}
	return c
}

// Validate checks a configuration that has had defaults applied.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendHeadless, BackendWebDriver:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
			errs = append(errs, fmt.Errorf("baseURL %q is not an absolute URL", c.BaseURL))
		}
	}
	if c.PageLoadTimeout < 0 || c.DialogTimeout < 0 || c.Driver.StatusTimeout < 0 {
		errs = append(errs, errors.New("timeouts cannot be negative"))
	}
	if _, err := c.DefaultPlacement(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SiblingPolicy(); err != nil {
		errs = append(errs, err)
	}
	if c.Driver.Port < 0 || c.Driver.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid driver port %d", c.Driver.Port))
	}
	return errors.Join(errs...)
}

// DefaultPlacement returns the parsed label placement.
func (c Config) DefaultPlacement() (locator.Strategy, error) {
	s, err := locator.ParseStrategy(c.Labels.DefaultPlacement)
	if err != nil {
		return 0, err
	}
	if s != locator.ControlBeforeLabel && s != locator.ControlAfterLabel {
		return 0, fmt.Errorf("label placement must be %s or %s", locator.ControlBeforeLabel, locator.ControlAfterLabel)
	}
	return s, nil
}

// SiblingPolicy returns the parsed label sibling policy.
func (c Config) SiblingPolicy() (locator.SiblingPolicy, error) {
	return locator.ParseSiblingPolicy(c.Labels.Sibling)
}

// ResolveURL resolves a URL given to BeginAt or GotoPage. A URL with a scheme is used as is;
// otherwise it is appended to BaseURL with exactly one slash between them.
func (c Config) ResolveURL(u string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", u, err)
	}
	if parsed.IsAbs() {
		return u, nil
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("relative URL %q given but no baseURL is configured", u)
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(u, "/"), nil
}
