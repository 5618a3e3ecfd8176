package webdriver

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
)

const statusPollInterval = time.Millisecond * 200

// element is the subset of selenium.WebElement the engine uses.
type element interface {
	Click() error
	Clear() error
	SendKeys(keys string) error
	TagName() (string, error)
	Text() (string, error)
	IsSelected() (bool, error)
	FindElements(by, value string) ([]element, error)
}

// driver is the subset of selenium.WebDriver the engine uses. Script arguments may include
// elements returned by the driver.
type driver interface {
	Get(url string) error
	Back() error
	Refresh() error
	CurrentURL() (string, error)
	Title() (string, error)
	PageSource() (string, error)
	FindElements(by, value string) ([]element, error)
	// SwitchFrame enters the frame element, or the top-level document if frame is nil.
	SwitchFrame(frame element) error
	SwitchWindow(handle string) error
	CurrentWindowHandle() (string, error)
	WindowHandles() ([]string, error)
	CloseWindow(handle string) error
	AlertText() (string, error)
	AcceptAlert() error
	DismissAlert() error
	SetAlertText(text string) error
	ExecuteScript(script string, args []interface{}) (interface{}, error)
	SetPageLoadTimeout(timeout time.Duration) error
	Quit() error
}

// dialer opens a driver session. Tests substitute one that returns a fake.
type dialer func(config engine.Config, logger framework.Logger) (driver, error)

type seleniumDriver struct {
	wd selenium.WebDriver
}

type seleniumElement struct {
	we selenium.WebElement
}

// dialSelenium waits for the endpoint to report that it is ready and then opens a session.
func dialSelenium(config engine.Config, logger framework.Logger) (driver, error) {
	endpoint := config.Driver.URL()
	logger.Printf("Waiting for WebDriver endpoint at %s", endpoint)
	var lastErr error
	ready := helpers.PollForSpecificResultValue(func() bool {
		lastErr = checkStatus(endpoint)
		return lastErr == nil
	}, config.Driver.StatusTimeout, statusPollInterval, true)
	if !ready {
		return nil, framework.ResponseError{Operation: "connect", URL: endpoint, Timeout: true, Err: lastErr}
	}

	wd, err := selenium.NewRemote(capabilities(config), endpoint)
	if err != nil {
		return nil, framework.ResponseError{Operation: "create session", URL: endpoint, Err: err}
	}
	logger.Printf("Started %s session %s", config.Driver.Browser, wd.SessionID())
	return seleniumDriver{wd: wd}, nil
}

// checkStatus reads the endpoint's status document, whose "value.ready" property is true when
// it can create sessions. Older endpoints that omit the property are assumed ready.
func checkStatus(endpoint string) error {
	resp, err := http.Get(endpoint + "/status") //nolint:noctx
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	ready := ldvalue.Parse(body).GetByKey("value").GetByKey("ready")
	if ready.IsNull() || ready.BoolValue() {
		return nil
	}
	return fmt.Errorf("endpoint is not ready: %s", body)
}

func capabilities(config engine.Config) selenium.Capabilities {
	caps := selenium.Capabilities{
		"browserName": config.Driver.Browser,
		// Dialogs are answered by the engine, so the driver must leave them open.
		"unhandledPromptBehavior": "ignore",
	}
	args := append([]string(nil), config.Driver.Args...)
	switch config.Driver.Browser {
	case "chrome":
		if config.Driver.Headless {
			args = append(args, "--headless=new")
		}
		args = append(args, "--user-agent="+config.UserAgent)
		caps.AddChrome(chrome.Capabilities{Args: args, W3C: true})
	case "firefox":
		if config.Driver.Headless {
			args = append(args, "-headless")
		}
		caps.AddFirefox(firefox.Capabilities{
			Args:  args,
			Prefs: map[string]interface{}{"general.useragent.override": config.UserAgent},
		})
	}
	return caps
}

func (d seleniumDriver) Get(url string) error { return d.wd.Get(url) }
func (d seleniumDriver) Back() error          { return d.wd.Back() }
func (d seleniumDriver) Refresh() error       { return d.wd.Refresh() }
func (d seleniumDriver) Quit() error          { return d.wd.Quit() }
func (d seleniumDriver) AcceptAlert() error   { return d.wd.AcceptAlert() }
func (d seleniumDriver) DismissAlert() error  { return d.wd.DismissAlert() }

func (d seleniumDriver) AlertText() (string, error)           { return d.wd.AlertText() }
func (d seleniumDriver) CurrentURL() (string, error)          { return d.wd.CurrentURL() }
func (d seleniumDriver) Title() (string, error)               { return d.wd.Title() }
func (d seleniumDriver) PageSource() (string, error)          { return d.wd.PageSource() }
func (d seleniumDriver) SwitchWindow(handle string) error     { return d.wd.SwitchWindow(handle) }
func (d seleniumDriver) CurrentWindowHandle() (string, error) { return d.wd.CurrentWindowHandle() }
func (d seleniumDriver) WindowHandles() ([]string, error)     { return d.wd.WindowHandles() }
func (d seleniumDriver) CloseWindow(handle string) error      { return d.wd.CloseWindow(handle) }
func (d seleniumDriver) SetAlertText(text string) error       { return d.wd.SetAlertText(text) }

func (d seleniumDriver) SetPageLoadTimeout(timeout time.Duration) error {
	return d.wd.SetPageLoadTimeout(timeout)
}

func (d seleniumDriver) FindElements(by, value string) ([]element, error) {
	found, err := d.wd.FindElements(by, value)
	return wrapElements(found), err
}

func (d seleniumDriver) SwitchFrame(frame element) error {
	if frame == nil {
		return d.wd.SwitchFrame(nil)
	}
	return d.wd.SwitchFrame(frame.(seleniumElement).we)
}

func (d seleniumDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	unwrapped := make([]interface{}, 0, len(args))
	for _, a := range args {
		if el, ok := a.(seleniumElement); ok {
			a = el.we
		}
		unwrapped = append(unwrapped, a)
	}
	return d.wd.ExecuteScript(script, unwrapped)
}

func (el seleniumElement) Click() error               { return el.we.Click() }
func (el seleniumElement) Clear() error               { return el.we.Clear() }
func (el seleniumElement) SendKeys(keys string) error { return el.we.SendKeys(keys) }
func (el seleniumElement) TagName() (string, error)   { return el.we.TagName() }
func (el seleniumElement) Text() (string, error)      { return el.we.Text() }
func (el seleniumElement) IsSelected() (bool, error)  { return el.we.IsSelected() }

func (el seleniumElement) FindElements(by, value string) ([]element, error) {
	found, err := el.we.FindElements(by, value)
	return wrapElements(found), err
}

func wrapElements(found []selenium.WebElement) []element {
	ret := make([]element, 0, len(found))
	for _, we := range found {
		ret = append(ret, seleniumElement{we: we})
	}
	return ret
}
