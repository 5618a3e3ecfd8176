// Package webdriver implements engine.TestingEngine by driving a real browser through a
// WebDriver endpoint such as chromedriver, geckodriver or Selenium Grid.
//
// Every locator is rendered to XPath and evaluated by the browser. The navigation context
// lives in the engine, not in the browser: before each operation the driver is switched to the
// active window and frame. WebDriver cannot tell the kind of a dialog, so dialogs are reported
// to the dialog queue as dialog.KindUnknown and matched by message only.
package webdriver

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tebeka/selenium"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
	"github.com/webunit/testing-engine/framework/opt"
)

const settlePollInterval = time.Millisecond * 50

// Engine is the WebDriver TestingEngine.
type Engine struct {
	*engine.Base
	dial       dialer
	wd         driver
	rootHandle string
}

var _ engine.TestingEngine = (*Engine)(nil)

// New creates a WebDriver engine. The endpoint is not contacted until BeginAt.
func New(config engine.Config, logger framework.Logger) *Engine {
	return newWithDialer(config, logger, dialSelenium)
}

func newWithDialer(config engine.Config, logger framework.Logger, dial dialer) *Engine {
	return &Engine{
		Base: engine.NewBase(engine.BackendWebDriver, config, framework.LoggerWithPrefix(logger, "[webdriver] ")),
		dial: dial,
	}
}

func (e *Engine) Capabilities() framework.Capabilities {
	return framework.Capabilities{engine.CapabilityLiveBrowser}
}

// SetScriptingEnabled accepts only true: a live browser always runs scripts.
func (e *Engine) SetScriptingEnabled(enabled bool) error {
	if !enabled {
		return e.Unsupported("SetScriptingEnabled(false)")
	}
	return nil
}

// BeginAt opens a new browser session and loads the URL in its first window. Any previous
// session is closed first.
func (e *Engine) BeginAt(u string) error {
	resolved, err := e.Config().ResolveURL(u)
	if err != nil {
		return err
	}
	if err := e.CloseBrowser(); err != nil {
		e.Logger().Printf("Error closing previous session: %s", err)
	}
	wd, err := e.dial(e.Config(), e.Logger())
	if err != nil {
		return err
	}
	if err := wd.SetPageLoadTimeout(e.Config().PageLoadTimeout); err != nil {
		_ = wd.Quit()
		return framework.ResponseError{Operation: "set page load timeout", Err: err}
	}
	root, err := wd.CurrentWindowHandle()
	if err != nil {
		_ = wd.Quit()
		return framework.ResponseError{Operation: "get window handle", Err: err}
	}
	e.wd = wd
	e.rootHandle = root
	return e.load(resolved)
}

func (e *Engine) CloseBrowser() error {
	if e.wd == nil {
		return nil
	}
	wd := e.wd
	e.wd = nil
	e.rootHandle = ""
	e.State().GotoRootWindow()
	e.State().ResetForPageLoad()
	if err := wd.Quit(); err != nil {
		return framework.ResponseError{Operation: "quit", Err: err}
	}
	e.Logger().Println("Session closed")
	return nil
}

func (e *Engine) GotoPage(u string) error {
	resolved, err := e.resolveURL(u)
	if err != nil {
		return err
	}
	return e.load(resolved)
}

// resolveURL resolves against the configured base URL, or against the active page if there is
// no base URL.
func (e *Engine) resolveURL(u string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", u, err)
	}
	if !parsed.IsAbs() && e.Config().BaseURL == "" {
		current, err := e.GetPageURL()
		if err != nil {
			return "", err
		}
		base, err := url.Parse(current)
		if err != nil {
			return "", err
		}
		return base.ResolveReference(parsed).String(), nil
	}
	return e.Config().ResolveURL(u)
}

// load navigates the top-level document of the active window.
func (e *Engine) load(u string) error {
	if err := e.enterWindow(); err != nil {
		return err
	}
	e.Logger().Printf("Loading %s", u)
	err := e.act(func() error {
		if err := e.wd.Get(u); err != nil {
			return driverError("load "+u, err)
		}
		return nil
	})
	e.State().ResetForPageLoad()
	return err
}

func (e *Engine) GoBack() error {
	if err := e.enterWindow(); err != nil {
		return err
	}
	return e.act(func() error { return wrapDriverError("back", e.wd.Back()) })
}

func (e *Engine) Refresh() error {
	if err := e.enterWindow(); err != nil {
		return err
	}
	return e.act(func() error { return wrapDriverError("refresh", e.wd.Refresh()) })
}

// GetPageURL returns the URL of the document in the active frame.
func (e *Engine) GetPageURL() (string, error) {
	if err := e.enter(); err != nil {
		return "", err
	}
	v, err := e.script(scriptLocation)
	return v.StringValue(), err
}

// act runs one user-level action. Afterwards it answers the dialogs the action raised and
// waits for the page to finish loading; if dialogs were expected and none has appeared yet, it
// keeps waiting for up to the dialog timeout.
func (e *Engine) act(fn func() error) error {
	return e.Action(func() error {
		if err := fn(); err != nil {
			return err
		}
		return e.settle()
	})
}

func (e *Engine) settle() error {
	var failure error
	answered := 0
	start := time.Now()
	settled := helpers.PollForSpecificResultValue(func() bool {
		handled, err := e.answerDialog()
		if err != nil {
			failure = err
			return true
		}
		if handled {
			answered++
			return false
		}
		if !e.pageReady() {
			return false
		}
		if answered == 0 && len(e.PendingDialogs()) > 0 && time.Since(start) < e.Config().DialogTimeout {
			return false
		}
		return true
	}, e.Config().PageLoadTimeout, settlePollInterval, true)
	if failure != nil {
		return failure
	}
	if !settled {
		return framework.ResponseError{Operation: "wait for page", Timeout: true}
	}
	return e.detectPageLoads()
}

func (e *Engine) pageReady() bool {
	v, err := e.script(scriptReadyState)
	return err == nil && v.StringValue() == "complete"
}

// detectPageLoads resets the navigation context if the action replaced the top-level document
// of the active window, or clears the working form if it replaced the active frame's document.
func (e *Engine) detectPageLoads() error {
	if err := e.enterWindow(); err != nil {
		if framework.IsElementNotFound(err) {
			return nil
		}
		return err
	}
	if fresh, err := e.markDocument(); err != nil || fresh {
		if fresh {
			e.State().ResetForPageLoad()
		}
		return err
	}
	if len(e.State().FramePath()) == 0 {
		return nil
	}
	if err := e.enterFrames(); err != nil {
		e.Logger().Printf("Active frame is gone after action: %s", err)
		e.State().ExitFrames()
		return nil
	}
	if fresh, err := e.markDocument(); err != nil || fresh {
		if fresh {
			e.State().ClearWorkingForm()
		}
		return err
	}
	return nil
}

// markDocument tags the current document and reports whether it had not been tagged before,
// meaning it was loaded since the engine last looked at this window or frame.
func (e *Engine) markDocument() (bool, error) {
	v, err := e.script(scriptMarkDocument)
	if err != nil {
		return false, err
	}
	return !v.BoolValue(), nil
}

// enter switches the driver to the active window and frame.
func (e *Engine) enter() error {
	if err := e.enterWindow(); err != nil {
		return err
	}
	return e.enterFrames()
}

// enterWindow switches the driver to the top-level document of the active window.
func (e *Engine) enterWindow() error {
	if e.wd == nil {
		return engine.ErrNoSession
	}
	handle := e.State().Window().OrElse(e.rootHandle)
	if err := e.wd.SwitchWindow(handle); err != nil {
		if handle != e.rootHandle && !e.windowExists(handle) {
			e.State().ForgetWindow(handle)
			return framework.ElementNotFoundError{Locator: "window " + handle, Detail: "window was closed"}
		}
		return driverError("switch window", err)
	}
	return wrapDriverError("switch to top frame", e.wd.SwitchFrame(nil))
}

func (e *Engine) enterFrames() error {
	for _, name := range e.State().FramePath() {
		frames, err := e.wd.FindElements(selenium.ByXPATH, frameLocator(name).XPath(""))
		if err != nil {
			return driverError("find frame", err)
		}
		if len(frames) == 0 {
			return framework.ElementNotFoundError{Locator: "frame " + name}
		}
		if err := e.wd.SwitchFrame(frames[0]); err != nil {
			return driverError("switch frame", err)
		}
	}
	return nil
}

func (e *Engine) windowExists(handle string) bool {
	handles, err := e.wd.WindowHandles()
	if err != nil {
		return false
	}
	for _, h := range handles {
		if h == handle {
			return true
		}
	}
	return false
}

func (e *Engine) GotoWindow(name string) error {
	if name == "" {
		return e.GotoRootWindow()
	}
	handle, err := e.findWindow(func() (bool, error) {
		v, err := e.script(scriptWindowName)
		return v.StringValue() == name, err
	})
	if err != nil {
		return err
	}
	if handle == "" {
		return framework.ElementNotFoundError{Locator: "window " + name}
	}
	return e.selectWindow(handle)
}

// findWindow visits each window until match returns true, and returns that window's handle or
// "" if none matched.
func (e *Engine) findWindow(match func() (bool, error)) (string, error) {
	if e.wd == nil {
		return "", engine.ErrNoSession
	}
	handles, err := e.wd.WindowHandles()
	if err != nil {
		return "", driverError("list windows", err)
	}
	for _, h := range handles {
		if err := e.wd.SwitchWindow(h); err != nil {
			return "", driverError("switch window", err)
		}
		ok, err := match()
		if err != nil {
			return "", err
		}
		if ok {
			return h, nil
		}
	}
	return "", nil
}

// GotoWindowByIndex selects a window by its position in the driver's list of handles, which
// is the order in which the windows were opened.
func (e *Engine) GotoWindowByIndex(index int) error {
	if e.wd == nil {
		return engine.ErrNoSession
	}
	handles, err := e.wd.WindowHandles()
	if err != nil {
		return driverError("list windows", err)
	}
	if index < 0 || index >= len(handles) {
		return framework.ElementNotFoundError{Locator: "window", Detail: fmt.Sprintf("index %d but there are %d", index, len(handles))}
	}
	return e.selectWindow(handles[index])
}

func (e *Engine) GotoWindowByTitle(string) error {
	return e.Unsupported("GotoWindowByTitle")
}

func (e *Engine) selectWindow(handle string) error {
	var changed bool
	if handle == e.rootHandle {
		changed = e.State().GotoRootWindow()
	} else {
		changed = e.State().SetWindow(opt.Some(handle))
	}
	if !changed {
		return nil
	}
	if err := e.enterWindow(); err != nil {
		return err
	}
	_, err := e.markDocument()
	return err
}

func (e *Engine) GotoRootWindow() error {
	if !e.State().GotoRootWindow() || e.wd == nil {
		return nil
	}
	if err := e.enterWindow(); err != nil {
		return err
	}
	_, err := e.markDocument()
	return err
}

func (e *Engine) GotoFrame(name string) error {
	if err := e.enter(); err != nil {
		return err
	}
	found, err := e.wd.FindElements(selenium.ByXPATH, frameLocator(name).XPath(""))
	if err != nil {
		return driverError("find frame", err)
	}
	path := append(e.State().FramePath(), name)
	if len(found) == 0 {
		if err := e.enterWindow(); err != nil {
			return err
		}
		found, err = e.wd.FindElements(selenium.ByXPATH, frameLocator(name).XPath(""))
		if err != nil {
			return driverError("find frame", err)
		}
		if len(found) == 0 {
			return framework.ElementNotFoundError{Locator: "frame " + name}
		}
		path = []string{name}
	}
	e.State().SetFramePath(path)
	if err := e.enter(); err != nil {
		return err
	}
	_, err = e.markDocument()
	return err
}

func (e *Engine) GotoTopFrame() error {
	e.State().ExitFrames()
	return nil
}

func (e *Engine) GetWindowCount() (int, error) {
	if e.wd == nil {
		return 0, engine.ErrNoSession
	}
	handles, err := e.wd.WindowHandles()
	if err != nil {
		return 0, driverError("list windows", err)
	}
	return len(handles), nil
}

func (e *Engine) HasWindow(name string) (bool, error) {
	handle, err := e.findWindow(func() (bool, error) {
		v, err := e.script(scriptWindowName)
		return v.StringValue() == name, err
	})
	return handle != "", err
}

func (e *Engine) HasWindowByTitle(string) (bool, error) {
	return false, e.Unsupported("HasWindowByTitle")
}

// CloseWindow closes the active window. Closing the root window ends the session.
func (e *Engine) CloseWindow() error {
	if e.wd == nil {
		return engine.ErrNoSession
	}
	handle := e.State().Window().OrElse(e.rootHandle)
	if handle == e.rootHandle {
		return e.CloseBrowser()
	}
	if err := e.wd.CloseWindow(handle); err != nil {
		return driverError("close window", err)
	}
	e.State().ForgetWindow(handle)
	e.Logger().Printf("Closed window %q", handle)
	return nil
}

func driverError(operation string, err error) error {
	var se *selenium.Error
	timeout := errors.As(err, &se) && se.Err == "timeout"
	return framework.ResponseError{Operation: operation, Timeout: timeout, Err: err}
}

func wrapDriverError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return driverError(operation, err)
}
