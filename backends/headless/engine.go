// Package headless implements engine.TestingEngine without a browser. Pages are fetched over
// HTTP, parsed into a DOM, and their scripts run in an embedded JavaScript interpreter that
// routes alert, confirm and prompt to the engine's dialog queue.
package headless

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/opt"
)

// Engine is the headless TestingEngine.
type Engine struct {
	*engine.Base
	client          *http.Client
	windows         []*window
	windowSeq       int
	scripting       bool
	pending         []func() error
	scriptErr       error
	navigationDepth int
}

var _ engine.TestingEngine = (*Engine)(nil)

// New creates a headless engine. No request is made until BeginAt.
func New(config engine.Config, logger framework.Logger) *Engine {
	return &Engine{
		Base:      engine.NewBase(engine.BackendHeadless, config, framework.LoggerWithPrefix(logger, "[headless] ")),
		scripting: config.ScriptingEnabled.OrElse(true),
	}
}

func (e *Engine) Capabilities() framework.Capabilities {
	return framework.Capabilities{
		engine.CapabilityServerResponse,
		engine.CapabilityScriptingToggle,
		engine.CapabilityWindowByTitle,
		engine.CapabilityDialogKinds,
	}
}

func (e *Engine) SetScriptingEnabled(enabled bool) error {
	e.scripting = enabled
	return nil
}

// BeginAt starts a new session: cookies and windows from any previous session are discarded.
func (e *Engine) BeginAt(u string) error {
	resolved, err := e.resolveStartURL(u)
	if err != nil {
		return err
	}
	e.reset()
	jar, _ := cookiejar.New(nil)
	e.client = &http.Client{Jar: jar, Timeout: e.Config().PageLoadTimeout}
	root := &window{}
	root.top = &browsingContext{window: root}
	e.windows = []*window{root}
	return e.act(func() error {
		return e.load(root.top, getRequest(resolved, ""), false)
	})
}

func (e *Engine) CloseBrowser() error {
	if e.client != nil {
		e.client.CloseIdleConnections()
	}
	e.reset()
	return nil
}

func (e *Engine) reset() {
	for _, w := range e.windows {
		if w.handle != "" {
			e.State().ForgetWindow(w.handle)
		}
	}
	e.State().GotoRootWindow()
	e.State().ResetForPageLoad()
	e.windows = nil
	e.pending = nil
	e.scriptErr = nil
	e.client = nil
}

// act runs one user-level action, then any navigation its scripts requested.
func (e *Engine) act(fn func() error) error {
	return e.Action(func() error {
		if err := fn(); err != nil {
			e.pending = nil
			return err
		}
		return e.runPending()
	})
}

func (e *Engine) GotoPage(u string) error {
	w, err := e.activeWindow()
	if err != nil {
		return err
	}
	resolved, err := e.resolveStartURL(u)
	if err != nil {
		return err
	}
	return e.act(func() error {
		return e.load(w.top, getRequest(resolved, ""), true)
	})
}

// resolveStartURL resolves a URL given to BeginAt or GotoPage: against the configured base URL
// if there is one, otherwise against the current page.
func (e *Engine) resolveStartURL(u string) (*url.URL, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", u, err)
	}
	if !parsed.IsAbs() && e.Config().BaseURL == "" {
		if p, err := e.activePage(); err == nil {
			return p.url.ResolveReference(parsed), nil
		}
	}
	s, err := e.Config().ResolveURL(u)
	if err != nil {
		return nil, err
	}
	return url.Parse(s)
}

func (e *Engine) GoBack() error {
	w, err := e.activeWindow()
	if err != nil {
		return err
	}
	top := w.top
	if len(top.history) == 0 {
		return framework.ElementNotFoundError{Locator: "previous page", Detail: "history is empty"}
	}
	prev := top.history[len(top.history)-1]
	top.history = top.history[:len(top.history)-1]
	err = e.act(func() error {
		return e.load(top, getRequest(prev.url, ""), false)
	})
	if err != nil {
		top.history = append(top.history, prev)
	}
	return err
}

func (e *Engine) Refresh() error {
	w, err := e.activeWindow()
	if err != nil {
		return err
	}
	current := w.top.page
	if current == nil {
		return engine.ErrNoSession
	}
	return e.act(func() error {
		return e.load(w.top, getRequest(current.url, ""), false)
	})
}

func (e *Engine) GetPageURL() (string, error) {
	p, err := e.activePage()
	if err != nil {
		return "", err
	}
	return p.url.String(), nil
}

func (e *Engine) windowNamed(name string) *window {
	for _, w := range e.windows {
		if w.name == name {
			return w
		}
	}
	return nil
}

func (e *Engine) activeWindow() (*window, error) {
	if e.client == nil {
		return nil, engine.ErrNoSession
	}
	handle := e.State().Window().OrElse("")
	for _, w := range e.windows {
		if w.handle == handle {
			return w, nil
		}
	}
	return nil, framework.ElementNotFoundError{Locator: "window " + handle, Detail: "window was closed"}
}

// activeContext follows the frame path of the active window.
func (e *Engine) activeContext() (*browsingContext, error) {
	w, err := e.activeWindow()
	if err != nil {
		return nil, err
	}
	bc := w.top
	for _, name := range e.State().FramePath() {
		if bc.page == nil {
			break
		}
		f := bc.page.frame(name)
		if f == nil {
			return nil, framework.ElementNotFoundError{Locator: "frame " + name}
		}
		bc = f
	}
	return bc, nil
}

func (e *Engine) isActiveContext(bc *browsingContext) bool {
	active, err := e.activeContext()
	return err == nil && active == bc
}

// activePage is the document in the active window and frame.
func (e *Engine) activePage() (*page, error) {
	bc, err := e.activeContext()
	if err != nil {
		return nil, err
	}
	if bc.page == nil {
		return nil, engine.ErrNoSession
	}
	return bc.page, nil
}

func (e *Engine) GotoWindow(name string) error {
	if name == "" {
		return e.GotoRootWindow()
	}
	if e.client == nil {
		return engine.ErrNoSession
	}
	w := e.windowNamed(name)
	if w == nil {
		return framework.ElementNotFoundError{Locator: "window " + name}
	}
	e.selectWindow(w)
	return nil
}

func (e *Engine) GotoWindowByIndex(index int) error {
	if e.client == nil {
		return engine.ErrNoSession
	}
	if index < 0 || index >= len(e.windows) {
		return framework.ElementNotFoundError{Locator: "window", Detail: indexDetail(index, len(e.windows))}
	}
	e.selectWindow(e.windows[index])
	return nil
}

func (e *Engine) GotoWindowByTitle(title string) error {
	if e.client == nil {
		return engine.ErrNoSession
	}
	for _, w := range e.windows {
		if w.top.page != nil && w.top.page.title() == title {
			e.selectWindow(w)
			return nil
		}
	}
	return framework.ElementNotFoundError{Locator: "window with title " + title}
}

func (e *Engine) selectWindow(w *window) {
	if w.handle == "" {
		e.State().GotoRootWindow()
		return
	}
	e.State().SetWindow(opt.Some(w.handle))
}

func (e *Engine) GotoRootWindow() error {
	e.State().GotoRootWindow()
	return nil
}

func (e *Engine) GotoFrame(name string) error {
	bc, err := e.activeContext()
	if err != nil {
		return err
	}
	if bc.page != nil && bc.page.frame(name) != nil {
		e.State().EnterFrame(name)
		return nil
	}
	if top := bc.window.top.page; top != nil && top.frame(name) != nil {
		e.State().SetFramePath([]string{name})
		return nil
	}
	return framework.ElementNotFoundError{Locator: "frame " + name}
}

func (e *Engine) GotoTopFrame() error {
	e.State().ExitFrames()
	return nil
}

func (e *Engine) GetWindowCount() (int, error) {
	if e.client == nil {
		return 0, engine.ErrNoSession
	}
	return len(e.windows), nil
}

func (e *Engine) HasWindow(name string) (bool, error) {
	if e.client == nil {
		return false, engine.ErrNoSession
	}
	return e.windowNamed(name) != nil, nil
}

func (e *Engine) HasWindowByTitle(title string) (bool, error) {
	if e.client == nil {
		return false, engine.ErrNoSession
	}
	for _, w := range e.windows {
		if w.top.page != nil && w.top.page.title() == title {
			return true, nil
		}
	}
	return false, nil
}

// CloseWindow closes the active window. Closing the root window ends the session.
func (e *Engine) CloseWindow() error {
	w, err := e.activeWindow()
	if err != nil {
		return err
	}
	if w.handle == "" {
		return e.CloseBrowser()
	}
	for i, other := range e.windows {
		if other == w {
			e.windows = append(e.windows[:i], e.windows[i+1:]...)
			break
		}
	}
	e.State().ForgetWindow(w.handle)
	e.Logger().Printf("Closed window %q", w.handle)
	return nil
}
