package headless

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/framework"
)

// A navigation that triggers another navigation more than this many times in a row, through
// script redirects or frames within frames, is abandoned.
const maxNavigationDepth = 16

// window is a top-level browsing context.
type window struct {
	handle string
	name   string
	top    *browsingContext
}

// browsingContext is a place a page can be shown: the top level of a window, or a frame.
type browsingContext struct {
	name    string
	window  *window
	parent  *page
	page    *page
	history []*page
}

func (bc *browsingContext) isTop() bool { return bc.parent == nil }

// page is a loaded document together with the response it came from.
type page struct {
	context    *browsingContext
	url        *url.URL
	status     int
	statusText string
	header     http.Header
	source     string
	doc        *html.Node
	frames     []*browsingContext
	defaults   map[*html.Node]controlDefault
	script     *scriptHost
}

type controlDefault struct {
	value    string
	checked  bool
	selected bool
}

func (p *page) frame(name string) *browsingContext {
	for _, f := range p.frames {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (p *page) title() string {
	if n := htmlquery.FindOne(p.doc, "//title"); n != nil {
		return strings.TrimSpace(htmlquery.InnerText(n))
	}
	return ""
}

func (p *page) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	return p.url.ResolveReference(u), nil
}

// captureDefaults remembers the initial state of every form control so Reset can restore it.
func (p *page) captureDefaults() {
	p.defaults = make(map[*html.Node]controlDefault)
	for _, n := range htmlquery.Find(p.doc, "//input | //textarea | //option") {
		p.defaults[n] = controlDefault{
			value:    controlValue(n),
			checked:  hasAttr(n, "checked"),
			selected: hasAttr(n, "selected"),
		}
	}
}

type request struct {
	method      string
	url         *url.URL
	body        []byte
	contentType string
	referer     string
}

func getRequest(u *url.URL, referer string) request {
	return request{method: http.MethodGet, url: u, referer: referer}
}

func (e *Engine) fetch(req request) (*page, error) {
	resp, data, err := e.roundTrip(req, nil)
	if err != nil {
		return nil, err
	}
	doc, err := htmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, framework.ResponseError{Operation: "parse", URL: req.url.String(), Err: err}
	}
	return &page{
		url:        resp.Request.URL,
		status:     resp.StatusCode,
		statusText: http.StatusText(resp.StatusCode),
		header:     resp.Header,
		source:     string(data),
		doc:        doc,
	}, nil
}

// roundTrip sends a request with the engine's user agent and returns the response along with
// its fully read body. Headers in extra are added after the standard ones.
func (e *Engine) roundTrip(req request, extra http.Header) (*http.Response, []byte, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequest(req.method, req.url.String(), body) //nolint:noctx
	if err != nil {
		return nil, nil, framework.ResponseError{Operation: "load", URL: req.url.String(), Err: err}
	}
	httpReq.Header.Set("User-Agent", e.Config().UserAgent)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.referer != "" {
		httpReq.Header.Set("Referer", req.referer)
	}
	for name, values := range extra {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	e.Logger().Printf("%s %s", req.method, req.url)
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, nil, framework.ResponseError{Operation: "load", URL: req.url.String(), Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, framework.ResponseError{Operation: "load", URL: req.url.String(), Timeout: isTimeout(err), Err: err}
	}
	return resp, data, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// load fetches a page into a browsing context, runs its scripts and loads its frames. An HTTP
// error status still replaces the page, so that its content can be inspected, but the result
// is a ResponseError.
func (e *Engine) load(bc *browsingContext, req request, addToHistory bool) error {
	if e.navigationDepth >= maxNavigationDepth {
		return framework.ResponseError{Operation: "load", URL: req.url.String(),
			Err: errors.New("too many nested navigations")}
	}
	e.navigationDepth++
	defer func() { e.navigationDepth-- }()

	p, err := e.fetch(req)
	if err != nil {
		return err
	}
	e.show(bc, p, addToHistory)
	if err := e.initPage(p); err != nil {
		return err
	}
	if p.status >= 400 {
		return framework.ResponseError{Operation: "load", URL: p.url.String(), StatusCode: p.status}
	}
	return nil
}

// show makes p the current page of bc and updates the navigation context if the active
// document was replaced.
func (e *Engine) show(bc *browsingContext, p *page, addToHistory bool) {
	wasActive := e.isActiveContext(bc)
	p.context = bc
	if addToHistory && bc.page != nil {
		bc.history = append(bc.history, bc.page)
	}
	bc.page = p
	switch {
	case bc.isTop():
		e.State().ResetWindowForPageLoad(bc.window.handle)
	case wasActive:
		e.State().ClearWorkingForm()
	}
}

func (e *Engine) initPage(p *page) error {
	if e.scripting {
		var scripts []*html.Node
		goquery.NewDocumentFromNode(p.doc).Find("script").Each(func(_ int, s *goquery.Selection) {
			scripts = append(scripts, s.Nodes...)
		})
		for _, s := range scripts {
			code, err := e.scriptSource(p, s)
			if err != nil {
				e.Logger().Printf("Could not load script: %s", err)
				continue
			}
			if err := p.scriptHost(e).runInline(s, code); err != nil {
				return err
			}
		}
	}
	p.captureDefaults()
	return e.loadFrames(p)
}

func (e *Engine) scriptSource(p *page, s *html.Node) (string, error) {
	src, ok := getAttr(s, "src")
	if !ok {
		return htmlquery.InnerText(s), nil
	}
	u, err := p.resolve(src)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Get(u.String()) //nolint:noctx
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return string(data), err
}

func (e *Engine) loadFrames(p *page) error {
	nodes, err := findFrom(p.doc, "//frame[@src] | //iframe[@src]")
	if err != nil {
		return err
	}
	for _, n := range nodes {
		name := htmlquery.SelectAttr(n, "name")
		if name == "" {
			name = htmlquery.SelectAttr(n, "id")
		}
		bc := &browsingContext{name: name, window: p.context.window, parent: p}
		p.frames = append(p.frames, bc)
		u, err := p.resolve(htmlquery.SelectAttr(n, "src"))
		if err != nil {
			return err
		}
		if err := e.load(bc, getRequest(u, p.url.String()), false); err != nil {
			return err
		}
	}
	return nil
}

// runPending performs navigations and window openings requested by scripts, in order. It is
// called at the end of each action, so that a script never observes a half-replaced page.
func (e *Engine) runPending() error {
	for len(e.pending) > 0 {
		next := e.pending[0]
		e.pending = e.pending[1:]
		if err := next(); err != nil {
			e.pending = nil
			return err
		}
	}
	return nil
}

// navigate loads a URL into the browsing context that a link or form with the given target
// attribute refers to, opening a new window if necessary.
func (e *Engine) navigate(from *page, target string, req request) error {
	switch target {
	case "", "_self":
		return e.load(from.context, req, true)
	case "_parent":
		if from.context.parent != nil {
			return e.load(from.context.parent.context, req, true)
		}
		return e.load(from.context, req, true)
	case "_top":
		return e.load(from.context.window.top, req, true)
	case "_blank":
		return e.openWindow("", req)
	}
	if f := findFrame(from.context.window.top.page, target); f != nil {
		return e.load(f, req, true)
	}
	if w := e.windowNamed(target); w != nil {
		return e.load(w.top, req, true)
	}
	return e.openWindow(target, req)
}

func findFrame(p *page, name string) *browsingContext {
	if p == nil {
		return nil
	}
	if f := p.frame(name); f != nil {
		return f
	}
	for _, f := range p.frames {
		if found := findFrame(f.page, name); found != nil {
			return found
		}
	}
	return nil
}

func (e *Engine) openWindow(name string, req request) error {
	e.windowSeq++
	handle := name
	if handle == "" {
		handle = fmt.Sprintf("#%d", e.windowSeq)
	}
	w := &window{handle: handle, name: name}
	w.top = &browsingContext{name: name, window: w}
	e.windows = append(e.windows, w)
	e.Logger().Printf("Opened window %q", handle)
	return e.load(w.top, req, false)
}

func sortedHeaderLines(h http.Header) []string {
	lines := make([]string, 0, len(h))
	for k, vs := range h {
		for _, v := range vs {
			lines = append(lines, k+": "+v)
		}
	}
	sort.Strings(lines)
	return lines
}
