package webdriver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/tebeka/selenium"
	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/engine"
	"github.com/webunit/testing-engine/framework"
)

// fakeDriver is a driver over static pages parsed with htmlquery. It imitates what a browser
// does for the markup used in these tests: links (with target), checkboxes, radio buttons,
// options and submit buttons. Dialogs are declared with data-alert (messages separated by
// "|"), data-confirm and data-prompt attributes on the clicked element.
type fakeDriver struct {
	origin          string
	pages           map[string]string
	windows         []*fakeWindow
	current         *fakeWindow
	focus           *html.Node
	frameDocs       map[*html.Node]*html.Node
	seen            map[*html.Node]bool
	alert           *fakeAlert
	log             []string
	quit            bool
	pageLoadTimeout time.Duration
	windowSeq       int
}

type fakeWindow struct {
	handle  string
	name    string
	url     string
	doc     *html.Node
	history []string
	closed  bool
}

type fakeAlert struct {
	message string
	then    func(accepted bool)
}

type fakeElement struct {
	d *fakeDriver
	n *html.Node
}

var (
	errNoAlert   = &selenium.Error{Err: "no such alert", Message: "no such alert"}
	errAlertOpen = &selenium.Error{Err: "unexpected alert open", Message: "alert is open"}
)

func newFakeDriver(origin string, pages map[string]string) *fakeDriver {
	d := &fakeDriver{
		origin:    origin,
		pages:     pages,
		frameDocs: make(map[*html.Node]*html.Node),
		seen:      make(map[*html.Node]bool),
	}
	d.current = d.openWindow("")
	return d
}

// dialer returns a dialer that hands out this driver.
func (d *fakeDriver) dialer() dialer {
	return func(engine.Config, framework.Logger) (driver, error) { return d, nil }
}

func (d *fakeDriver) openWindow(name string) *fakeWindow {
	d.windowSeq++
	w := &fakeWindow{handle: fmt.Sprintf("window-%d", d.windowSeq), name: name}
	d.windows = append(d.windows, w)
	return w
}

func (d *fakeDriver) parse(rawURL string) (*html.Node, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "/slow" {
		return nil, &selenium.Error{Err: "timeout", Message: "page load timed out"}
	}
	source, ok := d.pages[u.Path]
	if !ok {
		source = "<html><head><title>Not Found</title></head><body>404</body></html>"
	}
	return htmlquery.Parse(strings.NewReader(source))
}

func (d *fakeDriver) resolve(base, target string) string {
	if base == "" {
		base = d.origin + "/"
	}
	b, err := url.Parse(base)
	if err != nil {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return b.ResolveReference(ref).String()
}

func (d *fakeDriver) navigate(w *fakeWindow, absURL string, addToHistory bool) error {
	doc, err := d.parse(absURL)
	if err != nil {
		return err
	}
	if addToHistory && w.url != "" {
		w.history = append(w.history, w.url)
	}
	w.url = absURL
	w.doc = doc
	if w == d.current {
		d.focus = nil
	}
	return nil
}

func (d *fakeDriver) doc() *html.Node {
	if d.focus != nil {
		return d.focus
	}
	return d.current.doc
}

func (d *fakeDriver) checkAlert() error {
	if d.alert != nil {
		return errAlertOpen
	}
	return nil
}

func (d *fakeDriver) Get(u string) error {
	if err := d.checkAlert(); err != nil {
		return err
	}
	return d.navigate(d.current, d.resolve(d.current.url, u), true)
}

func (d *fakeDriver) Back() error {
	w := d.current
	if len(w.history) == 0 {
		return nil
	}
	prev := w.history[len(w.history)-1]
	w.history = w.history[:len(w.history)-1]
	return d.navigate(w, prev, false)
}

func (d *fakeDriver) Refresh() error { return d.navigate(d.current, d.current.url, false) }

func (d *fakeDriver) CurrentURL() (string, error) { return d.current.url, nil }

func (d *fakeDriver) Title() (string, error) {
	if t := htmlquery.FindOne(d.current.doc, "//title"); t != nil {
		return htmlquery.InnerText(t), nil
	}
	return "", nil
}

func (d *fakeDriver) PageSource() (string, error) { return htmlquery.OutputHTML(d.doc(), true), nil }

func (d *fakeDriver) FindElements(by, value string) ([]element, error) {
	if err := d.checkAlert(); err != nil {
		return nil, err
	}
	return d.find(d.doc(), by, value)
}

func (d *fakeDriver) find(root *html.Node, by, value string) ([]element, error) {
	if by != selenium.ByXPATH {
		return nil, fmt.Errorf("unsupported strategy %s", by)
	}
	nodes, err := htmlquery.QueryAll(root, value)
	if err != nil {
		return nil, &selenium.Error{Err: "invalid selector", Message: err.Error()}
	}
	ret := make([]element, 0, len(nodes))
	for _, n := range nodes {
		ret = append(ret, fakeElement{d: d, n: n})
	}
	return ret, nil
}

func (d *fakeDriver) SwitchFrame(frame element) error {
	if frame == nil {
		d.focus = nil
		return nil
	}
	n := frame.(fakeElement).n
	doc, ok := d.frameDocs[n]
	if !ok {
		var err error
		if doc, err = d.parse(d.origin + htmlquery.SelectAttr(n, "src")); err != nil {
			return err
		}
		d.frameDocs[n] = doc
	}
	d.focus = doc
	return nil
}

func (d *fakeDriver) SwitchWindow(handle string) error {
	for _, w := range d.windows {
		if w.handle == handle && !w.closed {
			d.current = w
			d.focus = nil
			return nil
		}
	}
	return &selenium.Error{Err: "no such window", Message: handle}
}

func (d *fakeDriver) CurrentWindowHandle() (string, error) { return d.current.handle, nil }

func (d *fakeDriver) WindowHandles() ([]string, error) {
	var handles []string
	for _, w := range d.windows {
		if !w.closed {
			handles = append(handles, w.handle)
		}
	}
	return handles, nil
}

func (d *fakeDriver) CloseWindow(handle string) error {
	for _, w := range d.windows {
		if w.handle == handle {
			w.closed = true
			return nil
		}
	}
	return &selenium.Error{Err: "no such window", Message: handle}
}

func (d *fakeDriver) AlertText() (string, error) {
	if d.alert == nil {
		return "", errNoAlert
	}
	return d.alert.message, nil
}

func (d *fakeDriver) AcceptAlert() error { return d.closeAlert(true) }

func (d *fakeDriver) DismissAlert() error { return d.closeAlert(false) }

func (d *fakeDriver) closeAlert(accepted bool) error {
	if d.alert == nil {
		return errNoAlert
	}
	a := d.alert
	d.alert = nil
	if accepted {
		d.log = append(d.log, "accept "+a.message)
	} else {
		d.log = append(d.log, "dismiss "+a.message)
	}
	if a.then != nil {
		a.then(accepted)
	}
	return nil
}

func (d *fakeDriver) SetAlertText(text string) error {
	if d.alert == nil {
		return errNoAlert
	}
	d.log = append(d.log, "input "+text)
	return nil
}

func (d *fakeDriver) SetPageLoadTimeout(timeout time.Duration) error {
	d.pageLoadTimeout = timeout
	return nil
}

func (d *fakeDriver) Quit() error {
	d.quit = true
	return nil
}

func (d *fakeDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	if err := d.checkAlert(); err != nil {
		return nil, err
	}
	arg := func(i int) *html.Node { return args[i].(fakeElement).n }
	switch script {
	case scriptReadyState:
		return "complete", nil
	case scriptLocation:
		return d.current.url, nil
	case scriptWindowName:
		return d.current.name, nil
	case scriptMarkDocument:
		doc := d.doc()
		seen := d.seen[doc]
		d.seen[doc] = true
		return seen, nil
	case scriptAttribute:
		for _, a := range arg(0).Attr {
			if a.Key == args[1].(string) {
				return a.Val, nil
			}
		}
		return nil, nil
	case scriptProperty:
		return d.property(arg(0), args[1].(string)), nil
	case scriptSubmit:
		d.log = append(d.log, "submit "+htmlquery.SelectAttr(arg(0), "name"))
		return nil, nil
	case scriptReset:
		d.log = append(d.log, "reset "+htmlquery.SelectAttr(arg(0), "name"))
		return nil, nil
	case scriptUncheck:
		removeAttr(arg(0), "checked")
		return nil, nil
	case scriptDeselect:
		removeAttr(arg(0), "selected")
		return nil, nil
	}
	return nil, errors.New("fake driver cannot run script: " + script)
}

func (d *fakeDriver) property(n *html.Node, name string) interface{} {
	switch name {
	case "value":
		switch n.Data {
		case "textarea":
			return htmlquery.InnerText(n)
		case "option":
			if hasAttr(n, "value") {
				return htmlquery.SelectAttr(n, "value")
			}
			return strings.TrimSpace(htmlquery.InnerText(n))
		}
		if !hasAttr(n, "value") && (htmlquery.SelectAttr(n, "type") == "checkbox" || htmlquery.SelectAttr(n, "type") == "radio") {
			return "on"
		}
		return htmlquery.SelectAttr(n, "value")
	case "multiple":
		return hasAttr(n, "multiple")
	case "form":
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && p.Data == "form" {
				return map[string]interface{}{"element-6066-11e4-a52e-4f735466cecf": "form"}
			}
		}
		return nil
	}
	return nil
}

// click imitates the browser: an onclick dialog first, then the default action unless a
// confirm was dismissed.
func (d *fakeDriver) click(n *html.Node) error {
	if err := d.checkAlert(); err != nil {
		return err
	}
	if messages := htmlquery.SelectAttr(n, "data-alert"); messages != "" {
		d.chainAlerts(strings.Split(messages, "|"), func() { d.defaultAction(n) })
		return nil
	}
	if message := htmlquery.SelectAttr(n, "data-confirm"); message != "" {
		d.alert = &fakeAlert{message: message, then: func(accepted bool) {
			if accepted {
				d.defaultAction(n)
			}
		}}
		return nil
	}
	if message := htmlquery.SelectAttr(n, "data-prompt"); message != "" {
		d.alert = &fakeAlert{message: message}
		return nil
	}
	d.defaultAction(n)
	return nil
}

func (d *fakeDriver) chainAlerts(messages []string, done func()) {
	if len(messages) == 0 {
		done()
		return
	}
	d.alert = &fakeAlert{message: messages[0], then: func(bool) { d.chainAlerts(messages[1:], done) }}
}

func (d *fakeDriver) defaultAction(n *html.Node) {
	inputType := htmlquery.SelectAttr(n, "type")
	switch {
	case n.Data == "a" && hasAttr(n, "href"):
		href := htmlquery.SelectAttr(n, "href")
		if href == "#" {
			return
		}
		w := d.current
		if target := htmlquery.SelectAttr(n, "target"); target != "" && target != "_self" {
			w = nil
			for _, other := range d.windows {
				if other.name == target && !other.closed {
					w = other
				}
			}
			if w == nil {
				w = d.openWindow(target)
			}
		}
		_ = d.navigate(w, d.resolve(d.current.url, href), true)
	case n.Data == "input" && inputType == "checkbox":
		if hasAttr(n, "checked") {
			removeAttr(n, "checked")
		} else {
			n.Attr = append(n.Attr, html.Attribute{Key: "checked", Val: "checked"})
		}
	case n.Data == "input" && inputType == "radio":
		name := htmlquery.SelectAttr(n, "name")
		for _, r := range htmlquery.Find(rootOf(n), "//input[@type='radio']") {
			if htmlquery.SelectAttr(r, "name") == name {
				removeAttr(r, "checked")
			}
		}
		n.Attr = append(n.Attr, html.Attribute{Key: "checked", Val: "checked"})
	case n.Data == "option":
		sel := n.Parent
		if hasAttr(sel, "multiple") && hasAttr(n, "selected") {
			removeAttr(n, "selected")
			return
		}
		if !hasAttr(sel, "multiple") {
			for _, o := range htmlquery.Find(sel, ".//option") {
				removeAttr(o, "selected")
			}
		}
		n.Attr = append(n.Attr, html.Attribute{Key: "selected", Val: "selected"})
	case inputType == "submit":
		d.log = append(d.log, "submit with "+htmlquery.SelectAttr(n, "name"))
	}
}

func (el fakeElement) Click() error { return el.d.click(el.n) }

func (el fakeElement) Clear() error {
	removeAttr(el.n, "value")
	return nil
}

func (el fakeElement) SendKeys(keys string) error {
	value := htmlquery.SelectAttr(el.n, "value")
	removeAttr(el.n, "value")
	el.n.Attr = append(el.n.Attr, html.Attribute{Key: "value", Val: value + keys})
	return nil
}

func (el fakeElement) TagName() (string, error) { return el.n.Data, nil }

func (el fakeElement) Text() (string, error) { return htmlquery.InnerText(el.n), nil }

func (el fakeElement) IsSelected() (bool, error) {
	return hasAttr(el.n, "checked") || hasAttr(el.n, "selected"), nil
}

func (el fakeElement) FindElements(by, value string) ([]element, error) {
	if err := el.d.checkAlert(); err != nil {
		return nil, err
	}
	return el.d.find(el.n, by, value)
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

func rootOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}
