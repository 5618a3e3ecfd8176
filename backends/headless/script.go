package headless

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/webunit/testing-engine/dialog"
	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/locator"
)

var errScriptTimeout = errors.New("script execution timed out")

// scriptHost is the JavaScript environment of one page. It provides the small part of the
// browser object model that test pages rely on: dialogs, document.write, element values,
// location, window.open and a synchronous XMLHttpRequest.
type scriptHost struct {
	engine  *Engine
	page    *page
	vm      *goja.Runtime
	current *html.Node // the <script> element being run while the page loads
	written strings.Builder
}

func (p *page) scriptHost(e *Engine) *scriptHost {
	if p.script == nil {
		p.script = newScriptHost(e, p)
	}
	return p.script
}

func newScriptHost(e *Engine, p *page) *scriptHost {
	h := &scriptHost{engine: e, page: p, vm: goja.New()}
	vm := h.vm
	global := vm.GlobalObject()
	_ = vm.Set("window", global)
	_ = vm.Set("self", global)

	_ = vm.Set("alert", func(call goja.FunctionCall) goja.Value {
		h.dialog(dialog.KindAlert, messageArg(call))
		return goja.Undefined()
	})
	_ = vm.Set("confirm", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(h.dialog(dialog.KindConfirm, messageArg(call)).Accept)
	})
	_ = vm.Set("prompt", func(call goja.FunctionCall) goja.Value {
		resp := h.dialog(dialog.KindPrompt, messageArg(call))
		if !resp.Accept {
			return goja.Null()
		}
		return vm.ToValue(resp.Input.OrElse(""))
	})
	_ = vm.Set("open", func(call goja.FunctionCall) goja.Value {
		h.open(call.Argument(0).String(), stringArg(call, 1))
		return goja.Null()
	})

	navigator := vm.NewObject()
	_ = navigator.Set("userAgent", e.Config().UserAgent)
	_ = vm.Set("navigator", navigator)
	_ = vm.Set("XMLHttpRequest", h.newXHR)

	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]string, 0, len(call.Arguments))
		for _, a := range call.Arguments {
			args = append(args, a.String())
		}
		e.Logger().Printf("[console] %s", strings.Join(args, " "))
		return goja.Undefined()
	})
	_ = vm.Set("console", console)

	location := h.locationObject()
	h.accessor(global, "location", func() goja.Value { return location }, func(v goja.Value) {
		h.assignLocation(v.String())
	})

	document := vm.NewObject()
	_ = document.Set("write", func(call goja.FunctionCall) goja.Value {
		for _, a := range call.Arguments {
			h.written.WriteString(a.String())
		}
		return goja.Undefined()
	})
	_ = document.Set("writeln", func(call goja.FunctionCall) goja.Value {
		for _, a := range call.Arguments {
			h.written.WriteString(a.String())
		}
		h.written.WriteString("\n")
		return goja.Undefined()
	})
	_ = document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		n := htmlquery.FindOne(p.doc, "//*[@id="+locator.Quote(call.Argument(0).String())+"]")
		if n == nil {
			return goja.Null()
		}
		return h.element(n)
	})
	h.accessor(document, "title", func() goja.Value { return vm.ToValue(p.title()) }, func(v goja.Value) {
		h.setTitle(v.String())
	})
	h.accessor(document, "location", func() goja.Value { return location }, func(v goja.Value) {
		h.assignLocation(v.String())
	})
	_ = vm.Set("document", document)
	return h
}

func messageArg(call goja.FunctionCall) string {
	a := call.Argument(0)
	if goja.IsUndefined(a) {
		return ""
	}
	return a.String()
}

func stringArg(call goja.FunctionCall, i int) string {
	a := call.Argument(i)
	if goja.IsUndefined(a) || goja.IsNull(a) {
		return ""
	}
	return a.String()
}

func (h *scriptHost) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := h.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	var setter goja.Value
	if set != nil {
		setter = h.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}
	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

// dialog matches a dialog against the expectation queue. A mismatch is thrown into the script
// as an exception and also remembered, so the action fails even if the script catches it.
func (h *scriptHost) dialog(kind dialog.Kind, message string) dialog.Response {
	resp, err := h.engine.DialogQueue().Fire(kind, message)
	if err != nil {
		if h.engine.scriptErr == nil {
			h.engine.scriptErr = err
		}
		panic(h.vm.NewGoError(err))
	}
	return resp
}

func (h *scriptHost) locationObject() *goja.Object {
	loc := h.vm.NewObject()
	h.accessor(loc, "href", func() goja.Value { return h.vm.ToValue(h.page.url.String()) }, func(v goja.Value) {
		h.assignLocation(v.String())
	})
	h.accessor(loc, "pathname", func() goja.Value { return h.vm.ToValue(h.page.url.Path) }, nil)
	h.accessor(loc, "search", func() goja.Value {
		if h.page.url.RawQuery == "" {
			return h.vm.ToValue("")
		}
		return h.vm.ToValue("?" + h.page.url.RawQuery)
	}, nil)
	_ = loc.Set("assign", func(call goja.FunctionCall) goja.Value {
		h.assignLocation(call.Argument(0).String())
		return goja.Undefined()
	})
	_ = loc.Set("replace", func(call goja.FunctionCall) goja.Value {
		h.assignLocation(call.Argument(0).String())
		return goja.Undefined()
	})
	_ = loc.Set("reload", func(goja.FunctionCall) goja.Value {
		h.assignLocation(h.page.url.String())
		return goja.Undefined()
	})
	_ = loc.Set("toString", func(goja.FunctionCall) goja.Value { return h.vm.ToValue(h.page.url.String()) })
	return loc
}

func (h *scriptHost) assignLocation(ref string) {
	u, err := h.page.resolve(ref)
	if err != nil {
		panic(h.vm.NewGoError(err))
	}
	p := h.page
	h.engine.pending = append(h.engine.pending, func() error {
		if p.context.page != p {
			return nil
		}
		return h.engine.load(p.context, getRequest(u, p.url.String()), true)
	})
}

func (h *scriptHost) open(ref, name string) {
	u, err := h.page.resolve(ref)
	if err != nil {
		panic(h.vm.NewGoError(err))
	}
	p := h.page
	h.engine.pending = append(h.engine.pending, func() error {
		req := getRequest(u, p.url.String())
		if name == "" {
			return h.engine.openWindow("", req)
		}
		if w := h.engine.windowNamed(name); w != nil {
			return h.engine.load(w.top, req, true)
		}
		return h.engine.openWindow(name, req)
	})
}

func (h *scriptHost) setTitle(title string) {
	n := htmlquery.FindOne(h.page.doc, "//title")
	if n == nil {
		head := htmlquery.FindOne(h.page.doc, "//head")
		if head == nil {
			return
		}
		n = &html.Node{Type: html.ElementNode, Data: "title"}
		head.AppendChild(n)
	}
	setText(n, title)
}

// element wraps a DOM node as a script object with the properties test pages use.
func (h *scriptHost) element(n *html.Node) *goja.Object {
	vm := h.vm
	obj := vm.NewObject()
	_ = obj.Set("id", htmlquery.SelectAttr(n, "id"))
	_ = obj.Set("tagName", strings.ToUpper(n.Data))
	h.accessor(obj, "value", func() goja.Value { return vm.ToValue(controlValue(n)) }, func(v goja.Value) {
		setControlValue(n, v.String())
	})
	h.accessor(obj, "checked", func() goja.Value { return vm.ToValue(hasAttr(n, "checked")) }, func(v goja.Value) {
		setFlag(n, "checked", v.ToBoolean())
	})
	h.accessor(obj, "innerHTML", func() goja.Value { return vm.ToValue(innerHTML(n)) }, func(v goja.Value) {
		if err := setInnerHTML(n, v.String()); err != nil {
			panic(vm.NewGoError(err))
		}
	})
	h.accessor(obj, "textContent", func() goja.Value { return vm.ToValue(htmlquery.InnerText(n)) }, func(v goja.Value) {
		setText(n, v.String())
	})
	_ = obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		if v, ok := getAttr(n, call.Argument(0).String()); ok {
			return vm.ToValue(v)
		}
		return goja.Null()
	})
	_ = obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		addAttr(n, call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		removeAttr(n, call.Argument(0).String())
		return goja.Undefined()
	})
	return obj
}

// runInline runs the content of a <script> element while the page loads. Text passed to
// document.write is inserted after the element.
func (h *scriptHost) runInline(script *html.Node, code string) error {
	h.current = script
	defer func() { h.current = nil }()
	_, err := h.exec(func() (goja.Value, error) { return h.vm.RunString(code) })
	return err
}

// runHandler runs an event handler attribute such as onclick with the element as "this". It
// returns false if the handler returned false, which cancels the default action.
func (h *scriptHost) runHandler(n *html.Node, code string) (bool, error) {
	v, err := h.exec(func() (goja.Value, error) {
		fnValue, err := h.vm.RunString("(function(event) {\n" + code + "\n})")
		if err != nil {
			return nil, err
		}
		fn, ok := goja.AssertFunction(fnValue)
		if !ok {
			return nil, errors.New("event handler is not a function")
		}
		return fn(h.element(n))
	})
	if err != nil {
		return false, err
	}
	if v != nil {
		if b, ok := v.Export().(bool); ok && !b {
			return false, nil
		}
	}
	return true, nil
}

// runURL runs the code of a javascript: URL.
func (h *scriptHost) runURL(href string) error {
	code, err := url.PathUnescape(strings.TrimPrefix(href, "javascript:"))
	if err != nil {
		code = strings.TrimPrefix(href, "javascript:")
	}
	_, err = h.exec(func() (goja.Value, error) { return h.vm.RunString(code) })
	return err
}

// exec runs script code bounded by the page load timeout. Dialog mismatches and timeouts are
// returned as errors; other script errors are logged and otherwise ignored, as a browser would.
func (h *scriptHost) exec(fn func() (goja.Value, error)) (goja.Value, error) {
	e := h.engine
	var timer *time.Timer
	if timeout := e.Config().PageLoadTimeout; timeout > 0 {
		timer = time.AfterFunc(timeout, func() { h.vm.Interrupt(errScriptTimeout) })
	}
	v, err := fn()
	if timer != nil {
		timer.Stop()
	}
	h.vm.ClearInterrupt()
	if flushErr := h.flushWritten(); flushErr != nil {
		e.Logger().Printf("Could not insert written content: %s", flushErr)
	}
	if e.scriptErr != nil {
		scriptErr := e.scriptErr
		e.scriptErr = nil
		return nil, scriptErr
	}
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, framework.ResponseError{Operation: "script", URL: h.page.url.String(), Timeout: true, Err: err}
		}
		e.Logger().Printf("Script error on %s: %s", h.page.url, err)
		return nil, nil
	}
	return v, nil
}

func (h *scriptHost) flushWritten() error {
	if h.written.Len() == 0 {
		return nil
	}
	markup := h.written.String()
	h.written.Reset()
	if h.current != nil && h.current.Parent != nil {
		return insertHTML(h.current.Parent, h.current.NextSibling, markup)
	}
	body := htmlquery.FindOne(h.page.doc, "//body")
	if body == nil {
		return errors.New("document has no body")
	}
	return insertHTML(body, nil, markup)
}
