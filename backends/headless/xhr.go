package headless

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dop251/goja"

	"github.com/webunit/testing-engine/framework/helpers"
)

const (
	xhrUnsent = 0
	xhrOpened = 1
	xhrDone   = 4
)

// xhr is a synchronous XMLHttpRequest. Requests go through the engine's HTTP client, so they
// share its cookies and user agent. The async flag of open is accepted and ignored: send
// returns only after the response has arrived and the event handlers have run.
type xhr struct {
	h          *scriptHost
	obj        *goja.Object
	readyState int
	method     string
	url        *url.URL
	header     http.Header
	resp       *http.Response
	body       string
}

func (h *scriptHost) newXHR(call goja.ConstructorCall) *goja.Object {
	vm := h.vm
	x := &xhr{h: h, obj: call.This, header: make(http.Header)}
	obj := call.This
	_ = obj.Set("DONE", xhrDone)

	h.accessor(obj, "readyState", func() goja.Value { return vm.ToValue(x.readyState) }, nil)
	h.accessor(obj, "status", func() goja.Value {
		if x.resp == nil {
			return vm.ToValue(0)
		}
		return vm.ToValue(x.resp.StatusCode)
	}, nil)
	h.accessor(obj, "statusText", func() goja.Value {
		if x.resp == nil {
			return vm.ToValue("")
		}
		return vm.ToValue(http.StatusText(x.resp.StatusCode))
	}, nil)
	h.accessor(obj, "responseText", func() goja.Value { return vm.ToValue(x.body) }, nil)

	_ = obj.Set("open", func(call goja.FunctionCall) goja.Value {
		u, err := h.page.resolve(call.Argument(1).String())
		if err != nil {
			panic(vm.NewTypeError(err.Error()))
		}
		x.method = strings.ToUpper(call.Argument(0).String())
		x.url = u
		x.header = make(http.Header)
		x.resp, x.body = nil, ""
		x.setState(xhrOpened)
		return goja.Undefined()
	})
	_ = obj.Set("setRequestHeader", func(call goja.FunctionCall) goja.Value {
		x.header.Add(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("send", func(call goja.FunctionCall) goja.Value {
		if x.readyState != xhrOpened {
			panic(vm.NewTypeError("send called before open"))
		}
		x.send(call.Argument(0))
		return goja.Undefined()
	})
	_ = obj.Set("abort", func(call goja.FunctionCall) goja.Value {
		x.resp, x.body = nil, ""
		x.readyState = xhrUnsent
		return goja.Undefined()
	})
	_ = obj.Set("getResponseHeader", func(call goja.FunctionCall) goja.Value {
		if x.resp == nil {
			return goja.Null()
		}
		values, ok := x.resp.Header[http.CanonicalHeaderKey(call.Argument(0).String())]
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(strings.Join(values, ", "))
	})
	_ = obj.Set("getAllResponseHeaders", func(call goja.FunctionCall) goja.Value {
		if x.resp == nil {
			return vm.ToValue("")
		}
		var lines []string
		for name, values := range x.resp.Header {
			lines = append(lines, strings.ToLower(name)+": "+strings.Join(values, ", ")+"\r\n")
		}
		return vm.ToValue(strings.Join(helpers.Sorted(lines), ""))
	})
	return nil
}

func (x *xhr) send(body goja.Value) {
	req := request{method: x.method, url: x.url, referer: x.h.page.url.String()}
	if !goja.IsUndefined(body) && !goja.IsNull(body) && x.method != http.MethodGet && x.method != http.MethodHead {
		req.body = []byte(body.String())
		req.contentType = "text/plain;charset=UTF-8"
	}
	if ct := x.header.Get("Content-Type"); ct != "" {
		req.contentType = ct
	}
	extra := x.header.Clone()
	extra.Del("Content-Type")

	resp, data, err := x.h.engine.roundTrip(req, extra)
	if err != nil {
		x.h.engine.Logger().Printf("XMLHttpRequest to %s failed: %s", x.url, err)
		x.setState(xhrDone)
		x.dispatch("onerror")
		return
	}
	x.resp, x.body = resp, string(data)
	x.setState(xhrDone)
	x.dispatch("onload")
}

func (x *xhr) setState(state int) {
	x.readyState = state
	x.dispatch("onreadystatechange")
}

// dispatch calls a handler property such as onload, with the request as "this". A script
// error thrown by the handler propagates to the caller of send.
func (x *xhr) dispatch(name string) {
	fn, ok := goja.AssertFunction(x.obj.Get(name))
	if !ok {
		return
	}
	if _, err := fn(x.obj, x.obj); err != nil {
		panic(err)
	}
}
