package harness

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
)

const endpointPathPrefix = "/endpoints/"

// Somewhat arbitrary buffer size for the channel that queues incoming request information. If
// the channel is full, the handler does not block; it discards the information.
const incomingRequestChannelBufferSize = 20

type endpointsManager struct {
	endpoints      map[string]*Endpoint
	lastEndpointID int
	logger         framework.Logger
	lock           sync.Mutex
}

// Endpoint is a page on the fixture site whose handler is supplied by a test, and which
// records every request it receives so the test can inspect what the engine sent.
type Endpoint struct {
	owner       *endpointsManager
	id          string
	description string
	basePath    string
	handler     http.Handler
	requests    chan IncomingRequestInfo
	logger      framework.Logger
	lock        sync.Mutex
	closing     sync.Once
}

type EndpointOption helpers.ConfigOption[Endpoint]

// EndpointDescription sets the name used for the endpoint in log messages.
func EndpointDescription(description string) EndpointOption {
	return helpers.ConfigOptionFunc[Endpoint](func(e *Endpoint) error {
		e.description = description
		return nil
	})
}

// IncomingRequestInfo describes a request received by an Endpoint.
type IncomingRequestInfo struct {
	Headers http.Header
	Method  string
	URL     url.URL
	Body    []byte
	Form    url.Values
}

func newEndpointsManager(logger framework.Logger) *endpointsManager {
	return &endpointsManager{
		endpoints: make(map[string]*Endpoint),
		logger:    framework.OrNullLogger(logger),
	}
}

func (m *endpointsManager) newEndpoint(handler http.Handler, options ...EndpointOption) *Endpoint {
	e := &Endpoint{
		owner:    m,
		handler:  handler,
		requests: make(chan IncomingRequestInfo, incomingRequestChannelBufferSize),
		logger:   m.logger,
	}
	_ = helpers.ApplyOptions(e, options...)
	m.lock.Lock()
	m.lastEndpointID++
	e.id = strconv.Itoa(m.lastEndpointID)
	e.basePath = endpointPathPrefix + e.id
	m.endpoints[e.id] = e
	m.lock.Unlock()
	return e
}

func (m *endpointsManager) serveHTTP(w http.ResponseWriter, r *http.Request) {
	endpointID := mux.Vars(r)["id"]
	m.lock.Lock()
	e := m.endpoints[endpointID]
	m.lock.Unlock()
	if e == nil {
		m.logger.Printf("Received request for unrecognized endpoint %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			m.logger.Printf("Unexpected error trying to read request body: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body = data
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	subpath := strings.TrimPrefix(r.URL.Path, e.basePath)
	if subpath == "" {
		subpath = "/"
	}
	u := *r.URL
	u.Path = subpath
	transformed := r.Clone(r.Context())
	transformed.URL = &u
	transformed.Body = io.NopCloser(bytes.NewReader(body))

	form := url.Values{}
	if err := r.ParseForm(); err == nil {
		form = r.Form
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	info := IncomingRequestInfo{
		Headers: r.Header,
		Method:  r.Method,
		URL:     u,
		Body:    body,
		Form:    form,
	}
	e.lock.Lock()
	closed := e.requests == nil
	queued := !closed && helpers.NonBlockingSend(e.requests, info)
	e.lock.Unlock()
	if closed {
		m.logger.Printf("Received request to already-closed endpoint %s", r.URL)
		w.WriteHeader(http.StatusGone)
		return
	}
	if !queued {
		m.logger.Printf("Incoming request channel was full for %s", r.URL)
	}

	e.handler.ServeHTTP(w, transformed)
}

// BasePath returns the path of the endpoint on the fixture site.
func (e *Endpoint) BasePath() string { return e.basePath }

// AwaitRequest waits for an incoming request to the endpoint.
func (e *Endpoint) AwaitRequest(timeout time.Duration) (IncomingRequestInfo, error) {
	e.lock.Lock()
	requests := e.requests
	e.lock.Unlock()
	if requests == nil {
		return IncomingRequestInfo{}, fmt.Errorf("endpoint %q (%s) is closed", e.description, e.basePath)
	}
	maybeReq := helpers.TryReceive(requests, timeout)
	if maybeReq.IsDefined() {
		return maybeReq.Value(), nil
	}
	return IncomingRequestInfo{}, fmt.Errorf("timed out waiting for a request to %q (%s)", e.description,
		e.basePath)
}

// RequireRequest waits for an incoming request, and causes the test to fail and terminate if
// it timed out.
func (e *Endpoint) RequireRequest(t helpers.TestContext, timeout time.Duration) IncomingRequestInfo {
	e.lock.Lock()
	requests := e.requests
	e.lock.Unlock()
	return helpers.RequireValue(t, requests, timeout, "timed out waiting for request to %q (%s)",
		e.description, e.basePath)
}

// Close unregisters the endpoint. Any subsequent requests to it will receive 404 errors.
func (e *Endpoint) Close() {
	e.closing.Do(func() {
		e.logger.Printf("Closing endpoint %q (%s)", e.description, e.basePath)
		e.owner.lock.Lock()
		delete(e.owner.endpoints, e.id)
		e.owner.lock.Unlock()

		e.lock.Lock()
		close(e.requests)
		e.requests = nil
		e.lock.Unlock()
	})
}
