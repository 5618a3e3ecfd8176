// Package harness provides a fixture web site for exercising testing engines: a set of
// embedded HTML pages covering dialogs, forms, frames and windows, an endpoint that echoes
// submitted parameters, and recording endpoints whose handlers are supplied by tests.
//
// A Site is an http.Handler; tests usually host it with httptest.NewServer, and the command
// line tool can host it with StartServer.
package harness

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/webunit/testing-engine/framework"
	"github.com/webunit/testing-engine/framework/helpers"
)

//go:embed pages
var pagesFS embed.FS

// Site is the fixture web site.
type Site struct {
	router    *mux.Router
	endpoints *endpointsManager
	logger    framework.Logger
}

// NewSite creates the fixture site. Requests for unknown paths are logged to logger.
func NewSite(logger framework.Logger) *Site {
	logger = framework.OrNullLogger(logger)
	s := &Site{
		router:    mux.NewRouter(),
		endpoints: newEndpointsManager(logger),
		logger:    logger,
	}
	pages, err := fs.Sub(pagesFS, "pages")
	if err != nil {
		panic(err) // the embedded directory is always present
	}
	s.router.HandleFunc("/params", ParamsHandler).Methods("GET", "POST")
	s.router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET", "HEAD")
	s.router.HandleFunc("/error/{code:[0-9]+}", errorHandler)
	s.router.HandleFunc("/redirect", redirectHandler)
	s.router.HandleFunc(endpointPathPrefix+"{id}", s.endpoints.serveHTTP)
	s.router.PathPrefix(endpointPathPrefix + "{id}/").HandlerFunc(s.endpoints.serveHTTP)
	s.router.NotFoundHandler = http.FileServer(http.FS(pages))
	return s
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handle adds a route for a handler supplied by the caller. It takes precedence over the
// embedded pages.
func (s *Site) Handle(path string, handler http.Handler) {
	s.router.Handle(path, handler)
}

// NewEndpoint adds a recording endpoint. The handler sees requests to the endpoint's base path
// or any subpath of it, with the base path removed.
func (s *Site) NewEndpoint(handler http.Handler, options ...EndpointOption) *Endpoint {
	return s.endpoints.newEndpoint(handler, options...)
}

// PageNames lists the embedded pages as site paths, such as "/JavaScriptTest/Alert.html".
func PageNames() ([]string, error) {
	var names []string
	err := fs.WalkDir(pagesFS, "pages", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, strings.TrimPrefix(path, "pages"))
		}
		return nil
	})
	return names, err
}

// ParamsHandler responds with a page listing every submitted parameter as
// name=value1[,value2...], one per line, after the text "Params are:". Names are sorted.
func ParamsHandler(w http.ResponseWriter, r *http.Request) {
	var lines []string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for name, values := range r.MultipartForm.Value {
			lines = append(lines, name+"="+strings.Join(values, ","))
		}
		for name, files := range r.MultipartForm.File {
			for _, fh := range files {
				lines = append(lines, fmt.Sprintf("%s=%s", name, fh.Filename))
			}
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for name, values := range r.Form {
			lines = append(lines, name+"="+strings.Join(values, ","))
		}
	}
	lines = helpers.Sorted(lines)

	ref := r.Header.Get("Referer")
	if ref == "" {
		ref = r.Form.Get("myReferer")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><head><title>Submitted parameters</title></head><body>\n")
	fmt.Fprintf(w, "<h1>Submitted parameters</h1>\n<p>Params are:<br/>%s </p>\n", strings.Join(lines, "<br/>\n"))
	if ref != "" {
		fmt.Fprintf(w, "<p><a id=\"return\" href=\"%s\">return</a></p>\n", ref)
	}
	fmt.Fprint(w, "</body></html>\n")
}

func errorHandler(w http.ResponseWriter, r *http.Request) {
	code, _ := strconv.Atoi(mux.Vars(r)["code"])
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	fmt.Fprintf(w, "<html><head><title>Error %d</title></head><body>Error %d</body></html>", code, code)
}

func redirectHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, r.URL.Query().Get("to"), http.StatusFound)
}
