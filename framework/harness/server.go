package harness

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/webunit/testing-engine/framework/helpers"
)

const httpListenerTimeout = time.Second * 10

// StartServer serves the handler on the given port and waits until the listener is accepting
// requests. The returned server can be shut down by the caller.
func StartServer(port int, handler http.Handler) (*http.Server, error) {
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead && r.URL.Path == "/" {
				w.WriteHeader(http.StatusOK) // used to test whether our own listener is active yet
				return
			}
			handler.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second, // arbitrary but non-infinite timeout to avoid Slowloris Attack
	}
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, err
	}
	listenErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	url := fmt.Sprintf("http://localhost:%d/", port)
	client := http.Client{Timeout: time.Second}
	var failure error
	ready := helpers.PollForSpecificResultValue(func() bool {
		if maybeErr := helpers.TryReceive(listenErr, 0); maybeErr.IsDefined() {
			failure = maybeErr.Value()
			return true
		}
		resp, err := client.Head(url) //nolint:noctx
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, httpListenerTimeout, time.Millisecond*10, true)
	if failure != nil {
		return nil, failure
	}
	if !ready {
		_ = server.Close()
		return nil, fmt.Errorf("could not detect own listener at %s", server.Addr)
	}
	return server, nil
}
