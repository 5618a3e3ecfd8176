package harness

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) (int, net.Listener) {
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	return listener.Addr().(*net.TCPAddr).Port, listener
}

func TestStartServerServesHandler(t *testing.T) {
	port, listener := freePort(t)
	require.NoError(t, listener.Close())

	server, err := StartServer(port, httphelpers.HandlerWithResponse(200, nil, []byte("hello")))
	require.NoError(t, err)
	defer server.Close()

	resp, err := http.Get("http://localhost" + server.Addr + "/page") //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestStartServerReportsBindFailureImmediately(t *testing.T) {
	port, listener := freePort(t)
	defer listener.Close()

	started := time.Now()
	server, err := StartServer(port, httphelpers.HandlerWithStatus(200))
	assert.Error(t, err)
	assert.Nil(t, server)
	assert.Less(t, time.Since(started), time.Second)
}
