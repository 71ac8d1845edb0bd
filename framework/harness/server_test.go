package harness

import (
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartServer(t *testing.T) {
	s, err := StartServer("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello from "+r.URL.Path)
	}))
	require.NoError(t, err)
	defer s.Close()

	resp, err := http.Get(s.URL + "index.php")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "hello from /index.php", string(body))

	head, err := http.Head(s.URL + "anything")
	require.NoError(t, err)
	_ = head.Body.Close()
	assert.Equal(t, 200, head.StatusCode)
}

func TestStartServerPortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	_, err = StartServer(l.Addr().String(), httphelpers.HandlerWithStatus(200))
	assert.Error(t, err)
}

func TestListenerURLUsesLoopbackForWildcard(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8000/", listenerURL(&net.TCPAddr{IP: net.IPv6unspecified, Port: 8000}))
	assert.Equal(t, "http://127.0.0.1:8000/", listenerURL(&net.TCPAddr{IP: net.IPv4zero, Port: 8000}))
	assert.Equal(t, "http://10.0.0.5:81/", listenerURL(&net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 81}))
}
