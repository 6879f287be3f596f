package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DefaultTimeoutAndTransport(t *testing.T) {
	client := NewClient(0, "")
	assert.Equal(t, defaultClientTimeout, client.Timeout)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok, "transport type = %T", client.Transport)
	assert.Equal(t, defaultMaxIdleConns, transport.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
}

func TestNewClient_CapsDialAndHeaderTimeouts(t *testing.T) {
	client := NewClient(15*time.Second, "")
	transport := client.Transport.(*http.Transport)
	assert.Equal(t, 15*time.Second, client.Timeout)
	assert.Equal(t, defaultDialTimeout, transport.TLSHandshakeTimeout)
	assert.Equal(t, defaultResponseHeaderTimeout, transport.ResponseHeaderTimeout)
}

func TestNewClient_UsesShortTimeoutAsProvided(t *testing.T) {
	want := 1500 * time.Millisecond
	client := NewClient(want, "")
	transport := client.Transport.(*http.Transport)
	assert.Equal(t, want, transport.TLSHandshakeTimeout)
	assert.Equal(t, want, transport.ResponseHeaderTimeout)
}

func TestNewClient_SetsUserAgent(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.UserAgent())
	}))
	defer srv.Close()

	client := NewClient(time.Second, "vidmux-test/1")
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "explicit")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"vidmux-test/1", "explicit"}, got)
}
