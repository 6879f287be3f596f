// Package httpx builds the outbound HTTP clients used for thumbnails and
// other remote fetches.
package httpx

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultClientTimeout         = 5 * time.Second
	defaultDialTimeout           = 3 * time.Second
	defaultResponseHeaderTimeout = 5 * time.Second
	defaultIdleConnTimeout       = 30 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 16
	defaultMaxIdleConnsPerHost   = 4
)

// NewClient returns a hardened HTTP client whose whole exchange, body
// included, is bounded by timeout. A non-empty userAgent is set on every
// request that does not carry one.
func NewClient(timeout time.Duration, userAgent string) *http.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	dialTimeout := min(timeout, defaultDialTimeout)
	headerTimeout := min(timeout, defaultResponseHeaderTimeout)

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if userAgent != "" {
		rt = &uaTransport{next: rt, ua: userAgent}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

type uaTransport struct {
	next http.RoundTripper
	ua   string
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(clone)
}
