// Package httpc builds the HTTP clients used for recognition API calls.
package httpc

import (
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout  = 30 * time.Second
	connectTimeout  = 5 * time.Second
	keepAlive       = 30 * time.Second
	idleConnTimeout = 90 * time.Second
)

// UserAgent is sent on every request made through a client from NewClient.
var UserAgent = "go-presenter"

// NewClient returns a client whose total request time is bounded by timeout
// (DefaultTimeout when zero). Connections to the API host are kept warm
// between frames.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: keepAlive,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: userAgent{next: transport},
	}
}

type userAgent struct {
	next http.RoundTripper
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return u.next.RoundTrip(req)
}

// CloseIdle drops pooled connections held by c.
func CloseIdle(c *http.Client) {
	c.CloseIdleConnections()
}
