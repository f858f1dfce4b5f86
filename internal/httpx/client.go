// Package httpx provides the shared synchronous HTTP client used by the
// Orchestrator to call the Access Provisioner and the Quota Accountant: a
// single *http.Client with a fixed timeout and no retries. Peer timeouts
// are handled by the caller.
package httpx

import (
	"net/http"
	"time"
)

// DefaultTimeout is the fixed timeout applied to every outbound peer call.
const DefaultTimeout = 5 * time.Second

// Client wraps http.Client with the module's fixed peer-call timeout.
type Client struct {
	http *http.Client
}

// New returns a Client configured with DefaultTimeout.
func New() *Client {
	return &Client{http: &http.Client{Timeout: DefaultTimeout}}
}

// Do executes req. The underlying http.Client.Timeout (DefaultTimeout)
// bounds the whole round trip including body read; callers build req with
// http.NewRequestWithContext so cancellation still propagates.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}
