package observability

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient returns a traced client with pooled connections and the given
// per-request timeout. Outbound integrations share this constructor; each
// request gets a client span and carries the W3C trace headers.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 20
	transport.MaxIdleConnsPerHost = 5
	transport.IdleConnTimeout = 90 * time.Second
	return &http.Client{
		Transport: otelhttp.NewTransport(transport),
		Timeout:   timeout,
	}
}
