package adapter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/amishk599/liveroles/internal/retry"
	"github.com/amishk599/liveroles/internal/transport"
)

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newTestClient returns a transport client that sends every request to srv,
// whatever host the adapter asked for. Retries are disabled.
func newTestClient(srv *httptest.Server) *transport.Client {
	httpClient := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return transport.New(httpClient, transport.Options{
		Timeout: 2 * time.Second,
		Retry:   retry.Policy{MaxRetries: 0, BaseDelay: time.Millisecond},
	}, logger)
}

// serve starts a server that answers every request with body.
func serve(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
}
