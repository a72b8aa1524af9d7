package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrMalformedBody is wrapped by a ConnectionError when a successful response
// cannot be decoded as a GraphQL envelope.
var ErrMalformedBody = errors.New("malformed response body")

// ConnectionError is the only failure Transport.Do returns. It covers DNS,
// TCP/TLS, timeouts, cancelled waits and undecodable 2xx bodies.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Response is a completed HTTP exchange. Non-2xx statuses are reported here,
// not as errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Envelope   Envelope
	// Raw holds the body when it was not JSON (only possible for non-2xx).
	Raw        string
	ReceivedAt time.Time
}

// Transport performs single GraphQL POSTs. It never retries and never caches.
type Transport struct {
	Endpoint   string
	Token      string
	UserAgent  string
	HTTPClient *http.Client

	limiter *rate.Limiter
	now     func() time.Time
}

// NewTransport creates a transport with the default endpoint and timeout.
func NewTransport(token string) *Transport {
	return &Transport{
		Endpoint:  DefaultAPIEndpoint,
		Token:     token,
		UserAgent: "linear-cli",
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		now: time.Now,
	}
}

// WithEndpoint returns a copy of the transport posting to endpoint.
func (t *Transport) WithEndpoint(endpoint string) *Transport {
	c := *t
	c.Endpoint = endpoint
	return &c
}

// WithHTTPClient returns a copy of the transport using httpClient.
func (t *Transport) WithHTTPClient(httpClient *http.Client) *Transport {
	c := *t
	c.HTTPClient = httpClient
	return &c
}

// WithTimeout returns a copy of the transport with a per-request timeout.
func (t *Transport) WithTimeout(d time.Duration) *Transport {
	if d <= 0 {
		return t
	}
	c := *t
	hc := *t.HTTPClient
	hc.Timeout = d
	c.HTTPClient = &hc
	return &c
}

// WithRateLimit returns a copy of the transport that paces outgoing requests
// to rps per second. Zero disables pacing.
func (t *Transport) WithRateLimit(rps float64) *Transport {
	c := *t
	if rps <= 0 {
		c.limiter = nil
		return &c
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return &c
}

// Do sends one request and returns the parsed response.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ConnectionError{Op: "marshal request", Err: err}
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &ConnectionError{Op: "rate limit wait", Err: err}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ConnectionError{Op: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", t.Token)
	if t.UserAgent != "" {
		httpReq.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{Op: "request failed", Err: err}
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if err != nil {
		return nil, &ConnectionError{Op: "read response", Err: err}
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		ReceivedAt: t.clock(),
	}

	if err := json.Unmarshal(respBody, &out.Envelope); err != nil {
		if isSuccess(resp.StatusCode) {
			return nil, &ConnectionError{
				Op:  "parse response",
				Err: fmt.Errorf("%w: %v (status %d)", ErrMalformedBody, err, resp.StatusCode),
			}
		}
		out.Envelope = Envelope{}
		out.Raw = string(respBody)
	}
	return out, nil
}

func (t *Transport) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
