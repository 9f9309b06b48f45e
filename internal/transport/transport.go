// Package transport issues HTTP requests for the COS client.
//
// Requests are described by a structured Request value rather than an ad hoc
// URL string. The signer canonicalizes exactly the same method, path, query
// and header view that is sent on the wire, so the two can never drift apart.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	coserrors "github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/sigv4"
)

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// inject stubs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do implements Doer.
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Request is the structured description of one outgoing request. Path must
// be pre-encoded and begin with '/'. The Headers map holds exactly the
// headers covered by the signature; additional unsigned headers (such as
// Authorization itself) go in Unsigned.
type Request struct {
	Method string
	Scheme string
	Host   string
	Path   string
	Query  map[string]string

	// Headers are included in the canonical request when signing.
	Headers map[string]string

	// Unsigned headers are sent but never canonicalized.
	Unsigned map[string]string

	Body          io.Reader
	ContentLength int64
}

// SetHeader records a signed header on the request.
func (r *Request) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[name] = value
}

// SetUnsigned records a header that is sent but not signed.
func (r *Request) SetUnsigned(name, value string) {
	if r.Unsigned == nil {
		r.Unsigned = make(map[string]string)
	}
	r.Unsigned[name] = value
}

// URL renders the request URL. The query component uses the canonical
// encoding, keeping the wire form identical to the signed form.
func (r *Request) URL() string {
	u := url.URL{
		Scheme:   r.Scheme,
		Host:     r.Host,
		RawPath:  r.Path,
		Path:     mustPathUnescape(r.Path),
		RawQuery: sigv4.CanonicalQueryString(r.Query),
	}
	return u.String()
}

func mustPathUnescape(p string) string {
	s, err := url.PathUnescape(p)
	if err != nil {
		return p
	}
	return s
}

// build converts the Request into an *http.Request.
func (r *Request) build(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL(), r.Body)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Headers {
		// net/http derives Host from the URL; the "host" entry exists only
		// for the canonical view.
		if k == "host" || k == "Host" {
			continue
		}
		req.Header.Set(k, v)
	}
	for k, v := range r.Unsigned {
		req.Header.Set(k, v)
	}
	if r.ContentLength > 0 {
		req.ContentLength = r.ContentLength
	}
	return req, nil
}

// Client executes structured requests against a Doer and converts failures
// into the module's typed errors.
type Client struct {
	doer Doer
}

// New returns a Client using the given Doer.
func New(doer Doer) *Client {
	return &Client{doer: doer}
}

// maxErrorBody bounds how much of an error response body is retained.
const maxErrorBody = 64 * 1024

// Do executes the request. Network failures become transport-kind errors;
// non-2xx responses become api-kind errors carrying the status code and the
// verbatim response body. On success the caller owns the response body.
func (c *Client) Do(ctx context.Context, op string, r *Request) (*http.Response, error) {
	req, err := r.build(ctx)
	if err != nil {
		return nil, coserrors.New(op, coserrors.KindInput, err)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, coserrors.New(op, coserrors.KindTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, coserrors.NewAPI(op, resp.StatusCode, string(body))
	}

	return resp, nil
}

// DefaultHTTPClient builds the pooled http.Client used when the caller does
// not inject one. Connection reuse is a transport concern, owned here rather
// than shared process-wide.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
