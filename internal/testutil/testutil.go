// Package testutil provides test utilities and HTTP stubs for COS
// operations. This package is internal and should only be used for testing
// within the module.
package testutil

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// RoundTripperFunc adapts a function to http.RoundTripper, letting tests
// inject arbitrary responses through a standard *http.Client.
type RoundTripperFunc func(req *http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// RecordedRequest captures one request seen by a Recorder, with the body
// already drained so assertions do not race the transport.
type RecordedRequest struct {
	Method string
	URL    string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

// Recorder is an http.RoundTripper that records every request and replies
// from a script of responses, one per request in order. When the script is
// exhausted it keeps replying with the final entry.
type Recorder struct {
	mu       sync.Mutex
	requests []RecordedRequest
	script   []Response
	calls    int
}

// Response is one scripted reply.
type Response struct {
	Status int
	Body   string
	Header http.Header
	Err    error
}

// NewRecorder builds a Recorder replying with the given script. An empty
// script replies 200 with an empty body.
func NewRecorder(script ...Response) *Recorder {
	if len(script) == 0 {
		script = []Response{{Status: http.StatusOK}}
	}
	return &Recorder{script: script}
}

// Client wraps the recorder in an *http.Client.
func (r *Recorder) Client() *http.Client {
	return &http.Client{Transport: r}
}

// RoundTrip implements http.RoundTripper.
func (r *Recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	query := make(map[string]string)
	for k, v := range req.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	r.mu.Lock()
	r.requests = append(r.requests, RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Path:   req.URL.Path,
		Query:  query,
		Header: req.Header.Clone(),
		Body:   body,
	})
	idx := r.calls
	if idx >= len(r.script) {
		idx = len(r.script) - 1
	}
	r.calls++
	resp := r.script[idx]
	r.mu.Unlock()

	if resp.Err != nil {
		return nil, resp.Err
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := resp.Header
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(resp.Body))),
		Request:    req,
	}, nil
}

// Requests returns the requests recorded so far.
func (r *Recorder) Requests() []RecordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// ListBucketResultXML renders a ListBucketResult page for the given keys,
// with an optional continuation token.
func ListBucketResultXML(token string, keys ...string) string {
	var b bytes.Buffer
	b.WriteString(`<ListBucketResult><Name>test-bucket</Name>`)
	fmt.Fprintf(&b, "<KeyCount>%d</KeyCount><MaxKeys>1000</MaxKeys>", len(keys))
	for i, k := range keys {
		fmt.Fprintf(&b,
			"<Contents><Key>%s</Key><LastModified>%s</LastModified><ETag>&quot;etag-%d&quot;</ETag><Size>%d</Size><StorageClass>STANDARD</StorageClass></Contents>",
			k, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339), i+1, (i+1)*100)
	}
	if token != "" {
		fmt.Fprintf(&b, "<IsTruncated>true</IsTruncated><NextContinuationToken>%s</NextContinuationToken>", token)
	} else {
		b.WriteString("<IsTruncated>false</IsTruncated>")
	}
	b.WriteString("</ListBucketResult>")
	return b.String()
}

// InitiateUploadXML renders an InitiateMultipartUploadResult body.
func InitiateUploadXML(bucket, key, uploadID string) string {
	return fmt.Sprintf(
		"<InitiateMultipartUploadResult><Bucket>%s</Bucket><Key>%s</Key><UploadId>%s</UploadId></InitiateMultipartUploadResult>",
		bucket, key, uploadID)
}

// ETagHeader builds a response header carrying an ETag.
func ETagHeader(etag string) http.Header {
	h := make(http.Header)
	h.Set("ETag", etag)
	return h
}

// GenerateRandomData returns size bytes of random content.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	_, _ = rand.Read(data)
	return data
}
