package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coserrors "github.com/coslib/cos/errors"
)

func TestRequest_URL(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "simple",
			req: Request{
				Scheme: "https",
				Host:   "bucket.s3.example.com",
				Path:   "/file.txt",
			},
			want: "https://bucket.s3.example.com/file.txt",
		},
		{
			name: "query uses canonical ordering",
			req: Request{
				Scheme: "https",
				Host:   "s3.example.com",
				Path:   "/bucket",
				Query:  map[string]string{"z": "1", "a": "2"},
			},
			want: "https://s3.example.com/bucket?a=2&z=1",
		},
		{
			name: "encoded path preserved",
			req: Request{
				Scheme: "https",
				Host:   "s3.example.com",
				Path:   "/bucket/a%20b.txt",
			},
			want: "https://s3.example.com/bucket/a%20b.txt",
		},
		{
			name: "http scheme",
			req: Request{
				Scheme: "http",
				Host:   "localhost:9000",
				Path:   "/bucket/key",
			},
			want: "http://localhost:9000/bucket/key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.URL())
		})
	}
}

func TestClient_Do_Success(t *testing.T) {
	var seen *http.Request
	client := New(DoerFunc(func(req *http.Request) (*http.Response, error) {
		seen = req
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte("ok"))),
		}, nil
	}))

	req := &Request{
		Method: http.MethodGet,
		Scheme: "https",
		Host:   "s3.example.com",
		Path:   "/bucket/key",
	}
	req.SetHeader("host", "s3.example.com")
	req.SetHeader("x-amz-date", "20240601T120000Z")
	req.SetUnsigned("Authorization", "Bearer tok")

	resp, err := client.Do(context.Background(), "getObject", req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// The host entry feeds canonicalization only; net/http owns the real
	// Host field.
	assert.Empty(t, seen.Header.Get("host"))
	assert.Equal(t, "s3.example.com", seen.Host)
	assert.Equal(t, "20240601T120000Z", seen.Header.Get("x-amz-date"))
	assert.Equal(t, "Bearer tok", seen.Header.Get("Authorization"))
}

func TestClient_Do_TransportError(t *testing.T) {
	netErr := errors.New("connection refused")
	client := New(DoerFunc(func(*http.Request) (*http.Response, error) {
		return nil, netErr
	}))

	_, err := client.Do(context.Background(), "getObject", &Request{
		Method: http.MethodGet, Scheme: "https", Host: "h", Path: "/",
	})
	require.Error(t, err)
	assert.True(t, coserrors.IsTransport(err))
	assert.ErrorIs(t, err, netErr)
}

func TestClient_Do_APIError(t *testing.T) {
	client := New(DoerFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(bytes.NewReader([]byte("<Error>denied</Error>"))),
		}, nil
	}))

	_, err := client.Do(context.Background(), "putObject", &Request{
		Method: http.MethodPut, Scheme: "https", Host: "h", Path: "/",
	})
	require.Error(t, err)
	assert.True(t, coserrors.IsAPIStatus(err, http.StatusForbidden))

	var e *coserrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "<Error>denied</Error>", e.Body)
	assert.Contains(t, e.Error(), "denied")
}
