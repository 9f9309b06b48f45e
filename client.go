// Package cos provides client initialization and configuration.
package cos

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/rs/zerolog"

	"github.com/coslib/cos/costypes"
	"github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/sigv4"
	"github.com/coslib/cos/internal/transport"
)

// Re-exported types so most callers only import this package.
type (
	// Option configures a Client.
	Option = costypes.Option

	// ListOption configures a listing operation.
	ListOption = costypes.ListOption

	// PutOption configures an upload operation.
	PutOption = costypes.PutOption

	// Object is an object descriptor as reported by bucket listings.
	Object = costypes.Object

	// Bucket is a bucket owned by the service instance.
	Bucket = costypes.Bucket

	// ListPage is one page of a bucket listing.
	ListPage = costypes.ListPage

	// Part identifies one uploaded chunk of a multipart upload.
	Part = costypes.Part

	// Credentials is an access key pair for signature-based authentication.
	Credentials = costypes.Credentials

	// TokenProvider supplies bearer tokens, one call per request.
	TokenProvider = costypes.TokenProvider

	// CredentialsProvider supplies access keys, one call per request.
	CredentialsProvider = costypes.CredentialsProvider

	// StaticTokenProvider is a TokenProvider returning a fixed token.
	StaticTokenProvider = costypes.StaticTokenProvider

	// StaticCredentials is a CredentialsProvider returning fixed keys.
	StaticCredentials = costypes.StaticCredentials
)

const (
	// DefaultRegion is the signing region used when none is configured.
	DefaultRegion = "us-standard"

	// DefaultContentType is used when content type detection fails.
	DefaultContentType = "application/octet-stream"

	// defaultTimeout bounds requests on the default transport.
	defaultTimeout = 5 * time.Minute
)

// signingService is the service literal in the credential scope.
const signingService = "s3"

// Client is a COS client. It is safe for concurrent use; all mutable
// per-operation state lives in the values it returns.
type Client struct {
	cfg costypes.ClientConfig

	// transport executes structured requests
	transport *transport.Client

	// signer is set only in access-key mode
	signer *sigv4.Signer

	// fs backs the file-based convenience operations
	fs fs.Filesystem

	log zerolog.Logger

	// now supplies signing timestamps; replaced in tests
	now func() time.Time
}

// New creates a COS client from the provided options. An endpoint and
// exactly one authentication source (token provider or credentials) are
// required.
//
// Example:
//
//	client, err := cos.New(
//	    cos.WithEndpoint("s3.us.cloud-object-storage.example.com"),
//	    cos.WithCredentials(cos.StaticCredentials{
//	        AccessKeyID:     id,
//	        SecretAccessKey: secret,
//	    }),
//	)
func New(opts ...Option) (*Client, error) {
	cfg := costypes.ClientConfig{
		Region:      DefaultRegion,
		Timeout:     defaultTimeout,
		Concurrency: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	const op = "New"
	if cfg.Endpoint == "" {
		return nil, errors.New(op, errors.KindInput, errors.ErrInvalidInput).
			WithMessage("endpoint is required")
	}
	if cfg.Tokens == nil && cfg.Credentials == nil {
		return nil, errors.New(op, errors.KindInput, errors.ErrNoCredentials)
	}
	if cfg.Tokens != nil && cfg.Credentials != nil {
		return nil, errors.New(op, errors.KindInput, errors.ErrInvalidInput).
			WithMessage("configure either a token provider or credentials, not both")
	}

	httpClient := transport.Doer(cfg.HTTPClient)
	if cfg.HTTPClient == nil {
		httpClient = transport.DefaultHTTPClient(cfg.Timeout)
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	c := &Client{
		cfg:       cfg,
		transport: transport.New(httpClient),
		fs:        filesystem,
		log:       log,
		now:       time.Now,
	}
	if cfg.Credentials != nil {
		c.signer = sigv4.NewSigner(cfg.Region, signingService)
	}
	return c, nil
}

// pathStyle reports whether requests use path-style addressing. Access-key
// mode always does; token mode can opt in.
func (c *Client) pathStyle() bool {
	return c.signer != nil || c.cfg.ForcePathStyle
}

// newRequest assembles the structured request for one operation. The key
// must be the raw (unencoded) object key; bucket may be empty for
// account-level operations.
func (c *Client) newRequest(method, bucket, key string, query map[string]string, body io.Reader, length int64) *transport.Request {
	scheme := "https"
	if c.cfg.DisableSSL {
		scheme = "http"
	}

	var host, path string
	switch {
	case bucket == "":
		host = c.cfg.Endpoint
		path = "/"
	case c.pathStyle():
		host = c.cfg.Endpoint
		path = "/" + bucket
		if key != "" {
			path += "/" + sigv4.EncodePath(key)
		}
	default:
		host = bucket + "." + c.cfg.Endpoint
		path = "/"
		if key != "" {
			path += sigv4.EncodePath(key)
		}
	}

	return &transport.Request{
		Method:        method,
		Scheme:        scheme,
		Host:          host,
		Path:          path,
		Query:         query,
		Body:          body,
		ContentLength: length,
	}
}

// authorize attaches an Authorization header to the request. In token mode
// this is a bearer token; in access-key mode the request is signed and the
// payload hash must already be decided by the caller.
func (c *Client) authorize(ctx context.Context, req *transport.Request, payloadHash string) error {
	const op = "authorize"

	if c.cfg.Tokens != nil {
		token, err := c.cfg.Tokens.Token(ctx)
		if err != nil {
			return errors.New(op, errors.KindTransport, err).
				WithMessage("token provider failed")
		}
		req.SetUnsigned("Authorization", "Bearer "+token)
		return nil
	}

	creds, err := c.cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return errors.New(op, errors.KindTransport, err).
			WithMessage("credentials provider failed")
	}

	if payloadHash == "" {
		payloadHash = sigv4.EmptyPayloadHash
	}
	t := c.now().UTC()
	req.SetHeader("host", req.Host)
	req.SetHeader("x-amz-date", t.Format(sigv4.TimeFormat))
	req.SetHeader("x-amz-content-sha256", payloadHash)

	auth := c.signer.Sign(creds.AccessKeyID, creds.SecretAccessKey, t,
		req.Method, req.Path, req.Query, req.Headers, payloadHash)
	req.SetUnsigned("Authorization", auth)
	return nil
}

// do authorizes and executes the request.
func (c *Client) do(ctx context.Context, op string, req *transport.Request, payloadHash string) (*http.Response, error) {
	if err := c.authorize(ctx, req, payloadHash); err != nil {
		return nil, err
	}

	start := c.now()
	resp, err := c.transport.Do(ctx, op, req)
	if err != nil {
		c.log.Debug().Err(err).
			Str("op", op).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("request failed")
		return nil, err
	}
	c.log.Debug().
		Str("op", op).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request complete")
	return resp, nil
}

// detectContentType sniffs the content type of data, falling back to the
// key's extension and finally to DefaultContentType.
func detectContentType(key string, data []byte) string {
	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt != nil {
			return mt.String()
		}
	}
	if ext := filepath.Ext(key); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return DefaultContentType
}
