// Package cos provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package cos

import (
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"

	"github.com/coslib/cos/costypes"
)

// WithEndpoint sets the service endpoint host, e.g.
// "s3.us.cloud-object-storage.example.com". Required.
func WithEndpoint(endpoint string) Option {
	return func(c *costypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithTokenProvider enables bearer-token authentication. Requests are
// addressed virtual-hosted style unless WithForcePathStyle is also set.
func WithTokenProvider(p TokenProvider) Option {
	return func(c *costypes.ClientConfig) {
		c.Tokens = p
	}
}

// WithCredentials enables Signature Version 4 authentication with the given
// access key provider. Requests are addressed path-style.
func WithCredentials(p CredentialsProvider) Option {
	return func(c *costypes.ClientConfig) {
		c.Credentials = p
	}
}

// WithRegion sets the signing region for access-key authentication.
// Default is "us-standard".
func WithRegion(region string) Option {
	return func(c *costypes.ClientConfig) {
		if region != "" {
			c.Region = region
		}
	}
}

// WithServiceInstanceID sets the service instance identifier sent with
// account-level operations such as ListBuckets.
func WithServiceInstanceID(id string) Option {
	return func(c *costypes.ClientConfig) {
		c.ServiceInstanceID = id
	}
}

// WithHTTPClient overrides the default pooled HTTP transport. Use this to
// supply custom TLS settings or an instrumented client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *costypes.ClientConfig) {
		c.HTTPClient = client
	}
}

// WithTimeout sets the per-request timeout applied by the default
// transport. Ignored when WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(c *costypes.ClientConfig) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithPartSize sets the default multipart chunk size in bytes.
// Default is 5MB, which is also the service minimum for non-final parts.
func WithPartSize(partSize int64) Option {
	return func(c *costypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithConcurrency sets the default number of part uploads in flight during
// multipart transfers. Default is 1 (serial).
func WithConcurrency(concurrency int) Option {
	return func(c *costypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithForcePathStyle forces path-style URLs ({endpoint}/{bucket}/{key})
// in token mode. Access-key mode always uses path-style addressing.
func WithForcePathStyle(force bool) Option {
	return func(c *costypes.ClientConfig) {
		c.ForcePathStyle = force
	}
}

// WithDisableSSL switches requests to plain HTTP. Only for local testing.
func WithDisableSSL(disable bool) Option {
	return func(c *costypes.ClientConfig) {
		c.DisableSSL = disable
	}
}

// WithFilesystem sets the filesystem abstraction backing UploadFile and
// DownloadFile. Default is the OS filesystem; tests use an in-memory one.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(c *costypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger for diagnostic events. Logging is disabled
// when no logger is configured.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *costypes.ClientConfig) {
		c.Logger = &logger
	}
}

// WithPrefix restricts a listing to keys beginning with prefix. Fixed for
// the lifetime of an iterator.
func WithPrefix(prefix string) ListOption {
	return func(c *costypes.ListConfig) {
		c.Prefix = prefix
	}
}

// WithStartAfter starts a listing strictly after the given key.
func WithStartAfter(key string) ListOption {
	return func(c *costypes.ListConfig) {
		c.StartAfter = key
	}
}

// WithContinuationToken resumes a listing from a server-issued cursor.
func WithContinuationToken(token string) ListOption {
	return func(c *costypes.ListConfig) {
		c.ContinuationToken = token
	}
}

// WithMaxKeys caps the number of keys per page (1-1000).
func WithMaxKeys(n int) ListOption {
	return func(c *costypes.ListConfig) {
		if n > 0 {
			c.MaxKeys = n
		}
	}
}

// WithContentType sets the Content-Type for an upload, bypassing detection.
func WithContentType(contentType string) PutOption {
	return func(c *costypes.PutConfig) {
		c.ContentType = contentType
	}
}

// WithUploadPartSize overrides the client part size for one upload.
func WithUploadPartSize(partSize int64) PutOption {
	return func(c *costypes.PutConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithUploadConcurrency overrides the client concurrency for one upload.
func WithUploadConcurrency(concurrency int) PutOption {
	return func(c *costypes.PutConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}
