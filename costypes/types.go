// Package costypes provides shared type definitions for the COS module.
package costypes

import (
	"context"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"
)

// Object represents a stored object with its basic metadata, as reported
// by bucket listings.
type Object struct {
	// Key is the object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object, kept verbatim including quotes
	ETag string

	// StorageClass is the storage class reported by the server
	StorageClass string
}

// Bucket represents a bucket owned by the service instance.
type Bucket struct {
	// Name is the bucket name
	Name string

	// CreationDate is when the bucket was created
	CreationDate time.Time
}

// ListPage is one page of a bucket listing.
type ListPage struct {
	// Objects holds the page contents in server order
	Objects []Object

	// KeyCount is the number of keys in this page
	KeyCount int

	// MaxKeys is the page size limit the server applied
	MaxKeys int

	// NextContinuationToken is the opaque cursor for the next page,
	// empty when the listing is exhausted
	NextContinuationToken string
}

// Part identifies one uploaded chunk of a multipart upload: its 1-based
// sequence number and the entity tag the server returned for it.
type Part struct {
	PartNumber int
	ETag       string
}

// Credentials is an access key id / secret key pair for signature-based
// authentication.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// TokenProvider supplies bearer tokens for token-authenticated requests.
// It is called once per request; caching and refresh are the provider's
// own responsibility, and implementations must be safe for concurrent use.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// CredentialsProvider supplies access keys for signature-based requests.
// Like TokenProvider, it is consulted once per request.
type CredentialsProvider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// StaticTokenProvider is a TokenProvider returning a fixed token.
type StaticTokenProvider string

// Token implements TokenProvider.
func (s StaticTokenProvider) Token(context.Context) (string, error) {
	return string(s), nil
}

// StaticCredentials is a CredentialsProvider returning fixed keys.
type StaticCredentials Credentials

// Retrieve implements CredentialsProvider.
func (s StaticCredentials) Retrieve(context.Context) (Credentials, error) {
	return Credentials(s), nil
}

// ClientConfig holds the configuration applied by client options.
type ClientConfig struct {
	// Endpoint is the service host, e.g. "s3.us.cloud-object-storage.example.com"
	Endpoint string

	// Region is the signing region (signature-based auth only)
	Region string

	// ServiceInstanceID is sent as ibm-service-instance-id on ListBuckets
	// (token-authenticated deployments require it)
	ServiceInstanceID string

	// Tokens enables bearer-token authentication when set
	Tokens TokenProvider

	// Credentials enables signature-based authentication when set
	Credentials CredentialsProvider

	// HTTPClient overrides the default pooled transport
	HTTPClient *http.Client

	// Timeout applies to the default transport when HTTPClient is unset
	Timeout time.Duration

	// PartSize is the multipart chunk size in bytes
	PartSize int64

	// Concurrency bounds in-flight part uploads; 1 means serial
	Concurrency int

	// ForcePathStyle selects https://{endpoint}/{bucket}/{key} addressing
	// even in token mode
	ForcePathStyle bool

	// DisableSSL switches the URL scheme to plain http (local testing)
	DisableSSL bool

	// Filesystem backs the file-based convenience operations
	Filesystem fs.Filesystem

	// Logger receives diagnostic events; disabled when nil
	Logger *zerolog.Logger
}

// Option configures a Client.
type Option func(*ClientConfig)

// ListConfig holds configuration for listing operations. Prefix and
// StartAfter are fixed for the lifetime of an iterator.
type ListConfig struct {
	Prefix            string
	StartAfter        string
	ContinuationToken string
	MaxKeys           int
}

// ListOption configures a listing operation.
type ListOption func(*ListConfig)

// PutConfig holds configuration for upload operations.
type PutConfig struct {
	ContentType string
	PartSize    int64
	Concurrency int
}

// PutOption configures an upload operation.
type PutOption func(*PutConfig)
