// Package errors provides error types and handling for COS operations.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. The set is closed: every error
// produced by this module falls into exactly one of these categories.
type Kind int

const (
	// KindTransport covers network and connection failures where no HTTP
	// response was received.
	KindTransport Kind = iota

	// KindAPI covers non-2xx HTTP responses, including authentication
	// failures. The status code and raw response body are preserved.
	KindAPI

	// KindDecode covers malformed or unexpected response bodies.
	KindDecode

	// KindProtocol covers client-side sequencing violations, such as
	// completing a multipart upload session that was already finalized.
	KindProtocol

	// KindInput covers invalid caller-supplied arguments.
	KindInput
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindDecode:
		return "decode"
	case KindProtocol:
		return "protocol"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// Error represents a COS operation error with context about the operation
// that failed. API failures carry the HTTP status code and the verbatim
// response body so they can be diagnosed without re-running with verbose
// logging.
type Error struct {
	// Op is the operation that failed (e.g., "putObject", "completeMultipartUpload")
	Op string

	// Kind classifies the failure
	Kind Kind

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// StatusCode is the HTTP status code for KindAPI errors, zero otherwise
	StatusCode int

	// Body is the raw response body for KindAPI errors
	Body string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	target := ""
	switch {
	case e.Bucket != "" && e.Key != "":
		target = " " + e.Bucket + "/" + e.Key
	case e.Bucket != "":
		target = " bucket " + e.Bucket
	case e.Key != "":
		target = " object " + e.Key
	}

	if e.Kind == KindAPI {
		return fmt.Sprintf("cos.%s%s: status=%d body=%q", e.Op, target, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("cos.%s%s: %s: %v", e.Op, target, e.Kind, e.Err)
	}
	return fmt.Sprintf("cos.%s%s: %s error", e.Op, target, e.Kind)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	if e.Err != nil {
		e.Err = fmt.Errorf("%s: %w", message, e.Err)
	} else {
		e.Err = errors.New(message)
	}
	return e
}

// New creates a new Error with the given operation, kind and underlying error.
func New(op string, kind Kind, err error) *Error {
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// NewAPI creates a KindAPI Error carrying the response status and body.
func NewAPI(op string, statusCode int, body string) *Error {
	return &Error{
		Op:         op,
		Kind:       KindAPI,
		StatusCode: statusCode,
		Body:       body,
	}
}

// Sentinel errors for common failure conditions. These can be used with
// errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("cos: invalid input")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("cos: invalid object key")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("cos: invalid bucket name")

	// ErrUploadFinalized indicates that a multipart upload session was
	// referenced after it was completed or aborted
	ErrUploadFinalized = errors.New("cos: multipart upload already finalized")

	// ErrNoCredentials indicates the client has no usable auth configuration
	ErrNoCredentials = errors.New("cos: no token provider or credentials configured")
)

// KindOf returns the Kind of err if it is (or wraps) an *Error, and a flag
// reporting whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsAPIStatus reports whether err is a KindAPI error with the given HTTP status.
func IsAPIStatus(err error, status int) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindAPI && e.StatusCode == status
	}
	return false
}

// IsProtocol reports whether err represents a client-side sequencing violation.
func IsProtocol(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindProtocol
}

// IsTransport reports whether err represents a network-level failure.
func IsTransport(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTransport
}
