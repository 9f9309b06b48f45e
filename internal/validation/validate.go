// Package validation provides centralized input validation logic.
// Bucket names and object keys are checked client-side before a request is
// signed, so malformed input never reaches the wire.
package validation

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/coslib/cos/errors"
)

// ValidateBucketName validates that a bucket name is DNS-compliant.
// Returns ErrInvalidBucketName if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return bucketErr(bucket, "bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return bucketErr(bucket, "bucket name must be between 3 and 63 characters long")
	}
	for _, c := range bucket {
		if !isValidBucketChar(c) {
			return bucketErr(bucket, "bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}
	if bucket[0] == '-' || bucket[0] == '.' || bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return bucketErr(bucket, "bucket name cannot start or end with a hyphen or dot")
	}
	if isIPAddress(bucket) {
		return bucketErr(bucket, "bucket name cannot be formatted as an IP address")
	}
	if hasAdjacentSpecialChars(bucket) {
		return bucketErr(bucket, "bucket name cannot contain two adjacent periods or hyphens")
	}
	return nil
}

// ValidateObjectKey validates that an object key is acceptable. This
// includes rejecting path traversal sequences and control characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return keyErr(key, "object key cannot be empty")
	}
	if len(key) > 1024 {
		return keyErr(key, "object key cannot exceed 1024 bytes")
	}
	if hasPathTraversal(key) {
		return keyErr(key, "object key cannot contain path traversal sequences")
	}
	if hasControlCharacters(key) {
		return keyErr(key, "object key cannot contain control characters")
	}
	return nil
}

func bucketErr(bucket, msg string) error {
	return errors.New("validateBucketName", errors.KindInput, errors.ErrInvalidBucketName).
		WithBucket(bucket).
		WithMessage(msg)
}

func keyErr(key, msg string) error {
	return errors.New("validateObjectKey", errors.KindInput, errors.ErrInvalidObjectKey).
		WithKey(key).
		WithMessage(msg)
}

func isValidBucketChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || c == '.' || c == '-'
}

func hasAdjacentSpecialChars(bucket string) bool {
	for i := 0; i < len(bucket)-1; i++ {
		if (bucket[i] == '.' && bucket[i+1] == '.') || (bucket[i] == '-' && bucket[i+1] == '-') {
			return true
		}
	}
	return false
}

func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return true
		}
		num := 0
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
			num = num*10 + int(c-'0')
		}
		if num > 255 {
			return false
		}
	}
	return true
}

func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}
	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || strings.HasPrefix(cleaned, "/") {
		return true
	}
	return false
}

func hasControlCharacters(key string) bool {
	for _, c := range key {
		if unicode.IsControl(c) {
			return true
		}
	}
	return false
}
