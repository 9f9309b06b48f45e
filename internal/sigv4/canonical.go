// Package sigv4 implements AWS Signature Version 4 request signing for
// S3-compatible object storage.
//
// Signing happens in two stages: the request is first reduced to a
// deterministic canonical string (this file), then a signing key scoped to
// (date, region, service) is derived and applied (signer.go).
package sigv4

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/minio/sha256-simd"
)

const (
	// Algorithm is the signing algorithm identifier embedded in the
	// string to sign and the Authorization header.
	Algorithm = "AWS4-HMAC-SHA256"

	// UnsignedPayload is the sentinel payload hash for requests whose
	// body is not covered by the signature (streaming uploads).
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// EmptyPayloadHash is hex(sha256("")), the payload hash of a request
	// with no body.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// HashedPayload returns the hex-encoded SHA-256 digest of b.
func HashedPayload(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// uriEncode percent-encodes s per RFC 3986: unreserved characters
// (A-Z a-z 0-9 - _ . ~) pass through, everything else becomes %XX.
func uriEncode(s string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		}
	}
	return b.String()
}

// EncodePath percent-encodes an object key or path for use in a request
// URI. Each '/'-separated segment is encoded independently; the separators
// themselves pass through.
func EncodePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = uriEncode(s)
	}
	return strings.Join(segments, "/")
}

// CanonicalURI returns the canonical form of the request path. Callers
// supply pre-encoded paths; no further normalization is applied.
func CanonicalURI(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

// CanonicalQueryString renders query parameters sorted lexicographically
// by key, each key and value percent-encoded, joined as key=value pairs
// with '&'. The sort is applied unconditionally regardless of how many
// parameters are present.
func CanonicalQueryString(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, uriEncode(k)+"="+uriEncode(params[k]))
	}
	return strings.Join(pairs, "&")
}

// CanonicalHeaders renders the header block and the matching signed-header
// list. Header names are lower-cased and sorted; each line is
// "name:value\n" with values used verbatim. The returned signed-header
// names are joined with ';' and cover exactly the headers in the block.
func CanonicalHeaders(headers map[string]string) (block string, signedHeaders string) {
	names := make([]string, 0, len(headers))
	lower := make(map[string]string, len(headers))
	for k, v := range headers {
		lk := strings.ToLower(k)
		names = append(names, lk)
		lower[lk] = v
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte(':')
		b.WriteString(lower[n])
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(names, ";")
}

// CanonicalRequest assembles the full canonical request string:
//
//	METHOD
//	CanonicalURI
//	CanonicalQueryString
//	CanonicalHeaders
//	SignedHeaders
//	HashedPayload
//
// The result is fully determined by its inputs.
func CanonicalRequest(method, path string, query, headers map[string]string, payloadHash string) string {
	cheaders, signed := CanonicalHeaders(headers)
	return strings.Join([]string{
		method,
		CanonicalURI(path),
		CanonicalQueryString(query),
		cheaders,
		signed,
		payloadHash,
	}, "\n")
}
