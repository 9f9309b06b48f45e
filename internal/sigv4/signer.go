package sigv4

import (
	"crypto/hmac"
	"encoding/hex"
	"strings"
	"time"

	"github.com/minio/sha256-simd"
)

const (
	// TimeFormat is the x-amz-date timestamp layout (UTC).
	TimeFormat = "20060102T150405Z"

	// dateFormat is the calendar-day portion used in the credential scope.
	dateFormat = "20060102"

	requestSuffix = "aws4_request"
)

// Signer produces Authorization header values for a fixed signing scope.
// Region and service bound the validity of derived keys; the date component
// comes from the per-request timestamp.
type Signer struct {
	Region  string
	Service string
}

// NewSigner returns a Signer for the given region and service.
func NewSigner(region, service string) *Signer {
	return &Signer{Region: region, Service: service}
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// deriveKey chains keyed hashes to produce the signing key for one scope.
// A key derived for one date must never be used for another.
func (s *Signer) deriveKey(secretKey, date string) []byte {
	k := hmacSHA256([]byte("AWS4"+secretKey), []byte(date))
	k = hmacSHA256(k, []byte(s.Region))
	k = hmacSHA256(k, []byte(s.Service))
	return hmacSHA256(k, []byte(requestSuffix))
}

// scope renders the credential scope for the given date.
func (s *Signer) scope(date string) string {
	return strings.Join([]string{date, s.Region, s.Service, requestSuffix}, "/")
}

// Sign computes the Authorization header value for a request. It is a pure
// function of its inputs: identical arguments always produce identical
// output. The timestamp is supplied by the caller and must be the same one
// sent in the x-amz-date header.
func (s *Signer) Sign(
	accessKeyID, secretKey string,
	t time.Time,
	method, path string,
	query, headers map[string]string,
	payloadHash string,
) string {
	t = t.UTC()
	timestamp := t.Format(TimeFormat)
	date := t.Format(dateFormat)

	creq := CanonicalRequest(method, path, query, headers, payloadHash)
	_, signedHeaders := CanonicalHeaders(headers)

	stringToSign := strings.Join([]string{
		Algorithm,
		timestamp,
		s.scope(date),
		HashedPayload([]byte(creq)),
	}, "\n")

	key := s.deriveKey(secretKey, date)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	var b strings.Builder
	b.WriteString(Algorithm)
	b.WriteString(" Credential=")
	b.WriteString(accessKeyID)
	b.WriteByte('/')
	b.WriteString(s.scope(date))
	b.WriteString(",SignedHeaders=")
	b.WriteString(signedHeaders)
	b.WriteString(",Signature=")
	b.WriteString(signature)
	return b.String()
}
