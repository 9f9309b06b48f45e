// Package wire defines the XML request and response schemas spoken by
// S3-compatible object storage services.
package wire

import (
	"encoding/xml"
	"io"
	"time"

	coserrors "github.com/coslib/cos/errors"
)

// ListBucketResult is the response body of a ListObjectsV2 call
// (GET /?list-type=2). An empty bucket produces no Contents elements,
// which decodes to an empty slice; that is an expected condition, not
// a malformed response.
type ListBucketResult struct {
	XMLName               xml.Name      `xml:"ListBucketResult"`
	Name                  string        `xml:"Name"`
	Prefix                string        `xml:"Prefix,omitempty"`
	StartAfter            string        `xml:"StartAfter,omitempty"`
	KeyCount              int           `xml:"KeyCount"`
	MaxKeys               int           `xml:"MaxKeys"`
	IsTruncated           bool          `xml:"IsTruncated"`
	Contents              []ObjectEntry `xml:"Contents"`
	NextContinuationToken string        `xml:"NextContinuationToken,omitempty"`
}

// ObjectEntry is one object descriptor within a listing page.
type ObjectEntry struct {
	Key          string    `xml:"Key"`
	LastModified time.Time `xml:"LastModified"`
	ETag         string    `xml:"ETag"`
	Size         int64     `xml:"Size"`
	StorageClass string    `xml:"StorageClass"`
}

// ListAllMyBucketsResult is the response body of a ListBuckets call (GET /).
type ListAllMyBucketsResult struct {
	XMLName xml.Name `xml:"ListAllMyBucketsResult"`
	Owner   Owner    `xml:"Owner"`
	Buckets struct {
		Bucket []BucketEntry `xml:"Bucket"`
	} `xml:"Buckets"`
}

// Owner identifies the account owning the listed buckets.
type Owner struct {
	ID          string `xml:"ID"`
	DisplayName string `xml:"DisplayName"`
}

// BucketEntry is one bucket within a ListAllMyBucketsResult.
type BucketEntry struct {
	Name         string    `xml:"Name"`
	CreationDate time.Time `xml:"CreationDate"`
}

// InitiateMultipartUploadResult is the response body of
// POST /{key}?uploads. UploadID is an opaque server-issued token.
type InitiateMultipartUploadResult struct {
	XMLName  xml.Name `xml:"InitiateMultipartUploadResult"`
	Bucket   string   `xml:"Bucket"`
	Key      string   `xml:"Key"`
	UploadID string   `xml:"UploadId"`
}

// CompleteMultipartUpload is the request body of POST /{key}?uploadId=...:
// the full ordered list of uploaded parts.
type CompleteMultipartUpload struct {
	XMLName xml.Name        `xml:"CompleteMultipartUpload"`
	Parts   []CompletedPart `xml:"Part"`
}

// CompletedPart pairs a part number with the ETag the server returned
// for that part, both echoed back verbatim on completion.
type CompletedPart struct {
	ETag       string `xml:"ETag"`
	PartNumber int    `xml:"PartNumber"`
}

// CompleteMultipartUploadResult is the response body of a successful
// completion call.
type CompleteMultipartUploadResult struct {
	XMLName  xml.Name `xml:"CompleteMultipartUploadResult"`
	Location string   `xml:"Location"`
	Bucket   string   `xml:"Bucket"`
	Key      string   `xml:"Key"`
	ETag     string   `xml:"ETag"`
}

// Delete is the request body of a batch delete (POST /?delete).
type Delete struct {
	XMLName xml.Name           `xml:"Delete"`
	Quiet   bool               `xml:"Quiet"`
	Objects []ObjectIdentifier `xml:"Object"`
}

// ObjectIdentifier names one key in a batch delete request.
type ObjectIdentifier struct {
	Key string `xml:"Key"`
}

// DeleteResult is the response body of a batch delete.
type DeleteResult struct {
	XMLName xml.Name        `xml:"DeleteResult"`
	Deleted []DeletedObject `xml:"Deleted"`
	Errors  []DeleteError   `xml:"Error"`
}

// DeletedObject reports one successfully deleted key.
type DeletedObject struct {
	Key string `xml:"Key"`
}

// DeleteError reports one key that could not be deleted.
type DeleteError struct {
	Key     string `xml:"Key"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// Decode unmarshals an XML response body into v, classifying failures as
// decode errors tagged with the calling operation.
func Decode(op string, r io.Reader, v any) error {
	if err := xml.NewDecoder(r).Decode(v); err != nil {
		return coserrors.New(op, coserrors.KindDecode, err)
	}
	return nil
}

// Encode marshals an XML request body.
func Encode(v any) ([]byte, error) {
	return xml.Marshal(v)
}
