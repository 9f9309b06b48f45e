package cos

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/coslib/cos/costypes"
	"github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/sigv4"
	"github.com/coslib/cos/internal/validation"
	"github.com/coslib/cos/internal/wire"
)

// GetObject retrieves an object's content. The caller must close the
// returned reader.
//
// Errors:
//   - ErrInvalidBucketName / ErrInvalidObjectKey: malformed input
//   - KindAPI errors carry the HTTP status and response body verbatim
func (c *Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	return c.getObject(ctx, "getObject", bucket, key, "")
}

// GetObjectRange retrieves the byte range [start, end] (inclusive, as in
// the HTTP Range header) of an object. A negative end requests everything
// from start to the end of the object.
func (c *Client) GetObjectRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	if start < 0 || (end >= 0 && end < start) {
		return nil, errors.New("getObjectRange", errors.KindInput, errors.ErrInvalidInput).
			WithBucket(bucket).WithKey(key).
			WithMessage(fmt.Sprintf("invalid byte range %d-%d", start, end))
	}
	byteRange := fmt.Sprintf("bytes=%d-", start)
	if end >= 0 {
		byteRange = fmt.Sprintf("bytes=%d-%d", start, end)
	}
	return c.getObject(ctx, "getObjectRange", bucket, key, byteRange)
}

func (c *Client) getObject(ctx context.Context, op, bucket, key, byteRange string) (io.ReadCloser, error) {
	if err := validateTarget(bucket, key); err != nil {
		return nil, err
	}

	req := c.newRequest(http.MethodGet, bucket, key, nil, nil, 0)
	if byteRange != "" {
		req.SetHeader("range", byteRange)
	}

	resp, err := c.do(ctx, op, req, "")
	if err != nil {
		return nil, decorate(err, bucket, key)
	}
	return resp.Body, nil
}

// PutObject uploads data as a single object. The content type is detected
// from the data unless WithContentType is given. For large objects prefer
// UploadMultipart, which bounds memory use by streaming fixed-size parts.
func (c *Client) PutObject(ctx context.Context, bucket, key string, data []byte, opts ...PutOption) error {
	const op = "putObject"
	if err := validateTarget(bucket, key); err != nil {
		return err
	}

	cfg := costypes.PutConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ContentType == "" {
		cfg.ContentType = detectContentType(key, data)
	}

	req := c.newRequest(http.MethodPut, bucket, key, nil, bytes.NewReader(data), int64(len(data)))
	req.SetHeader("content-type", cfg.ContentType)

	resp, err := c.do(ctx, op, req, sigv4.HashedPayload(data))
	if err != nil {
		return decorate(err, bucket, key)
	}
	return drain(resp)
}

// DeleteObject removes a single object. Deleting a key that does not exist
// is not an error; the service reports success either way.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	const op = "deleteObject"
	if err := validateTarget(bucket, key); err != nil {
		return err
	}

	req := c.newRequest(http.MethodDelete, bucket, key, nil, nil, 0)
	resp, err := c.do(ctx, op, req, "")
	if err != nil {
		return decorate(err, bucket, key)
	}
	return drain(resp)
}

// DeleteObjects removes up to 1000 objects in one request and returns the
// keys the server reported as deleted alongside per-key failures.
func (c *Client) DeleteObjects(ctx context.Context, bucket string, keys []string) ([]string, error) {
	const op = "deleteObjects"
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errors.New(op, errors.KindInput, errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("no keys to delete")
	}
	if len(keys) > 1000 {
		return nil, errors.New(op, errors.KindInput, errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("cannot delete more than 1000 keys per request")
	}

	del := wire.Delete{Quiet: false}
	for _, k := range keys {
		if err := validation.ValidateObjectKey(k); err != nil {
			return nil, err
		}
		del.Objects = append(del.Objects, wire.ObjectIdentifier{Key: k})
	}
	body, err := wire.Encode(del)
	if err != nil {
		return nil, err
	}

	sum := md5.Sum(body)
	req := c.newRequest(http.MethodPost, bucket, "", map[string]string{"delete": ""},
		bytes.NewReader(body), int64(len(body)))
	req.SetHeader("content-md5", base64.StdEncoding.EncodeToString(sum[:]))
	req.SetHeader("content-type", "application/xml")

	resp, err := c.do(ctx, op, req, sigv4.HashedPayload(body))
	if err != nil {
		return nil, decorate(err, bucket, "")
	}
	defer resp.Body.Close()

	var result wire.DeleteResult
	if err := wire.Decode(op, resp.Body, &result); err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(result.Deleted))
	for _, d := range result.Deleted {
		deleted = append(deleted, d.Key)
	}
	if len(result.Errors) > 0 {
		e := result.Errors[0]
		return deleted, errors.New(op, errors.KindAPI,
			fmt.Errorf("%d of %d deletions failed, first: %s: %s: %s",
				len(result.Errors), len(keys), e.Key, e.Code, e.Message)).
			WithBucket(bucket)
	}
	return deleted, nil
}

// Exists reports whether an object is present, using a metadata-only
// request.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	const op = "exists"
	if err := validateTarget(bucket, key); err != nil {
		return false, err
	}

	req := c.newRequest(http.MethodHead, bucket, key, nil, nil, 0)
	resp, err := c.do(ctx, op, req, "")
	if err != nil {
		if errors.IsAPIStatus(err, http.StatusNotFound) {
			return false, nil
		}
		return false, decorate(err, bucket, key)
	}
	return true, drain(resp)
}

// listPage fetches one page of a bucket listing.
func (c *Client) listPage(ctx context.Context, bucket string, cfg costypes.ListConfig) (ListPage, error) {
	const op = "listObjects"

	query := map[string]string{"list-type": "2"}
	if cfg.Prefix != "" {
		query["prefix"] = cfg.Prefix
	}
	if cfg.StartAfter != "" {
		query["start-after"] = cfg.StartAfter
	}
	if cfg.ContinuationToken != "" {
		query["continuation-token"] = cfg.ContinuationToken
	}
	if cfg.MaxKeys > 0 {
		query["max-keys"] = strconv.Itoa(cfg.MaxKeys)
	}

	req := c.newRequest(http.MethodGet, bucket, "", query, nil, 0)
	resp, err := c.do(ctx, op, req, "")
	if err != nil {
		return ListPage{}, decorate(err, bucket, "")
	}
	defer resp.Body.Close()

	var result wire.ListBucketResult
	if err := wire.Decode(op, resp.Body, &result); err != nil {
		return ListPage{}, err
	}

	page := ListPage{
		KeyCount:              result.KeyCount,
		MaxKeys:               result.MaxKeys,
		NextContinuationToken: result.NextContinuationToken,
		Objects:               make([]Object, 0, len(result.Contents)),
	}
	for _, entry := range result.Contents {
		page.Objects = append(page.Objects, costypes.Object{
			Key:          entry.Key,
			Size:         entry.Size,
			LastModified: entry.LastModified,
			ETag:         entry.ETag,
			StorageClass: entry.StorageClass,
		})
	}
	return page, nil
}

// ListObjects returns a single page of a bucket listing. Use Objects for a
// lazy sequence spanning pages.
func (c *Client) ListObjects(ctx context.Context, bucket string, opts ...ListOption) (ListPage, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return ListPage{}, err
	}

	cfg := costypes.ListConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return c.listPage(ctx, bucket, cfg)
}

// validateTarget checks a (bucket, key) pair.
func validateTarget(bucket, key string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}
	return validation.ValidateObjectKey(key)
}

// decorate attaches bucket/key context to module errors as they cross the
// public boundary.
func decorate(err error, bucket, key string) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		if e.Bucket == "" {
			e.Bucket = bucket
		}
		if e.Key == "" {
			e.Key = key
		}
	}
	return err
}

// drain discards and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) error {
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
