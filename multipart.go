package cos

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/coslib/cos/costypes"
	"github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/multipart"
	"github.com/coslib/cos/internal/sigv4"
	"github.com/coslib/cos/internal/wire"
)

// MultipartUpload is an in-progress multipart session under caller control.
// Parts carry 1-based, strictly increasing numbers assigned in call order.
// Once Complete or Abort has been called the session is consumed and every
// further call fails with ErrUploadFinalized.
type MultipartUpload struct {
	u *multipart.Upload
}

// CreateMultipartUpload initiates a multipart session for (bucket, key).
// Use the returned session to upload parts and finalize; for whole-stream
// uploads prefer UploadMultipart, which drives the session itself.
func (c *Client) CreateMultipartUpload(ctx context.Context, bucket, key string, opts ...PutOption) (*MultipartUpload, error) {
	if err := validateTarget(bucket, key); err != nil {
		return nil, err
	}

	cfg := costypes.PutConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ContentType == "" {
		cfg.ContentType = detectContentType(key, nil)
	}

	u, err := multipart.Start(ctx, &mpAPI{c: c}, bucket, key, cfg.ContentType)
	if err != nil {
		return nil, err
	}
	return &MultipartUpload{u: u}, nil
}

// UploadID returns the server-assigned identifier for this session.
func (m *MultipartUpload) UploadID() string {
	return m.u.ID()
}

// Parts returns the parts acknowledged so far, in upload order.
func (m *MultipartUpload) Parts() []Part {
	return m.u.Parts()
}

// UploadPart uploads the next chunk. A zero-length chunk signals end of
// stream and is not sent.
func (m *MultipartUpload) UploadPart(ctx context.Context, data []byte) (Part, error) {
	return m.u.UploadPart(ctx, data)
}

// Complete finalizes the object from the uploaded parts. If the completion
// call fails, one best-effort abort is issued automatically; if that abort
// also fails, the returned error reports both failures.
func (m *MultipartUpload) Complete(ctx context.Context) error {
	return m.u.Complete(ctx)
}

// Abort discards the session and releases server-side resources.
func (m *MultipartUpload) Abort(ctx context.Context) error {
	return m.u.Abort(ctx)
}

// UploadMultipart streams r to (bucket, key) as a multipart upload: the
// stream is split into fixed-size parts (final part may be shorter), each
// part is uploaded, and the object is assembled by a single completion
// call. Any failure after initiation aborts the session best-effort.
func (c *Client) UploadMultipart(ctx context.Context, bucket, key string, r io.Reader, opts ...PutOption) error {
	if err := validateTarget(bucket, key); err != nil {
		return err
	}

	cfg := costypes.PutConfig{
		PartSize:    c.cfg.PartSize,
		Concurrency: c.cfg.Concurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ContentType == "" {
		cfg.ContentType = detectContentType(key, nil)
	}

	return multipart.Run(ctx, &mpAPI{c: c}, bucket, key, r, multipart.Config{
		ContentType: cfg.ContentType,
		PartSize:    cfg.PartSize,
		Concurrency: cfg.Concurrency,
		Logger:      c.log,
	})
}

// mpAPI adapts the client's transport to the multipart state machine.
type mpAPI struct {
	c *Client
}

func (a *mpAPI) InitiateUpload(ctx context.Context, bucket, key, contentType string) (string, error) {
	const op = "createMultipartUpload"

	req := a.c.newRequest(http.MethodPost, bucket, key, map[string]string{"uploads": ""}, nil, 0)
	if contentType != "" {
		req.SetHeader("content-type", contentType)
	}

	resp, err := a.c.do(ctx, op, req, "")
	if err != nil {
		return "", decorate(err, bucket, key)
	}
	defer resp.Body.Close()

	var result wire.InitiateMultipartUploadResult
	if err := wire.Decode(op, resp.Body, &result); err != nil {
		return "", err
	}
	if result.UploadID == "" {
		return "", errors.New(op, errors.KindDecode, errors.ErrInvalidInput).
			WithBucket(bucket).WithKey(key).
			WithMessage("server returned no upload id")
	}
	return result.UploadID, nil
}

func (a *mpAPI) UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, body []byte) (string, error) {
	const op = "uploadPart"

	query := map[string]string{
		"partNumber": strconv.Itoa(partNumber),
		"uploadId":   uploadID,
	}
	req := a.c.newRequest(http.MethodPut, bucket, key, query, bytes.NewReader(body), int64(len(body)))

	// Part bodies can be large; sign with the unsigned-payload sentinel
	// instead of an extra digest pass over every chunk.
	resp, err := a.c.do(ctx, op, req, sigv4.UnsignedPayload)
	if err != nil {
		return "", decorate(err, bucket, key)
	}

	etag := resp.Header.Get("ETag")
	if drainErr := drain(resp); drainErr != nil {
		return "", errors.New(op, errors.KindTransport, drainErr).
			WithBucket(bucket).WithKey(key)
	}
	if etag == "" {
		return "", errors.New(op, errors.KindDecode, errors.ErrInvalidInput).
			WithBucket(bucket).WithKey(key).
			WithMessage("server returned no etag for part")
	}
	return etag, nil
}

func (a *mpAPI) CompleteUpload(ctx context.Context, bucket, key, uploadID string, parts []Part) error {
	const op = "completeMultipartUpload"

	payload := wire.CompleteMultipartUpload{}
	for _, p := range parts {
		payload.Parts = append(payload.Parts, wire.CompletedPart{
			PartNumber: p.PartNumber,
			ETag:       p.ETag,
		})
	}
	body, err := wire.Encode(payload)
	if err != nil {
		return err
	}

	query := map[string]string{"uploadId": uploadID}
	req := a.c.newRequest(http.MethodPost, bucket, key, query, bytes.NewReader(body), int64(len(body)))
	req.SetHeader("content-type", "application/xml")

	resp, err := a.c.do(ctx, op, req, sigv4.HashedPayload(body))
	if err != nil {
		return decorate(err, bucket, key)
	}
	return drain(resp)
}

func (a *mpAPI) AbortUpload(ctx context.Context, bucket, key, uploadID string) error {
	const op = "abortMultipartUpload"

	query := map[string]string{"uploadId": uploadID}
	req := a.c.newRequest(http.MethodDelete, bucket, key, query, nil, 0)

	resp, err := a.c.do(ctx, op, req, "")
	if err != nil {
		return decorate(err, bucket, key)
	}
	return drain(resp)
}
