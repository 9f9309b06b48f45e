package cos

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/multipart"
)

// UploadFile uploads a local file to (bucket, key). Files larger than the
// configured part size are streamed as a multipart upload; smaller files go
// up in a single request. The content type is sniffed from the file's
// leading bytes unless WithContentType is given.
func (c *Client) UploadFile(ctx context.Context, bucket, key, path string, opts ...PutOption) error {
	const op = "uploadFile"
	if err := validateTarget(bucket, key); err != nil {
		return err
	}

	info, err := c.fs.Stat(path)
	if err != nil {
		return errors.New(op, errors.KindInput, err).
			WithBucket(bucket).WithKey(key).
			WithMessage("cannot stat source file")
	}
	if info.IsDir() {
		return errors.New(op, errors.KindInput, errors.ErrInvalidInput).
			WithBucket(bucket).WithKey(key).
			WithMessage("source path is a directory")
	}

	partSize := c.cfg.PartSize
	if partSize <= 0 {
		partSize = multipart.DefaultPartSize
	}

	if info.Size() <= partSize {
		data, err := c.fs.ReadFile(path)
		if err != nil {
			return errors.New(op, errors.KindInput, err).
				WithBucket(bucket).WithKey(key).
				WithMessage("cannot read source file")
		}
		return c.PutObject(ctx, bucket, key, data, opts...)
	}

	file, err := c.fs.Open(path)
	if err != nil {
		return errors.New(op, errors.KindInput, err).
			WithBucket(bucket).WithKey(key).
			WithMessage("cannot open source file")
	}
	defer file.Close()

	// Sniff the content type from the head of the file, then rewind.
	head := make([]byte, 512)
	n, _ := file.Read(head)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return errors.New(op, errors.KindInput, err).
			WithBucket(bucket).WithKey(key).
			WithMessage("cannot rewind source file")
	}
	sniffed := detectContentType(path, head[:n])

	return c.UploadMultipart(ctx, bucket, key, file,
		append([]PutOption{WithContentType(sniffed)}, opts...)...)
}

// DownloadFile retrieves an object and writes it to a local path, creating
// parent directories as needed. Existing files are overwritten.
func (c *Client) DownloadFile(ctx context.Context, bucket, key, path string) error {
	const op = "downloadFile"

	body, err := c.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()

	if dir := filepath.Dir(path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.New(op, errors.KindInput, err).
				WithBucket(bucket).WithKey(key).
				WithMessage("cannot create destination directory")
		}
	}

	file, err := c.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.New(op, errors.KindInput, err).
			WithBucket(bucket).WithKey(key).
			WithMessage("cannot create destination file")
	}

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return errors.New(op, errors.KindTransport, err).
			WithBucket(bucket).WithKey(key).
			WithMessage("download interrupted")
	}
	if err := file.Close(); err != nil {
		return errors.New(op, errors.KindInput, err).
			WithBucket(bucket).WithKey(key).
			WithMessage("cannot finalize destination file")
	}

	c.log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("path", path).
		Msg("object downloaded")
	return nil
}
