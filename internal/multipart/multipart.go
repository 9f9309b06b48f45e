// Package multipart drives the three-phase upload protocol: initiate a
// session, upload numbered parts, then finalize with a single completion
// call carrying the full ordered part list.
package multipart

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coslib/cos/costypes"
	coserrors "github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/pool"
)

// DefaultPartSize is the fixed chunk size used when the caller does not
// override it.
const DefaultPartSize = 5 * 1024 * 1024

// API is the subset of server operations the upload state machine needs.
// The root client implements it over the transport; tests inject stubs.
type API interface {
	InitiateUpload(ctx context.Context, bucket, key, contentType string) (uploadID string, err error)
	UploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int, body []byte) (etag string, err error)
	CompleteUpload(ctx context.Context, bucket, key, uploadID string, parts []costypes.Part) error
	AbortUpload(ctx context.Context, bucket, key, uploadID string) error
}

type state int

const (
	stateNotStarted state = iota
	stateInitiated
	stateUploading
	stateCompleting
	stateDone
	stateAborted
)

func (s state) String() string {
	switch s {
	case stateNotStarted:
		return "not-started"
	case stateInitiated:
		return "initiated"
	case stateUploading:
		return "uploading"
	case stateCompleting:
		return "completing"
	case stateDone:
		return "done"
	case stateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Upload is one in-progress multipart session. Part numbers are assigned in
// the exact order UploadPart is called, starting at 1. An Upload must not be
// used from multiple goroutines without external coordination; the
// concurrent orchestrator in Run handles its own.
type Upload struct {
	api    API
	bucket string
	key    string

	uploadID string
	state    state
	nextPart int
	parts    []costypes.Part
}

// Start initiates a new upload session for (bucket, key). Failure here is
// fatal to the whole operation; there is no session to clean up.
func Start(ctx context.Context, api API, bucket, key, contentType string) (*Upload, error) {
	id, err := api.InitiateUpload(ctx, bucket, key, contentType)
	if err != nil {
		return nil, err
	}
	return &Upload{
		api:      api,
		bucket:   bucket,
		key:      key,
		uploadID: id,
		state:    stateInitiated,
		nextPart: 1,
	}, nil
}

// ID returns the server-assigned upload id.
func (u *Upload) ID() string {
	return u.uploadID
}

// Parts returns the (part number, etag) pairs recorded so far, in upload
// order.
func (u *Upload) Parts() []costypes.Part {
	out := make([]costypes.Part, len(u.parts))
	copy(out, u.parts)
	return out
}

func (u *Upload) finalized(op string) error {
	if u.state == stateDone || u.state == stateAborted {
		return coserrors.New(op, coserrors.KindProtocol, coserrors.ErrUploadFinalized).
			WithBucket(u.bucket).WithKey(u.key)
	}
	return nil
}

// UploadPart sends the next chunk and records the returned etag against the
// next part number. A zero-length chunk signals end of stream and is not
// uploaded.
func (u *Upload) UploadPart(ctx context.Context, data []byte) (costypes.Part, error) {
	const op = "multipart.UploadPart"
	if err := u.finalized(op); err != nil {
		return costypes.Part{}, err
	}
	if len(data) == 0 {
		return costypes.Part{}, nil
	}

	num := u.nextPart
	etag, err := u.api.UploadPart(ctx, u.bucket, u.key, u.uploadID, num, data)
	if err != nil {
		return costypes.Part{}, err
	}

	u.nextPart++
	u.state = stateUploading
	part := costypes.Part{PartNumber: num, ETag: etag}
	u.parts = append(u.parts, part)
	return part, nil
}

// Complete submits the ordered part list and finalizes the object. If the
// completion call fails, exactly one best-effort abort is issued; when that
// abort also fails, both errors are reported. The session is consumed either
// way.
func (u *Upload) Complete(ctx context.Context) error {
	const op = "multipart.Complete"
	if err := u.finalized(op); err != nil {
		return err
	}

	u.state = stateCompleting
	err := u.api.CompleteUpload(ctx, u.bucket, u.key, u.uploadID, u.parts)
	if err == nil {
		u.state = stateDone
		return nil
	}

	u.state = stateAborted
	if abortErr := u.api.AbortUpload(ctx, u.bucket, u.key, u.uploadID); abortErr != nil {
		return errors.Join(err, abortErr)
	}
	return err
}

// Abort releases server-side resources for the incomplete upload and
// consumes the session.
func (u *Upload) Abort(ctx context.Context) error {
	const op = "multipart.Abort"
	if err := u.finalized(op); err != nil {
		return err
	}
	u.state = stateAborted
	return u.api.AbortUpload(ctx, u.bucket, u.key, u.uploadID)
}

// Config tunes an orchestrated upload.
type Config struct {
	ContentType string
	PartSize    int64
	// Concurrency is the number of parts in flight at once. Values below 2
	// select the serial path.
	Concurrency int
	Logger      zerolog.Logger
}

// Run streams r to (bucket, key) as a multipart upload: initiate, chunk the
// stream into fixed-size parts (final part may be shorter), upload each
// part, then complete. Any failure after initiation triggers a best-effort
// abort of the session.
func Run(ctx context.Context, api API, bucket, key string, r io.Reader, cfg Config) error {
	if cfg.PartSize <= 0 {
		cfg.PartSize = DefaultPartSize
	}

	u, err := Start(ctx, api, bucket, key, cfg.ContentType)
	if err != nil {
		return err
	}

	cfg.Logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("upload_id", u.ID()).
		Int64("part_size", cfg.PartSize).
		Msg("multipart upload initiated")

	if cfg.Concurrency > 1 {
		err = uploadConcurrent(ctx, u, r, cfg)
	} else {
		err = uploadSerial(ctx, u, r, cfg)
	}
	if err != nil {
		if abortErr := u.Abort(ctx); abortErr != nil {
			cfg.Logger.Warn().Err(abortErr).
				Str("upload_id", u.ID()).
				Msg("abort after failed part upload also failed")
			return errors.Join(err, abortErr)
		}
		return err
	}

	return u.Complete(ctx)
}

// uploadSerial reads and uploads one part at a time, reusing a single
// pooled buffer.
func uploadSerial(ctx context.Context, u *Upload, r io.Reader, cfg Config) error {
	chunks := pool.NewChunkPool(cfg.PartSize)
	buf := chunks.Get()
	defer chunks.Put(buf)

	for {
		n, err := readChunk(r, buf)
		if n > 0 {
			part, uerr := u.UploadPart(ctx, buf[:n])
			if uerr != nil {
				return uerr
			}
			cfg.Logger.Debug().
				Int("part", part.PartNumber).
				Int("size", n).
				Msg("part uploaded")
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return coserrors.New("multipart.Run", coserrors.KindInput, err).
				WithBucket(u.bucket).WithKey(u.key)
		}
	}
}

// uploadConcurrent assigns part numbers in read order but keeps up to
// cfg.Concurrency part uploads in flight. The complete list is assembled
// only after every part acknowledges, sorted by part number.
func uploadConcurrent(ctx context.Context, u *Upload, r io.Reader, cfg Config) error {
	chunks := pool.NewChunkPool(cfg.PartSize)
	sem := make(chan struct{}, cfg.Concurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		parts    []costypes.Part
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	num := 0
	for {
		buf := chunks.Get()
		n, err := readChunk(r, buf)
		if n == 0 {
			chunks.Put(buf)
			if err == io.EOF {
				break
			}
			setErr(coserrors.New("multipart.Run", coserrors.KindInput, err).
				WithBucket(u.bucket).WithKey(u.key))
			break
		}

		num++
		partNum := num

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			chunks.Put(buf)
			setErr(coserrors.New("multipart.Run", coserrors.KindTransport, ctx.Err()))
		}
		if failed() {
			break
		}

		wg.Add(1)
		go func(data []byte, size, partNum int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer chunks.Put(data)

			etag, uerr := u.api.UploadPart(ctx, u.bucket, u.key, u.uploadID, partNum, data[:size])
			if uerr != nil {
				setErr(uerr)
				return
			}
			mu.Lock()
			parts = append(parts, costypes.Part{PartNumber: partNum, ETag: etag})
			mu.Unlock()
			cfg.Logger.Debug().Int("part", partNum).Int("size", size).Msg("part uploaded")
		}(buf, n, partNum)

		if err == io.EOF {
			break
		}
		if err != nil {
			setErr(coserrors.New("multipart.Run", coserrors.KindInput, err).
				WithBucket(u.bucket).WithKey(u.key))
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })
	u.parts = parts
	u.nextPart = len(parts) + 1
	u.state = stateUploading
	return nil
}

// readChunk fills buf as far as the stream allows. It returns io.EOF once
// the stream is exhausted, possibly alongside a short final read.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	switch err {
	case nil:
		return n, nil
	case io.ErrUnexpectedEOF, io.EOF:
		return n, io.EOF
	default:
		return n, err
	}
}
