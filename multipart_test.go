package cos

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coserrors "github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/testutil"
)

func TestMultipartUpload_SessionHappyPath(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Response{Body: testutil.InitiateUploadXML("my-bucket", "big.bin", "upload-42")},
		testutil.Response{Header: testutil.ETagHeader(`"etag-1"`)},
		testutil.Response{Header: testutil.ETagHeader(`"etag-2"`)},
		testutil.Response{Body: "<CompleteMultipartUploadResult></CompleteMultipartUploadResult>"},
	)
	c := newBearerClient(t, rec)
	ctx := context.Background()

	up, err := c.CreateMultipartUpload(ctx, "my-bucket", "big.bin")
	require.NoError(t, err)
	assert.Equal(t, "upload-42", up.UploadID())

	p1, err := up.UploadPart(ctx, []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, Part{PartNumber: 1, ETag: `"etag-1"`}, p1)

	p2, err := up.UploadPart(ctx, []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, 2, p2.PartNumber)

	require.NoError(t, up.Complete(ctx))

	reqs := rec.Requests()
	require.Len(t, reqs, 4)

	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Contains(t, reqs[0].Query, "uploads")

	assert.Equal(t, http.MethodPut, reqs[1].Method)
	assert.Equal(t, "1", reqs[1].Query["partNumber"])
	assert.Equal(t, "upload-42", reqs[1].Query["uploadId"])
	assert.Equal(t, []byte("first"), reqs[1].Body)

	assert.Equal(t, "2", reqs[2].Query["partNumber"])

	assert.Equal(t, http.MethodPost, reqs[3].Method)
	assert.Equal(t, "upload-42", reqs[3].Query["uploadId"])
	body := string(reqs[3].Body)
	assert.Contains(t, body, "<PartNumber>1</PartNumber>")
	assert.Contains(t, body, "<PartNumber>2</PartNumber>")
	assert.Less(t,
		bytes.Index(reqs[3].Body, []byte("<PartNumber>1</PartNumber>")),
		bytes.Index(reqs[3].Body, []byte("<PartNumber>2</PartNumber>")))
}

func TestMultipartUpload_CompleteFailureAborts(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Response{Body: testutil.InitiateUploadXML("my-bucket", "big.bin", "upload-42")},
		testutil.Response{Header: testutil.ETagHeader(`"etag-1"`)},
		testutil.Response{Status: http.StatusInternalServerError, Body: "server error"},
		testutil.Response{Status: http.StatusNoContent},
	)
	c := newBearerClient(t, rec)
	ctx := context.Background()

	up, err := c.CreateMultipartUpload(ctx, "my-bucket", "big.bin")
	require.NoError(t, err)
	_, err = up.UploadPart(ctx, []byte("first"))
	require.NoError(t, err)

	err = up.Complete(ctx)
	require.Error(t, err)
	assert.True(t, coserrors.IsAPIStatus(err, http.StatusInternalServerError))

	reqs := rec.Requests()
	require.Len(t, reqs, 4)
	assert.Equal(t, http.MethodDelete, reqs[3].Method)
	assert.Equal(t, "upload-42", reqs[3].Query["uploadId"])

	// Finalized sessions reject further calls locally.
	_, err = up.UploadPart(ctx, []byte("more"))
	assert.ErrorIs(t, err, coserrors.ErrUploadFinalized)
	assert.Len(t, rec.Requests(), 4)
}

func TestMultipartUpload_MissingUploadID(t *testing.T) {
	rec := testutil.NewRecorder(testutil.Response{
		Body: "<InitiateMultipartUploadResult></InitiateMultipartUploadResult>",
	})
	c := newBearerClient(t, rec)

	_, err := c.CreateMultipartUpload(context.Background(), "my-bucket", "big.bin")
	require.Error(t, err)
	kind, ok := coserrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, coserrors.KindDecode, kind)
}

func TestMultipartUpload_MissingETag(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Response{Body: testutil.InitiateUploadXML("my-bucket", "big.bin", "upload-42")},
		testutil.Response{Status: http.StatusOK}, // no ETag header
	)
	c := newBearerClient(t, rec)
	ctx := context.Background()

	up, err := c.CreateMultipartUpload(ctx, "my-bucket", "big.bin")
	require.NoError(t, err)

	_, err = up.UploadPart(ctx, []byte("first"))
	require.Error(t, err)
	kind, ok := coserrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, coserrors.KindDecode, kind)
}

func TestMultipartUpload_SignedPartUsesUnsignedPayload(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Response{Body: testutil.InitiateUploadXML("my-bucket", "big.bin", "upload-42")},
		testutil.Response{Header: testutil.ETagHeader(`"etag-1"`)},
	)
	c := newSigV4Client(t, rec)
	ctx := context.Background()

	up, err := c.CreateMultipartUpload(ctx, "my-bucket", "big.bin")
	require.NoError(t, err)
	_, err = up.UploadPart(ctx, []byte("first"))
	require.NoError(t, err)

	reqs := rec.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "UNSIGNED-PAYLOAD", reqs[1].Header.Get("x-amz-content-sha256"))
	assert.Contains(t, reqs[1].Header.Get("Authorization"), "AWS4-HMAC-SHA256")
}

func TestUploadMultipart_StreamsInFixedParts(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Response{Body: testutil.InitiateUploadXML("my-bucket", "big.bin", "upload-42")},
		testutil.Response{Header: testutil.ETagHeader(`"etag-1"`)},
		testutil.Response{Header: testutil.ETagHeader(`"etag-2"`)},
		testutil.Response{Header: testutil.ETagHeader(`"etag-3"`)},
		testutil.Response{Body: "<CompleteMultipartUploadResult></CompleteMultipartUploadResult>"},
	)
	c := newBearerClient(t, rec)

	// 2 full parts of 8 bytes plus a final part of 4.
	data := testutil.GenerateRandomData(20)
	err := c.UploadMultipart(context.Background(), "my-bucket", "big.bin",
		bytes.NewReader(data), WithUploadPartSize(8))
	require.NoError(t, err)

	reqs := rec.Requests()
	require.Len(t, reqs, 5)
	assert.Len(t, reqs[1].Body, 8)
	assert.Len(t, reqs[2].Body, 8)
	assert.Len(t, reqs[3].Body, 4)

	var reassembled []byte
	for _, r := range reqs[1:4] {
		reassembled = append(reassembled, r.Body...)
	}
	assert.Equal(t, data, reassembled)
}

func TestUploadMultipart_PartFailureAborts(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Response{Body: testutil.InitiateUploadXML("my-bucket", "big.bin", "upload-42")},
		testutil.Response{Header: testutil.ETagHeader(`"etag-1"`)},
		testutil.Response{Status: http.StatusBadRequest, Body: "bad part"},
		testutil.Response{Status: http.StatusNoContent},
	)
	c := newBearerClient(t, rec)

	err := c.UploadMultipart(context.Background(), "my-bucket", "big.bin",
		bytes.NewReader(testutil.GenerateRandomData(20)), WithUploadPartSize(8))
	require.Error(t, err)
	assert.True(t, coserrors.IsAPIStatus(err, http.StatusBadRequest))

	reqs := rec.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Equal(t, "upload-42", last.Query["uploadId"])
}
