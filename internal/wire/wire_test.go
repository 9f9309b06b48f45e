package wire

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coserrors "github.com/coslib/cos/errors"
)

const listResponse = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>logs</Name>
  <Prefix>app/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>true</IsTruncated>
  <Contents>
    <Key>app/a.log</Key>
    <LastModified>2023-04-01T10:00:00.000Z</LastModified>
    <ETag>&quot;abc123&quot;</ETag>
    <Size>1024</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <Contents>
    <Key>app/b.log</Key>
    <LastModified>2023-04-02T11:30:00.000Z</LastModified>
    <ETag>&quot;def456&quot;</ETag>
    <Size>2048</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <NextContinuationToken>tok-next</NextContinuationToken>
</ListBucketResult>`

func TestDecodeListBucketResult(t *testing.T) {
	var res ListBucketResult
	require.NoError(t, Decode("listObjects", strings.NewReader(listResponse), &res))

	assert.Equal(t, "logs", res.Name)
	assert.Equal(t, 2, res.KeyCount)
	assert.Equal(t, "tok-next", res.NextContinuationToken)
	require.Len(t, res.Contents, 2)
	assert.Equal(t, "app/a.log", res.Contents[0].Key)
	assert.Equal(t, `"abc123"`, res.Contents[0].ETag)
	assert.Equal(t, int64(1024), res.Contents[0].Size)
	assert.Equal(t, time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC), res.Contents[0].LastModified)
	assert.Equal(t, "app/b.log", res.Contents[1].Key)
}

// An empty bucket returns a ListBucketResult with no Contents elements at
// all. That must decode into an empty slice, not fail.
func TestDecodeEmptyListing(t *testing.T) {
	body := `<ListBucketResult><Name>empty</Name><KeyCount>0</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated></ListBucketResult>`

	var res ListBucketResult
	require.NoError(t, Decode("listObjects", strings.NewReader(body), &res))
	assert.Empty(t, res.Contents)
	assert.Empty(t, res.NextContinuationToken)
}

func TestDecodeMalformedBody(t *testing.T) {
	var res ListBucketResult
	err := Decode("listObjects", strings.NewReader("<ListBucketResult><Name>x"), &res)
	require.Error(t, err)

	kind, ok := coserrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, coserrors.KindDecode, kind)
}

func TestDecodeListAllMyBucketsResult(t *testing.T) {
	body := `<ListAllMyBucketsResult>
  <Owner><ID>owner-1</ID><DisplayName>acct</DisplayName></Owner>
  <Buckets>
    <Bucket><Name>first</Name><CreationDate>2022-01-15T08:00:00.000Z</CreationDate></Bucket>
    <Bucket><Name>second</Name><CreationDate>2022-02-20T09:00:00.000Z</CreationDate></Bucket>
  </Buckets>
</ListAllMyBucketsResult>`

	var res ListAllMyBucketsResult
	require.NoError(t, Decode("listBuckets", strings.NewReader(body), &res))
	require.Len(t, res.Buckets.Bucket, 2)
	assert.Equal(t, "first", res.Buckets.Bucket[0].Name)
	assert.Equal(t, "owner-1", res.Owner.ID)
}

func TestDecodeInitiateMultipartUploadResult(t *testing.T) {
	body := `<InitiateMultipartUploadResult><Bucket>b</Bucket><Key>k</Key><UploadId>upload-42</UploadId></InitiateMultipartUploadResult>`

	var res InitiateMultipartUploadResult
	require.NoError(t, Decode("createMultipartUpload", strings.NewReader(body), &res))
	assert.Equal(t, "upload-42", res.UploadID)
	assert.Equal(t, "b", res.Bucket)
	assert.Equal(t, "k", res.Key)
}

func TestEncodeCompleteMultipartUpload(t *testing.T) {
	req := CompleteMultipartUpload{
		Parts: []CompletedPart{
			{ETag: `"e1"`, PartNumber: 1},
			{ETag: `"e2"`, PartNumber: 2},
		},
	}

	out, err := Encode(req)
	require.NoError(t, err)

	want := `<CompleteMultipartUpload><Part><ETag>&#34;e1&#34;</ETag><PartNumber>1</PartNumber></Part><Part><ETag>&#34;e2&#34;</ETag><PartNumber>2</PartNumber></Part></CompleteMultipartUpload>`
	assert.Equal(t, want, string(out))
}

func TestEncodeDeleteRequest(t *testing.T) {
	out, err := Encode(Delete{
		Quiet:   false,
		Objects: []ObjectIdentifier{{Key: "a"}, {Key: "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `<Delete><Quiet>false</Quiet><Object><Key>a</Key></Object><Object><Key>b</Key></Object></Delete>`, string(out))
}

func TestDecodeDeleteResult(t *testing.T) {
	body := `<DeleteResult>
  <Deleted><Key>a</Key></Deleted>
  <Error><Key>b</Key><Code>AccessDenied</Code><Message>denied</Message></Error>
</DeleteResult>`

	var res DeleteResult
	require.NoError(t, Decode("deleteObjects", strings.NewReader(body), &res))
	require.Len(t, res.Deleted, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "AccessDenied", res.Errors[0].Code)
}
