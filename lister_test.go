package cos

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coserrors "github.com/coslib/cos/errors"
	"github.com/coslib/cos/internal/testutil"
)

// collect drains an iterator into a slice of keys.
func collect(t *testing.T, it *ObjectIterator) []string {
	t.Helper()
	var keys []string
	for {
		obj, ok := it.Next(context.Background())
		if !ok {
			return keys
		}
		keys = append(keys, obj.Key)
	}
}

func TestObjectIterator_TwoPages(t *testing.T) {
	var tokens []string
	it := &ObjectIterator{
		log: zerolog.Nop(),
		fetch: func(_ context.Context, token string) (ListPage, error) {
			tokens = append(tokens, token)
			if token == "" {
				return ListPage{
					Objects: []Object{
						{Key: "a.txt"},
						{Key: "b.txt"},
					},
					NextContinuationToken: "page-2",
				}, nil
			}
			return ListPage{
				Objects: []Object{{Key: "c.txt"}},
			}, nil
		},
	}

	keys := collect(t, it)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, keys)
	assert.Equal(t, []string{"", "page-2"}, tokens)
	assert.NoError(t, it.Err())

	// Exhaustion is idempotent; nothing is fetched again.
	_, ok := it.Next(context.Background())
	assert.False(t, ok)
	assert.Len(t, tokens, 2)
}

func TestObjectIterator_FetchErrorEndsSequence(t *testing.T) {
	fetchErr := errors.New("listing failed")
	calls := 0
	it := &ObjectIterator{
		log: zerolog.Nop(),
		fetch: func(_ context.Context, token string) (ListPage, error) {
			calls++
			if calls == 1 {
				return ListPage{
					Objects:               []Object{{Key: "a.txt"}, {Key: "b.txt"}},
					NextContinuationToken: "page-2",
				}, nil
			}
			return ListPage{}, fetchErr
		},
	}

	keys := collect(t, it)

	// Buffered items are yielded before the failure surfaces as
	// end-of-sequence.
	assert.Equal(t, []string{"a.txt", "b.txt"}, keys)
	assert.ErrorIs(t, it.Err(), fetchErr)

	_, ok := it.Next(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 2, calls)
}

func TestObjectIterator_ErrorOnFirstPage(t *testing.T) {
	fetchErr := errors.New("listing failed")
	it := &ObjectIterator{
		log: zerolog.Nop(),
		fetch: func(context.Context, string) (ListPage, error) {
			return ListPage{}, fetchErr
		},
	}

	keys := collect(t, it)
	assert.Empty(t, keys)
	assert.ErrorIs(t, it.Err(), fetchErr)
}

func TestObjectIterator_SkipsEmptyPages(t *testing.T) {
	calls := 0
	it := &ObjectIterator{
		log: zerolog.Nop(),
		fetch: func(_ context.Context, token string) (ListPage, error) {
			calls++
			switch calls {
			case 1:
				return ListPage{NextContinuationToken: "page-2"}, nil
			default:
				return ListPage{Objects: []Object{{Key: "late.txt"}}}, nil
			}
		},
	}

	keys := collect(t, it)
	assert.Equal(t, []string{"late.txt"}, keys)
	assert.Equal(t, 2, calls)
}

func TestObjects_InvalidBucket(t *testing.T) {
	c := newBearerClient(t, testutil.NewRecorder())

	it := c.Objects("")
	_, ok := it.Next(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, it.Err(), coserrors.ErrInvalidBucketName)
}

func TestObjects_EndToEnd(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Response{
			Status: http.StatusOK,
			Body:   testutil.ListBucketResultXML("tok-2", "a.txt", "b.txt"),
		},
		testutil.Response{
			Status: http.StatusOK,
			Body:   testutil.ListBucketResultXML("", "c.txt"),
		},
	)
	c := newBearerClient(t, rec)

	it := c.Objects("my-bucket", WithPrefix("docs/"))
	keys := collect(t, it)
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, keys)

	reqs := rec.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "docs/", reqs[0].Query["prefix"])
	assert.NotContains(t, reqs[0].Query, "continuation-token")
	assert.Equal(t, "tok-2", reqs[1].Query["continuation-token"])
	assert.Equal(t, "docs/", reqs[1].Query["prefix"])
}
