package cos

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/coslib/cos/costypes"
	"github.com/coslib/cos/internal/validation"
)

// pageFetcher retrieves one page of a listing given the continuation token
// from the previous page (empty for the first page). Injected so the
// iterator is testable without a live transport.
type pageFetcher func(ctx context.Context, continuationToken string) (ListPage, error)

// ObjectIterator is a lazy, forward-only, finite sequence of object
// descriptors spanning listing pages. It is not restartable; construct a
// fresh iterator to re-list. Not safe for concurrent use.
type ObjectIterator struct {
	fetch pageFetcher
	log   zerolog.Logger

	// buf holds fetched but not yet yielded descriptors, in server order
	buf []Object

	// token is the cursor for the next page fetch
	token string

	// done is set once the server reports no further pages or a fetch fails
	done bool

	err error
}

// Objects returns an iterator over all objects in a bucket, optionally
// filtered by prefix or starting key. Pages are fetched on demand as the
// iterator advances.
func (c *Client) Objects(bucket string, opts ...ListOption) *ObjectIterator {
	cfg := costypes.ListConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	it := &ObjectIterator{
		log:   c.log,
		token: cfg.ContinuationToken,
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		it.done = true
		it.err = err
		return it
	}

	it.fetch = func(ctx context.Context, token string) (ListPage, error) {
		pageCfg := cfg
		pageCfg.ContinuationToken = token
		return c.listPage(ctx, bucket, pageCfg)
	}
	return it
}

// Next returns the next object in the sequence. It reports false once the
// sequence is exhausted or a page fetch has failed; check Err afterwards to
// distinguish the two. Calling Next after exhaustion keeps reporting false.
func (it *ObjectIterator) Next(ctx context.Context) (Object, bool) {
	for {
		if len(it.buf) > 0 {
			obj := it.buf[0]
			it.buf = it.buf[1:]
			return obj, true
		}
		if it.done {
			return Object{}, false
		}

		page, err := it.fetch(ctx, it.token)
		if err != nil {
			it.err = err
			it.done = true
			it.log.Error().Err(err).Msg("object listing failed, ending sequence")
			return Object{}, false
		}

		it.buf = append(it.buf, page.Objects...)
		if page.NextContinuationToken == "" {
			it.done = true
		} else {
			it.token = page.NextContinuationToken
		}
	}
}

// Err returns the error that ended the sequence early, or nil if the
// sequence completed normally (or is still in progress).
func (it *ObjectIterator) Err() error {
	return it.err
}
