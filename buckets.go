package cos

import (
	"context"
	"net/http"

	"github.com/coslib/cos/costypes"
	"github.com/coslib/cos/internal/wire"
)

// ListBuckets returns all buckets owned by the configured service instance.
// Token-authenticated deployments require WithServiceInstanceID; it is sent
// as the ibm-service-instance-id header.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	const op = "listBuckets"

	req := c.newRequest(http.MethodGet, "", "", nil, nil, 0)
	if c.cfg.ServiceInstanceID != "" {
		req.SetHeader("ibm-service-instance-id", c.cfg.ServiceInstanceID)
	}

	resp, err := c.do(ctx, op, req, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result wire.ListAllMyBucketsResult
	if err := wire.Decode(op, resp.Body, &result); err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0, len(result.Buckets.Bucket))
	for _, b := range result.Buckets.Bucket {
		buckets = append(buckets, costypes.Bucket{
			Name:         b.Name,
			CreationDate: b.CreationDate,
		})
	}
	return buckets, nil
}
