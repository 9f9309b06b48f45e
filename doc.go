// Package cos provides a client for S3-compatible cloud object storage.
//
// The Client supports two authentication modes: bearer tokens (IBM-style
// IAM tokens, virtual-hosted URLs) and AWS Signature Version 4 access keys
// (path-style URLs). It covers bucket and object listing with lazy
// pagination, object get/put/delete, byte-range reads, and multipart
// uploads for large objects, with configurable options for part size and
// upload concurrency.
//
// Example:
//
//	client, err := cos.New(
//	    cos.WithEndpoint("s3.us.cloud-object-storage.example.com"),
//	    cos.WithTokenProvider(cos.StaticTokenProvider(token)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	it := client.Objects("my-bucket", cos.WithPrefix("photos/"))
//	for {
//	    obj, ok := it.Next(ctx)
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(obj.Key, obj.Size)
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
package cos
