// Package internal contains private implementation details for the COS
// module. These packages are not intended for external use and may change
// without notice.
//
// The internal packages are organized as follows:
//   - sigv4: AWS Signature Version 4 canonicalization and signing
//   - transport: structured request building and HTTP execution
//   - wire: XML request and response schemas
//   - multipart: multipart upload state machine and orchestration
//   - validation: input validation logic
//   - pool: reusable chunk buffers for multipart transfers
//   - testutil: HTTP stubs and fixtures for tests
package internal
