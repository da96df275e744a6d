package document

import "github.com/kochabx/docvault/errors"

var (
	// ErrNotFound is returned for missing records and records owned by
	// someone else; the two cases are indistinguishable to the caller.
	ErrNotFound = errors.NotFound("document not found")
	// ErrBlobNotFound is returned by a BlobStore for a missing object.
	ErrBlobNotFound = errors.NotFound("blob not found")
	// ErrUnavailable is the only error a download failure exposes. The
	// precise reason is logged and counted instead.
	ErrUnavailable = errors.Internal("document unavailable")
	// ErrUploadFailed is returned when sealing or persisting an upload fails.
	ErrUploadFailed = errors.Internal("upload failed")
	// ErrTooLarge is returned for uploads above the configured size limit.
	ErrTooLarge = errors.RequestEntityTooLarge("file too large")
	// ErrUnsupportedType is returned for MIME types outside the allow-list.
	ErrUnsupportedType = errors.UnsupportedMediaType("invalid file type")
	// ErrInvalidInput is returned for malformed requests.
	ErrInvalidInput = errors.BadRequest("invalid input")
)
