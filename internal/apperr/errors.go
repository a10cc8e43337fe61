package apperr

import "errors"

// Operation-boundary error classes. Store and network failures are wrapped
// into one of these before leaving a service; handlers map them to HTTP
// status codes and user-facing notifications. No automatic retries anywhere:
// a failed send keeps the caller's input so the retry is user-initiated.
var (
	ErrAuth        = errors.New("authentication failed")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrFetch       = errors.New("fetch failed")
	ErrSend        = errors.New("send failed")
	ErrDelete      = errors.New("delete failed")
	ErrUpload      = errors.New("upload failed")
	ErrRateLimited = errors.New("rate limited")
	ErrInternal    = errors.New("internal error")
)
