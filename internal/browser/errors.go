package browser

import "errors"

// Failure classes used while fetching and persisting. None of these escape
// ContentFetcher.Fetch or the Controller; they are wrapped, logged and
// matched with errors.Is.
var (
	// ErrTransient covers connection failures, timeouts and non-2xx statuses.
	ErrTransient = errors.New("transient network error")

	// ErrInvalidContent means the endpoint answered but not with a usable image.
	ErrInvalidContent = errors.New("invalid content")

	// ErrExhausted means every allowed attempt for a category failed.
	ErrExhausted = errors.New("retries exhausted")

	// ErrPersistence wraps failures of the Persister.
	ErrPersistence = errors.New("persistence error")

	// ErrCorruptHistory is reported when a persisted history record is rejected.
	ErrCorruptHistory = errors.New("corrupt history record")
)
