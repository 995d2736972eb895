package storage

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidEndpoint is returned when the endpoint is not an http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint: must be an http or https URL")

	// ErrInvalidCategory is returned when the default category is not a
	// subreddit name.
	ErrInvalidCategory = errors.New("invalid default category")

	// ErrInvalidRetries is returned when max_retries is below one.
	ErrInvalidRetries = errors.New("invalid max_retries: must be at least 1")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRate is returned for a negative request rate. Zero disables
	// rate limiting.
	ErrInvalidRate = errors.New("invalid requests_per_second: must be non-negative")

	// ErrInvalidHistoryLimit is returned for a negative history limit.
	ErrInvalidHistoryLimit = errors.New("invalid history_limit: must be non-negative")

	// ErrSelfFallback is returned when a category falls back to itself.
	ErrSelfFallback = errors.New("category cannot fall back to itself")

	// ErrDuplicateFallback is returned when two fallback keys name the same
	// category in different case.
	ErrDuplicateFallback = errors.New("duplicate fallback category")

	// ErrInvalidLogLevel is returned for an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log_level: use debug, info, warn or error")
)
