package contentfetch

import "errors"

var (
	// ErrInvalidURL indicates a URL that is unparseable or uses a
	// disallowed scheme.
	ErrInvalidURL = errors.New("invalid url")

	// ErrPrivateIP indicates a URL whose hostname resolves to a private,
	// loopback, or link-local address.
	ErrPrivateIP = errors.New("url resolves to private ip")
)

// FetchFailed wraps any network error, non-2xx response, or timeout
// encountered while fetching a post's page. Per §4.2 this is a single
// error class that aborts only the one post, never the surrounding run.
type FetchFailed struct {
	URL   string
	Cause error
}

func (e *FetchFailed) Error() string {
	return "fetch failed for " + e.URL + ": " + e.Cause.Error()
}

func (e *FetchFailed) Unwrap() error {
	return e.Cause
}
