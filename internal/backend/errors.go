package backend

import "errors"

var (
	// ErrPermanent marks a backend failure as non-retryable: auth
	// failure, missing corpus, or any 4xx other than 429.
	ErrPermanent = errors.New("backend permanent failure")
)
