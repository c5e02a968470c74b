package domain

import "errors"

var (
	// ErrInvalidQuery signals a missing, blank, or oversized search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrGenerationFailed signals a text generation provider failure.
	ErrGenerationFailed = errors.New("generation provider error")
	// ErrGenerationEmpty signals a provider response without usable text.
	ErrGenerationEmpty = errors.New("empty generation response")
	// ErrGenerationQuotaExceeded signals an exhausted generation token budget.
	ErrGenerationQuotaExceeded = errors.New("generation quota exceeded")
)
