package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInsufficientData = errors.New("insufficient data: no articles supplied")
	ErrMalformedArticle = errors.New("malformed article")
	ErrUnmappedTopic    = errors.New("no standard code for topic")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNotFound         = errors.New("not found")
)
