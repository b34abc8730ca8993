package resolve

import "errors"

var (
	// ErrMatcherRequired is returned when an intent matcher is not provided.
	ErrMatcherRequired = errors.New("intent matcher required")

	// ErrCascadeRequired is returned when a document cascade is not provided.
	ErrCascadeRequired = errors.New("document cascade required")
)
