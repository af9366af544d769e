package llm

import "errors"

// Common errors.
var (
	// ErrModelRequired is returned when WithModel is not specified.
	ErrModelRequired = errors.New("model is required: use WithModel option")

	// ErrStreamingUnsupported is returned by CallStream for models that
	// cannot stream.
	ErrStreamingUnsupported = errors.New("model does not support streaming")

	// ErrStreamConsumed is reported by Stream.Err when Chunks is iterated
	// again after an earlier loop stopped early.
	ErrStreamConsumed = errors.New("stream already consumed")
)
