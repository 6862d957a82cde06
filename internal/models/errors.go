package models

import "errors"

// Sentinel error kinds for the retrieval core. Callers match them with
// errors.Is; wrapped messages carry the offending field and values.
var (
	// ErrEmbeddingDimensionMismatch reports a stored vector whose length does
	// not match the configured embedding model. Fatal: truncating or padding
	// would produce non-deterministic relevance.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidTuningParameter reports a caller-supplied weight outside [0,1]
	// or a negative k/top_k. Rejected before any scoring begins.
	ErrInvalidTuningParameter = errors.New("invalid tuning parameter")

	// ErrMalformedTrace reports a what-if trace that is not a usable object.
	// Individual malformed rows inside a valid trace are recovered, not raised.
	ErrMalformedTrace = errors.New("malformed trace input")
)
