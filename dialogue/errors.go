package dialogue

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrMemoryRequired is returned when no topic memory is provided.
	ErrMemoryRequired = errors.New("topic memory is required")

	// ErrInvalidThreshold is returned for a threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("threshold must be greater than 0 and at most 1")

	// ErrVocabularyRequired is returned when a nil vocabulary is configured.
	ErrVocabularyRequired = errors.New("vocabulary is required")

	// ErrInvalidScheduleTopic is returned when schedule replies have no usable topic.
	ErrInvalidScheduleTopic = errors.New("schedule topic must be a named service")
)
