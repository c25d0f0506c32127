package heuristics

import "errors"

var (
	// ErrInvalidVocabulary is returned when a vocabulary fails validation.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")

	// ErrVocabularyRead is returned when a vocabulary file cannot be read or parsed.
	ErrVocabularyRead = errors.New("failed to read vocabulary")
)
