package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when card generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate cards from text")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during card generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrUnsupportedFormat is returned for documents that are not plain text
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDocumentTooLarge is returned when a document exceeds the size limit
	ErrDocumentTooLarge = errors.New("document is too large")

	// ErrDocumentTooShort is returned when a document has too little text to generate from
	ErrDocumentTooShort = errors.New("document does not contain enough text")

	// ErrInvalidLevel is returned for an unknown difficulty level
	ErrInvalidLevel = errors.New("invalid difficulty level")

	// ErrInvalidCount is returned when the requested number of cards is out of range
	ErrInvalidCount = errors.New("invalid question count")

	// ErrNoUsableCards is returned when every generated pair failed admission
	ErrNoUsableCards = errors.New("no usable cards generated")
)
