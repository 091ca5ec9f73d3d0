package llm

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrUnknownProvider is returned for provider names outside the catalog
	ErrUnknownProvider = goerr.New("unknown AI provider")

	// ErrNoProvider is returned when neither the user nor the server has an
	// LLM configured
	ErrNoProvider = goerr.New("no AI provider configured")

	// ErrInvalidResponse is returned when the model output cannot be coerced
	// into the expected shape
	ErrInvalidResponse = goerr.New("invalid AI response")

	// ErrGeneration wraps transport and provider failures
	ErrGeneration = goerr.New("AI generation failed")
)
