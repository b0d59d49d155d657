package generation

import (
	"context"
)

// Pair is one generated term/definition candidate. Pairs are untrusted until
// they pass Admit.
type Pair struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Request describes a generation call.
type Request struct {
	Text     string
	Count    int
	Level    Level
	Language string
}

// Generator defines the interface for generating flashcards from text.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Generator interface {
	// GenerateCards asks the model for req.Count pairs drawn from req.Text.
	// The result may hold fewer or more pairs than requested and may include
	// pairs that Admit will reject.
	//
	// Errors wrap ErrContentBlocked, ErrInvalidResponse, ErrTransientFailure
	// or ErrGenerationFailed.
	GenerateCards(ctx context.Context, req Request) ([]Pair, error)
}
