// Package gemini provides an implementation of the generation.Generator interface
// that uses Google's Gemini API for generating flashcards from study documents.
//
// This package is an infrastructure adapter: it renders the generation prompt,
// calls the model with retries and exponential backoff for transient errors,
// and parses the model's JSON output into generation.Pair values. Admission of
// the pairs as cards is left to the caller.
package gemini
