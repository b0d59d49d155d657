// Package generation turns study documents into term/definition pairs with a
// language model. It owns the pieces that do not depend on a particular
// provider: document text extraction, difficulty levels, the prompt, parsing
// of the model's JSON output, the admission rule for generated pairs and a
// guard that collapses concurrent identical requests into one upstream call.
// The Gemini implementation of Generator lives in internal/platform/gemini.
package generation
