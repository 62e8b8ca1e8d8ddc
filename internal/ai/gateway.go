// Package ai provides the generation gateway: an LLM-backed collaborator
// that produces or edits standalone HTML documents from natural-language
// instructions.
package ai

import "context"

// Result carries the generated document and a human-readable summary of
// what was produced or changed.
type Result struct {
	Code    string
	Summary string
}

// Gateway generates and modifies website documents. Implementations make a
// single attempt per call; failures surface to the caller unretried.
type Gateway interface {
	// GenerateSite produces a complete HTML document from a user prompt.
	GenerateSite(ctx context.Context, prompt string) (Result, error)
	// ModifySite applies a natural-language change request to an existing
	// document and returns the full updated document.
	ModifySite(ctx context.Context, currentCode, request string) (Result, error)
}
