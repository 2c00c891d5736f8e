// Package llm provides the answer-generation collaborators: an
// OpenAI-compatible chat client, a local extractive generator for mock mode,
// and the context-block construction both feed on.
package llm

import (
	"fmt"
	"strings"

	"raggate/internal/domain"
)

// BuildContextBlock renders retrieved hits as a numbered, source-attributed
// context block for the model prompt.
func BuildContextBlock(hits []domain.Hit) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] (source: %s)\n%s", i+1, h.Source, h.Content)
	}
	return b.String()
}
