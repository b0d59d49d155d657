package generation

import (
	"unicode/utf8"

	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stefanvasilev2002/intellicard/internal/sanitize"
)

// MinDefinitionChars is the shortest definition a generated pair may carry.
const MinDefinitionChars = 10

// Admit sanitizes pairs and keeps those fit to become cards: a non-empty
// term, a definition of at least MinDefinitionChars characters, and both
// sides within the card length limits. Order is preserved.
func Admit(pairs []Pair) []Pair {
	admitted := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		term := sanitize.Text(p.Term)
		definition := sanitize.Text(p.Definition)

		termLen := utf8.RuneCountInString(term)
		defLen := utf8.RuneCountInString(definition)
		if termLen == 0 || termLen > domain.MaxTermLength {
			continue
		}
		if defLen < MinDefinitionChars || defLen > domain.MaxDefinitionLength {
			continue
		}

		admitted = append(admitted, Pair{Term: term, Definition: definition})
	}
	return admitted
}
