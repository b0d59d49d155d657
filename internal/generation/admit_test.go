package generation

import (
	"strings"
	"testing"

	"github.com/stefanvasilev2002/intellicard/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAdmit(t *testing.T) {
	t.Parallel()

	pairs := []Pair{
		{Term: "Mitosis", Definition: "Division of a cell nucleus"},
		{Term: "", Definition: "A definition without a term"},
		{Term: "   ", Definition: "Whitespace-only term"},
		{Term: "Short", Definition: "too short"},
		{Term: "Padded", Definition: "   tiny    "},
		{Term: "<b>Osmosis</b>", Definition: "<i>Movement of water</i> across a membrane"},
		{Term: "<script>alert(1)</script>", Definition: "Script-only term is empty after cleaning"},
		{Term: strings.Repeat("t", domain.MaxTermLength+1), Definition: "Term is too long to store"},
		{Term: "Exactly ten", Definition: "0123456789"},
	}

	got := Admit(pairs)

	assert.Equal(t, []Pair{
		{Term: "Mitosis", Definition: "Division of a cell nucleus"},
		{Term: "Osmosis", Definition: "Movement of water across a membrane"},
		{Term: "Exactly ten", Definition: "0123456789"},
	}, got)
}

func TestAdmitEmpty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Admit(nil))
	assert.Empty(t, Admit([]Pair{{Term: "x", Definition: "short"}}))
}
