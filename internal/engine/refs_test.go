package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/recalc/internal/ir"
)

func TestExtractReferences(t *testing.T) {
	tests := []struct {
		name     string
		formula  string
		expected []ir.CellID
	}{
		{"literal has none", "A1+B1", nil},
		{"empty", "", nil},
		{"no references", "=1+2", nil},
		{"single", "=A1+1", []ir.CellID{"A1"}},
		{"normalised to upper case", "=a1*b22", []ir.CellID{"A1", "B22"}},
		{"multi-letter column", "=AA10-Z9", []ir.CellID{"AA10", "Z9"}},
		{"duplicates preserved in order", "=A1+B1+A1", []ir.CellID{"A1", "B1", "A1"}},
		{"maximal match", "=ABC123", []ir.CellID{"ABC123"}},
		{"adjacent to operators", "=(A1)*(B2)/C3", []ir.CellID{"A1", "B2", "C3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractReferences(tt.formula))
		})
	}
}

func TestUniqueReferences(t *testing.T) {
	assert.Equal(t, []ir.CellID{"A1", "B1"}, uniqueReferences([]ir.CellID{"A1", "B1", "A1", "B1"}))
	assert.Nil(t, uniqueReferences(nil))
}

func TestSubstituteReferences(t *testing.T) {
	values := map[ir.CellID]string{"A1": "5", "B2": "(-1)"}
	got := substituteReferences("a1+B2*A1", func(id ir.CellID) string { return values[id] })
	assert.Equal(t, "5+(-1)*5", got)
}
