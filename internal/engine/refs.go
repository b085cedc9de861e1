package engine

import (
	"regexp"
	"strings"

	"github.com/roach88/recalc/internal/ir"
)

// referencePattern matches a cell reference: one or more letters followed by
// one or more digits. Matches are maximal and case-insensitive.
var referencePattern = regexp.MustCompile(`[A-Za-z]+[0-9]+`)

// ExtractReferences returns the cell ids a formula reads, in occurrence order.
//
// Input that does not start with "=" is a literal and has no references.
// Duplicates are preserved; use uniqueReferences for set semantics.
// Never fails.
func ExtractReferences(formula string) []ir.CellID {
	if !ir.IsFormula(formula) {
		return nil
	}
	matches := referencePattern.FindAllString(formula[1:], -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]ir.CellID, len(matches))
	for i, m := range matches {
		refs[i] = ir.CellID(strings.ToUpper(m))
	}
	return refs
}

// uniqueReferences deduplicates refs keeping first-occurrence order.
func uniqueReferences(refs []ir.CellID) []ir.CellID {
	if len(refs) < 2 {
		return refs
	}
	seen := make(map[ir.CellID]bool, len(refs))
	out := make([]ir.CellID, 0, len(refs))
	for _, r := range refs {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// substituteReferences replaces every reference occurrence in expr with
// the text returned by operand.
func substituteReferences(expr string, operand func(ir.CellID) string) string {
	return referencePattern.ReplaceAllStringFunc(expr, func(m string) string {
		return operand(ir.CellID(strings.ToUpper(m)))
	})
}
