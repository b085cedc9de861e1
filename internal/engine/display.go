package engine

import "github.com/roach88/recalc/internal/ir"

// DisplayCell is the presentation pair for one materialised cell.
type DisplayCell struct {
	ID      ir.CellID `json:"id"`
	Formula string    `json:"formula"`
	Text    string    `json:"text"`
	IsError bool      `json:"is_error"`
}

// Display returns the rendered value of id in s and whether it is an error
// state (#ERROR or #CIRCULAR). Absent cells render as "".
func Display(s ir.Snapshot, id ir.CellID) (string, bool) {
	v := s.Get(id).Value
	return v.Text(), ir.IsError(v)
}

// Render returns every materialised cell of s in column-then-row order.
func Render(s ir.Snapshot) []DisplayCell {
	ids := s.IDs()
	out := make([]DisplayCell, len(ids))
	for i, id := range ids {
		c := s.Get(id)
		out[i] = DisplayCell{
			ID:      id,
			Formula: c.Formula,
			Text:    c.Value.Text(),
			IsError: ir.IsError(c.Value),
		}
	}
	return out
}
