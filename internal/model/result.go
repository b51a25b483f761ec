package model

// LabelColumn is the name of the leading column in a tabular diff result.
const LabelColumn = "diff"

// Label classifies a record in a diff result.
type Label string

const (
	LabelNew  Label = "NEW"  // present now, absent before
	LabelOld  Label = "OLD"  // present in both snapshots
	LabelGone Label = "GONE" // present before, absent now
)

// ParseLabel maps a stored label back to a Label.
func ParseLabel(s string) (Label, bool) {
	switch Label(s) {
	case LabelNew, LabelOld, LabelGone:
		return Label(s), true
	}
	return "", false
}

// Row is one labeled record of a diff result.
type Row struct {
	Label  Label
	Record Record
}

// Result is the labeled union of two snapshots. Rows are ordered NEW, OLD,
// GONE, each group by uid ascending.
type Result struct {
	Rows  []Row
	Extra []string // extra columns, after the canonical ones
}

// Header returns the tabular header: label column, canonical columns, extras.
func (r Result) Header() []string {
	h := make([]string, 0, 1+len(Columns)+len(r.Extra))
	h = append(h, LabelColumn)
	h = append(h, Columns...)
	return append(h, r.Extra...)
}

// Table returns every row in tabular form, matching Header.
func (r Result) Table() [][]string {
	out := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, append([]string{string(row.Label)}, row.Record.Values(r.Extra)...))
	}
	return out
}

// Count returns the number of rows carrying label.
func (r Result) Count(label Label) int {
	n := 0
	for _, row := range r.Rows {
		if row.Label == label {
			n++
		}
	}
	return n
}

// Filter returns the rows carrying label, in result order.
func (r Result) Filter(label Label) []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Label == label {
			out = append(out, row)
		}
	}
	return out
}
