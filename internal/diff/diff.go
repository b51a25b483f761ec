// Package diff classifies the records of two snapshots as NEW, OLD or GONE.
package diff

import (
	"sort"

	"github.com/amishk599/jobby/internal/model"
)

// Diff computes the labeled union of the previous and current snapshots.
//
// Keys only in cur are NEW and keys in both are OLD, both taken from cur.
// Keys only in prev are GONE, taken from prev. Each group is sorted by uid
// and the groups are emitted in NEW, OLD, GONE order. Neither input is
// modified.
func Diff(prev, cur *model.Collection) model.Result {
	if prev == nil {
		prev = model.NewCollection()
	}
	if cur == nil {
		cur = model.NewCollection()
	}

	var added, kept, gone []string
	for _, uid := range cur.Keys() {
		if prev.Has(uid) {
			kept = append(kept, uid)
		} else {
			added = append(added, uid)
		}
	}
	for _, uid := range prev.Keys() {
		if !cur.Has(uid) {
			gone = append(gone, uid)
		}
	}

	rows := make([]model.Row, 0, len(added)+len(kept)+len(gone))
	rows = appendGroup(rows, model.LabelNew, added, cur)
	rows = appendGroup(rows, model.LabelOld, kept, cur)
	rows = appendGroup(rows, model.LabelGone, gone, prev)

	return model.Result{
		Rows:  rows,
		Extra: mergeColumns(prev.ExtraColumns(), cur.ExtraColumns()),
	}
}

func appendGroup(rows []model.Row, label model.Label, uids []string, src *model.Collection) []model.Row {
	sort.Strings(uids)
	for _, uid := range uids {
		r, _ := src.Get(uid)
		rows = append(rows, model.Row{Label: label, Record: r})
	}
	return rows
}

// mergeColumns returns a followed by the columns of b not already in a.
func mergeColumns(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, col := range a {
		seen[col] = true
		out = append(out, col)
	}
	for _, col := range b {
		if !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
	}
	return out
}
