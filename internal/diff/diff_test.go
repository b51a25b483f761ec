package diff

import (
	"reflect"
	"testing"

	"github.com/amishk599/jobby/internal/model"
)

func collection(uids ...string) *model.Collection {
	c := model.NewCollection()
	for _, uid := range uids {
		c.Put(model.Record{UID: uid, Title: "title " + uid, Company: "testco"})
	}
	return c
}

func labelsAndUIDs(res model.Result) []string {
	out := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, string(row.Label)+":"+row.Record.UID)
	}
	return out
}

func TestDiff_Partitions(t *testing.T) {
	prev := collection("c", "a", "e", "b")
	cur := collection("d", "b", "f", "a")

	got := labelsAndUIDs(Diff(prev, cur))
	want := []string{
		"NEW:d", "NEW:f",
		"OLD:a", "OLD:b",
		"GONE:c", "GONE:e",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff rows = %v, want %v", got, want)
	}
}

func TestDiff_DisjointKeySets(t *testing.T) {
	prev := collection("x1", "x2")
	cur := collection("y1")

	res := Diff(prev, cur)
	if res.Count(model.LabelOld) != 0 {
		t.Errorf("OLD = %d, want 0 for disjoint sets", res.Count(model.LabelOld))
	}
	if res.Count(model.LabelNew) != 1 || res.Count(model.LabelGone) != 2 {
		t.Errorf("NEW = %d, GONE = %d, want 1 and 2", res.Count(model.LabelNew), res.Count(model.LabelGone))
	}

	seen := make(map[string]bool)
	for _, row := range res.Rows {
		if seen[row.Record.UID] {
			t.Errorf("uid %s appears in more than one partition", row.Record.UID)
		}
		seen[row.Record.UID] = true
		if !prev.Has(row.Record.UID) && !cur.Has(row.Record.UID) {
			t.Errorf("uid %s is not in either input", row.Record.UID)
		}
	}
}

func TestDiff_EmptyOld(t *testing.T) {
	got := labelsAndUIDs(Diff(model.NewCollection(), collection("b", "c", "a")))
	want := []string{"NEW:a", "NEW:b", "NEW:c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff rows = %v, want %v", got, want)
	}
}

func TestDiff_EmptyNew(t *testing.T) {
	got := labelsAndUIDs(Diff(collection("b", "a"), model.NewCollection()))
	want := []string{"GONE:a", "GONE:b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff rows = %v, want %v", got, want)
	}
}

func TestDiff_BothEmpty(t *testing.T) {
	res := Diff(model.NewCollection(), model.NewCollection())
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(res.Rows))
	}
	want := append([]string{model.LabelColumn}, model.Columns...)
	if !reflect.DeepEqual(res.Header(), want) {
		t.Errorf("Header() = %v, want %v", res.Header(), want)
	}
}

func TestDiff_SameKeysTakesCurrentValues(t *testing.T) {
	prev := model.NewCollection()
	prev.Put(model.Record{UID: "a", Title: "Old Title"})
	cur := model.NewCollection()
	cur.Put(model.Record{UID: "a", Title: "New Title"})

	res := Diff(prev, cur)
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.Label != model.LabelOld {
		t.Errorf("Label = %s, want OLD", row.Label)
	}
	if row.Record.Title != "New Title" {
		t.Errorf("Title = %q, want value from the current snapshot", row.Record.Title)
	}
}

func TestDiff_IdenticalInputsAllOld(t *testing.T) {
	c := collection("a", "b", "c")
	res := Diff(c, c)
	if res.Count(model.LabelOld) != 3 || res.Count(model.LabelNew) != 0 || res.Count(model.LabelGone) != 0 {
		t.Errorf("unexpected counts: %v", labelsAndUIDs(res))
	}
}

func TestDiff_Deterministic(t *testing.T) {
	prev := collection("z", "m", "a")
	cur := collection("m", "q", "b")

	first := Diff(prev, cur)
	second := Diff(prev, cur)
	if !reflect.DeepEqual(first.Table(), second.Table()) {
		t.Error("two diffs of the same inputs differ")
	}

	// Insertion order must not matter.
	shuffled := Diff(collection("a", "z", "m"), collection("b", "q", "m"))
	if !reflect.DeepEqual(first.Table(), shuffled.Table()) {
		t.Error("diff depends on insertion order")
	}
}

func TestDiff_DoesNotMutateInputs(t *testing.T) {
	prev := collection("b", "a")
	cur := collection("c")
	Diff(prev, cur)

	if !reflect.DeepEqual(prev.Keys(), []string{"b", "a"}) || !reflect.DeepEqual(cur.Keys(), []string{"c"}) {
		t.Errorf("inputs changed: prev=%v cur=%v", prev.Keys(), cur.Keys())
	}
}

func TestDiff_ExtraColumnsPassThrough(t *testing.T) {
	prev := model.NewCollection()
	prev.Put(model.Record{UID: "gone", Extra: map[string]string{"salary": "90k"}})
	cur := model.NewCollection()
	cur.Put(model.Record{UID: "new", Extra: map[string]string{"team": "infra"}})

	res := Diff(prev, cur)
	if !reflect.DeepEqual(res.Extra, []string{"salary", "team"}) {
		t.Errorf("Extra = %v, want [salary team]", res.Extra)
	}
	if res.Rows[1].Record.Extra["salary"] != "90k" {
		t.Errorf("GONE row lost its extra column: %+v", res.Rows[1].Record)
	}
}
