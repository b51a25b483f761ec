package store

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/amishk599/jobby/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// clock returns a now func that hands out the given times in order.
func clock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		tm := times[i]
		if i < len(times)-1 {
			i++
		}
		return tm
	}
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s := newTestStore(t)
	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestSQLiteStore_SaveThenLoad(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(sampleResult()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(c.Keys(), []string{"raw.a.3", "raw.a.1"}) {
		t.Fatalf("Keys() = %v, want GONE row dropped", c.Keys())
	}
	for i, uid := range c.Keys() {
		got, _ := c.Get(uid)
		want := sampleResult().Rows[i].Record
		if !reflect.DeepEqual(got, want) {
			t.Errorf("record %s mismatch:\n got  %+v\n want %+v", uid, got, want)
		}
	}
}

func TestSQLiteStore_LoadUsesLatestRun(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = clock(base, base.Add(time.Hour))

	first := model.Result{Rows: []model.Row{
		{Label: model.LabelNew, Record: model.Record{UID: "a.1", Title: "first"}},
	}}
	second := model.Result{Rows: []model.Row{
		{Label: model.LabelGone, Record: model.Record{UID: "a.1", Title: "first"}},
		{Label: model.LabelNew, Record: model.Record{UID: "a.2", Title: "second"}},
	}}
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(c.Keys(), []string{"a.2"}) {
		t.Errorf("Keys() = %v, want [a.2]", c.Keys())
	}
}

func TestSQLiteStore_Runs(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = clock(base, base.Add(time.Hour))

	if err := s.Save(sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(model.Result{}); err != nil {
		t.Fatal(err)
	}

	runs, err := s.Runs(10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].Total != 0 {
		t.Errorf("newest run Total = %d, want 0", runs[0].Total)
	}
	got := runs[1]
	if got.Total != 3 || got.New != 1 || got.Old != 1 || got.Gone != 1 {
		t.Errorf("oldest run counts = %+v, want 3 total, 1 of each label", got)
	}
	if !got.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, base)
	}
	if got.ID == "" || got.ID == runs[0].ID {
		t.Errorf("run ids should be unique and non-empty: %q, %q", got.ID, runs[0].ID)
	}
}

func TestSQLiteStore_CleanupKeepsLatestRun(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	// Two saves, then a cleanup a week later.
	s.now = clock(base, base.Add(time.Hour), base.Add(7*24*time.Hour))

	if err := s.Save(model.Result{Rows: []model.Row{{Label: model.LabelNew, Record: model.Record{UID: "a.1"}}}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(model.Result{Rows: []model.Row{{Label: model.LabelOld, Record: model.Record{UID: "a.1"}}}}); err != nil {
		t.Fatal(err)
	}

	if err := s.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	runs, err := s.Runs(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want only the latest run", len(runs))
	}
	if runs[0].Old != 1 {
		t.Errorf("kept run = %+v, want the second save", runs[0])
	}

	var orphans int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshot_rows WHERE run_id != ?", runs[0].ID).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("%d rows of deleted runs remain", orphans)
	}

	c, err := s.Load()
	if err != nil || c.Len() != 1 {
		t.Errorf("Load after cleanup = %v, %v; want one record", c, err)
	}
}

func TestSQLiteStore_LoadKeepsExtraColumnOrder(t *testing.T) {
	s := newTestStore(t)
	result := model.Result{
		Rows: []model.Row{
			{Label: model.LabelNew, Record: model.Record{UID: "a.1", Extra: map[string]string{
				"team": "infra", "salary": "90k", "level": "L4", "benefits": "yes",
			}}},
		},
		Extra: []string{"team", "salary", "level", "benefits"},
	}
	if err := s.Save(result); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for i := 0; i < 5; i++ {
		c, err := s.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !reflect.DeepEqual(c.ExtraColumns(), result.Extra) {
			t.Fatalf("load %d: ExtraColumns() = %v, want %v", i, c.ExtraColumns(), result.Extra)
		}
	}
}

func TestNewSQLiteStore_UpgradesOldRunsTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`CREATE TABLE runs (
		id TEXT PRIMARY KEY, started_at DATETIME NOT NULL, total INTEGER NOT NULL,
		new_count INTEGER NOT NULL, old_count INTEGER NOT NULL, gone_count INTEGER NOT NULL)`)
	db.Close()
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	if err := s.Save(sampleResult()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(c.ExtraColumns(), []string{"salary"}) {
		t.Errorf("ExtraColumns() = %v, want [salary]", c.ExtraColumns())
	}
}
