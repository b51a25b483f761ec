package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobby/internal/aggregate"
	"github.com/amishk599/jobby/internal/model"
)

// --- Mock/Fake Implementations ---

// MockProvider returns a canned slice of records or an error.
type MockProvider struct {
	Records []model.Record
	Err     error
}

func (m *MockProvider) Kind() string { return "mock" }
func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchJobs(_ context.Context) ([]model.Record, error) {
	return m.Records, m.Err
}

// InMemoryStore keeps the last saved result.
type InMemoryStore struct {
	saved   []model.Result
	loadErr error
	saveErr error
	cleaned []time.Duration
}

func (s *InMemoryStore) Load() (*model.Collection, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	c := model.NewCollection()
	if len(s.saved) == 0 {
		return c, nil
	}
	for _, row := range s.saved[len(s.saved)-1].Rows {
		if row.Label != model.LabelGone {
			c.Put(row.Record)
		}
	}
	return c, nil
}

func (s *InMemoryStore) Save(res model.Result) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, res)
	return nil
}

func (s *InMemoryStore) Cleanup(olderThan time.Duration) error {
	s.cleaned = append(s.cleaned, olderThan)
	return nil
}

// RecordingNotifier records every result sent to Notify.
type RecordingNotifier struct {
	Notified []model.Result
	Err      error
}

func (n *RecordingNotifier) Notify(res model.Result) error {
	n.Notified = append(n.Notified, res)
	return n.Err
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeRecords(uids ...string) []model.Record {
	records := make([]model.Record, len(uids))
	for i, uid := range uids {
		records[i] = model.Record{UID: uid, Title: "Engineer " + uid, Company: "Acme"}
	}
	return records
}

func newTestRunner(p *MockProvider, store *InMemoryStore, n *RecordingNotifier) *Runner {
	return NewRunner([]model.Provider{p}, aggregate.NewAggregator(1, nil, discardLogger()), store, n, discardLogger())
}

func uidsOf(rows []model.Row) []string {
	var uids []string
	for _, r := range rows {
		uids = append(uids, r.Record.UID)
	}
	return uids
}

// --- Tests ---

func TestRun_FirstRunAllNew(t *testing.T) {
	p := &MockProvider{Records: makeRecords("b", "a")}
	store := &InMemoryStore{}
	n := &RecordingNotifier{}

	res, err := newTestRunner(p, store, n).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if res.Count(model.LabelNew) != 2 || len(res.Rows) != 2 {
		t.Errorf("expected 2 NEW rows, got %+v", res.Rows)
	}
	if len(store.saved) != 1 || len(n.Notified) != 1 {
		t.Errorf("saved %d, notified %d; want 1 each", len(store.saved), len(n.Notified))
	}
}

func TestRun_SecondRunDiffsAgainstSaved(t *testing.T) {
	p := &MockProvider{Records: makeRecords("a", "b")}
	store := &InMemoryStore{}
	n := &RecordingNotifier{}
	r := newTestRunner(p, store, n)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	p.Records = makeRecords("b", "c")
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if got := uidsOf(res.Filter(model.LabelNew)); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("NEW = %v, want [c]", got)
	}
	if got := uidsOf(res.Filter(model.LabelOld)); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("OLD = %v, want [b]", got)
	}
	if got := uidsOf(res.Filter(model.LabelGone)); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("GONE = %v, want [a]", got)
	}
}

func TestRun_LoadErrorAborts(t *testing.T) {
	store := &InMemoryStore{loadErr: errors.New("disk on fire")}
	n := &RecordingNotifier{}

	_, err := newTestRunner(&MockProvider{Records: makeRecords("a")}, store, n).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("Run() = %v, want the load error", err)
	}
	if len(n.Notified) != 0 {
		t.Error("notifier should not be called when load fails")
	}
}

func TestRun_SaveErrorAborts(t *testing.T) {
	store := &InMemoryStore{saveErr: errors.New("read-only")}
	n := &RecordingNotifier{}

	if _, err := newTestRunner(&MockProvider{Records: makeRecords("a")}, store, n).Run(context.Background()); err == nil {
		t.Fatal("expected error when save fails")
	}
	if len(n.Notified) != 0 {
		t.Error("notifier should not be called when save fails")
	}
}

func TestRun_NotifyErrorOnlyLogged(t *testing.T) {
	var logs bytes.Buffer
	store := &InMemoryStore{}
	n := &RecordingNotifier{Err: errors.New("slack down")}
	r := NewRunner([]model.Provider{&MockProvider{Records: makeRecords("a")}},
		aggregate.NewAggregator(1, nil, discardLogger()), store, n,
		slog.New(slog.NewTextHandler(&logs, nil)))

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil despite notifier error", err)
	}
	if !strings.Contains(logs.String(), "notification failed") || !strings.Contains(logs.String(), "run_id=") {
		t.Errorf("expected a logged notifier failure tagged with run_id:\n%s", logs.String())
	}
	if len(store.saved) != 1 {
		t.Error("snapshot should be saved before notifying")
	}
}

func TestRun_CancelledDoesNotSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &InMemoryStore{}

	if _, err := newTestRunner(&MockProvider{Records: makeRecords("a")}, store, &RecordingNotifier{}).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if len(store.saved) != 0 {
		t.Error("a cancelled run must not overwrite the snapshot")
	}
}

func TestRun_RetentionCleansUp(t *testing.T) {
	store := &InMemoryStore{}
	r := newTestRunner(&MockProvider{}, store, &RecordingNotifier{}).WithRetention(48 * time.Hour)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(store.cleaned, []time.Duration{48 * time.Hour}) {
		t.Errorf("cleaned = %v, want [48h]", store.cleaned)
	}
}
