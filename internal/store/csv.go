package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/amishk599/jobby/internal/model"
)

var _ model.SnapshotStore = (*CSVStore)(nil)

// CSVStore keeps the latest diff result in a single CSV file, label column first.
type CSVStore struct {
	path string
}

// NewCSVStore returns a store backed by the CSV file at path. The file need
// not exist yet; its directory is created on Save.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *CSVStore) Path() string { return s.path }

// Load returns the listings that were present in the last saved run. Rows
// labeled GONE were already absent then and are dropped. A missing file
// yields an empty collection.
func (s *CSVStore) Load() (*model.Collection, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", s.path, err)
	}
	defer f.Close()

	res, err := ReadResult(f)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", s.path, err)
	}
	return SnapshotOf(res), nil
}

// Save writes result to the store's file, replacing it atomically.
func (s *CSVStore) Save(result model.Result) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".jobs-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteResult(tmp, result); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing snapshot %s: %w", s.path, err)
	}
	return nil
}

// WriteResult writes result as CSV: header first, then one row per record.
func WriteResult(w io.Writer, result model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(result.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(result.Table()); err != nil {
		return err
	}
	return cw.Error()
}

// ReadResult parses CSV written by WriteResult. Files without a label
// column are accepted too; their rows are treated as OLD. A uid column is
// required.
func ReadResult(r io.Reader) (model.Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Result{}, nil
	}
	if err != nil {
		return model.Result{}, fmt.Errorf("reading header: %w", err)
	}

	labelIdx := -1
	hasUID := false
	var extra []string
	for i, col := range header {
		switch {
		case col == model.LabelColumn:
			labelIdx = i
		case col == model.FieldUID:
			hasUID = true
		case !isCanonical(col):
			extra = append(extra, col)
		}
	}
	if !hasUID {
		return model.Result{}, fmt.Errorf("header has no %q column", model.FieldUID)
	}

	res := model.Result{Extra: extra}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Result{}, fmt.Errorf("line %d: %w", line, err)
		}

		label := model.LabelOld
		if labelIdx >= 0 && labelIdx < len(row) {
			l, ok := model.ParseLabel(row[labelIdx])
			if !ok {
				return model.Result{}, fmt.Errorf("line %d: unknown label %q", line, row[labelIdx])
			}
			label = l
		}

		rec := model.RecordFromValues(header, row)
		delete(rec.Extra, model.LabelColumn)
		if len(rec.Extra) == 0 {
			rec.Extra = nil
		}
		if rec.UID == "" {
			return model.Result{}, fmt.Errorf("line %d: empty uid", line)
		}
		res.Rows = append(res.Rows, model.Row{Label: label, Record: rec})
	}
	return res, nil
}

// ReadResultFile reads a CSV result from path.
func ReadResultFile(path string) (model.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Result{}, err
	}
	defer f.Close()
	return ReadResult(f)
}

// SnapshotOf returns the listings a stored result says were present: every
// row except the GONE ones.
func SnapshotOf(res model.Result) *model.Collection {
	c := model.NewCollection(res.Extra...)
	for _, row := range res.Rows {
		if row.Label == model.LabelGone {
			continue
		}
		c.Put(row.Record)
	}
	return c
}

func isCanonical(col string) bool {
	for _, c := range model.Columns {
		if c == col {
			return true
		}
	}
	return false
}
