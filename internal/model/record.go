package model

import (
	"context"
	"strconv"
)

// Canonical record field names, in column order.
const (
	FieldUID          = "uid"
	FieldTitle        = "title"
	FieldCompany      = "company"
	FieldLocation     = "location"
	FieldAllowsRemote = "allows_remote"
	FieldIsFullTime   = "is_full_time"
)

// Columns is the canonical tabular schema of a Record.
var Columns = []string{
	FieldUID,
	FieldTitle,
	FieldCompany,
	FieldLocation,
	FieldAllowsRemote,
	FieldIsFullTime,
}

// Fields holds raw, not yet normalized values for a record, usually straight
// out of a decoded JSON payload.
type Fields map[string]any

// Unified representation of a job listing from any provider.
type Record struct {
	UID          string            // "{kind}.{instance}.{item id}"
	Title        string            // job title
	Company      string            // company display name
	Location     string            // flattened location string
	AllowsRemote *bool             // nil when the source does not say
	IsFullTime   *bool             // nil when the source does not say
	Extra        map[string]string // pass-through columns from a loaded snapshot
}

// NewRecord builds a Record from raw field values. company is used when
// fields carries no company of its own. Location and the two flags are
// normalized once here; missing required fields yield a *ValidationError.
func NewRecord(fields Fields, company string) (Record, error) {
	uid, ok := StringValue(fields[FieldUID])
	if !ok || uid == "" {
		return Record{}, &ValidationError{Field: FieldUID}
	}

	title, ok := StringValue(fields[FieldTitle])
	if !ok {
		return Record{}, &ValidationError{Field: FieldTitle, UID: uid}
	}

	if c, ok := StringValue(fields[FieldCompany]); ok {
		company = c
	}
	if company == "" {
		return Record{}, &ValidationError{Field: FieldCompany, UID: uid}
	}

	location, ok := NormalizeLocation(fields[FieldLocation])
	if !ok {
		return Record{}, &ValidationError{Field: FieldLocation, UID: uid}
	}

	return Record{
		UID:          uid,
		Title:        title,
		Company:      company,
		Location:     location,
		AllowsRemote: CoerceRemote(fields[FieldAllowsRemote]),
		IsFullTime:   CoerceFullTime(fields[FieldIsFullTime]),
	}, nil
}

// Values returns the record as a tabular row: the canonical columns followed
// by the given extra columns.
func (r Record) Values(extra []string) []string {
	row := []string{
		r.UID,
		r.Title,
		r.Company,
		r.Location,
		formatFlag(r.AllowsRemote),
		formatFlag(r.IsFullTime),
	}
	for _, col := range extra {
		row = append(row, r.Extra[col])
	}
	return row
}

// RecordFromValues is the inverse of Values: it reads a row by header name.
// Columns that are not canonical end up in Extra, unless the cell is empty.
// Unparseable flags are nil.
func RecordFromValues(header, row []string) Record {
	var r Record
	for i, col := range header {
		if i >= len(row) {
			break
		}
		v := row[i]
		switch col {
		case FieldUID:
			r.UID = v
		case FieldTitle:
			r.Title = v
		case FieldCompany:
			r.Company = v
		case FieldLocation:
			r.Location = v
		case FieldAllowsRemote:
			r.AllowsRemote = parseFlag(v)
		case FieldIsFullTime:
			r.IsFullTime = parseFlag(v)
		default:
			if v == "" {
				continue
			}
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[col] = v
		}
	}
	return r
}

func formatFlag(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func parseFlag(s string) *bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// Provider is a configured data source that produces job records.
type Provider interface {
	// Kind is the adapter tag, the first segment of every uid it produces.
	Kind() string
	// Name is the configured instance key, the second uid segment.
	Name() string
	FetchJobs(ctx context.Context) ([]Record, error)
}

// SnapshotStore loads the previous snapshot and persists the new diff result.
type SnapshotStore interface {
	Load() (*Collection, error)
	Save(result Result) error
}

// Notifier reports the outcome of a run.
type Notifier interface {
	Notify(result Result) error
}

// RecordFilter decides whether a fetched record belongs in the snapshot.
type RecordFilter interface {
	Match(r Record) bool
}
