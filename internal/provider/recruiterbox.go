package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobby/internal/model"
)

// KindRecruiterBox identifies the RecruiterBox openings widget adapter.
const KindRecruiterBox = "recruiter_box"

const recruiterBoxBaseURL = "https://app.recruiterbox.com/widget"

// recruiterBoxOpening represents a single opening in the RecruiterBox widget response.
type recruiterBoxOpening struct {
	ID           any            `json:"id"`
	Title        any            `json:"title"`
	Location     map[string]any `json:"location"`
	AllowsRemote any            `json:"allows_remote"` // bool or free text
	PositionType any            `json:"position_type"` // e.g. "Full Time"
}

// RecruiterBoxAdapter fetches openings from a RecruiterBox widget.
type RecruiterBoxAdapter struct {
	widgetID    string
	companyName string
	client      *http.Client
	logger      *slog.Logger
}

// NewRecruiterBoxAdapter creates a new adapter for a RecruiterBox widget.
func NewRecruiterBoxAdapter(widgetID string, companyName string, client *http.Client, logger *slog.Logger) *RecruiterBoxAdapter {
	return &RecruiterBoxAdapter{
		widgetID:    widgetID,
		companyName: companyName,
		client:      client,
		logger:      logger,
	}
}

// NewRecruiterBoxFromConfig builds a RecruiterBoxAdapter from `<widget id>: <company name>`.
func NewRecruiterBoxFromConfig(key string, params *yaml.Node, deps Deps) (model.Provider, error) {
	name, err := scalarParam(KindRecruiterBox, key, params)
	if err != nil {
		return nil, err
	}
	return NewRecruiterBoxAdapter(key, name, deps.Client, deps.Logger), nil
}

func (a *RecruiterBoxAdapter) Kind() string { return KindRecruiterBox }
func (a *RecruiterBoxAdapter) Name() string { return a.widgetID }

// FetchJobs retrieves all openings and normalizes them into records. The
// structured location is flattened and the remote and position-type fields
// are coerced to flags.
func (a *RecruiterBoxAdapter) FetchJobs(ctx context.Context) ([]model.Record, error) {
	endpoint := fmt.Sprintf("%s/%s/openings", recruiterBoxBaseURL, url.PathEscape(a.widgetID))

	var openings []recruiterBoxOpening
	if err := getJSON(ctx, a.client, endpoint, &openings); err != nil {
		return nil, fmt.Errorf("recruiter_box fetch for %s: %w", a.widgetID, err)
	}
	if openings == nil {
		return nil, fmt.Errorf("recruiter_box fetch for %s: response is not an openings array", a.widgetID)
	}

	records := make([]model.Record, 0, len(openings))
	for i, o := range openings {
		fields := model.Fields{
			model.FieldLocation:     model.FlattenLocation(o.Location),
			model.FieldAllowsRemote: o.AllowsRemote,
			model.FieldIsFullTime:   o.PositionType,
		}
		if title, ok := model.StringValue(o.Title); ok {
			fields[model.FieldTitle] = extractText(title)
		}
		if id, ok := model.StringValue(o.ID); ok && id != "" {
			fields[model.FieldUID] = uid(KindRecruiterBox, a.widgetID, id)
		}

		rec, err := model.NewRecord(fields, a.companyName)
		if err != nil {
			a.logger.Warn("skipping item", "kind", KindRecruiterBox, "name", a.widgetID, "index", i, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
