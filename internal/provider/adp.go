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

// KindADP identifies the ADP Workforce Now career center adapter.
const KindADP = "adp"

const adpBaseURL = "https://workforcenow.adp.com/mascsr/default/careercenter/public/events/staffing/v1/job-requisitions"

// adpRequisition represents a single job in the ADP API response.
type adpRequisition struct {
	ItemID           any `json:"itemID"`
	RequisitionTitle any `json:"requisitionTitle"`
}

// adpResponse is the top-level ADP job requisitions response.
type adpResponse struct {
	JobRequisitions *[]adpRequisition `json:"jobRequisitions"`
}

// ADPAdapter fetches jobs from an ADP career center. ADP does not expose a
// usable location, so records carry an empty one.
type ADPAdapter struct {
	cid         string
	companyName string
	client      *http.Client
	logger      *slog.Logger
}

// NewADPAdapter creates a new adapter for the ADP career center with client id cid.
func NewADPAdapter(cid string, companyName string, client *http.Client, logger *slog.Logger) *ADPAdapter {
	return &ADPAdapter{
		cid:         cid,
		companyName: companyName,
		client:      client,
		logger:      logger,
	}
}

// NewADPFromConfig builds an ADPAdapter from `<cid>: <company name>`.
func NewADPFromConfig(key string, params *yaml.Node, deps Deps) (model.Provider, error) {
	name, err := scalarParam(KindADP, key, params)
	if err != nil {
		return nil, err
	}
	return NewADPAdapter(key, name, deps.Client, deps.Logger), nil
}

func (a *ADPAdapter) Kind() string { return KindADP }
func (a *ADPAdapter) Name() string { return a.cid }

// FetchJobs retrieves all requisitions and normalizes them into records.
func (a *ADPAdapter) FetchJobs(ctx context.Context) ([]model.Record, error) {
	endpoint := adpBaseURL + "?cid=" + url.QueryEscape(a.cid)

	var resp adpResponse
	if err := getJSON(ctx, a.client, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("adp fetch for %s: %w", a.cid, err)
	}
	if resp.JobRequisitions == nil {
		return nil, fmt.Errorf("adp fetch for %s: response has no jobRequisitions", a.cid)
	}

	records := make([]model.Record, 0, len(*resp.JobRequisitions))
	for i, req := range *resp.JobRequisitions {
		fields := model.Fields{model.FieldLocation: ""}
		if title, ok := model.StringValue(req.RequisitionTitle); ok {
			fields[model.FieldTitle] = extractText(title)
		}
		if id, ok := model.StringValue(req.ItemID); ok && id != "" {
			fields[model.FieldUID] = uid(KindADP, a.cid, id)
		}

		rec, err := model.NewRecord(fields, a.companyName)
		if err != nil {
			a.logger.Warn("skipping item", "kind", KindADP, "name", a.cid, "index", i, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
