package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobby/internal/model"
)

// KindRaw identifies the generic, config-mapped JSON adapter.
const KindRaw = "raw"

// Reserved raw parameter names; every other key must be a canonical field.
const (
	rawParamURI  = "uri"
	rawParamData = "data"
)

// RawProvider fetches a JSON array from any endpoint and maps each item onto
// the canonical record fields using a configured key mapping.
type RawProvider struct {
	name     string
	uri      string
	dataPath []string          // keys leading to the item array; empty = body is the array
	keymap   map[string]string // canonical field -> upstream key
	client   *http.Client
	logger   *slog.Logger
}

// NewRawProvider creates a raw adapter. keymap maps canonical field names to
// upstream keys; dataPath is a dot-separated path to the item array.
func NewRawProvider(name, uri, dataPath string, keymap map[string]string, client *http.Client, logger *slog.Logger) *RawProvider {
	var path []string
	if dataPath != "" {
		path = strings.Split(dataPath, ".")
	}
	return &RawProvider{
		name:     name,
		uri:      uri,
		dataPath: path,
		keymap:   keymap,
		client:   client,
		logger:   logger,
	}
}

// NewRawFromConfig builds a RawProvider from a mapping such as
//
//	acme:
//	  uri: https://acme.example/jobs.json
//	  data: result.jobs
//	  uid: id
//	  title: name
func NewRawFromConfig(key string, params *yaml.Node, deps Deps) (model.Provider, error) {
	if params == nil || params.Kind != yaml.MappingNode {
		return nil, &model.ConfigError{Kind: KindRaw, Key: key, Err: fmt.Errorf("expected a mapping with at least %q", rawParamURI)}
	}

	var raw map[string]string
	if err := params.Decode(&raw); err != nil {
		return nil, &model.ConfigError{Kind: KindRaw, Key: key, Err: err}
	}

	uri := raw[rawParamURI]
	if uri == "" {
		return nil, &model.ConfigError{Kind: KindRaw, Key: key, Err: fmt.Errorf("missing %q", rawParamURI)}
	}

	keymap := make(map[string]string)
	for k, v := range raw {
		if k == rawParamURI || k == rawParamData {
			continue
		}
		if !isColumn(k) {
			return nil, &model.ConfigError{Kind: KindRaw, Key: key, Err: fmt.Errorf("unknown field %q", k)}
		}
		keymap[k] = v
	}

	return NewRawProvider(key, uri, raw[rawParamData], keymap, deps.Client, deps.Logger), nil
}

func (p *RawProvider) Kind() string { return KindRaw }
func (p *RawProvider) Name() string { return p.name }

// FetchJobs retrieves the configured endpoint and maps every item. Items that
// fail validation are logged and skipped.
func (p *RawProvider) FetchJobs(ctx context.Context) ([]model.Record, error) {
	var body any
	if err := getJSON(ctx, p.client, p.uri, &body); err != nil {
		return nil, fmt.Errorf("raw fetch for %s: %w", p.name, err)
	}

	items, err := p.items(body)
	if err != nil {
		return nil, fmt.Errorf("raw fetch for %s: %w", p.name, err)
	}

	records := make([]model.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			p.logger.Warn("skipping item", "kind", KindRaw, "name", p.name, "index", i, "error", "not a JSON object")
			continue
		}

		rec, err := model.NewRecord(p.mapFields(obj), p.name)
		if err != nil {
			p.logger.Warn("skipping item", "kind", KindRaw, "name", p.name, "index", i, "error", err)
			continue
		}
		rec.Title = extractText(rec.Title)
		records = append(records, rec)
	}

	return records, nil
}

// items follows dataPath into the response envelope and returns the array found there.
func (p *RawProvider) items(body any) ([]any, error) {
	cur := body
	for _, key := range p.dataPath {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("data path %q: %q is not inside an object", strings.Join(p.dataPath, "."), key)
		}
		cur, ok = obj[key]
		if !ok {
			return nil, fmt.Errorf("data path %q: key %q not found", strings.Join(p.dataPath, "."), key)
		}
	}

	items, ok := cur.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array of jobs, got %T", cur)
	}
	return items, nil
}

// mapFields extracts the canonical fields from one upstream item. For each
// field the mapped upstream key is used when configured, otherwise a key of
// the same name; anything else stays absent.
func (p *RawProvider) mapFields(item map[string]any) model.Fields {
	fields := make(model.Fields, len(model.Columns))
	for _, field := range model.Columns {
		src := field
		if mapped, ok := p.keymap[field]; ok {
			src = mapped
		}
		if v, ok := item[src]; ok {
			fields[field] = v
		}
	}

	if id, ok := model.StringValue(fields[model.FieldUID]); ok && id != "" {
		fields[model.FieldUID] = uid(KindRaw, p.name, id)
	}
	return fields
}

func isColumn(name string) bool {
	for _, c := range model.Columns {
		if c == name {
			return true
		}
	}
	return false
}
