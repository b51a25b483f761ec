// Package provider turns employer career-site APIs into normalized job records.
//
// Every provider kind registers a Constructor in a static table keyed by its
// kind string. Build walks the configured entries and instantiates the ones
// it can, logging and skipping the rest.
package provider

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobby/internal/config"
	"github.com/amishk599/jobby/internal/model"
)

// Deps are the shared collaborators handed to every constructor.
type Deps struct {
	Client *http.Client
	Logger *slog.Logger
}

// Constructor configures one provider instance from its instance key and
// parameters. Malformed parameters are reported as *model.ConfigError.
type Constructor func(key string, params *yaml.Node, deps Deps) (model.Provider, error)

// registry is populated once at package init and only read afterwards.
var registry = map[string]Constructor{
	KindRaw:          NewRawFromConfig,
	KindADP:          NewADPFromConfig,
	KindRecruiterBox: NewRecruiterBoxFromConfig,
}

// Kinds returns the registered provider kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New configures a single entry.
func New(entry config.ProviderEntry, deps Deps) (model.Provider, error) {
	ctor, ok := registry[entry.Kind]
	if !ok {
		return nil, &model.ConfigError{Kind: entry.Kind, Key: entry.Key, Err: model.ErrUnknownProvider}
	}
	return ctor(entry.Key, entry.Params, deps)
}

// Build configures every entry in order. Entries that fail are logged and
// skipped; the load itself never fails.
func Build(entries []config.ProviderEntry, deps Deps) []model.Provider {
	providers := make([]model.Provider, 0, len(entries))
	for _, entry := range entries {
		p, err := New(entry, deps)
		if err != nil {
			deps.Logger.Error("skipping provider", "kind", entry.Kind, "name", entry.Key, "error", err)
			continue
		}
		deps.Logger.Debug("registered provider", "kind", p.Kind(), "name", p.Name())
		providers = append(providers, p)
	}
	return providers
}

// scalarParam decodes a provider parameter that must be a single string,
// such as the company display name used by the vendor adapters.
func scalarParam(kind, key string, params *yaml.Node) (string, error) {
	if params == nil || params.Kind != yaml.ScalarNode || params.Tag == "!!null" {
		return "", &model.ConfigError{Kind: kind, Key: key, Err: fmt.Errorf("expected a company name")}
	}
	if params.Value == "" {
		return "", &model.ConfigError{Kind: kind, Key: key, Err: fmt.Errorf("company name is empty")}
	}
	return params.Value, nil
}
