package provider

import (
	"errors"
	"reflect"
	"testing"

	"github.com/amishk599/jobby/internal/config"
	"github.com/amishk599/jobby/internal/model"
)

func TestKinds(t *testing.T) {
	want := []string{KindADP, KindRaw, KindRecruiterBox}
	if got := Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("Kinds() = %v, want %v", got, want)
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(config.ProviderEntry{Kind: "workday", Key: "acme"}, testDeps())
	if !errors.Is(err, model.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestBuild_SkipsBadEntries(t *testing.T) {
	entries := []config.ProviderEntry{
		{Kind: KindADP, Key: "c1", Params: yamlNode(t, "Acme\n")},
		{Kind: "unknown", Key: "x", Params: yamlNode(t, "X\n")},
		{Kind: KindRaw, Key: "broken", Params: yamlNode(t, "title: name\n")},
		{Kind: KindRecruiterBox, Key: "w1", Params: yamlNode(t, "Widget Co\n")},
		{Kind: KindRaw, Key: "ok", Params: yamlNode(t, "uri: https://example.com/jobs\n")},
	}

	providers := Build(entries, testDeps())

	var got []string
	for _, p := range providers {
		got = append(got, p.Kind()+"."+p.Name())
	}
	want := []string{"adp.c1", "recruiter_box.w1", "raw.ok"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %v, want %v", got, want)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"entities", "R&amp;D Engineer", "R&D Engineer"},
		{"encoded tags", "&lt;b&gt;Senior&lt;/b&gt; Engineer", "Senior Engineer"},
		{"whitespace", "  Data\n  Scientist ", "Data Scientist"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractText(tc.input); got != tc.want {
				t.Errorf("extractText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
