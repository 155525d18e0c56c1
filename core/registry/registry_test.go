package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/discernus/discernus-sub017/core/extract"
)

const sample = `
markers:
  - name: ANALYSIS_JSON
  - name: DISCERNUS_ANALYSIS_JSON
    version: "6"
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []extract.Markers{
		{Name: "ANALYSIS_JSON"},
		{Name: "DISCERNUS_ANALYSIS_JSON", Version: "6"},
	}
	if diff := cmp.Diff(want, r.Markers()); diff != "" {
		t.Errorf("Markers() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "markers: []", ErrEmpty},
		{"no key", "other: 1", ErrEmpty},
		{"lower-case name", "markers:\n  - name: analysis_json", nil},
		{"bad version", "markers:\n  - name: X\n    version: six", nil},
		{"duplicate", "markers:\n  - name: X\n    version: '1'\n  - name: X\n    version: v1", nil},
		{"not yaml", "markers: [", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(r.Markers()); got != 2 {
		t.Errorf("Load() returned %d markers, want 2", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestRegistry_Extractor(t *testing.T) {
	r, err := New(extract.Markers{Name: "SCORES", Version: "3"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := r.Extractor().Extract("<<<SCORES_v3>>>[1]<<<END_SCORES_v3>>>")
	if !res.OK() || res.MatchedStyle != extract.StyleExplicitMarkers {
		t.Errorf("Extract() = %+v", res)
	}

	// The default ANALYSIS_JSON convention is not registered here.
	res = r.Extractor().Extract("<<<ANALYSIS_JSON>>>[1]<<<END_ANALYSIS_JSON>>>")
	if res.MatchedStyle == extract.StyleExplicitMarkers {
		t.Errorf("unregistered convention matched: %+v", res)
	}
}

func TestRegistry_AddAndMarshal(t *testing.T) {
	r, err := Default().Add(extract.Markers{Name: "SCORES"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := r.Add(extract.Markers{Name: "SCORES"}); err == nil {
		t.Error("Add(duplicate) error = nil")
	}

	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()) error = %v", err)
	}
	if diff := cmp.Diff(r.Markers(), back.Markers()); diff != "" {
		t.Errorf("registry changed through YAML (-want +got):\n%s", diff)
	}
}
