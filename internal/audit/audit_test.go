package audit

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/discernus/discernus-sub017/core/extract"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "audit.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	res := extract.Extract("<<<ANALYSIS_JSON>>>\n{\"a\": 1}\n<<<END_ANALYSIS_JSON>>>")
	id, err := s.Record(ctx, "a.txt", res)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if id == "" {
		t.Fatal("Record() returned empty id")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Source != "a.txt" || !got.OK || got.MatchedStyle != extract.StyleExplicitMarkers {
		t.Errorf("Get() = %+v", got)
	}
	if string(got.Value) != `{"a":1}` {
		t.Errorf("Value = %s, want {\"a\":1}", got.Value)
	}
	if got.RawJSON != `{"a": 1}` {
		t.Errorf("RawJSON = %q", got.RawJSON)
	}
	if len(got.Errors) != 0 {
		t.Errorf("Errors = %v, want none", got.Errors)
	}
}

func TestRecord_FailureAndNull(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	failed := extract.Extract("no json here at all")
	failedID, err := s.Record(ctx, "prose.txt", failed)
	if err != nil {
		t.Fatalf("Record(failed) error = %v", err)
	}
	null := extract.Extract("null")
	nullID, err := s.Record(ctx, "null.txt", null)
	if err != nil {
		t.Fatalf("Record(null) error = %v", err)
	}

	gotFailed, err := s.Get(ctx, failedID)
	if err != nil {
		t.Fatal(err)
	}
	if gotFailed.OK || gotFailed.Value != nil {
		t.Errorf("failed entry = %+v, want no value", gotFailed)
	}
	if diff := cmp.Diff(failed.Errors, gotFailed.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}

	gotNull, err := s.Get(ctx, nullID)
	if err != nil {
		t.Fatal(err)
	}
	if !gotNull.OK || string(gotNull.Value) != "null" {
		t.Errorf("null entry value = %q ok=%v, want null", gotNull.Value, gotNull.OK)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestListAndStats(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	inputs := []struct{ source, text string }{
		{"one", `{"a": 1}`},
		{"two", "```json\n{a: 1}\n```"},
		{"three", "nothing"},
		{"four", "<<<ANALYSIS_JSON>>>\n{\"b\": 2}\n<<<END_ANALYSIS_JSON>>>"},
	}
	for _, in := range inputs {
		if _, err := s.Record(ctx, in.source, extract.Extract(in.text)); err != nil {
			t.Fatalf("Record(%s) error = %v", in.source, err)
		}
	}

	all, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var sources []string
	for _, e := range all {
		sources = append(sources, e.Source)
	}
	if diff := cmp.Diff([]string{"four", "three", "two", "one"}, sources); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}

	limited, err := s.List(ctx, ListOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("List(Limit: 2) returned %d entries", len(limited))
	}

	failed, err := s.List(ctx, ListOptions{FailedOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].Source != "three" {
		t.Errorf("List(FailedOnly) = %+v, want only three", failed)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Total != 4 || st.Succeeded != 3 || st.Failed != 1 || st.Lenient != 1 {
		t.Errorf("Stats() = %+v", st)
	}
	if st.ByStyle[extract.StyleFencedCodeBlock] != 1 || st.ByStyle[extract.StyleBareJSON] != 2 {
		t.Errorf("ByStyle = %v", st.ByStyle)
	}
	if st.ByKind[extract.LenientParseFailure] != 1 {
		t.Errorf("ByKind = %v", st.ByKind)
	}
}

func TestEntry_JSON(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Record(ctx, "x", extract.Extract(`[1, 2]`))
	if err != nil {
		t.Fatal(err)
	}
	e, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["parsed_value"]; !ok {
		t.Errorf("encoded entry lacks parsed_value: %s", encoded)
	}
}
