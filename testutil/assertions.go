package testutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/docmod/treedoc"
)

// AssertDocJSON checks that the document serializes to the same value as the
// expected JSON text, reporting a structural diff on mismatch.
func AssertDocJSON(t *testing.T, doc *treedoc.Document, want string) {
	t.Helper()
	got, err := treedoc.MarshalJSON(doc)
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}
	if diff := cmp.Diff(decodeJSON(t, []byte(want)), decodeJSON(t, got)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

// AssertDocsEqual checks two documents for deep typed equality, reporting a
// JSON diff on mismatch.
func AssertDocsEqual(t *testing.T, want, got *treedoc.Document) {
	t.Helper()
	if treedoc.Equal(want.Root(), got.Root()) {
		return
	}
	wantJSON, err := treedoc.MarshalJSON(want)
	if err != nil {
		t.Fatalf("failed to marshal expected document: %v", err)
	}
	gotJSON, err := treedoc.MarshalJSON(got)
	if err != nil {
		t.Fatalf("failed to marshal actual document: %v", err)
	}
	diff := cmp.Diff(decodeJSON(t, wantJSON), decodeJSON(t, gotJSON))
	if diff == "" {
		// Same JSON shape but different value types, e.g. int vs double.
		diff = "(types differ; JSON forms: want " + string(wantJSON) + ", got " + string(gotJSON) + ")"
	}
	t.Errorf("documents differ (-want +got):\n%s", diff)
}

// decodeJSON decodes JSON into a comparable value, keeping numbers as
// json.Number so that ints and doubles stay distinguishable.
func decodeJSON(t *testing.T, data []byte) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("failed to decode JSON %q: %v", data, err)
	}
	return v
}
