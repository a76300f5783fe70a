// Package testutil provides shared fixtures and assertion helpers for docmod
// tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arthur-debert/docmod/treedoc"
)

// LoadDoc loads the named YAML fixture from testdata as a single document.
func LoadDoc(t *testing.T, name string) *treedoc.Document {
	t.Helper()
	doc, err := treedoc.ParseYAML(readFixture(t, name))
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", name, err)
	}
	return doc
}

// LoadDocs loads the named YAML fixture from testdata as a multi-document
// stream.
func LoadDocs(t *testing.T, name string) []*treedoc.Document {
	t.Helper()
	docs, err := treedoc.ParseYAMLStream(readFixture(t, name))
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", name, err)
	}
	return docs
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()

	// Resolve testdata relative to this source file so fixtures load from
	// any package's test binary.
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get runtime caller info")
	}
	path := filepath.Join(filepath.Dir(filename), "testdata", name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture file: %v", err)
	}
	return data
}

// MustParseJSON parses a JSON document literal or fails the test.
func MustParseJSON(t *testing.T, src string) *treedoc.Document {
	t.Helper()
	doc, err := treedoc.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("failed to parse document %q: %v", src, err)
	}
	return doc
}
