package update

import (
	"errors"
	"testing"

	"github.com/arthur-debert/docmod/testutil"
	"github.com/arthur-debert/docmod/treedoc"
)

// initPullAll builds an initialized PullAll from a one-field spec document,
// e.g. {"a": [2, 3]}.
func initPullAll(t *testing.T, spec string) *PullAll {
	t.Helper()
	specDoc := testutil.MustParseJSON(t, spec)
	mod := &PullAll{}
	if err := mod.Init(specDoc.Root().LeftChild()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return mod
}

// runPullAll executes the full lifecycle against doc and returns the exec
// info and the emitted log fragment.
func runPullAll(t *testing.T, mod *PullAll, doc *treedoc.Document, matchedField string) (ExecInfo, *treedoc.Document) {
	t.Helper()
	var info ExecInfo
	if err := mod.Prepare(doc.Root(), matchedField, &info); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if !info.NoOp {
		if err := mod.Apply(); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
	}
	logDoc := treedoc.NewDocument()
	if err := mod.Log(logDoc.Root()); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	return info, logDoc
}

func TestPullAllInit(t *testing.T) {
	t.Run("NonArrayArgument", func(t *testing.T) {
		for _, spec := range []string{`{"a": 1}`, `{"a": "x"}`, `{"a": {"b": 1}}`, `{"a": null}`} {
			specDoc := testutil.MustParseJSON(t, spec)
			err := (&PullAll{}).Init(specDoc.Root().LeftChild())
			if !errors.Is(err, ErrBadValue) {
				t.Errorf("spec %s: expected ErrBadValue, got %v", spec, err)
			}
		}
	})

	t.Run("MalformedPath", func(t *testing.T) {
		specDoc := testutil.MustParseJSON(t, `{"a..b": [1]}`)
		err := (&PullAll{}).Init(specDoc.Root().LeftChild())
		if !errors.Is(err, ErrBadValue) {
			t.Errorf("expected ErrBadValue, got %v", err)
		}
	})

	t.Run("EmptyArrayArgument", func(t *testing.T) {
		// Legal: an empty removal set simply never matches.
		specDoc := testutil.MustParseJSON(t, `{"a": []}`)
		if err := (&PullAll{}).Init(specDoc.Root().LeftChild()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestPullAllRemovesAllMatches(t *testing.T) {
	// Example A: removal set [2, 3] against [1, 2, 3, 2] leaves [1].
	mod := initPullAll(t, `{"a": [2, 3]}`)
	doc := testutil.MustParseJSON(t, `{"a": [1, 2, 3, 2]}`)

	info, logDoc := runPullAll(t, mod, doc, "")
	if info.NoOp || info.InPlace {
		t.Errorf("expected mutating exec info, got %+v", info)
	}
	if got := info.Field.Dotted(); got != "a" {
		t.Errorf("expected field a, got %q", got)
	}
	testutil.AssertDocJSON(t, doc, `{"a": [1]}`)
	testutil.AssertDocJSON(t, logDoc, `{"$set": {"a": [1]}}`)
}

func TestPullAllEmptiesArray(t *testing.T) {
	// Example B: removing every member leaves an existing empty array.
	mod := initPullAll(t, `{"a": [1, 2]}`)
	doc := testutil.MustParseJSON(t, `{"a": [1, 2]}`)

	info, logDoc := runPullAll(t, mod, doc, "")
	if info.NoOp {
		t.Error("expected a mutation")
	}
	testutil.AssertDocJSON(t, doc, `{"a": []}`)
	testutil.AssertDocJSON(t, logDoc, `{"$set": {"a": []}}`)
}

func TestPullAllPreservesOrder(t *testing.T) {
	mod := initPullAll(t, `{"a": ["b", "d"]}`)
	doc := testutil.MustParseJSON(t, `{"a": ["a", "b", "c", "d", "e", "b"]}`)

	runPullAll(t, mod, doc, "")
	testutil.AssertDocJSON(t, doc, `{"a": ["a", "c", "e"]}`)
}

func TestPullAllNonExistentPath(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"AbsentField", `{"b": 1}`},
		{"EmptyDocument", `{}`},
		{"PartialPrefix", `{"a": {"x": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := initPullAll(t, `{"a.b": [1]}`)
			doc := testutil.MustParseJSON(t, tt.doc)
			before := doc.Clone()

			info, logDoc := runPullAll(t, mod, doc, "")
			if !info.NoOp || !info.InPlace {
				t.Errorf("expected noOp+inPlace, got %+v", info)
			}
			if got := info.Field.Dotted(); got != "a.b" {
				t.Errorf("expected field a.b, got %q", got)
			}
			testutil.AssertDocsEqual(t, before, doc)
			testutil.AssertDocJSON(t, logDoc, `{"$unset": {"a.b": true}}`)
		})
	}
}

func TestPullAllTargetNotArray(t *testing.T) {
	for _, src := range []string{`{"a": 1}`, `{"a": "x"}`, `{"a": {"b": 1}}`} {
		mod := initPullAll(t, `{"a": [1]}`)
		doc := testutil.MustParseJSON(t, src)
		var info ExecInfo
		err := mod.Prepare(doc.Root(), "", &info)
		if !errors.Is(err, ErrBadValue) {
			t.Errorf("doc %s: expected ErrBadValue, got %v", src, err)
		}
	}
}

func TestPullAllScalarBlockedPath(t *testing.T) {
	// A scalar in the middle of the path is a real resolution failure,
	// not a fold-to-noop.
	mod := initPullAll(t, `{"a.b": [1]}`)
	doc := testutil.MustParseJSON(t, `{"a": 5}`)
	var info ExecInfo
	err := mod.Prepare(doc.Root(), "", &info)
	if !errors.Is(err, ErrPathNotViable) {
		t.Errorf("expected ErrPathNotViable, got %v", err)
	}
}

func TestPullAllNoOpCases(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantLog string
	}{
		{"EmptyArray", `{"a": []}`, `{"$set": {"a": []}}`},
		{"NoMatches", `{"a": [4, 5, 6]}`, `{"$set": {"a": [4, 5, 6]}}`},
		// The removal set holds int 1; neither "1" nor 1.0 matches it.
		{"TypeMismatchedMembers", `{"a": ["1", 1.0]}`, `{"$set": {"a": ["1", 1.0]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := initPullAll(t, `{"a": [1]}`)
			doc := testutil.MustParseJSON(t, tt.doc)
			before := doc.Clone()

			info, logDoc := runPullAll(t, mod, doc, "")
			if !info.NoOp || !info.InPlace {
				t.Errorf("expected noOp+inPlace, got %+v", info)
			}
			testutil.AssertDocsEqual(t, before, doc)
			// The path exists, so the log still records the current array.
			testutil.AssertDocJSON(t, logDoc, tt.wantLog)
		})
	}
}

func TestPullAllMatchingIgnoresMemberNames(t *testing.T) {
	// Array members built by hand with odd field names still match purely
	// on value and type.
	mod := initPullAll(t, `{"a": [7]}`)
	doc := treedoc.NewDocument()
	arr := treedoc.NewArray("a")
	if err := arr.PushBack(treedoc.NewInt("zero", 7)); err != nil {
		t.Fatal(err)
	}
	if err := arr.PushBack(treedoc.NewInt("one", 8)); err != nil {
		t.Fatal(err)
	}
	if err := doc.Root().PushBack(arr); err != nil {
		t.Fatal(err)
	}

	runPullAll(t, mod, doc, "")
	testutil.AssertDocJSON(t, doc, `{"a": [8]}`)
}

func TestPullAllDeepValues(t *testing.T) {
	// Nested documents and arrays in the removal set use the same deep
	// equality as scalars.
	mod := initPullAll(t, `{"a": [{"k": 1}, [2, 3]]}`)
	doc := testutil.MustParseJSON(t, `{"a": [{"k": 1}, {"k": 2}, [2, 3], [3, 2], {"k": 1, "j": 0}]}`)

	runPullAll(t, mod, doc, "")
	testutil.AssertDocJSON(t, doc, `{"a": [{"k": 2}, [3, 2], {"k": 1, "j": 0}]}`)
}

func TestPullAllPositional(t *testing.T) {
	t.Run("BindsMatchedField", func(t *testing.T) {
		mod := initPullAll(t, `{"a.$": [5]}`)
		doc := testutil.MustParseJSON(t, `{"a": [[5, 6], [7, 5]]}`)

		info, logDoc := runPullAll(t, mod, doc, "1")
		if info.NoOp {
			t.Error("expected a mutation")
		}
		if got := info.Field.Dotted(); got != "a.1" {
			t.Errorf("expected bound field a.1, got %q", got)
		}
		testutil.AssertDocJSON(t, doc, `{"a": [[5, 6], [7]]}`)
		testutil.AssertDocJSON(t, logDoc, `{"$set": {"a.1": [7]}}`)
	})

	t.Run("BoundPathAbsent", func(t *testing.T) {
		// Example C: matched field binds to a.2, which does not exist.
		mod := initPullAll(t, `{"a.$": [5]}`)
		doc := testutil.MustParseJSON(t, `{"a": [[5], [5]]}`)

		info, logDoc := runPullAll(t, mod, doc, "2")
		if !info.NoOp || !info.InPlace {
			t.Errorf("expected noOp+inPlace, got %+v", info)
		}
		testutil.AssertDocJSON(t, doc, `{"a": [[5], [5]]}`)
		testutil.AssertDocJSON(t, logDoc, `{"$unset": {"a.2": true}}`)
	})

	t.Run("MatchedFieldMissing", func(t *testing.T) {
		// Example D.
		mod := initPullAll(t, `{"a.$": [5]}`)
		doc := testutil.MustParseJSON(t, `{"a": [[5]]}`)
		var info ExecInfo
		err := mod.Prepare(doc.Root(), "", &info)
		if !errors.Is(err, ErrBadValue) {
			t.Errorf("expected ErrBadValue, got %v", err)
		}
	})
}

func TestPullAllBatchReuse(t *testing.T) {
	// One initialized modifier processes a whole batch; per-document state
	// must reset between documents.
	mod := initPullAll(t, `{"counts": [2]}`)

	docs := testutil.LoadDocs(t, "batch")
	want := []string{
		`{"sku": "B-200", "counts": [4]}`,
		`{"sku": "B-201", "counts": [5, 6]}`,
		`{"sku": "B-202", "note": "no counts array here"}`,
	}
	wantNoOp := []bool{false, true, true}

	for i, doc := range docs {
		info, _ := runPullAll(t, mod, doc, "")
		if info.NoOp != wantNoOp[i] {
			t.Errorf("document %d: noOp = %v, want %v", i, info.NoOp, wantNoOp[i])
		}
		testutil.AssertDocJSON(t, doc, want[i])
	}
}

func TestPullAllApplyContract(t *testing.T) {
	expectPanic := func(t *testing.T, mod *PullAll) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Error("expected panic on contract violation")
			}
		}()
		_ = mod.Apply()
	}

	t.Run("ApplyBeforePrepare", func(t *testing.T) {
		expectPanic(t, initPullAll(t, `{"a": [1]}`))
	})

	t.Run("ApplyTwice", func(t *testing.T) {
		mod := initPullAll(t, `{"a": [1]}`)
		doc := testutil.MustParseJSON(t, `{"a": [1, 2]}`)
		var info ExecInfo
		if err := mod.Prepare(doc.Root(), "", &info); err != nil {
			t.Fatal(err)
		}
		if err := mod.Apply(); err != nil {
			t.Fatal(err)
		}
		expectPanic(t, mod)
	})
}

func TestPullAllLogReplayIdempotence(t *testing.T) {
	// Applying the emitted log fragment to the pre-image through the
	// engine's own $set/$unset must reproduce the post-image exactly.
	tests := []struct {
		name string
		spec string
		doc  string
	}{
		{"Removal", `{"a": [2, 3]}`, `{"a": [1, 2, 3, 2], "z": 0}`},
		{"EmptiesArray", `{"a": [1, 2]}`, `{"a": [1, 2]}`},
		{"AbsentPath", `{"a.b": [1]}`, `{"x": 1}`},
		{"NestedTarget", `{"m.s": [1.5]}`, `{"m": {"s": [1.5, 2.5]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := initPullAll(t, tt.spec)
			doc := testutil.MustParseJSON(t, tt.doc)
			preImage := doc.Clone()

			_, logDoc := runPullAll(t, mod, doc, "")

			replay, err := ParseUpdate(logDoc)
			if err != nil {
				t.Fatalf("failed to parse log fragment as update: %v", err)
			}
			if _, err := replay.ApplyTo(preImage, ""); err != nil {
				t.Fatalf("failed to replay log fragment: %v", err)
			}
			testutil.AssertDocsEqual(t, doc, preImage)
		})
	}
}

func TestPullAllFixtureDocument(t *testing.T) {
	doc := testutil.LoadDoc(t, "inventory")

	mod := initPullAll(t, `{"tags": ["blue"]}`)
	runPullAll(t, mod, doc, "")

	scores := initPullAll(t, `{"meta.scores": [1.5]}`)
	runPullAll(t, scores, doc, "")

	testutil.AssertDocJSON(t, doc, `{
		"sku": "A-100",
		"counts": [1, 2, 3, 2],
		"tags": ["red", "green"],
		"meta": {"owner": "ops", "scores": [2.5]},
		"empty": []
	}`)
}
