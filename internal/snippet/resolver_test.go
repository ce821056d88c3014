package snippet

import (
	"errors"
	"testing"
)

func testContext() Context {
	return Context{
		Input: map[string]any{
			"id": 0,
			"path": map[string]any{
				"parent":    "subdir",
				"filename":  "ep01",
				"extension": "mp4",
			},
			"format": map[string]any{"duration": "1200.000000"},
		},
		Stream: map[string]any{
			"index":      2,
			"codec_type": "audio",
			"tags":       map[string]any{"language": "eng"},
		},
		OutputStream: map[string]any{"index": 0},
	}
}

func TestResolveLiterals(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		snippet string
		want    any
	}{
		{"{true}", true},
		{"{false}", false},
		{"{42}", 42},
		{"{3.5}", 3.5},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.snippet, Context{})
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tc.snippet, err)
		}
		if got != tc.want {
			t.Errorf("Resolve(%q) = %v (%T), want %v (%T)", tc.snippet, got, got, tc.want, tc.want)
		}
	}
}

func TestResolveShortcuts(t *testing.T) {
	r := NewResolver()
	ctx := testContext()

	cases := []struct {
		snippet string
		want    any
	}{
		{"{fn}", "ep01"},
		{"{iid}", "0:2"},
		{"{oid}", 0},
		{"{lng}", "eng"},
		{"{fn}.{lng}", "ep01.eng"},
		{"-map {iid}", "-map 0:2"},
		{"-c:{oid} copy", "-c:0 copy"},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.snippet, ctx)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tc.snippet, err)
		}
		if got != tc.want {
			t.Errorf("Resolve(%q) = %v, want %v", tc.snippet, got, tc.want)
		}
	}
}

func TestResolveShortcutCaseAndSeparators(t *testing.T) {
	r := NewResolver()
	ctx := testContext()

	// Case-insensitive, and a leading separator survives a non-empty expansion.
	got, err := r.Resolve("{FN}{.LNG}", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ep01.eng" {
		t.Errorf("got %v, want ep01.eng", got)
	}
}

func TestResolveEmptyShortcutDropsSeparators(t *testing.T) {
	r := NewResolver()
	ctx := testContext()
	// A plain stream has no forced/sdh markers, so label expands empty and
	// its separator disappears with it.
	got, err := r.Resolve("{fn}{.label}", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ep01" {
		t.Errorf("got %v, want ep01", got)
	}
}

func TestResolveLabelShortcut(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name   string
		stream map[string]any
		want   any
	}{
		{
			name:   "forced disposition",
			stream: map[string]any{"disposition": map[string]any{"forced": float64(1)}},
			want:   "forced",
		},
		{
			name:   "forced title",
			stream: map[string]any{"tags": map[string]any{"title": "English (Forced)"}},
			want:   "forced",
		},
		{
			name:   "hearing impaired disposition",
			stream: map[string]any{"disposition": map[string]any{"hearing_impaired": float64(1)}},
			want:   "sdh",
		},
		{
			name:   "sdh title",
			stream: map[string]any{"tags": map[string]any{"title": "English [SDH]"}},
			want:   "sdh",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve("{label}", Context{Stream: tc.stream})
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveSeqJoinsWithSpace(t *testing.T) {
	r := NewResolver()
	ctx := testContext()

	joined, err := r.Resolve("{fn} {lng}", ctx)
	if err != nil {
		t.Fatal(err)
	}
	seq, err := r.ResolveSeq([]string{"{fn}", "{lng}"}, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if joined != seq {
		t.Errorf("sequence %v differs from joined %v", seq, joined)
	}
}

func TestResolveFunctionSnippet(t *testing.T) {
	r := NewResolver()
	got, err := r.Resolve("{{ input.format.duration > 600 ? 'long' : 'short' }}", testContext())
	if err != nil {
		t.Fatal(err)
	}
	if got != "long" {
		t.Errorf("got %v, want long", got)
	}
}

func TestResolveResidualBracesFail(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve("{nope}", Context{})
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedError, got %T", err)
	}
	if len(unresolved.Residuals) != 1 || unresolved.Residuals[0] != "{nope}" {
		t.Errorf("residuals = %v", unresolved.Residuals)
	}
}

func TestResolveNullishExpressionFails(t *testing.T) {
	r := NewResolver()
	_, err := r.Resolve("{{ input.missing }}", testContext())
	if !errors.Is(err, ErrEval) {
		t.Fatalf("expected ErrEval, got %v", err)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver()
	ctx := testContext()
	first, err := r.Resolve("{fn}.{lng}.{{outputStream.index}}", ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := r.Resolve("{fn}.{lng}.{{outputStream.index}}", ctx)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("resolution not deterministic: %v vs %v", again, first)
		}
	}
}
