package snippet

import (
	"errors"
	"testing"
)

func TestEvaluateExpressions(t *testing.T) {
	ctx := Context{
		Input: map[string]any{
			"id":     0,
			"format": map[string]any{"duration": "5400.25"},
		},
		Stream: map[string]any{
			"index":       float64(3),
			"codec_type":  "subtitle",
			"disposition": map[string]any{"forced": float64(1), "default": float64(0)},
			"tags":        map[string]any{"language": "fra", "title": "French (Forced)"},
		},
	}

	cases := []struct {
		expr string
		want any
	}{
		{"1 + 2", 3.0},
		{"'a' + 'b'", "ab"},
		{"10 / 4", 2.5},
		{"7 % 4", 3.0},
		{"-stream.index", -3.0},
		{"stream.index", float64(3)},
		{"stream.codec_type === 'subtitle'", true},
		{"stream.codec_type === 'audio'", false},
		{"stream.disposition.forced === 1", true},
		{"stream.disposition.default !== 1", true},
		{"input.format.duration > 3600", true},
		{"input.format.duration < 3600", false},
		{"input.format.duration >= 5400.25", true},
		{"1 == '1'", true},
		{"1 === '1'", false},
		{"!stream.tags.language", false},
		{"stream.tags && stream.tags.language ? stream.tags.language : 'und'", "fra"},
		{"stream.missing && stream.missing.deep", nil},
		{"stream.tags.title.match(/forced/i) ? 'forced' : ''", "forced"},
		{"stream.tags.title.match(/sdh/i) ? 'sdh' : ''", ""},
		{"true ? false ? 'a' : 'b' : 'c'", "b"},
		{"null == undefined", true},
		{"'x' || 'y'", "x"},
		{"'' || 'y'", "y"},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := Evaluate(tc.expr, ctx)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tc.expr, err)
			}
			if tc.want == nil {
				if !isNullish(got) {
					t.Fatalf("Evaluate(%q) = %v, want nullish", tc.expr, got)
				}
				return
			}
			if got != tc.want {
				t.Errorf("Evaluate(%q) = %v (%T), want %v (%T)", tc.expr, got, got, tc.want, tc.want)
			}
		})
	}
}

func TestEvaluateUndefinedPropagation(t *testing.T) {
	got, err := Evaluate("chapter.metadata.title", Context{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(undefinedType); !ok {
		t.Fatalf("got %v (%T), want undefined", got, got)
	}
}

func TestEvaluateStatementList(t *testing.T) {
	ctx := Context{Input: map[string]any{"id": 7}}
	got, err := Evaluate("input.id; return input.id + 1;", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != 8.0 {
		t.Errorf("got %v, want 8", got)
	}
}

func TestEvaluateParseError(t *testing.T) {
	_, err := Evaluate("1 +", Context{})
	if !errors.Is(err, ErrEval) {
		t.Fatalf("expected ErrEval, got %v", err)
	}
}
