package media

import (
	"path/filepath"
	"testing"
)

func TestNewPath(t *testing.T) {
	cases := []struct {
		file   string
		parent string
		name   string
		ext    string
	}{
		{"film.mp4", "", "film", "mp4"},
		{"subdir/film.mp4", "subdir", "film", "mp4"},
		{"a/b/clip", "a/b", "clip", ""},
		{"noext/", "noext", "", ""},
	}
	for _, tc := range cases {
		p := NewPath(tc.file)
		if p.Parent != tc.parent || p.Filename != tc.name || p.Extension != tc.ext {
			t.Errorf("NewPath(%q) = %+v", tc.file, p)
		}
	}
}

func TestNewPathIn(t *testing.T) {
	p := NewPathIn("/media/in", "/media/in/shows/ep01.mkv")
	if p.Relative() != "shows/ep01.mkv" {
		t.Errorf("relative = %q", p.Relative())
	}

	outside := NewPathIn("/media/in", "/elsewhere/ep01.mkv")
	if outside.Filename != "ep01" {
		t.Errorf("outside path = %+v", outside)
	}
}

func TestPathDerivations(t *testing.T) {
	p := NewPath("shows/ep01.mkv")
	if got := p.Name(); got != "ep01.mkv" {
		t.Errorf("Name = %q", got)
	}
	if got := p.Relative(); got != "shows/ep01.mkv" {
		t.Errorf("Relative = %q", got)
	}
	if got := p.Absolute("/out"); got != filepath.Join("/out", "shows", "ep01.mkv") {
		t.Errorf("Absolute = %q", got)
	}

	sibling := p.Sibling("eng", "srt")
	if sibling.Relative() != "shows/ep01.eng.srt" {
		t.Errorf("Sibling = %q", sibling.Relative())
	}
}

func TestParseRational(t *testing.T) {
	num, den, err := ParseRational("1/1000")
	if err != nil || num != 1 || den != 1000 {
		t.Errorf("ParseRational(1/1000) = %v/%v, %v", num, den, err)
	}
	num, den, err = ParseRational("25")
	if err != nil || num != 25 || den != 1 {
		t.Errorf("ParseRational(25) = %v/%v, %v", num, den, err)
	}
	for _, bad := range []string{"", "a/b", "1/0"} {
		if _, _, err := ParseRational(bad); err == nil {
			t.Errorf("ParseRational(%q) should fail", bad)
		}
	}
}

func TestStreamAccessors(t *testing.T) {
	s := Stream{
		"index":          float64(2),
		"codec_type":     "audio",
		"codec_name":     "aac",
		"avg_frame_rate": "24000/1001",
		"tags":           map[string]any{"language": "eng"},
	}
	if s.Index() != 2 || s.CodecType() != "audio" || s.CodecName() != "aac" {
		t.Errorf("accessors = %d %s %s", s.Index(), s.CodecType(), s.CodecName())
	}
	if s.Language() != "eng" {
		t.Errorf("language = %q", s.Language())
	}
	fps, ok := s.AvgFrameRate()
	if !ok || fps < 23.9 || fps > 24.0 {
		t.Errorf("fps = %v, %v", fps, ok)
	}

	bare := Stream{"index": float64(0), "codec_type": "video"}
	if bare.Language() != "" {
		t.Error("missing tags should yield empty language")
	}
	if _, ok := bare.AvgFrameRate(); ok {
		t.Error("missing framerate should not parse")
	}
}

func TestInputMediaDuration(t *testing.T) {
	input := &InputMedia{Format: Format{"duration": "1200.5"}}
	if input.Duration() != 1200.5 {
		t.Errorf("duration = %v", input.Duration())
	}
	if (&InputMedia{}).Duration() != 0 {
		t.Error("missing format should yield 0")
	}
}

func TestOutputMediaAddStream(t *testing.T) {
	source := Stream{"index": float64(4)}
	output := &OutputMedia{ID: 1}
	first := output.AddStream(source, []string{"-map 0:4"})
	second := output.AddStream(source, []string{"-c:a copy"})
	if first.Index != 0 || second.Index != 1 {
		t.Errorf("indices = %d, %d", first.Index, second.Index)
	}
	if len(output.Streams) != 2 {
		t.Errorf("streams = %d", len(output.Streams))
	}
	if first.Source.Index() != 4 {
		t.Errorf("source index = %d", first.Source.Index())
	}
}

func TestViewsExposeSnippetFields(t *testing.T) {
	input := &InputMedia{
		ID:     0,
		Path:   NewPath("shows/ep01.mkv"),
		Format: Format{"duration": "100"},
	}
	view := input.View()
	path, ok := view["path"].(map[string]any)
	if !ok || path["filename"] != "ep01" || path["parent"] != "shows" {
		t.Errorf("input view path = %v", view["path"])
	}

	output := &OutputMedia{ID: 3, Path: NewPath("ep01.eng.srt")}
	stream := output.AddStream(nil, []string{"-c copy"})
	if output.View()["id"] != 3 {
		t.Errorf("output view id = %v", output.View()["id"])
	}
	if stream.View()["index"] != 0 {
		t.Errorf("stream view index = %v", stream.View()["index"])
	}
}
