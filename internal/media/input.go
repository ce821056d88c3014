package media

import (
	"strconv"
)

// Stream is one probed input stream, kept in ffprobe's wire shape so opaque
// fields pass through to snippet expressions untouched.
type Stream map[string]any

// Index returns the stable stream index assigned by the probe.
func (s Stream) Index() int {
	return intField(s, "index")
}

// CodecType returns video, audio, subtitle, attachment, or data.
func (s Stream) CodecType() string {
	return stringField(s, "codec_type")
}

// CodecName returns the probe's codec_name, possibly empty.
func (s Stream) CodecName() string {
	return stringField(s, "codec_name")
}

// Tags returns the stream's tag map, or nil.
func (s Stream) Tags() map[string]any {
	return mapField(s, "tags")
}

// Language returns the stream's language tag, or empty.
func (s Stream) Language() string {
	tags := s.Tags()
	if tags == nil {
		return ""
	}
	if lang, ok := tags["language"].(string); ok {
		return lang
	}
	return ""
}

// AvgFrameRate parses avg_frame_rate as frames per second.
func (s Stream) AvgFrameRate() (float64, bool) {
	raw := stringField(s, "avg_frame_rate")
	if raw == "" {
		return 0, false
	}
	num, den, err := ParseRational(raw)
	if err != nil || num == 0 {
		return 0, false
	}
	return num / den, true
}

// Chapter is one probed chapter, plus the 1-based number the mapping builder
// injects.
type Chapter map[string]any

// Number returns the injected 1-based chapter number.
func (c Chapter) Number() int {
	return intField(c, "number")
}

// SetNumber injects the 1-based chapter number.
func (c Chapter) SetNumber(number int) {
	c["number"] = number
}

// TimeBase parses the chapter's "num/den" time base.
func (c Chapter) TimeBase() (num, den float64, err error) {
	return ParseRational(stringField(c, "time_base"))
}

// EndTime returns the chapter end in seconds.
func (c Chapter) EndTime() (float64, bool) {
	return floatField(c, "end_time")
}

// Format is the probed container metadata.
type Format map[string]any

// Duration returns the container duration in seconds.
func (f Format) Duration() (float64, bool) {
	return floatField(f, "duration")
}

// InputMedia is one probed input file. Immutable after construction except
// for Params, which the input parameter resolver rewrites once.
type InputMedia struct {
	ID       int
	Path     Path
	Params   []string
	Streams  []Stream
	Format   Format
	Chapters []Chapter
}

// Duration returns the container duration in seconds, or 0.
func (m *InputMedia) Duration() float64 {
	if m == nil || m.Format == nil {
		return 0
	}
	duration, _ := m.Format.Duration()
	return duration
}

// FirstStream returns the first stream of the given codec type, or nil.
func (m *InputMedia) FirstStream(codecType string) Stream {
	for _, stream := range m.Streams {
		if stream.CodecType() == codecType {
			return stream
		}
	}
	return nil
}

// View exposes the input to snippet expressions.
func (m *InputMedia) View() map[string]any {
	streams := make([]any, len(m.Streams))
	for i, stream := range m.Streams {
		streams[i] = map[string]any(stream)
	}
	chapters := make([]any, len(m.Chapters))
	for i, chapter := range m.Chapters {
		chapters[i] = map[string]any(chapter)
	}
	return map[string]any{
		"id":       m.ID,
		"path":     m.Path.View(),
		"params":   anySlice(m.Params),
		"streams":  streams,
		"format":   map[string]any(m.Format),
		"chapters": chapters,
	}
}

func anySlice(values []string) []any {
	result := make([]any, len(values))
	for i, value := range values {
		result[i] = value
	}
	return result
}

func intField(m map[string]any, key string) int {
	switch value := m[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case string:
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return 0
}

func stringField(m map[string]any, key string) string {
	if value, ok := m[key].(string); ok {
		return value
	}
	return ""
}

func floatField(m map[string]any, key string) (float64, bool) {
	switch value := m[key].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case string:
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func mapField(m map[string]any, key string) map[string]any {
	if value, ok := m[key].(map[string]any); ok {
		return value
	}
	return nil
}
