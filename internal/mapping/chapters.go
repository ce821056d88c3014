package mapping

import (
	"math"

	"bobbin/internal/logging"
	"bobbin/internal/media"
	"bobbin/internal/profile"
	"bobbin/internal/snippet"
)

// endTimeTolerance absorbs the rounding ffprobe applies when printing
// fractional seconds.
const endTimeTolerance = 0.001

// buildChapters produces one output per chapter by delegating to the single
// builder with a chapter-narrowed context, then resolves each output right
// away so chapter-dependent parameters bind the correct chapter.
func (b *Builder) buildChapters(base snippet.Context, input *media.InputMedia, m profile.Mapping, nextID int) ([]*media.OutputMedia, error) {
	if len(input.Chapters) == 0 {
		b.logger.Warn("chapter mapping on input without chapters",
			logging.String("mapping", m.ID),
			logging.String("input", input.Path.Relative()))
		return nil, nil
	}

	chapters := normalizeChapters(input.Chapters, input.Duration())

	var outputs []*media.OutputMedia
	for _, chapter := range chapters {
		chapterCtx := base.WithChapter(map[string]any(chapter))
		output, err := b.buildSingle(chapterCtx, input, m, nextID+len(outputs))
		if err != nil {
			return nil, err
		}
		if output == nil {
			continue
		}
		if err := b.postResolveOutput(chapterCtx, output); err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// normalizeChapters copies the chapter list, appends a synthetic chapter when
// the last one's end differs from the container end, and assigns 1-based
// numbers.
func normalizeChapters(chapters []media.Chapter, duration float64) []media.Chapter {
	normalized := make([]media.Chapter, 0, len(chapters)+1)
	for _, chapter := range chapters {
		copied := make(media.Chapter, len(chapter)+1)
		for key, value := range chapter {
			copied[key] = value
		}
		normalized = append(normalized, copied)
	}

	last := normalized[len(normalized)-1]
	if endTime, ok := last.EndTime(); ok && duration > 0 && math.Abs(endTime-duration) > endTimeTolerance {
		synthetic := media.Chapter{
			"time_base":  last["time_base"],
			"start":      last["end"],
			"start_time": last["end_time"],
			"end_time":   duration,
		}
		if num, den, err := last.TimeBase(); err == nil {
			synthetic["end"] = duration / (num / den)
		}
		normalized = append(normalized, synthetic)
	}

	for i, chapter := range normalized {
		chapter.SetNumber(i + 1)
	}
	return normalized
}
