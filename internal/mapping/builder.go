package mapping

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"bobbin/internal/logging"
	"bobbin/internal/media"
	"bobbin/internal/profile"
	"bobbin/internal/snippet"
)

// Builder expands mappings into output media.
type Builder struct {
	profile  *profile.Profile
	resolver *snippet.Resolver
	logger   *slog.Logger
}

// NewBuilder constructs a builder over a validated profile.
func NewBuilder(p *profile.Profile, resolver *snippet.Resolver, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{profile: p, resolver: resolver, logger: logger}
}

// Build expands every active mapping against the input, in mapping order.
// Output ids are contiguous from 0 across the whole plan. Parameters of
// single and many outputs still carry their templates until PostResolve
// runs; chapter outputs come back already resolved against their chapter.
func (b *Builder) Build(input *media.InputMedia) ([]*media.OutputMedia, error) {
	active := b.profile.ActiveMappings()
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no active mappings", profile.ErrInvalidProfile)
	}

	base := snippet.Context{Profile: profileView(b.profile), Input: input.View()}

	var outputs []*media.OutputMedia
	for _, m := range active {
		if strings.TrimSpace(m.Output) == "" {
			return nil, fmt.Errorf("%w: mapping %s: output is required", profile.ErrInvalidProfile, m.ID)
		}
		built, err := b.buildMapping(base, input, m, len(outputs))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, built...)
	}
	return outputs, nil
}

func (b *Builder) buildMapping(base snippet.Context, input *media.InputMedia, m profile.Mapping, nextID int) ([]*media.OutputMedia, error) {
	switch {
	case m.On.IsNone():
		output, err := b.buildSingle(base, input, m, nextID)
		if err != nil || output == nil {
			return nil, err
		}
		return []*media.OutputMedia{output}, nil
	case m.On.IsChapters():
		return b.buildChapters(base, input, m, nextID)
	default:
		return b.buildMany(base, input, m, nextID)
	}
}

// buildSingle produces one output from the whole input, or nil when the
// mapping's predicate rejects it or no stream survives.
func (b *Builder) buildSingle(ctx snippet.Context, input *media.InputMedia, m profile.Mapping, id int) (*media.OutputMedia, error) {
	ok, err := b.resolver.CompilePredicate(m.When)(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		b.logger.Debug("mapping rejected by predicate", logging.String("mapping", m.ID))
		return nil, nil
	}

	output := &media.OutputMedia{ID: id, Source: input}

	globalParams := append([]string{}, m.Params...)
	var taskOptions []profile.MappingOption
	for _, option := range m.Options {
		if option.Skip {
			continue
		}
		if option.On.IsNone() {
			ok, err := b.resolver.CompilePredicate(option.When)(ctx)
			if err != nil {
				return nil, err
			}
			if ok {
				globalParams = append(globalParams, option.Params...)
			}
			continue
		}
		taskOptions = append(taskOptions, option)
	}
	output.Params = globalParams

	for _, stream := range orderStreams(input.Streams, m.Order) {
		streamCtx := ctx.WithStream(map[string]any(stream))

		var matched []profile.MappingOption
		excluded := false
		for _, option := range taskOptions {
			if !option.On.Matches(stream.CodecType()) {
				continue
			}
			ok, err := b.resolver.CompilePredicate(option.When)(streamCtx)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			matched = append(matched, option)
			if option.Exclude {
				excluded = true
			}
		}
		if excluded {
			continue
		}

		if len(matched) == 0 {
			output.AddStream(stream, []string{"-map {iid}", "-c:{oid} copy"})
			continue
		}

		var accumulated []string
		for _, option := range matched {
			if option.Duplicate {
				output.AddStream(stream, append([]string{}, option.Params...))
				continue
			}
			accumulated = append(accumulated, option.Params...)
		}
		output.AddStream(stream, append([]string{"-map {iid}"}, accumulated...))
	}

	if len(output.Streams) == 0 {
		b.logger.Debug("mapping produced no streams", logging.String("mapping", m.ID))
		return nil, nil
	}

	filename, err := b.resolver.ResolveString(m.Output, ctx)
	if err != nil {
		return nil, err
	}
	output.Path = media.Path{
		Parent:    input.Path.Parent,
		Filename:  filename,
		Extension: b.profile.Extension(m),
	}
	return output, nil
}

// orderStreams sorts streams by the position of their codec type in the
// mapping's order list; unlisted types go last, stable within a group.
func orderStreams(streams []media.Stream, order []string) []media.Stream {
	if len(order) == 0 {
		return streams
	}
	rank := func(stream media.Stream) int {
		for i, codecType := range order {
			if strings.EqualFold(codecType, stream.CodecType()) {
				return i
			}
		}
		return len(order)
	}
	sorted := append([]media.Stream{}, streams...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i]) < rank(sorted[j])
	})
	return sorted
}

func profileView(p *profile.Profile) map[string]any {
	return map[string]any{
		"id": p.ID,
		"input": map[string]any{
			"directory": p.Input.Directory,
		},
		"output": map[string]any{
			"directory":        p.Output.Directory,
			"defaultExtension": p.Output.DefaultExtension,
			"writeLog":         p.Output.WriteLog,
		},
	}
}
