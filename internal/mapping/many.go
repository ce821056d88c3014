package mapping

import (
	"bobbin/internal/logging"
	"bobbin/internal/media"
	"bobbin/internal/profile"
	"bobbin/internal/snippet"
)

// buildMany produces one single-stream output per input stream matching the
// mapping's selector. Options are not consulted in this mode.
func (b *Builder) buildMany(base snippet.Context, input *media.InputMedia, m profile.Mapping, nextID int) ([]*media.OutputMedia, error) {
	if len(m.Options) > 0 {
		b.logger.Warn("per-stream mapping ignores its options", logging.String("mapping", m.ID))
	}

	predicate := b.resolver.CompilePredicate(m.When)

	var outputs []*media.OutputMedia
	for _, stream := range input.Streams {
		if !m.On.Matches(stream.CodecType()) {
			continue
		}
		streamCtx := base.WithStream(map[string]any(stream))
		ok, err := predicate(streamCtx)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		output := &media.OutputMedia{ID: nextID + len(outputs), Source: input}
		output.AddStream(stream, append([]string{"-map {iid}"}, m.Params...))

		filename, err := b.resolver.ResolveString(m.Output, streamCtx)
		if err != nil {
			return nil, err
		}
		// Single-stream extraction defaults the container to the codec's own
		// extension rather than the profile default.
		extension := m.Format
		if extension == "" {
			extension = extensionForCodec(stream.CodecName(), b.logger)
		}
		output.Path = media.Path{
			Parent:    input.Path.Parent,
			Filename:  filename,
			Extension: extension,
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}
