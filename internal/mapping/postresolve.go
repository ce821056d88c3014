package mapping

import (
	"bobbin/internal/media"
	"bobbin/internal/snippet"
)

// PostResolve substitutes the remaining templates in every output's
// parameter lists, now that output and stream identities exist. After this
// pass no parameter contains an unresolved template.
func (b *Builder) PostResolve(input *media.InputMedia, outputs []*media.OutputMedia) error {
	base := snippet.Context{Profile: profileView(b.profile), Input: input.View()}
	for _, output := range outputs {
		if err := b.postResolveOutput(base, output); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) postResolveOutput(base snippet.Context, output *media.OutputMedia) error {
	outputCtx := base.WithOutput(output.View(), nil)
	for i, param := range output.Params {
		resolved, err := b.resolver.ResolveString(param, outputCtx)
		if err != nil {
			return err
		}
		output.Params[i] = resolved
	}

	for _, stream := range output.Streams {
		streamCtx := base.WithOutput(output.View(), stream.View())
		if stream.Source != nil {
			streamCtx = streamCtx.WithStream(map[string]any(stream.Source))
		}
		for i, param := range stream.Params {
			resolved, err := b.resolver.ResolveString(param, streamCtx)
			if err != nil {
				return err
			}
			stream.Params[i] = resolved
		}
	}
	return nil
}
