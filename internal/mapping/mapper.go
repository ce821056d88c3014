package mapping

import (
	"context"
	"log/slog"

	"bobbin/internal/logging"
	"bobbin/internal/media"
	"bobbin/internal/probe"
	"bobbin/internal/profile"
	"bobbin/internal/snippet"
)

// Plan is a fully expanded, parameter-resolved set of outputs ready for a
// worker.
type Plan struct {
	Input   *media.InputMedia
	Outputs []*media.OutputMedia
}

// Mapper turns a stabilized input file into a plan: probe, build, resolve.
type Mapper struct {
	profile  *profile.Profile
	prober   probe.Prober
	builder  *Builder
	resolver *snippet.Resolver
	logger   *slog.Logger
}

// NewMapper wires a mapper over a validated profile.
func NewMapper(p *profile.Profile, prober probe.Prober, resolver *snippet.Resolver, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mapper{
		profile:  p,
		prober:   prober,
		builder:  NewBuilder(p, resolver, logger),
		resolver: resolver,
		logger:   logging.WithComponent(logger, "mapper"),
	}
}

// Plan probes file and expands the profile against it. The returned plan may
// carry zero outputs when every mapping was skipped; scheduling such a plan
// is the caller's decision to reject.
func (m *Mapper) Plan(ctx context.Context, file string) (*Plan, error) {
	report, err := m.prober.Probe(ctx, file, "-show_chapters")
	if err != nil {
		return nil, err
	}

	input := &media.InputMedia{
		ID:       0,
		Path:     media.NewPathIn(m.profile.Input.Directory, file),
		Streams:  report.Streams,
		Format:   report.Format,
		Chapters: report.Chapters,
	}

	// The input parameter resolver rewrites params exactly once.
	inputCtx := snippet.Context{Profile: profileView(m.profile), Input: input.View()}
	params := make([]string, 0, len(m.profile.Input.Params))
	for _, param := range m.profile.Input.Params {
		resolved, err := m.resolver.ResolveString(param, inputCtx)
		if err != nil {
			return nil, err
		}
		params = append(params, resolved)
	}
	input.Params = params

	outputs, err := m.builder.Build(input)
	if err != nil {
		return nil, err
	}
	if err := m.builder.PostResolve(input, outputs); err != nil {
		return nil, err
	}

	m.logger.Debug("plan expanded",
		logging.String("input", input.Path.Relative()),
		logging.Int("outputs", len(outputs)))
	return &Plan{Input: input, Outputs: outputs}, nil
}
