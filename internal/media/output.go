package media

// OutputStream is one planned stream of an output file. Source is a
// non-owning reference back to the probed input stream.
type OutputStream struct {
	Index  int
	Source Stream
	Params []string
}

// View exposes the output stream to snippet expressions.
func (s *OutputStream) View() map[string]any {
	return map[string]any{
		"index":  s.Index,
		"params": anySlice(s.Params),
	}
}

// OutputMedia is one planned output file: a path, container-level params, and
// an ordered stream list. Created by the mapping builder, rewritten once by
// the post resolver, consumed once by a worker.
type OutputMedia struct {
	ID      int
	Source  *InputMedia
	Path    Path
	Params  []string
	Streams []*OutputStream
}

// AddStream appends a stream with the next sequential index.
func (m *OutputMedia) AddStream(source Stream, params []string) *OutputStream {
	stream := &OutputStream{Index: len(m.Streams), Source: source, Params: params}
	m.Streams = append(m.Streams, stream)
	return stream
}

// View exposes the output to snippet expressions.
func (m *OutputMedia) View() map[string]any {
	return map[string]any{
		"id":     m.ID,
		"path":   m.Path.View(),
		"params": anySlice(m.Params),
	}
}
