package snippet

// Context carries the bindings visible to a snippet during evaluation. Slots
// are populated progressively as evaluation narrows: mapping-level snippets
// see profile and input, per-stream snippets additionally see stream and
// outputStream, chapter expansion adds chapter.
//
// Slot values are plain data trees (map[string]any, []any, string, float64,
// bool) as produced by the media view helpers.
type Context struct {
	Profile      any
	Input        any
	Output       any
	Stream       any
	OutputStream any
	Chapter      any
}

func (c Context) slot(name string) (any, bool) {
	switch name {
	case "profile":
		return c.Profile, c.Profile != nil
	case "input":
		return c.Input, c.Input != nil
	case "output":
		return c.Output, c.Output != nil
	case "stream":
		return c.Stream, c.Stream != nil
	case "outputStream":
		return c.OutputStream, c.OutputStream != nil
	case "chapter":
		return c.Chapter, c.Chapter != nil
	default:
		return nil, false
	}
}

// WithStream returns a copy of the context narrowed to a stream.
func (c Context) WithStream(stream any) Context {
	c.Stream = stream
	return c
}

// WithOutput returns a copy of the context narrowed to an output and one of
// its streams.
func (c Context) WithOutput(output, outputStream any) Context {
	c.Output = output
	c.OutputStream = outputStream
	return c
}

// WithChapter returns a copy of the context narrowed to a chapter.
func (c Context) WithChapter(chapter any) Context {
	c.Chapter = chapter
	return c
}
