package media

import (
	"path/filepath"
	"strings"
)

// Path is a file location split into parent, filename stem, and extension,
// kept relative to a base directory. Absolute resolution happens only at the
// filesystem boundary.
type Path struct {
	Parent    string
	Filename  string
	Extension string
}

// NewPath splits file, which must be relative to its base directory.
func NewPath(file string) Path {
	dir, name := filepath.Split(filepath.ToSlash(file))
	ext := filepath.Ext(name)
	return Path{
		Parent:    strings.TrimSuffix(dir, "/"),
		Filename:  strings.TrimSuffix(name, ext),
		Extension: strings.TrimPrefix(ext, "."),
	}
}

// NewPathIn splits file against base. A file outside base keeps its own
// parent unchanged.
func NewPathIn(base, file string) Path {
	if rel, err := filepath.Rel(base, file); err == nil && !strings.HasPrefix(rel, "..") {
		return NewPath(rel)
	}
	return NewPath(file)
}

// Name returns filename.extension.
func (p Path) Name() string {
	if p.Extension == "" {
		return p.Filename
	}
	return p.Filename + "." + p.Extension
}

// Relative returns parent/filename.extension.
func (p Path) Relative() string {
	if p.Parent == "" {
		return p.Name()
	}
	return p.Parent + "/" + p.Name()
}

// Absolute resolves the path against a base directory.
func (p Path) Absolute(base string) string {
	return filepath.Join(base, filepath.FromSlash(p.Relative()))
}

// Sibling derives parent/filename.<suffix>.<ext>.
func (p Path) Sibling(suffix, ext string) Path {
	filename := p.Filename
	if suffix != "" {
		filename += "." + suffix
	}
	return Path{Parent: p.Parent, Filename: filename, Extension: ext}
}

// View exposes the path to snippet expressions.
func (p Path) View() map[string]any {
	return map[string]any{
		"parent":    p.Parent,
		"filename":  p.Filename,
		"extension": p.Extension,
	}
}
