package profile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultExtension is the container extension used when neither a mapping nor
// the output config overrides it.
const DefaultExtension = "mkv"

// Selector values with reserved meaning in a task's "on" field.
const (
	SelectorNone     = "none"
	SelectorChapters = "chapters"
	SelectorAll      = "all"
)

// CodecTypes are the stream codec types ffprobe reports.
var CodecTypes = []string{"video", "audio", "subtitle", "attachment", "data"}

// Snippets is a snippet string or sequence of snippet strings. A scalar YAML
// node decodes as a one-element sequence.
type Snippets []string

// UnmarshalYAML accepts either a scalar or a sequence.
func (s *Snippets) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return err
		}
		*s = Snippets{value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*s = Snippets(values)
		return nil
	default:
		return fmt.Errorf("line %d: expected string or sequence", node.Line)
	}
}

// StreamSelector is the value of a task's "on" field: none, chapters, all, a
// codec type, or a list of codec types.
type StreamSelector []string

// UnmarshalYAML accepts either a scalar or a sequence.
func (s *StreamSelector) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return err
		}
		*s = StreamSelector{value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*s = StreamSelector(values)
		return nil
	default:
		return fmt.Errorf("line %d: expected string or sequence", node.Line)
	}
}

// IsNone reports whether the selector targets the whole input.
func (s StreamSelector) IsNone() bool {
	return len(s) == 0 || (len(s) == 1 && strings.EqualFold(s[0], SelectorNone))
}

// IsChapters reports whether the selector expands per chapter.
func (s StreamSelector) IsChapters() bool {
	return len(s) == 1 && strings.EqualFold(s[0], SelectorChapters)
}

// Matches reports whether a stream of the given codec type is selected.
func (s StreamSelector) Matches(codecType string) bool {
	for _, entry := range s {
		if strings.EqualFold(entry, SelectorAll) || strings.EqualFold(entry, codecType) {
			return true
		}
	}
	return false
}

func (s StreamSelector) String() string {
	if s.IsNone() {
		return SelectorNone
	}
	return strings.Join(s, ",")
}

// Task carries the fields shared by mappings and mapping options.
type Task struct {
	ID     string         `yaml:"id"`
	Skip   bool           `yaml:"skip"`
	On     StreamSelector `yaml:"on"`
	When   Snippets       `yaml:"when"`
	Params Snippets       `yaml:"params"`
}

// MappingOption is a sub-rule inside a mapping, conditionally contributing
// parameters to the whole output or to matching streams.
type MappingOption struct {
	Task      `yaml:",inline"`
	Duplicate bool `yaml:"duplicate"`
	Exclude   bool `yaml:"exclude"`
}

// Mapping is a single profile rule producing zero or more output files from
// one input.
type Mapping struct {
	Task    `yaml:",inline"`
	Output  string          `yaml:"output"`
	Format  string          `yaml:"format"`
	Order   []string        `yaml:"order"`
	Options []MappingOption `yaml:"options"`
}

// InputConfig describes the watched input side.
type InputConfig struct {
	Directory          string   `yaml:"directory"`
	Include            string   `yaml:"include"`
	Exclude            string   `yaml:"exclude"`
	Params             Snippets `yaml:"params"`
	DeleteAfterProcess bool     `yaml:"deleteAfterProcess"`
}

// OutputConfig describes the output side and the mapping rules.
type OutputConfig struct {
	Directory        string    `yaml:"directory"`
	DefaultExtension string    `yaml:"defaultExtension"`
	WriteLog         bool      `yaml:"writeLog"`
	Mappings         []Mapping `yaml:"mappings"`
}

// Profile is the root document.
type Profile struct {
	ID     string       `yaml:"id"`
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
}

// ActiveMappings returns the mappings that remain after pruning skipped ones.
func (p *Profile) ActiveMappings() []Mapping {
	active := make([]Mapping, 0, len(p.Output.Mappings))
	for _, mapping := range p.Output.Mappings {
		if mapping.Skip {
			continue
		}
		active = append(active, mapping)
	}
	return active
}

// Extension returns the output extension a mapping resolves to before any
// codec-based fallback: the mapping's format, else the profile default.
func (p *Profile) Extension(mapping Mapping) string {
	if mapping.Format != "" {
		return mapping.Format
	}
	return p.Output.DefaultExtension
}
