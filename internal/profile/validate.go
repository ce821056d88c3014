package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidProfile marks structural validation failures. Fatal at startup.
var ErrInvalidProfile = errors.New("InvalidProfile")

// Validate rejects malformed profiles before any work happens.
func (p *Profile) Validate() error {
	var problems []string

	if strings.TrimSpace(p.ID) == "" {
		problems = append(problems, "id is required")
	}
	if p.Input.Include == "" && p.Input.Exclude == "" {
		problems = append(problems, "input: at least one of include/exclude is required")
	}
	if p.Input.Include != "" {
		if _, err := regexp.Compile(p.Input.Include); err != nil {
			problems = append(problems, fmt.Sprintf("input.include: %v", err))
		}
	}
	if p.Input.Exclude != "" {
		if _, err := regexp.Compile(p.Input.Exclude); err != nil {
			problems = append(problems, fmt.Sprintf("input.exclude: %v", err))
		}
	}

	active := p.ActiveMappings()
	if len(active) == 0 {
		problems = append(problems, "output.mappings: no active mappings")
	}
	for i, mapping := range active {
		label := mapping.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if strings.TrimSpace(mapping.Output) == "" {
			problems = append(problems, fmt.Sprintf("mapping %s: output is required", label))
		}
		problems = append(problems, selectorProblems(mapping.On, fmt.Sprintf("mapping %s", label))...)
		for j, option := range mapping.Options {
			problems = append(problems, selectorProblems(option.On, fmt.Sprintf("mapping %s option #%d", label, j))...)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return nil
}

func selectorProblems(selector StreamSelector, label string) []string {
	if selector.IsNone() || selector.IsChapters() {
		return nil
	}
	var problems []string
	for _, entry := range selector {
		if strings.EqualFold(entry, SelectorAll) {
			continue
		}
		if !isCodecType(entry) {
			problems = append(problems, fmt.Sprintf("%s: unknown selector %q", label, entry))
		}
	}
	return problems
}

func isCodecType(value string) bool {
	for _, codecType := range CodecTypes {
		if strings.EqualFold(value, codecType) {
			return true
		}
	}
	return false
}
