package watcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bobbin/internal/probe"
	"bobbin/internal/worker"
)

// Filter is one stage of the chain a stabilized file must pass before it is
// scheduled. The chain short-circuits on the first rejection.
type Filter interface {
	Name() string
	Accept(ctx context.Context, file string) (ok bool, reason string, err error)
}

// ExcludeListFilter rejects files already recorded as processed.
type ExcludeListFilter struct {
	OutputDir string
	InputRoot string
}

func (f *ExcludeListFilter) Name() string { return "exclude-list" }

// Accept re-reads the exclude list on every check, so entries appended by a
// just-finished transcode take effect immediately.
func (f *ExcludeListFilter) Accept(_ context.Context, file string) (bool, string, error) {
	relative, err := filepath.Rel(f.InputRoot, file)
	if err != nil {
		relative = file
	}
	relative = filepath.ToSlash(relative)

	listFile, err := os.Open(filepath.Join(f.OutputDir, worker.ExcludeListName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, "", nil
		}
		return false, "", err
	}
	defer listFile.Close()

	scanner := bufio.NewScanner(listFile)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == relative {
			return false, "already processed", nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, "", err
	}
	return true, "", nil
}

// ExtensionFilter matches the file extension against the profile's include
// and exclude patterns. When both are set the union applies: a file passes
// when include matches or exclude does not.
type ExtensionFilter struct {
	Include *regexp.Regexp
	Exclude *regexp.Regexp
}

// NewExtensionFilter compiles the profile's include/exclude patterns; empty
// strings leave the corresponding side unset.
func NewExtensionFilter(include, exclude string) (*ExtensionFilter, error) {
	filter := &ExtensionFilter{}
	var err error
	if include != "" {
		if filter.Include, err = regexp.Compile(include); err != nil {
			return nil, fmt.Errorf("include pattern: %w", err)
		}
	}
	if exclude != "" {
		if filter.Exclude, err = regexp.Compile(exclude); err != nil {
			return nil, fmt.Errorf("exclude pattern: %w", err)
		}
	}
	return filter, nil
}

func (f *ExtensionFilter) Name() string { return "extension" }

func (f *ExtensionFilter) Accept(_ context.Context, file string) (bool, string, error) {
	extension := strings.TrimPrefix(filepath.Ext(file), ".")
	switch {
	case f.Include != nil && f.Exclude != nil:
		if f.Include.MatchString(extension) || !f.Exclude.MatchString(extension) {
			return true, "", nil
		}
	case f.Include != nil:
		if f.Include.MatchString(extension) {
			return true, "", nil
		}
	case f.Exclude != nil:
		if !f.Exclude.MatchString(extension) {
			return true, "", nil
		}
	default:
		return true, "", nil
	}
	return false, fmt.Sprintf("extension %q not eligible", extension), nil
}

// ProbeFilter accepts files the probe recognizes as media with a finite
// duration.
type ProbeFilter struct {
	Prober probe.Prober
}

func (f *ProbeFilter) Name() string { return "probe" }

func (f *ProbeFilter) Accept(ctx context.Context, file string) (bool, string, error) {
	report, err := f.Prober.Probe(ctx, file, "-show_chapters")
	if err != nil {
		return false, fmt.Sprintf("%s: %v", probe.ErrNotAMedia, err), nil
	}
	duration, ok := report.Duration()
	if !ok || math.IsInf(duration, 0) || math.IsNaN(duration) {
		return false, probe.ErrNotAMedia.Error() + ": no duration", nil
	}
	return true, "", nil
}
