package worker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"bobbin/internal/logging"
	"bobbin/internal/mapping"
	"bobbin/internal/profile"
)

var commandContext = exec.CommandContext

// ErrAlreadyExecuted marks a second Execute call on the same worker.
var ErrAlreadyExecuted = errors.New("AlreadyExecuted")

// ErrTranscodeFailed marks a transcoder run that reported an error.
var ErrTranscodeFailed = errors.New("TranscodeFailed")

// Worker assembles and runs one ffmpeg invocation for a plan. Single-use.
type Worker struct {
	binary    string
	plan      *mapping.Plan
	prof      *profile.Profile
	observers []Observer
	executed  atomic.Bool
	logger    *slog.Logger
}

// Option configures a worker.
type Option func(*Worker)

// WithObservers replaces the default observer list. Used in tests.
func WithObservers(observers ...Observer) Option {
	return func(w *Worker) {
		w.observers = observers
	}
}

// New constructs a worker for one plan. By default it registers the logging,
// progress, and post observers, in that order.
func New(binary string, prof *profile.Profile, plan *mapping.Plan, logger *slog.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	w := &Worker{
		binary: binary,
		plan:   plan,
		prof:   prof,
		logger: logging.WithComponent(logger, "worker"),
	}
	w.observers = []Observer{
		NewLoggingObserver(prof, plan, w.logger),
		NewProgressObserver(plan, w.logger),
		NewPostObserver(prof, plan, w.logger),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Execute runs the transcoder to completion. A second call fails with
// ErrAlreadyExecuted.
func (w *Worker) Execute(ctx context.Context) error {
	if !w.executed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: worker for %s", ErrAlreadyExecuted, w.plan.Input.Path.Relative())
	}

	args := w.assemble()

	for _, output := range w.plan.Outputs {
		dir := filepath.Dir(output.Path.Absolute(w.prof.Output.Directory))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			err = fmt.Errorf("create output directory %s: %w", dir, err)
			w.failed(err)
			return err
		}
	}

	commandLine := strings.Join(append([]string{w.binary}, args...), " ")
	for _, observer := range w.observers {
		observer.OnStart(commandLine)
	}

	cmd := commandContext(ctx, w.binary, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGINT)
	}
	cmd.WaitDelay = 10 * time.Second

	stderr, err := cmd.StderrPipe()
	if err != nil {
		err = fmt.Errorf("stderr pipe: %w", err)
		w.failed(err)
		return err
	}

	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("start %s: %w", w.binary, err)
		w.failed(err)
		return err
	}

	totalSeconds := w.plan.Input.Duration()
	var tail []string
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanCRLFLines)
	for scanner.Scan() {
		line := scanner.Text()
		if progress, ok := parseStatsLine(line, totalSeconds); ok {
			for _, observer := range w.observers {
				observer.OnProgress(progress)
			}
			continue
		}
		tail = appendTail(tail, line)
		if strings.Contains(line, "Press ") {
			continue
		}
		for _, observer := range w.observers {
			observer.OnLine(line)
		}
	}

	if err := cmd.Wait(); err != nil {
		message := strings.TrimRight(strings.Join(tail, "\n"), " \t\n")
		failure := fmt.Errorf("%w: %s: %s", ErrTranscodeFailed, err, message)
		w.failed(failure)
		return failure
	}

	for _, observer := range w.observers {
		observer.OnEnd()
	}
	return nil
}

func (w *Worker) failed(err error) {
	for _, observer := range w.observers {
		observer.OnFailed(err)
	}
}

// assemble builds the argument vector: input options and path first, then
// each output's stream options followed by its container options and path.
func (w *Worker) assemble() []string {
	var args []string
	for _, param := range w.plan.Input.Params {
		args = append(args, splitParam(param)...)
	}
	args = append(args, "-y", "-i", w.plan.Input.Path.Absolute(w.prof.Input.Directory))

	for _, output := range w.plan.Outputs {
		for _, stream := range output.Streams {
			for _, param := range stream.Params {
				args = append(args, splitParam(param)...)
			}
		}
		for _, param := range output.Params {
			args = append(args, splitParam(param)...)
		}
		args = append(args, output.Path.Absolute(w.prof.Output.Directory))
	}
	return args
}

func splitParam(param string) []string {
	return strings.Fields(param)
}

func appendTail(tail []string, line string) []string {
	const keep = 40
	tail = append(tail, line)
	if len(tail) > keep {
		tail = tail[len(tail)-keep:]
	}
	return tail
}

// scanCRLFLines splits on both \n and the bare \r ffmpeg uses to repaint its
// stats line.
func scanCRLFLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
