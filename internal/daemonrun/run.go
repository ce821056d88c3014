// Package daemonrun wires the watcher, scheduler, mapper, and worker into
// the bobbin runtime loop.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bobbin/internal/config"
	"bobbin/internal/history"
	"bobbin/internal/logging"
	"bobbin/internal/mapping"
	"bobbin/internal/preflight"
	"bobbin/internal/probe"
	"bobbin/internal/profile"
	"bobbin/internal/scheduler"
	"bobbin/internal/snippet"
	"bobbin/internal/watcher"
	"bobbin/internal/worker"
)

// LockName is the single-instance lock file kept in the output directory.
const LockName = "bobbin.lock"

// Options configures runtime behavior.
type Options struct {
	Watch bool
	Debug bool
}

// Run starts the orchestrator and blocks until shutdown: on signal in watch
// mode, or once the initial scan is fully processed otherwise.
func Run(cmdCtx context.Context, cfg *config.Config, prof *profile.Profile, opts Options) error {
	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	logger, err := newRunLogger(cfg, runID, opts.Debug)
	if err != nil {
		return err
	}
	logger = logger.With(logging.String("run_id", runID))
	cleanupOldLogs(cfg, logger)

	lock := flock.New(filepath.Join(prof.Output.Directory, LockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another bobbin instance already runs against %s", prof.Output.Directory)
	}
	defer func() { _ = lock.Unlock() }()

	results := preflight.Run(ctx, cfg, prof)
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight passed", logging.String("check", result.Name), logging.String("detail", result.Detail))
		} else {
			logger.Error("preflight failed", logging.String("check", result.Name), logging.String("detail", result.Detail))
		}
	}
	if preflight.Failed(results) {
		return fmt.Errorf("preflight checks failed")
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	prober := probe.New(cfg.Tools.FFprobe)
	resolver := snippet.NewResolver()
	mapper := mapping.NewMapper(prof, prober, resolver, logger)

	processor := &processor{
		cfg:    cfg,
		prof:   prof,
		mapper: mapper,
		store:  store,
		runID:  runID,
		logger: logger,
	}

	sched := scheduler.New(processor.process,
		time.Duration(cfg.Queue.InterTaskDelaySeconds)*time.Second, logger)
	sched.Start(ctx)
	defer sched.Close()

	extensionFilter, err := watcher.NewExtensionFilter(prof.Input.Include, prof.Input.Exclude)
	if err != nil {
		return fmt.Errorf("%w: %v", profile.ErrInvalidProfile, err)
	}
	filters := []watcher.Filter{
		&watcher.ExcludeListFilter{OutputDir: prof.Output.Directory, InputRoot: prof.Input.Directory},
		extensionFilter,
		&watcher.ProbeFilter{Prober: prober},
	}
	events := watcher.Events{
		Schedule: func(file string) { sched.Schedule(file) },
		Cancel:   func(file string) { sched.Cancel(file) },
	}
	watch := watcher.New(prof.Input.Directory,
		time.Duration(cfg.Watch.StabilizationSeconds)*time.Second, filters, events, logger)

	if opts.Watch {
		if err := watch.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watch.Close()
	}

	logger.Info("initial scan", logging.String("directory", prof.Input.Directory))
	if err := watch.Scan(ctx); err != nil {
		return fmt.Errorf("scan input directory: %w", err)
	}

	if opts.Watch {
		logger.Info("watching for changes",
			logging.String("directory", prof.Input.Directory),
			logging.Duration("stabilization", time.Duration(cfg.Watch.StabilizationSeconds)*time.Second))
		<-ctx.Done()
		logger.Info("shutting down")
		return nil
	}

	// One-shot mode: wait until the scan's schedule is fully worked off.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			if sched.Idle() {
				return nil
			}
		}
	}
}

type processor struct {
	cfg    *config.Config
	prof   *profile.Profile
	mapper *mapping.Mapper
	store  *history.Store
	runID  string
	logger *slog.Logger
}

// process is the scheduler's task body: plan, transcode, record.
func (p *processor) process(ctx context.Context, id uint64, file string) error {
	started := time.Now()

	plan, err := p.mapper.Plan(ctx, file)
	if err != nil {
		p.record(ctx, id, file, nil, started, err)
		return err
	}
	if len(plan.Outputs) == 0 {
		p.logger.Info("No output: skip",
			logging.Uint64(logging.FieldTaskID, id),
			logging.String("file", file))
		return nil
	}

	w := worker.New(p.cfg.Tools.FFmpeg, p.prof, plan, p.logger)
	err = w.Execute(ctx)
	p.record(ctx, id, file, plan, started, err)
	return err
}

func (p *processor) record(ctx context.Context, id uint64, file string, plan *mapping.Plan, started time.Time, taskErr error) {
	if p.store == nil {
		return
	}
	record := history.Record{
		RunID:      p.runID,
		TaskID:     id,
		InputPath:  file,
		Status:     history.StatusCompleted,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if plan != nil {
		for _, output := range plan.Outputs {
			record.Outputs = append(record.Outputs, output.Path.Relative())
		}
	}
	if taskErr != nil {
		record.Status = history.StatusFailed
		record.Error = taskErr.Error()
	}
	if err := p.store.Add(ctx, record); err != nil {
		p.logger.Warn("record history", logging.Error(err))
	}
}

func newRunLogger(cfg *config.Config, runID string, debug bool) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	outputs := []string{"stdout"}
	errorOutputs := []string{"stderr"}
	if cfg.Logging.Dir != "" {
		logPath := filepath.Join(cfg.Logging.Dir, fmt.Sprintf("bobbin-%s.log", runID))
		outputs = append(outputs, logPath)
		errorOutputs = append(errorOutputs, logPath)
	}
	return logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: errorOutputs,
	})
}

func cleanupOldLogs(cfg *config.Config, logger *slog.Logger) {
	if cfg.Logging.Dir == "" || cfg.Logging.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -cfg.Logging.RetentionDays)
	matches, err := filepath.Glob(filepath.Join(cfg.Logging.Dir, "bobbin-*.log"))
	if err != nil {
		return
	}
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(match); err != nil {
			logger.Warn("remove old log", logging.String("path", match), logging.Error(err))
		}
	}
}
