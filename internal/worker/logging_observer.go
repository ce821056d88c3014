package worker

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bobbin/internal/logging"
	"bobbin/internal/mapping"
	"bobbin/internal/profile"
)

// LoggingObserver buffers the command line and every diagnostic line, writing
// the transcode log on success when the profile asks for one and on failure
// unconditionally.
type LoggingObserver struct {
	prof   *profile.Profile
	plan   *mapping.Plan
	logger *slog.Logger
	lines  []string
	now    func() time.Time
}

// NewLoggingObserver constructs the transcode log observer.
func NewLoggingObserver(prof *profile.Profile, plan *mapping.Plan, logger *slog.Logger) *LoggingObserver {
	return &LoggingObserver{prof: prof, plan: plan, logger: logger, now: time.Now}
}

func (o *LoggingObserver) OnStart(commandLine string) {
	o.lines = append(o.lines, commandLine)
	o.logger.Info("transcode started", logging.String("command", commandLine))
}

func (o *LoggingObserver) OnLine(line string) {
	o.lines = append(o.lines, line)
}

func (o *LoggingObserver) OnProgress(Progress) {}

func (o *LoggingObserver) OnEnd() {
	if !o.prof.Output.WriteLog {
		return
	}
	if path, err := o.write(); err != nil {
		o.logger.Warn("write transcode log", logging.Error(err))
	} else {
		o.logger.Debug("transcode log written", logging.String("path", path))
	}
}

func (o *LoggingObserver) OnFailed(err error) {
	path, writeErr := o.write()
	if writeErr != nil {
		o.logger.Error("write transcode log", logging.Error(writeErr))
		return
	}
	o.logger.Error("transcode failed, log written",
		logging.String("path", path),
		logging.Error(err))
}

func (o *LoggingObserver) write() (string, error) {
	now := o.now()
	stamp := now.Format("20060102-150405") + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
	name := fmt.Sprintf("%s.%s.log", o.plan.Input.Path.Filename, stamp)
	path := filepath.Join(o.prof.Output.Directory, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	content := strings.Join(o.lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
