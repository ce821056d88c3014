package worker

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"bobbin/internal/logging"
	"bobbin/internal/mapping"
)

// ProgressObserver reports transcode progress every five percent: percent,
// frames, timemark, fps, elapsed, ETA, and speed relative to the source
// framerate.
type ProgressObserver struct {
	logger       *slog.Logger
	framerate    float64
	totalSeconds float64
	started      time.Time
	lastPercent  int
	now          func() time.Time
}

// NewProgressObserver constructs the progress reporter for a plan. Framerate
// comes from the first video stream's average framerate, defaulting to 1.
func NewProgressObserver(plan *mapping.Plan, logger *slog.Logger) *ProgressObserver {
	framerate := 1.0
	if video := plan.Input.FirstStream("video"); video != nil {
		if fps, ok := video.AvgFrameRate(); ok {
			framerate = fps
		}
	}
	return &ProgressObserver{
		logger:       logger,
		framerate:    framerate,
		totalSeconds: plan.Input.Duration(),
		lastPercent:  -1,
		now:          time.Now,
	}
}

func (o *ProgressObserver) OnStart(string) {
	o.started = o.now()
}

func (o *ProgressObserver) OnLine(string) {}

func (o *ProgressObserver) OnProgress(progress Progress) {
	percent := int(progress.Percent)
	if percent <= o.lastPercent || percent%5 != 0 {
		return
	}
	o.lastPercent = percent

	elapsed := o.now().Sub(o.started)
	eta := math.Inf(1)
	if progress.Seconds > 0 && elapsed > 0 {
		remaining := o.totalSeconds - progress.Seconds
		eta = remaining * elapsed.Seconds() / progress.Seconds
	}
	speed := progress.FPS / o.framerate

	o.logger.Info("transcode progress",
		logging.Int("percent", percent),
		logging.Int64("frames", progress.Frames),
		logging.String("timemark", progress.Timemark),
		logging.Float64("fps", progress.FPS),
		logging.String("elapsed", formatDuration(elapsed.Seconds())),
		logging.String("eta", formatDuration(eta)),
		logging.String("speed", fmt.Sprintf("%.2fx", speed)))
}

func (o *ProgressObserver) OnEnd() {
	o.logger.Info("transcode finished",
		logging.String("elapsed", formatDuration(o.now().Sub(o.started).Seconds())))
}

func (o *ProgressObserver) OnFailed(error) {}

// formatDuration renders seconds as HH:mm:ss with a day prefix when needed.
// Non-finite or negative values render as --:--:--.
func formatDuration(seconds float64) string {
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) || seconds < 0 {
		return "--:--:--"
	}
	total := int64(seconds)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	secs := total % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
