package worker

import (
	"regexp"
	"strconv"
	"strings"
)

// ffmpeg interleaves stats lines with regular diagnostics on stderr. The
// stats line carries frame, fps, time, and speed in one line.
var (
	statsLineRe = regexp.MustCompile(`^frame=\s*\d+`)
	frameRe     = regexp.MustCompile(`frame=\s*(\d+)`)
	fpsRe       = regexp.MustCompile(`fps=\s*([0-9.]+)`)
	timeRe      = regexp.MustCompile(`time=\s*(-?[0-9:.]+)`)
	speedRe     = regexp.MustCompile(`speed=\s*([0-9.]+)x`)
)

// parseStatsLine extracts a progress report from an ffmpeg stats line. The
// duration of the whole input converts the timemark into a percent.
func parseStatsLine(line string, totalSeconds float64) (Progress, bool) {
	if !statsLineRe.MatchString(line) {
		return Progress{}, false
	}

	progress := Progress{}
	if matches := frameRe.FindStringSubmatch(line); len(matches) > 1 {
		progress.Frames, _ = strconv.ParseInt(matches[1], 10, 64)
	}
	if matches := fpsRe.FindStringSubmatch(line); len(matches) > 1 {
		progress.FPS, _ = strconv.ParseFloat(matches[1], 64)
	}
	if matches := timeRe.FindStringSubmatch(line); len(matches) > 1 {
		progress.Timemark = matches[1]
		progress.Seconds = timemarkSeconds(matches[1])
	}
	if matches := speedRe.FindStringSubmatch(line); len(matches) > 1 {
		progress.Speed, _ = strconv.ParseFloat(matches[1], 64)
	}
	if totalSeconds > 0 && progress.Seconds > 0 {
		progress.Percent = progress.Seconds / totalSeconds * 100
		if progress.Percent > 100 {
			progress.Percent = 100
		}
	}
	return progress, true
}

// timemarkSeconds converts "HH:MM:SS.ss" to seconds.
func timemarkSeconds(timemark string) float64 {
	parts := strings.Split(timemark, ":")
	seconds := 0.0
	for _, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0
		}
		seconds = seconds*60 + value
	}
	return seconds
}
