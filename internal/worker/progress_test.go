package worker

import (
	"math"
	"testing"
)

func TestParseStatsLine(t *testing.T) {
	line := "frame=  240 fps= 48 q=28.0 size=    1024KiB time=00:00:10.00 bitrate= 838.9kbits/s speed=2.01x"
	progress, ok := parseStatsLine(line, 100)
	if !ok {
		t.Fatal("stats line not recognized")
	}
	if progress.Frames != 240 {
		t.Errorf("frames = %d", progress.Frames)
	}
	if progress.FPS != 48 {
		t.Errorf("fps = %v", progress.FPS)
	}
	if progress.Timemark != "00:00:10.00" {
		t.Errorf("timemark = %q", progress.Timemark)
	}
	if progress.Seconds != 10 {
		t.Errorf("seconds = %v", progress.Seconds)
	}
	if progress.Percent != 10 {
		t.Errorf("percent = %v", progress.Percent)
	}
	if progress.Speed != 2.01 {
		t.Errorf("speed = %v", progress.Speed)
	}
}

func TestParseStatsLineRejectsDiagnostics(t *testing.T) {
	for _, line := range []string{
		"Stream mapping:",
		"Press [q] to stop, [?] for help",
		"[libx264 @ 0x55] frame I:12",
		"",
	} {
		if _, ok := parseStatsLine(line, 100); ok {
			t.Errorf("line %q should not parse as progress", line)
		}
	}
}

func TestParseStatsLinePercentClamped(t *testing.T) {
	progress, ok := parseStatsLine("frame= 10 time=00:01:00.00", 30)
	if !ok {
		t.Fatal("stats line not recognized")
	}
	if progress.Percent != 100 {
		t.Errorf("percent = %v, want clamped 100", progress.Percent)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3661, "01:01:01"},
		{90000, "1d 01:00:00"},
		{-5, "--:--:--"},
		{math.Inf(1), "--:--:--"},
		{math.NaN(), "--:--:--"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.seconds); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestTimemarkSeconds(t *testing.T) {
	cases := []struct {
		timemark string
		want     float64
	}{
		{"00:00:10.00", 10},
		{"01:02:03.50", 3723.5},
		{"12.25", 12.25},
	}
	for _, tc := range cases {
		if got := timemarkSeconds(tc.timemark); got != tc.want {
			t.Errorf("timemarkSeconds(%q) = %v, want %v", tc.timemark, got, tc.want)
		}
	}
}
