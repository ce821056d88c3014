package worker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bobbin/internal/logging"
)

func TestPostObserverAppendsExcludeOnce(t *testing.T) {
	prof, plan := testPlanAndProfile(t)
	observer := NewPostObserver(prof, plan, logging.NewNop())
	observer.owner = func() (int, int, bool) { return 0, 0, false }

	observer.OnEnd()
	observer.OnEnd()

	data, err := os.ReadFile(filepath.Join(prof.Output.Directory, ExcludeListName))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "film.mp4\n" {
		t.Fatalf("exclude list = %q, want one entry", got)
	}
}

func TestPostObserverDeleteAfterProcess(t *testing.T) {
	prof, plan := testPlanAndProfile(t)
	prof.Input.DeleteAfterProcess = true
	inputPath := filepath.Join(prof.Input.Directory, "film.mp4")
	if err := os.WriteFile(inputPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	observer := NewPostObserver(prof, plan, logging.NewNop())
	observer.owner = func() (int, int, bool) { return 0, 0, false }
	observer.OnEnd()

	if _, err := os.Stat(inputPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("input should be deleted, stat err = %v", err)
	}
}

func TestPostObserverFailureCleansOutputs(t *testing.T) {
	prof, plan := testPlanAndProfile(t)
	outputPath := plan.Outputs[0].Path.Absolute(prof.Output.Directory)
	if err := os.WriteFile(outputPath, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	observer := NewPostObserver(prof, plan, logging.NewNop())
	observer.OnFailed(errors.New("boom"))

	if _, err := os.Stat(outputPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial output should be removed, stat err = %v", err)
	}
	// Nothing reaches the exclude list on failure.
	if _, err := os.Stat(filepath.Join(prof.Output.Directory, ExcludeListName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("exclude list should not exist, stat err = %v", err)
	}
}

func TestPostObserverFailureIgnoresMissingOutputs(t *testing.T) {
	prof, plan := testPlanAndProfile(t)
	observer := NewPostObserver(prof, plan, logging.NewNop())
	observer.OnFailed(errors.New("boom"))
}

func TestLoggingObserverWritesOnFailure(t *testing.T) {
	prof, plan := testPlanAndProfile(t)
	prof.Output.WriteLog = false

	observer := NewLoggingObserver(prof, plan, logging.NewNop())
	observer.OnStart("ffmpeg -i film.mp4 film.mkv")
	observer.OnLine("Stream mapping:")
	observer.OnFailed(errors.New("boom"))

	matches, err := filepath.Glob(filepath.Join(prof.Output.Directory, "film.*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("log files = %v, want exactly one", matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "ffmpeg -i film.mp4 film.mkv") || !strings.Contains(content, "Stream mapping:") {
		t.Errorf("log content = %q", content)
	}
}

func TestLoggingObserverRespectsWriteLog(t *testing.T) {
	prof, plan := testPlanAndProfile(t)

	observer := NewLoggingObserver(prof, plan, logging.NewNop())
	observer.OnStart("ffmpeg")
	observer.OnEnd()
	matches, _ := filepath.Glob(filepath.Join(prof.Output.Directory, "film.*.log"))
	if len(matches) != 0 {
		t.Fatalf("no log expected with writeLog unset, got %v", matches)
	}

	prof.Output.WriteLog = true
	observer = NewLoggingObserver(prof, plan, logging.NewNop())
	observer.OnStart("ffmpeg")
	observer.OnEnd()
	matches, _ = filepath.Glob(filepath.Join(prof.Output.Directory, "film.*.log"))
	if len(matches) != 1 {
		t.Fatalf("log files = %v, want one", matches)
	}
}

func TestProgressObserverReportsEveryFivePercent(t *testing.T) {
	_, plan := testPlanAndProfile(t)
	observer := NewProgressObserver(plan, logging.NewNop())
	observer.OnStart("")

	reported := 0
	for _, percent := range []float64{1, 5, 5, 7, 10, 9, 20} {
		before := observer.lastPercent
		observer.OnProgress(Progress{Percent: percent, Seconds: percent})
		if observer.lastPercent != before {
			reported++
		}
	}
	// 5, 10, and 20 report; repeats and non-multiples stay quiet.
	if reported != 3 {
		t.Errorf("reported %d times, want 3", reported)
	}
}

func TestPostObserverChownSkippedWithoutEnv(t *testing.T) {
	if _, _, ok := ownerFromEnv(); ok {
		t.Skip("UID/GID set in environment")
	}
	prof, plan := testPlanAndProfile(t)
	observer := NewPostObserver(prof, plan, logging.NewNop())
	// Must not attempt any chown when the env vars are absent.
	observer.reassignOwnership()
}
