// Package preflight verifies the runtime environment before watching starts.
package preflight

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"bobbin/internal/config"
	"bobbin/internal/profile"
)

var commandContext = exec.CommandContext

// Result is the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run executes every startup check against the settings and profile.
func Run(ctx context.Context, cfg *config.Config, prof *profile.Profile) []Result {
	results := []Result{
		CheckTool(ctx, "ffmpeg", cfg.Tools.FFmpeg),
		CheckTool(ctx, "ffprobe", cfg.Tools.FFprobe),
		CheckDirectoryAccess("input directory", prof.Input.Directory, false),
		CheckDirectoryAccess("output directory", prof.Output.Directory, true),
	}
	if cfg.Preflight.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace(prof.Output.Directory, cfg.Preflight.MinFreeGiB))
	}
	return results
}

// Failed reports whether any check failed.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}
	return false
}

// CheckTool verifies the binary is resolvable and answers -version.
func CheckTool(ctx context.Context, name, binary string) Result {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := commandContext(checkCtx, binary, "-version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not runnable (%v)", binary, err)}
	}
	version := stdout.String()
	if i := strings.IndexByte(version, '\n'); i >= 0 {
		version = version[:i]
	}
	return Result{Name: name, Passed: true, Detail: strings.TrimSpace(version)}
}

// CheckDirectoryAccess verifies the directory exists and is usable.
func CheckDirectoryAccess(name, path string, needWrite bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s does not exist", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s: stat: %v", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	mode := unix.R_OK
	if needWrite {
		mode |= unix.W_OK
	}
	if err := unix.Access(path, uint32(mode)); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not accessible (%v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckFreeSpace verifies the filesystem holding path has room to work with.
func CheckFreeSpace(path string, minGiB int) Result {
	const name = "free space"
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", path, err)}
	}
	freeGiB := float64(stat.Bavail) * float64(stat.Bsize) / (1 << 30)
	detail := fmt.Sprintf("%.1f GiB free on %s", freeGiB, path)
	if freeGiB < float64(minGiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need %d GiB", detail, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
