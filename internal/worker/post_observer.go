package worker

import (
	"bufio"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"bobbin/internal/logging"
	"bobbin/internal/mapping"
	"bobbin/internal/profile"
)

// ExcludeListName is the append-only record of processed inputs, kept in the
// output directory.
const ExcludeListName = "exclude.list"

// PostObserver applies the filesystem side effects of a finished transcode:
// on success it fixes ownership, records the input in the exclude list, and
// optionally deletes the input; on failure it removes partial outputs.
type PostObserver struct {
	prof   *profile.Profile
	plan   *mapping.Plan
	logger *slog.Logger
	owner  func() (uid, gid int, ok bool)
}

// NewPostObserver constructs the post-processing observer.
func NewPostObserver(prof *profile.Profile, plan *mapping.Plan, logger *slog.Logger) *PostObserver {
	return &PostObserver{prof: prof, plan: plan, logger: logger, owner: ownerFromEnv}
}

func (o *PostObserver) OnStart(string) {}

func (o *PostObserver) OnLine(string) {}

func (o *PostObserver) OnProgress(Progress) {}

func (o *PostObserver) OnEnd() {
	o.reassignOwnership()

	relative := o.plan.Input.Path.Relative()
	if err := appendExclude(o.prof.Output.Directory, relative); err != nil {
		o.logger.Error("append exclude list", logging.Error(err))
	}

	if o.prof.Input.DeleteAfterProcess {
		input := o.plan.Input.Path.Absolute(o.prof.Input.Directory)
		if err := os.Remove(input); err != nil {
			o.logger.Warn("delete processed input", logging.String("path", input), logging.Error(err))
		} else {
			o.logger.Info("input deleted after processing", logging.String("path", input))
		}
	}
}

func (o *PostObserver) OnFailed(error) {
	for _, output := range o.plan.Outputs {
		path := output.Path.Absolute(o.prof.Output.Directory)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			o.logger.Warn("remove partial output", logging.String("path", path), logging.Error(err))
		}
	}
}

// reassignOwnership chowns every output file and each intermediate directory
// up to, but not including, the output root.
func (o *PostObserver) reassignOwnership() {
	uid, gid, ok := o.owner()
	if !ok {
		return
	}
	root := filepath.Clean(o.prof.Output.Directory)
	for _, output := range o.plan.Outputs {
		path := output.Path.Absolute(o.prof.Output.Directory)
		for path != root && strings.HasPrefix(path, root) {
			if err := chownIfNeeded(path, uid, gid); err != nil {
				o.logger.Warn("adjust ownership", logging.String("path", path), logging.Error(err))
			}
			path = filepath.Dir(path)
		}
	}
}

func chownIfNeeded(path string, uid, gid int) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return err
	}
	if int(st.Uid) == uid && int(st.Gid) == gid {
		return nil
	}
	return os.Chown(path, uid, gid)
}

func ownerFromEnv() (int, int, bool) {
	uidValue, gidValue := os.Getenv("UID"), os.Getenv("GID")
	if uidValue == "" || gidValue == "" {
		return 0, 0, false
	}
	uid, err := strconv.Atoi(uidValue)
	if err != nil {
		return 0, 0, false
	}
	gid, err := strconv.Atoi(gidValue)
	if err != nil {
		return 0, 0, false
	}
	return uid, gid, true
}

// appendExclude records a processed input exactly once.
func appendExclude(outputDir, relative string) error {
	path := filepath.Join(outputDir, ExcludeListName)
	if has, err := excludeContains(path, relative); err != nil {
		return err
	} else if has {
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(relative + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func excludeContains(path, relative string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == relative {
			return true, nil
		}
	}
	return false, scanner.Err()
}
