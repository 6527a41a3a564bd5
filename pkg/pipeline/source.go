package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/macropower/csvr/pkg/log"
)

// StdinPath is the input path that selects [Stdin].
const StdinPath = "-"

var (
	// ErrInputType is returned when the input is neither a file nor a directory.
	ErrInputType = errors.New("input is neither a file nor a directory")
	// ErrNoStaging is returned when watch mode has no work directory.
	ErrNoStaging = errors.New("watch mode requires a work directory")
	// ErrStaged is returned when a staged file already exists in the work directory.
	ErrStaged = errors.New("file already exists in work directory")
)

// Task is a unit of work: a document path, or for in-memory documents, a
// name and its content.
type Task struct {
	Path    string
	Content []byte
	// Remove deletes Path after it is processed successfully.
	Remove bool
}

// Source emits tasks. Emit blocks only briefly, since the task queue is
// unbounded. Run returns when the source is exhausted or ctx is done.
type Source interface {
	Run(ctx context.Context, emit func(Task)) error
}

// SourceOptions selects and configures a [Source], see [NewSource].
type SourceOptions struct {
	Stdin  io.Reader
	Input  string
	Work   string
	Period time.Duration
	Notify bool
}

// NewSource picks the source strategy for o.Input:
//   - "-" reads standard input ([Stdin]).
//   - A regular file is processed once ([SingleFile]).
//   - A directory with a positive Period is polled ([Watch]), which requires
//     a work directory.
//   - Any other directory is listed once ([Snapshot]).
func NewSource(o SourceOptions) (Source, error) {
	if o.Input == StdinPath {
		return &Stdin{Reader: o.Stdin}, nil
	}

	if o.Work != "" {
		fi, err := os.Stat(o.Work)
		if err != nil {
			return nil, fmt.Errorf("work directory: %w", err)
		}

		if !fi.IsDir() {
			return nil, fmt.Errorf("work directory %s: %w", o.Work, ErrInputType)
		}
	}

	fi, err := os.Stat(o.Input)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	switch {
	case fi.Mode().IsRegular():
		return &SingleFile{Path: o.Input}, nil

	case fi.IsDir() && o.Period > 0:
		if o.Work == "" {
			return nil, ErrNoStaging
		}

		return &Watch{Dir: o.Input, Work: o.Work, Period: o.Period, Notify: o.Notify}, nil

	case fi.IsDir():
		return &Snapshot{Dir: o.Input, Work: o.Work}, nil
	}

	return nil, fmt.Errorf("%s: %w", o.Input, ErrInputType)
}

// SingleFile emits one task for Path.
type SingleFile struct {
	Path string
}

func (s *SingleFile) Run(_ context.Context, emit func(Task)) error {
	emit(Task{Path: s.Path})

	return nil
}

// Stdin reads Reader to the end and emits it as one in-memory task.
type Stdin struct {
	Reader io.Reader
}

func (s *Stdin) Run(_ context.Context, emit func(Task)) error {
	content, err := io.ReadAll(s.Reader)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	emit(Task{Path: StdinPath, Content: content})

	return nil
}

// Snapshot lists Dir once and emits a task per file. Subdirectories are
// skipped. With a Work directory, each file is first moved into it, and a
// failure to move is fatal.
type Snapshot struct {
	Dir  string
	Work string
}

func (s *Snapshot) Run(ctx context.Context, emit func(Task)) error {
	files, err := listFiles(s.Dir)
	if err != nil {
		return err
	}

	for _, name := range files {
		if ctx.Err() != nil {
			return nil
		}

		path := filepath.Join(s.Dir, name)
		if s.Work != "" {
			path, err = stage(ctx, s.Dir, s.Work, name)
			if err != nil {
				return err
			}
		}

		emit(Task{Path: path})
	}

	return nil
}

// listFiles returns the names of the non-directory entries of dir, sorted by
// name.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		files = append(files, e.Name())
	}

	return files, nil
}

// stage moves dir/name into work and returns the new path. It refuses to
// replace an existing file.
func stage(ctx context.Context, dir, work, name string) (string, error) {
	src := filepath.Join(dir, name)
	dst := filepath.Join(work, name)

	_, err := os.Lstat(dst)
	if err == nil {
		return "", fmt.Errorf("stage %s: %w", src, ErrStaged)
	}

	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stage %s: %w", src, err)
	}

	err = os.Rename(src, dst)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", src, err)
	}

	log.WithContext(ctx).DebugContext(ctx, "staged file",
		slog.String("from", src),
		slog.String("to", dst),
	)

	return dst, nil
}
