package rotatingfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"golift.io/rotatingfile/compressor"
)

var errNilFile = errors.New("allocator returned no file")

// RotatingFile is what you get in return for providing a Config.
// Use WriteLine, or pass it into log.SetOutput().
// You must obtain a RotatingFile by calling New().
type RotatingFile struct {
	config     *Config                // incoming configuration, copied.
	compressor *compressor.Compressor // nil when compression is off.
	metrics    *metrics
	tasks      taskList // dispatched compressions.

	mu     sync.Mutex  // guards everything below.
	active *activeFile // the file being written.
	closed bool
}

// activeFile is the open file and its rotation bookkeeping.
type activeFile struct {
	file    *os.File
	path    string
	epoch   int64 // unix seconds the file is named after.
	written int64 // bytes written since the file was opened.
}

// New takes in your configuration and returns a RotatingFile with its first file open.
// Directories are created, and the first file is allocated, before this returns.
func New(config *Config) (*RotatingFile, error) {
	if config == nil {
		return nil, ErrNoDir
	}

	cfg := *config // ours now.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.setDefaults()

	metrics, err := newMetrics(cfg.MeterProvider)
	if err != nil {
		return nil, err
	}

	r := &RotatingFile{config: &cfg, metrics: metrics}

	if cfg.Compression != compressor.None {
		r.compressor = &compressor.Compressor{
			Kind:   cfg.Compression,
			Filer:  cfg.Filer,
			OnDone: r.compressed,
		}
	}

	dirs, err := cfg.Allocator.Dirs()
	if err != nil {
		return nil, fmt.Errorf("validating allocator: %w", err)
	}

	for _, dir := range dirs {
		if err := cfg.Filer.MkdirAll(dir, cfg.DirMode); err != nil {
			return nil, fmt.Errorf("making directories for logfiles: %w", err)
		}
	}

	if r.active, err = r.allocate(r.nextEpoch(cfg.Clock.Now().Unix())); err != nil {
		return nil, err
	}

	return r, nil
}

// WriteLine appends line and a newline to the active file, rotating first if the
// line would reach the size limit or the interval has elapsed. The line always
// lands whole in one file. A failed write is reported through Config.Printf and
// does not return an error; a failed rotation does, and nothing is written.
func (r *RotatingFile) WriteLine(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	size := int64(len(line)) + 1
	now := r.config.Clock.Now().Unix()

	if trigger := r.trigger(now, size); trigger != "" {
		if err := r.rotate(now, trigger); err != nil {
			return err
		}
	}

	n, err := r.active.file.WriteString(line + "\n")
	if err != nil {
		r.metrics.writeFailed()
		r.config.Printf("[rotatingfile] error writing to %s: %v", r.active.path, err)

		return nil
	}

	r.active.written += size
	r.metrics.wrote(n)

	return nil
}

// Write satisfies io.Writer. p is written as one line; a single trailing newline is
// not doubled. The returned size is len(p) unless a rotation fails.
func (r *RotatingFile) Write(p []byte) (int, error) {
	if err := r.WriteLine(strings.TrimSuffix(string(p), "\n")); err != nil {
		return 0, err
	}

	return len(p), nil
}

// Rotate forces a rotation now, even if no trigger fired.
func (r *RotatingFile) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	return r.rotate(r.config.Clock.Now().Unix(), triggerManual)
}

// Flush commits the active file to stable storage.
func (r *RotatingFile) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	if err := r.active.file.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", r.active.path, err)
	}

	return nil
}

// Path returns the path of the file currently being written.
func (r *RotatingFile) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active.path
}

// Close waits for every background compression to finish, then syncs and closes
// the active file. Compression errors are reported through Config.Printf and
// returned together; the files are closed either way, so callers may treat the
// returned error as advisory. Calling Close again returns nil; writes after Close fail with ErrClosed.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}

	r.closed = true // no more rotations, so no more tasks.
	r.mu.Unlock()

	errs := r.tasks.wait()

	for _, err := range multierr.Errors(errs) {
		r.config.Printf("[rotatingfile] %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return multierr.Append(errs, r.active.close())
}

// trigger returns the reason the file must rotate before writing size bytes, or "".
func (r *RotatingFile) trigger(now, size int64) string {
	if limit := r.config.maxBytes(); limit > 0 && r.active.written+size >= limit {
		return triggerSize
	}

	if every := r.config.intervalSeconds(); every > 0 && now >= r.active.epoch+every {
		return triggerInterval
	}

	return ""
}

// nextEpoch is now rounded down to a whole interval, or now with no interval.
func (r *RotatingFile) nextEpoch(now int64) int64 {
	if every := r.config.intervalSeconds(); every > 0 {
		return now / every * every
	}

	return now
}

// rotate hands off from the active file to a new one. The new file is
// allocated first; if that fails the active file stays in place.
// The retired file is closed and belongs to its compression task afterward.
// Must be called with r.mu held.
func (r *RotatingFile) rotate(now int64, trigger string) error {
	next, err := r.allocate(r.nextEpoch(now))
	if err != nil {
		return err
	}

	retired := r.active
	r.active = next

	if err := retired.close(); err != nil {
		r.config.Printf("[rotatingfile] %v", err)
	}

	r.metrics.rotated(trigger)

	if r.compressor != nil {
		r.tasks.add(r.compressor.Background(retired.path))
	}

	return nil
}

func (r *RotatingFile) allocate(epoch int64) (*activeFile, error) {
	file, path, err := r.config.Allocator.Allocate(epoch)
	if err != nil {
		return nil, fmt.Errorf("allocating log file: %w", err)
	}

	if file == nil {
		return nil, fmt.Errorf("allocating log file: %w", errNilFile)
	}

	return &activeFile{file: file, path: path, epoch: epoch}, nil
}

// compressed runs in the compression go routine when it finishes.
func (r *RotatingFile) compressed(report *compressor.Report) {
	r.metrics.compressed(report)

	if report.Error == nil {
		compressor.Log(report, r.config.Printf)
	}
}

// close syncs and closes the file.
func (a *activeFile) close() error {
	err := a.file.Sync()
	if cerr := a.file.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return fmt.Errorf("closing log file %s: %w", a.path, err)
	}

	return nil
}

// Our interface must satify an io.WriteCloser.
var _ io.WriteCloser = (*RotatingFile)(nil)
