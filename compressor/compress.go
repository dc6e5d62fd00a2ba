// Package compressor provides gzip and zip compression of retired log files.
// Compression may run in the foreground or in the background; background
// compression returns a Task that can be waited on.
package compressor

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"golift.io/rotatingfile/filer"
)

// Kind is a compression codec.
type Kind string

// These are the supported compression kinds.
const (
	None Kind = ""
	Gzip Kind = "gzip"
	Zip  Kind = "zip"
)

// These suffixes are appended to a fileName to make the new compressed file name.
const (
	SuffixGZ  = ".gz"
	SuffixZip = ".zip"
)

// Custom errors returned by this package.
var (
	ErrUnknownKind = errors.New("unknown compression kind")
	ErrEncode      = errors.New("encoding compressed file")
)

// ParseKind turns a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zip":
		return Zip, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Ext returns the suffix added to compressed files of this kind.
func (k Kind) Ext() string {
	switch k {
	case Gzip:
		return SuffixGZ
	case Zip:
		return SuffixZip
	default:
		return ""
	}
}

// Valid returns an error if the kind is not supported.
func (k Kind) Valid() error {
	switch k {
	case None, Gzip, Zip:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// Report contains a report of the compression operation.
// Always check for Error to make sure the New* data is valid.
type Report struct {
	Kind    Kind
	OldFile string
	NewFile string
	OldSize int64
	NewSize int64
	Elapsed time.Duration
	Error   error
}

// Compressor compresses files with one Kind.
type Compressor struct {
	Kind  Kind
	Filer filer.Filer
	// OnDone is called with the report of every background compression,
	// from the compressing go routine. Optional.
	OnDone func(report *Report)
}

// Compress compresses a file with the default Filer and returns a report. Blocks until finished.
func Compress(fileName string, kind Kind) (*Report, error) {
	return (&Compressor{Kind: kind}).Compress(fileName)
}

// Compress reads fileName, writes it compressed to fileName+Ext() and removes
// fileName. The original is only removed after the new file is written and closed.
// On failure the partial compressed file is removed and the original is kept.
func (c *Compressor) Compress(fileName string) (*Report, error) {
	report := &Report{
		Kind:    c.Kind,
		OldFile: fileName,
		NewFile: fileName + c.Kind.Ext(),
	}

	if report.Error = c.Kind.Valid(); report.Error != nil {
		return report, report.Error
	} else if c.Kind == None {
		report.Error = fmt.Errorf("%w: none", ErrUnknownKind)
		return report, report.Error
	}

	start := time.Now()
	report.OldSize, report.NewSize, report.Error = c.compress(report.OldFile, report.NewFile)
	report.Elapsed = time.Since(start)

	if report.Error != nil {
		report.Error = fmt.Errorf("compressor error: %w", report.Error)
		return report, report.Error
	}

	return report, nil
}

// Background runs a file compression in a new go routine and returns its Task.
func (c *Compressor) Background(fileName string) *Task {
	task := &Task{fileName: fileName, done: make(chan struct{})}

	go func() {
		defer close(task.done)

		task.report, task.err = c.Compress(fileName)
		if c.OnDone != nil {
			c.OnDone(task.report)
		}
	}()

	return task
}

func (c *Compressor) filer() filer.Filer {
	if c.Filer == nil {
		return filer.Default()
	}

	return c.Filer
}

// compress does the "hard" work: read the old file, open the new file, encode,
// close the new file, and lastly delete the old file.
func (c *Compressor) compress(oldFile, newFile string) (int64, int64, error) {
	fsys := c.filer()

	data, err := fsys.ReadFile(oldFile)
	if err != nil {
		return 0, 0, fmt.Errorf("reading source file: %w", err)
	}

	out, err := fsys.OpenFile(newFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return int64(len(data)), 0, fmt.Errorf("opening %s file: %w", c.Kind, err)
	}

	counter := &countWriter{w: out}
	err = c.encode(counter, filepath.Base(oldFile), data)

	if err == nil {
		if err = out.Sync(); err != nil {
			err = fmt.Errorf("syncing %s: %w", newFile, err)
		}
	}

	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("closing %s: %w", newFile, cerr)
	}

	if err != nil {
		_ = fsys.Remove(newFile)
		return int64(len(data)), counter.n, err
	}

	if err = fsys.Remove(oldFile); err != nil {
		return int64(len(data)), counter.n, fmt.Errorf("removing source file: %w", err)
	}

	return int64(len(data)), counter.n, nil
}

func (c *Compressor) encode(w io.Writer, name string, data []byte) error {
	switch c.Kind {
	case Gzip:
		gzw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}

		gzw.Name = name

		if _, err := gzw.Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}

		if err := gzw.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}
	case Zip:
		zipw := zip.NewWriter(w)

		entry, err := zipw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}

		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}

		if err := zipw.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}
	}

	return nil
}

// Log sends a report to a custom procedure.
func Log(report *Report, printf func(msg string, fmt ...any)) {
	if printf == nil {
		printf = log.Printf
	}

	const kilobyte = 1024

	if report.Error != nil {
		printf("Compression Error after %v: %v", report.Elapsed.Round(time.Millisecond), report.Error)
	} else {
		printf("Compression Finished in %v: %s/%dkB -> %s/%dkB", report.Elapsed.Round(time.Millisecond),
			report.OldFile, report.OldSize/kilobyte, report.NewFile, report.NewSize/kilobyte)
	}
}

// countWriter tracks the compressed size without another Stat.
type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err //nolint:wrapcheck
}
