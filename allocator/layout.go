// Package allocator provides the default file naming and allocation procedure
// for a RotatingFile. Every file is named after the rotation epoch it was opened
// under, formatted with a strftime pattern. By default files are named:
// 2006-01-02-15-04-05.log. When a file with that name already exists, an
// integer is joined to the time stamp: 2006-01-02-15-04-05-1.log, -2, -3...
package allocator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"
	"golift.io/rotatingfile/filer"
)

// Some Formats you may use in your app. These are strftime patterns.
const (
	FormatDefault = "%Y-%m-%d-%H-%M-%S" // Default: Used if Format = ""
	FormatNoSecnd = "%Y-%m-%d-%H-%M"    // Example: Same thing, sans seconds.
	FormatDaily   = "%Y-%m-%d"          // Example: One name per day.
)

// Some constants this package uses.
const (
	LogExt   = ".log"       // Default suffix.
	Joiner   = "-"          // Joins the time stamp with a collision counter.
	FileMode = os.FileMode(0o600)
	DirMode  = os.FileMode(0o750)
)

// ErrNoDir is returned when a Layout has no directory.
var ErrNoDir = errors.New("allocator: a directory is required")

// Layout defines how time-stamped log files have their names decided, and opens them.
type Layout struct {
	filer.Filer

	Dir       string      // Directory the files are created in.
	Format    string      // strftime pattern. Used as the name.
	Prefix    string      // Written before the time stamp.
	Suffix    string      // Written after the time stamp. Default: .log
	LocalTime bool        // Format time stamps in the local zone instead of UTC.
	FileMode  os.FileMode // POSIX mode for new files.
	DirMode   os.FileMode // POSIX mode for new folders.

	format *strftime.Strftime
}

// Dirs validates input data, sets defaults and returns the list of directories being used.
func (l *Layout) Dirs() ([]string, error) {
	if l.Dir == "" {
		return nil, ErrNoDir
	}

	if err := l.setDefaults(); err != nil {
		return nil, err
	}

	return []string{l.Dir}, nil
}

func (l *Layout) setDefaults() error {
	if l.Format == "" {
		l.Format = FormatDefault
	}

	if l.Suffix == "" {
		l.Suffix = LogExt
	}

	if l.FileMode == 0 {
		l.FileMode = FileMode
	}

	if l.DirMode == 0 {
		l.DirMode = DirMode
	}

	if l.Filer == nil {
		l.Filer = filer.Default()
	}

	format, err := strftime.New(l.Format)
	if err != nil {
		return fmt.Errorf("parsing date format %q: %w", l.Format, err)
	}

	l.format = format

	return nil
}

// Name returns the file name (without directory) for an epoch.
// When n is above zero it is joined to the time stamp.
// If Format does not compile, the stamp is the epoch in decimal seconds;
// Dirs and Allocate return that compile error instead.
func (l *Layout) Name(epoch int64, n int) string {
	var stamp string

	if l.format == nil && l.setDefaults() != nil {
		stamp = strconv.FormatInt(epoch, 10) // bad Format.
	} else {
		when := time.Unix(epoch, 0).UTC()
		if l.LocalTime {
			when = when.Local()
		}

		stamp = l.format.FormatString(when)
	}

	if n > 0 {
		stamp += Joiner + strconv.Itoa(n)
	}

	return l.Prefix + stamp + l.Suffix
}

// Allocate finds an unused name for epoch and opens it. The file is always
// created, even if nothing is ever written to it. Errors are not retried.
func (l *Layout) Allocate(epoch int64) (*os.File, string, error) {
	if l.format == nil {
		if _, err := l.Dirs(); err != nil {
			return nil, "", err
		}
	}

	if err := l.MkdirAll(l.Dir, l.DirMode); err != nil {
		return nil, "", fmt.Errorf("making directories for logfiles: %w", err)
	}

	for n := 0; ; n++ {
		fileName := filepath.Join(l.Dir, l.Name(epoch, n))

		_, err := l.Stat(fileName)
		if err == nil {
			continue // taken.
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("checking for logfile %s: %w", fileName, err)
		}

		// O_EXCL loses to anything that created the name since Stat; keep probing when that happens.
		file, err := l.OpenFile(fileName, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, l.FileMode)
		if errors.Is(err, fs.ErrExist) {
			continue
		} else if err != nil {
			return nil, "", fmt.Errorf("error with new logfile: %w", err)
		}

		return file, fileName, nil
	}
}
