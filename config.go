package rotatingfile

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golift.io/rotatingfile/allocator"
	"golift.io/rotatingfile/compressor"
	"golift.io/rotatingfile/filer"
)

// These are the default directory and log file POSIX modes.
const (
	FileMode os.FileMode = 0o600
	DirMode  os.FileMode = 0o750
)

// Default naming values, used when the Config members are empty.
const (
	DefaultDateFormat = allocator.FormatDefault
	DefaultSuffix     = allocator.LogExt
)

// Custom errors returned by this package.
var (
	ErrClosed          = errors.New("rotating file is closed")
	ErrNoDir           = errors.New("a directory is required")
	ErrInvalidSize     = errors.New("invalid size")
	ErrInvalidInterval = errors.New("invalid interval")
)

// Config is the data needed to create a new RotatingFile.
// Only Dir is required; rotation never happens if Size and Interval are both 0.
type Config struct {
	Dir         string          // Directory for all files. Created if missing.
	Size        int64           // Maximum file size in kilobytes. Default is unlimited.
	Interval    time.Duration   // Rotate every interval, aligned to whole intervals since the epoch.
	Compression compressor.Kind // Compress retired files. Default: none.
	DateFormat  string          // strftime pattern for file names. Default: %Y-%m-%d-%H-%M-%S
	Prefix      string          // File name prefix. Default: empty.
	Suffix      string          // File name suffix. Default: .log
	LocalTime   bool            // Name files in the local time zone instead of UTC.
	FileMode    os.FileMode     // POSIX mode for new files.
	DirMode     os.FileMode     // POSIX mode for new folders.
	// Printf receives reports of failed writes and finished compressions.
	// Default is log.Printf. Do not point it back at this RotatingFile.
	Printf func(msg string, v ...any)
	// Optional overrides.
	Allocator     Allocator            // Naming and opening. Default: allocator.Layout built from this Config.
	Filer         filer.Filer          // File system procedures. Default: filer.Default().
	Clock         clockwork.Clock      // Time source. Default: the real clock.
	MeterProvider metric.MeterProvider // Default: otel.GetMeterProvider().
}

// validate checks the configuration values that cannot be defaulted.
func (c *Config) validate() error {
	if c.Size < 0 {
		return fmt.Errorf("%w: %d kilobytes", ErrInvalidSize, c.Size)
	}

	if c.Interval < 0 || (c.Interval > 0 && c.Interval < time.Second) {
		return fmt.Errorf("%w: %v, must be 0 or at least 1s", ErrInvalidInterval, c.Interval)
	}

	if err := c.Compression.Valid(); err != nil {
		return err //nolint:wrapcheck
	}

	if c.Dir == "" && c.Allocator == nil {
		return ErrNoDir
	}

	return nil
}

// setDefaults does exactly what it says. Sets missing values.
func (c *Config) setDefaults() {
	if c.DateFormat == "" {
		c.DateFormat = DefaultDateFormat
	}

	if c.Suffix == "" {
		c.Suffix = DefaultSuffix
	}

	if c.FileMode == 0 {
		c.FileMode = FileMode
	}

	if c.DirMode == 0 {
		c.DirMode = DirMode
	}

	if c.Printf == nil {
		c.Printf = log.Printf
	}

	if c.Filer == nil {
		c.Filer = filer.Default()
	}

	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}

	if c.MeterProvider == nil {
		c.MeterProvider = otel.GetMeterProvider()
	}

	if c.Allocator == nil {
		c.Allocator = &allocator.Layout{
			Filer:     c.Filer,
			Dir:       c.Dir,
			Format:    c.DateFormat,
			Prefix:    c.Prefix,
			Suffix:    c.Suffix,
			LocalTime: c.LocalTime,
			FileMode:  c.FileMode,
			DirMode:   c.DirMode,
		}
	}
}

// maxBytes returns the size trigger in bytes; 0 disables it.
func (c *Config) maxBytes() int64 {
	const kilobyte = 1024

	return c.Size * kilobyte
}

// intervalSeconds returns the time trigger in whole seconds; 0 disables it.
func (c *Config) intervalSeconds() int64 {
	return int64(c.Interval / time.Second)
}

// The default allocator must satisfy an Allocator.
var _ Allocator = (*allocator.Layout)(nil)
