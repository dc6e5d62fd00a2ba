package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"golift.io/rotatingfile"
	"golift.io/rotatingfile/compressor"
)

var errConfigFormat = errors.New("config file must be .yaml or .yml")

// fileConfig is the app's settings, from a yaml file and the command line.
type fileConfig struct {
	Dir        string        `koanf:"dir"`
	Size       int64         `koanf:"size"`
	Interval   time.Duration `koanf:"interval"`
	Compress   string        `koanf:"compress"`
	DateFormat string        `koanf:"date_format"`
	Prefix     string        `koanf:"prefix"`
	Suffix     string        `koanf:"suffix"`
	Lines      int           `koanf:"lines"`
	LineBytes  int           `koanf:"line_bytes"`
	Delay      time.Duration `koanf:"delay"`
}

// loadConfig starts with flag defaults, applies the yaml file, then any flags set on the command line.
func loadConfig(path string, flags *fileConfig, set *pflag.FlagSet) (*fileConfig, error) {
	cfg := *flags
	if path == "" {
		return &cfg, nil
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s", errConfigFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	// Flags given on the command line beat the file.
	set.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "dir":
			cfg.Dir = flags.Dir
		case "size":
			cfg.Size = flags.Size
		case "interval":
			cfg.Interval = flags.Interval
		case "compress":
			cfg.Compress = flags.Compress
		case "date-format":
			cfg.DateFormat = flags.DateFormat
		case "prefix":
			cfg.Prefix = flags.Prefix
		case "suffix":
			cfg.Suffix = flags.Suffix
		case "lines":
			cfg.Lines = flags.Lines
		case "line-bytes":
			cfg.LineBytes = flags.LineBytes
		case "delay":
			cfg.Delay = flags.Delay
		}
	})

	return &cfg, nil
}

// rotatingConfig converts the app settings into a rotatingfile.Config.
func (f *fileConfig) rotatingConfig() (*rotatingfile.Config, error) {
	kind, err := compressor.ParseKind(f.Compress)
	if err != nil {
		return nil, fmt.Errorf("compress setting: %w", err)
	}

	return &rotatingfile.Config{
		Dir:         f.Dir,
		Size:        f.Size,
		Interval:    f.Interval,
		Compression: kind,
		DateFormat:  f.DateFormat,
		Prefix:      f.Prefix,
		Suffix:      f.Suffix,
	}, nil
}
