// Package main is a simple example app to write logs to see file rotation in action.
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golift.io/rotatingfile"
)

// ///////////////////////////////////////////////////////////////////////// //

/* This is a simple example app to write logs to see file rotation in action. */

// Usage, rotate by size with gzip:
//   go run ./cmd/exampleapp --size 1024 --compress gzip
//
// Usage, rotate every 2 seconds:
//   go run ./cmd/exampleapp --interval 2s
//
// Usage, settings from a yaml file (flags win):
//   go run ./cmd/exampleapp --config ./cmd/exampleapp/example.yaml

const (
	defaultDir      = "/tmp/myfolder"
	bytesPerLogLine = 5000
	timeBetweenLogs = time.Millisecond * 5
)

// ///////////////////////////////////////////////////////////////////////// //

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		configFile string
		flags      = &fileConfig{Dir: defaultDir, Lines: 0, LineBytes: bytesPerLogLine, Delay: timeBetweenLogs}
	)

	cmd := &cobra.Command{
		Use:          "exampleapp",
		Short:        "Write fake logs into a rotating file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile, flags, cmd.Flags())
			if err != nil {
				return err
			}

			return run(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "yaml file with settings")
	cmd.Flags().StringVar(&flags.Dir, "dir", flags.Dir, "directory for log files")
	cmd.Flags().Int64Var(&flags.Size, "size", 0, "rotate at this many kilobytes, 0 disables")
	cmd.Flags().DurationVar(&flags.Interval, "interval", 0, "rotate every interval, 0 disables")
	cmd.Flags().StringVar(&flags.Compress, "compress", "", "compress retired files: gzip or zip")
	cmd.Flags().StringVar(&flags.DateFormat, "date-format", "", "strftime pattern for file names")
	cmd.Flags().StringVar(&flags.Prefix, "prefix", "", "file name prefix")
	cmd.Flags().StringVar(&flags.Suffix, "suffix", "", "file name suffix")
	cmd.Flags().IntVar(&flags.Lines, "lines", flags.Lines, "stop after this many lines, 0 runs until interrupted")
	cmd.Flags().IntVar(&flags.LineBytes, "line-bytes", flags.LineBytes, "bytes per log line")
	cmd.Flags().DurationVar(&flags.Delay, "delay", flags.Delay, "time between log lines")

	return cmd
}

// run writes fake logs until interrupted or the line count is reached.
func run(cmd *cobra.Command, cfg *fileConfig) error {
	config, err := cfg.rotatingConfig()
	if err != nil {
		return err
	}

	// Internal reports go to stderr; the log output goes to the rotating file.
	config.Printf = func(msg string, v ...any) { fmt.Fprintf(cmd.ErrOrStderr(), "\n"+msg+"\n", v...) }

	file, err := rotatingfile.New(config)
	if err != nil {
		return fmt.Errorf("opening rotating file: %w", err)
	}

	log.SetFlags(log.LstdFlags)
	log.SetOutput(file)

	defer log.SetOutput(os.Stderr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(sig)

	makeLogs(cmd, cfg, sig)
	fmt.Fprintln(cmd.OutOrStdout(), "\nclosing", file.Path())

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing rotating file: %w", err)
	}

	return nil
}

// Write fake logs!
func makeLogs(cmd *cobra.Command, cfg *fileConfig, stop <-chan os.Signal) {
	logLine := string(bytes.Repeat([]byte{'_'}, cfg.LineBytes))

	ticker := time.NewTicker(cfg.Delay)
	defer ticker.Stop()

	for count := 0; cfg.Lines == 0 || count < cfg.Lines; count++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fmt.Fprint(cmd.OutOrStdout(), ".")

			if err := log.Output(0, logLine); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "\nwrite failed:", err)
			}
		}
	}
}
