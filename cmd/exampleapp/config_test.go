package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golift.io/rotatingfile/compressor"
)

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	cmd := newCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--size", "5", "--lines", "3"}))

	flags := &fileConfig{Dir: defaultDir, Size: 5, Lines: 3, LineBytes: bytesPerLogLine, Delay: timeBetweenLogs}
	cfg, err := loadConfig("example.yaml", flags, cmd.Flags())
	require.NoError(t, err)

	assert.Equal("/tmp/myfolder", cfg.Dir)
	assert.EqualValues(5, cfg.Size, "flags beat the file")
	assert.Equal(3, cfg.Lines)
	assert.Equal(time.Minute, cfg.Interval)
	assert.Equal(5*time.Millisecond, cfg.Delay)
	assert.Equal("myfile-", cfg.Prefix)

	rotating, err := cfg.rotatingConfig()
	require.NoError(t, err)
	assert.Equal(compressor.Gzip, rotating.Compression)
	assert.Equal("%Y-%m-%d-%H-%M-%S", rotating.DateFormat)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	cmd := newCommand()

	_, err := loadConfig("settings.toml", &fileConfig{}, cmd.Flags())
	assert.ErrorIs(err, errConfigFormat)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), &fileConfig{}, cmd.Flags())
	assert.ErrorIs(err, os.ErrNotExist)

	_, err = (&fileConfig{Compress: "rar"}).rotatingConfig()
	assert.ErrorIs(err, compressor.ErrUnknownKind)

	cfg, err := loadConfig("", &fileConfig{Dir: "x"}, cmd.Flags())
	assert.NoError(err)
	assert.Equal("x", cfg.Dir)
}

func TestRun(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	dir := t.TempDir()
	cmd := newCommand()
	cmd.SetArgs([]string{"--dir", dir, "--size", "1", "--lines", "5", "--line-bytes", "300", "--delay", "1ms"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(entries, 2, "5 lines of ~320 bytes need two 1kB files")
}
