package compressor_test

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golift.io/rotatingfile/compressor"
	"golift.io/rotatingfile/mocks"
)

func testFile(t *testing.T, size int) (string, []byte) {
	t.Helper()

	data := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog\n"), size/44+1)[:size]
	fileName := filepath.Join(t.TempDir(), "2024-01-02-03-04-05.log")
	require.NoError(t, os.WriteFile(fileName, data, 0o600))

	return fileName, data
}

func TestParseKind(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	for in, want := range map[string]compressor.Kind{
		"": compressor.None, "none": compressor.None, "GZIP": compressor.Gzip,
		"gz": compressor.Gzip, " zip ": compressor.Zip,
	} {
		kind, err := compressor.ParseKind(in)
		assert.NoError(err, in)
		assert.Equal(want, kind, in)
	}

	_, err := compressor.ParseKind("bzip2")
	assert.ErrorIs(err, compressor.ErrUnknownKind)
	assert.ErrorIs(compressor.Kind("lz4").Valid(), compressor.ErrUnknownKind)
	assert.Equal(".gz", compressor.Gzip.Ext())
	assert.Equal(".zip", compressor.Zip.Ext())
	assert.Empty(compressor.None.Ext())
}

func TestCompressGzip(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	fileName, data := testFile(t, 300000)

	report, err := compressor.Compress(fileName, compressor.Gzip)
	require.NoError(t, err)
	assert.Nil(report.Error)
	assert.Equal(fileName+".gz", report.NewFile)
	assert.Equal(int64(len(data)), report.OldSize)
	assert.Positive(report.NewSize)
	assert.Less(report.NewSize, report.OldSize)

	_, err = os.Stat(fileName)
	assert.ErrorIs(err, os.ErrNotExist, "the original file must be removed")

	info, err := os.Stat(report.NewFile)
	require.NoError(t, err)
	assert.Equal(report.NewSize, info.Size())

	gzf, err := os.Open(report.NewFile)
	require.NoError(t, err)
	defer gzf.Close()

	gzr, err := gzip.NewReader(gzf)
	require.NoError(t, err)

	got, err := io.ReadAll(gzr)
	require.NoError(t, err)
	assert.Equal(data, got, "gzip round trip must reproduce the original bytes")
	assert.Equal(filepath.Base(fileName), gzr.Name)
}

func TestCompressZip(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	fileName, data := testFile(t, 5000)

	report, err := compressor.Compress(fileName, compressor.Zip)
	require.NoError(t, err)
	assert.Equal(fileName+".zip", report.NewFile)

	_, err = os.Stat(fileName)
	assert.ErrorIs(err, os.ErrNotExist, "the original file must be removed")

	zipr, err := zip.OpenReader(report.NewFile)
	require.NoError(t, err)
	defer zipr.Close()

	require.Len(t, zipr.File, 1)
	assert.Equal(filepath.Base(fileName), zipr.File[0].Name)

	entry, err := zipr.File[0].Open()
	require.NoError(t, err)
	defer entry.Close()

	got, err := io.ReadAll(entry)
	require.NoError(t, err)
	assert.Equal(data, got, "zip round trip must reproduce the original bytes")
}

func TestCompressMissingFile(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r, err := compressor.Compress("/does/not/exist/file", compressor.Gzip)
	assert.ErrorIs(err, os.ErrNotExist)
	assert.Contains(err.Error(), "reading source file:")
	assert.ErrorIs(err, r.Error)

	_, err = compressor.Compress("/does/not/exist/file", compressor.None)
	assert.ErrorIs(err, compressor.ErrUnknownKind)
}

func TestCompressEncodeFailureKeepsOriginal(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	fileName, data := testFile(t, 1000)
	mockFiler := mocks.NewMockFiler(mockCtrl)

	// A file opened read-only cannot be written, so the encoder fails.
	readOnly, err := os.Open(fileName)
	require.NoError(t, err)

	mockFiler.EXPECT().ReadFile(fileName).Return(data, nil)
	mockFiler.EXPECT().OpenFile(fileName+".gz", gomock.Any(), gomock.Any()).Return(readOnly, nil)
	mockFiler.EXPECT().Remove(fileName + ".gz")

	c := &compressor.Compressor{Kind: compressor.Gzip, Filer: mockFiler}
	report, err := c.Compress(fileName)
	assert.ErrorIs(err, compressor.ErrEncode)
	assert.ErrorIs(report.Error, compressor.ErrEncode)

	got, err := os.ReadFile(fileName)
	assert.NoError(err)
	assert.Equal(data, got, "the original must survive a failed compression")
}

func TestCompressRemoveFailure(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	dir := t.TempDir()
	fileName := filepath.Join(dir, "app.log")
	out, err := os.Create(fileName + ".zip")
	require.NoError(t, err)

	boom := errors.New("device busy")
	mockFiler := mocks.NewMockFiler(mockCtrl)
	mockFiler.EXPECT().ReadFile(fileName).Return([]byte("line\n"), nil)
	mockFiler.EXPECT().OpenFile(fileName+".zip", gomock.Any(), gomock.Any()).Return(out, nil)
	mockFiler.EXPECT().Remove(fileName).Return(boom)

	_, err = (&compressor.Compressor{Kind: compressor.Zip, Filer: mockFiler}).Compress(fileName)
	assert.ErrorIs(err, boom)
	assert.Contains(err.Error(), "removing source file")
}

func TestBackground(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	fileName, _ := testFile(t, 2000)
	reports := make(chan *compressor.Report, 1)

	c := &compressor.Compressor{Kind: compressor.Gzip, OnDone: func(r *compressor.Report) { reports <- r }}
	task := c.Background(fileName)
	assert.Equal(fileName, task.FileName())

	report, err := task.Wait()
	assert.NoError(err)
	assert.True(task.Finished())
	assert.Same(report, <-reports)

	select {
	case <-task.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}

	_, err = os.Stat(fileName + ".gz")
	assert.NoError(err)
}

func TestLog(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var lines []string

	printf := func(msg string, v ...any) { lines = append(lines, msg) }
	compressor.Log(&compressor.Report{OldFile: "a", NewFile: "a.gz"}, printf)
	compressor.Log(&compressor.Report{Error: errors.New("nope")}, printf)
	assert.Equal([]string{
		"Compression Finished in %v: %s/%dkB -> %s/%dkB",
		"Compression Error after %v: %v",
	}, lines)
}
