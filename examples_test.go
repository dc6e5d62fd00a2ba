package rotatingfile_test

import (
	"fmt"
	"log"
	"os"
	"time"

	"golift.io/rotatingfile"
	"golift.io/rotatingfile/compressor"
)

// Example shows the basic rotate-by-size usage.
func Example() {
	dir, _ := os.MkdirTemp("", "rotatingfile")
	defer os.RemoveAll(dir)

	file, err := rotatingfile.New(&rotatingfile.Config{
		Dir:  dir,
		Size: 1, // 1 kilobyte.
	})
	if err != nil {
		panic(err)
	}

	for range 24 {
		_ = file.WriteLine("The quick brown fox jumps over the lazy dog")
	}

	_ = file.Close()

	entries, _ := os.ReadDir(dir)
	fmt.Println("files:", len(entries))
	// Output:
	// files: 2
}

// Example_logger shows how to plug a RotatingFile into a standard go logger.
// Files rotate every hour and when they reach 10 megabytes. Retired files are gzipped.
func Example_logger() {
	file, err := rotatingfile.New(&rotatingfile.Config{
		Dir:         "/var/log/myapp",
		Prefix:      "myapp-",
		Size:        10 * 1024, // 10 megabytes.
		Interval:    time.Hour,
		Compression: compressor.Gzip,
	})
	if err != nil {
		panic(err)
	}
	defer file.Close()

	log.SetOutput(file)
	log.Println("hello")
}

// Example_compressor shows how to compress a file without a RotatingFile.
func Example_compressor() {
	report, err := compressor.Compress("/var/log/myapp/old.log", compressor.Zip)
	if err != nil {
		log.Printf("[rotatingfile] Error: %v", err)
		return
	}

	compressor.Log(report, nil)
}
