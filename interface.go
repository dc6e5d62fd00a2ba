package rotatingfile

//go:generate mockgen -destination=mocks/allocator.go -package=mocks golift.io/rotatingfile Allocator

import "os"

// Allocator allows passing in your own logic for naming and opening files.
// The allocator package provides the default implementation.
type Allocator interface {
	// Allocate is called once at startup and any time a file needs to be rotated.
	// It must return a file, opened for writing, whose name does not collide with
	// any existing file. epoch is the rotation epoch in unix seconds.
	Allocate(epoch int64) (file *os.File, path string, err error)

	// Dirs is called once on startup.
	// This should do any validation and return a list of directories to create.
	Dirs() (dirPaths []string, err error)
}
