// Package rotatingfile is an append-only, line-oriented file sink that rotates
// its output into a new file when a size threshold is reached or a time interval
// elapses, and optionally compresses the retired file in the background.
//
// A RotatingFile is safe for use by many go routines. Every write, including the
// rotation it may trigger, happens under one lock, so no line is ever split
// across two files and no writer observes a half-rotated state.
//
// Files are created in Config.Dir and named after the rotation epoch:
// prefix + strftime(epoch) + suffix. When that name is taken, -1, -2, ... is
// joined to the time stamp. Retired files are replaced by a .gz or .zip copy
// when compression is enabled. Close waits for all compression to finish.
//
// The allocator and compressor packages may also be used on their own.
//
//   https://pkg.go.dev/golift.io/rotatingfile/allocator
//   https://pkg.go.dev/golift.io/rotatingfile/compressor
//
package rotatingfile
