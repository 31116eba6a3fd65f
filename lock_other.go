//go:build !unix

package main

// lockFile is a no-op where flock is unavailable.
func lockFile(path string) (func() error, error) {
	return func() error { return nil }, nil
}
