//go:build !linux

package logging

import "os"

// redirectFd is a no-op outside linux; swapping os.Stderr still captures
// everything written through the standard library.
func redirectFd(_ *os.File) error {
	return nil
}
