//go:build linux

package logging

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectFd points fd 2 at the pipe so writes that bypass os.Stderr,
// such as runtime panic output, are captured too.
func redirectFd(w *os.File) error {
	return unix.Dup3(int(w.Fd()), 2, 0)
}
