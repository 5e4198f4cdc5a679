// Package pidfile manages the file that records a running process id so
// a later invocation can signal it.
package pidfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed reports pid file content that does not parse as a
// decimal integer.
var ErrMalformed = errors.New("malformed pid file")

// File is a file-backed record of one process id. The entire file
// content is the decimal pid followed by a newline. It is a plain
// overwrite-based record, not a lock file: concurrent writers are
// last-writer-wins and no locking is attempted.
type File struct {
	path string
}

// New returns a File for the given path. The path is not touched until
// Write, Read, or Remove is called.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the underlying filesystem path.
func (f *File) Path() string { return f.path }

// Write replaces the file content with pid in decimal plus a trailing
// newline.
func (f *File) Write(pid int) error {
	return os.WriteFile(f.path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// Read parses the recorded pid. Content that is not a decimal integer
// fails with an error wrapping ErrMalformed.
func (f *File) Read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, err
	}

	content := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(content)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, content)
	}
	return pid, nil
}

// Remove deletes the file. A missing file is not an error: removal is
// best-effort cleanup at the end of a run.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether the file is present.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}
