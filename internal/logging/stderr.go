package logging

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

var (
	beginOnce sync.Once
	beginErr  error
)

// Begin starts global logging for the process: the standard error
// stream is redirected into the logging system so anything written to
// it, including runtime panics on linux, shows up as structured log
// entries. Only the first call does anything; Initialize should run
// before it so the handler chain is configured.
func Begin() error {
	beginOnce.Do(func() {
		beginErr = redirectStderr()
	})
	return beginErr
}

// redirectStderr routes fd 2 through a pipe whose lines are logged at
// error level under the "stderr" module.
func redirectStderr() error {
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	if err := redirectFd(w); err != nil {
		r.Close()
		w.Close()
		return err
	}
	os.Stderr = w

	go drainStderr(r)
	return nil
}

func drainStderr(r *os.File) {
	logger := GetLogger("stderr")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), " \t"); line != "" {
			logger.Error(line)
		}
	}
}
