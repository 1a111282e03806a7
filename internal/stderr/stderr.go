//go:build !windows

// Package stderr captures output from C libraries (ALSA, audio codecs)
// that write directly to file descriptor 2, bypassing Go's os.Stderr.
// Captured lines go to the Messages channel instead of garbling the
// interactive prompt.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"
)

// Messages receives stderr lines captured from C libraries.
var Messages = make(chan string, 100)

var (
	origStderr int
	origFile   *os.File
	pipeRead   *os.File
	pipeWrite  *os.File
	started    bool
)

// Start begins capturing stderr output. Must be called early in main(),
// before any audio library initialization. The program can continue
// without capture on error; noise just reaches the terminal.
func Start() error {
	if started {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	// Keep a handle on the real stderr for our own logging
	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	// Redirect fd 2 to the pipe's write end
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(origStderr)
		r.Close()
		w.Close()
		return err
	}

	origFile = os.NewFile(uintptr(origStderr), "stderr")
	pipeRead = r
	pipeWrite = w
	started = true

	go func() {
		scanner := bufio.NewScanner(pipeRead)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case Messages <- line:
			default:
				// Channel full, drop to avoid blocking the C library
			}
		}
	}()

	return nil
}

// Original returns the real stderr, bypassing capture. Before Start (or
// after a failed Start) it is os.Stderr itself.
func Original() *os.File {
	if origFile != nil {
		return origFile
	}
	return os.Stderr
}

// Stop restores the original stderr. Should be called on program exit.
func Stop() {
	if !started {
		return
	}

	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))

	pipeWrite.Close()
	pipeRead.Close()

	close(Messages)
	origFile = nil
	started = false
}
