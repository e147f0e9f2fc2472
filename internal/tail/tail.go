// Package tail follows a growing text file and emits it line by line.
//
// The follower watches the file's directory with fsnotify so it notices
// appends, truncation and re-creation (log rotation). A slow poll backs up
// the watcher on filesystems that do not deliver events.
package tail

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/logship/pkg/log"
)

// DefaultPollInterval is how often the file is re-checked without events.
const DefaultPollInterval = time.Second

// Option configures a Follower.
type Option func(*Follower)

// WithLogger sets the diagnostics logger.
func WithLogger(l log.Logger) Option {
	return func(f *Follower) { f.logger = l }
}

// FromEnd starts following at the current end of the file instead of its
// beginning.
func FromEnd() Option {
	return func(f *Follower) { f.fromEnd = true }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.poll = d
		}
	}
}

// Follower reads a file and keeps reading as it grows.
type Follower struct {
	path    string
	logger  log.Logger
	fromEnd bool
	poll    time.Duration

	file    *os.File
	offset  int64
	partial []byte
}

// New returns a follower for path.
func New(path string, opts ...Option) *Follower {
	f := &Follower{
		path:   path,
		logger: log.NewNoopLogger(),
		poll:   DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run emits every complete line until ctx is cancelled. Lines are passed
// without their terminator. A trailing partial line is emitted when ctx ends.
func (f *Follower) Run(ctx context.Context, emit func(line string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tail: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("tail: watch %s: %w", dir, err)
	}

	if err := f.open(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if f.file != nil && f.fromEnd {
		if f.offset, err = f.file.Seek(0, io.SeekEnd); err != nil {
			return fmt.Errorf("tail: seek: %w", err)
		}
	}
	defer f.close()

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	name := filepath.Clean(f.path)
	for {
		if err := f.readAvailable(emit); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			if len(f.partial) > 0 {
				emit(string(f.partial))
				f.partial = nil
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				f.logger.Debug("followed file moved", log.String("path", f.path), log.String("op", event.Op.String()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("file watcher error", log.Err(err))

		case <-ticker.C:
		}
	}
}

// readAvailable opens the file if needed, detects truncation and emits all
// complete lines past the current offset.
func (f *Follower) readAvailable(emit func(string)) error {
	if f.file != nil && f.replaced() {
		f.drain(emit)
		f.close()
	}
	if f.file == nil {
		if err := f.open(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
	}

	info, err := f.file.Stat()
	if err != nil {
		return fmt.Errorf("tail: stat: %w", err)
	}
	if info.Size() < f.offset {
		f.logger.Info("followed file truncated", log.String("path", f.path))
		if _, err := f.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("tail: seek: %w", err)
		}
		f.offset = 0
		f.partial = nil
	}
	return f.readLines(emit)
}

func (f *Follower) readLines(emit func(string)) error {
	r := bufio.NewReader(f.file)
	for {
		chunk, err := r.ReadBytes('\n')
		f.offset += int64(len(chunk))
		if len(chunk) > 0 {
			f.partial = append(f.partial, chunk...)
			if chunk[len(chunk)-1] == '\n' {
				emit(string(trimEOL(f.partial)))
				f.partial = f.partial[:0]
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tail: read: %w", err)
		}
	}
}

// drain reads what remains of the current file before it is let go.
func (f *Follower) drain(emit func(string)) {
	if f.file == nil {
		return
	}
	if err := f.readLines(emit); err != nil {
		f.logger.Warn("drain followed file", log.Err(err))
	}
	if len(f.partial) > 0 {
		emit(string(f.partial))
		f.partial = nil
	}
}

// replaced reports whether path now names a different file than the one
// being read.
func (f *Follower) replaced() bool {
	cur, err := os.Stat(f.path)
	if err != nil {
		return false
	}
	held, err := f.file.Stat()
	if err != nil {
		return true
	}
	return !os.SameFile(cur, held)
}

func (f *Follower) open() error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	f.file = file
	f.offset = 0
	return nil
}

func (f *Follower) close() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}

// Lines emits every line of r until EOF or ctx is cancelled.
func Lines(ctx context.Context, r io.Reader, emit func(line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		emit(string(trimEOL(sc.Bytes())))
	}
	return sc.Err()
}
