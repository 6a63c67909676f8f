package services

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"nxharness/pkg/logging"
)

// DefaultFollowInterval is the fallback polling interval when fsnotify is
// not available.
const DefaultFollowInterval = 500 * time.Millisecond

// LogFollower streams newly appended lines of a log file through a callback.
// It uses fsnotify for efficient file system monitoring with a fallback to
// polling for environments where fsnotify is not available or reliable.
// The file does not have to exist yet when the follower starts; output is
// picked up as soon as the service creates it.
type LogFollower struct {
	mu sync.Mutex

	path   string
	onLine func(line string)

	// fsWatcher is the fsnotify watcher (may be nil if fsnotify is unavailable)
	fsWatcher *fsnotify.Watcher

	// stopCh signals the follower to stop
	stopCh chan struct{}

	// running indicates if the follower is active
	running bool

	// offset is the position up to which complete lines have been consumed
	offset int64

	pollInterval time.Duration
}

// NewLogFollower creates a follower for the given file. Each complete new
// line is passed to onLine without its trailing newline.
func NewLogFollower(path string, onLine func(line string)) *LogFollower {
	return &LogFollower{
		path:         path,
		onLine:       onLine,
		pollInterval: DefaultFollowInterval,
	}
}

// Start begins following the file. Only output produced from now on is
// streamed; existing content is skipped.
func (f *LogFollower) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return nil
	}

	f.stopCh = make(chan struct{})
	f.running = true

	if info, err := os.Stat(f.path); err == nil {
		f.offset = info.Size()
	}

	// Try to use fsnotify for efficient file watching
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("services", "fsnotify not available for %s, falling back to polling: %v", f.path, err)
		go f.pollForLines()
		return nil
	}

	f.fsWatcher = watcher

	// Watch the containing directory, the file itself may not exist yet
	if err := f.fsWatcher.Add(filepath.Dir(f.path)); err != nil {
		logging.Debug("services", "Cannot watch directory of %s, falling back to polling: %v", f.path, err)
		f.fsWatcher.Close()
		f.fsWatcher = nil
		go f.pollForLines()
		return nil
	}

	// Capture channels before releasing the lock to avoid race conditions
	eventsCh := f.fsWatcher.Events
	errorsCh := f.fsWatcher.Errors

	go f.processEvents(eventsCh, errorsCh)

	return nil
}

// processEvents handles fsnotify events.
// The channels are passed as parameters to avoid race conditions with Stop().
func (f *LogFollower) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-f.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if event.Name != f.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			f.drain()

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Debug("services", "fsnotify error while following %s: %v", f.path, err)
		}
	}
}

// pollForLines implements fallback polling when fsnotify is not available.
func (f *LogFollower) pollForLines() {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopCh:
			return

		case <-ticker.C:
			f.drain()
		}
	}
}

// drain reads all complete new lines past the current offset. A trailing
// partial line is left for the next drain so callers only ever see whole
// lines.
func (f *LogFollower) drain() {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		// Not created yet
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return
	}
	if info.Size() < f.offset {
		// Truncated or rotated, start over
		f.offset = 0
	}
	if info.Size() == f.offset {
		return
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		f.offset += int64(len(line))
		if f.onLine != nil {
			f.onLine(strings.TrimRight(line, "\r\n"))
		}
	}
}

// Stop stops the follower after a final drain of any remaining lines.
func (f *LogFollower) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}

	f.running = false
	close(f.stopCh)

	if f.fsWatcher != nil {
		f.fsWatcher.Close()
		f.fsWatcher = nil
	}
	f.mu.Unlock()

	f.drain()
}

// IsRunning returns whether the follower is currently active.
func (f *LogFollower) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}
