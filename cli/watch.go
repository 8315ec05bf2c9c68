package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow absorbs the bursts of events editors emit on save.
const debounceWindow = 100 * time.Millisecond

// RunWatch executes a script file, then re-executes it every time the file
// changes, until the watcher fails or the process is interrupted.
//
// The watch is placed on the containing directory rather than the file
// itself: most editors save by writing a temp file and renaming it over the
// target, which would drop an inode-level watch after the first change.
func (s *Session) RunWatch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	execution := 1
	s.runWatchedFile(target, execution)
	fmt.Fprintf(s.out, "Watching %s for changes. Press Ctrl+C to stop.\n", target)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			drainEvents(watcher)
			execution++
			s.runWatchedFile(target, execution)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(s.out, "Error: watch failed: %v\n", err)
		}
	}
}

// drainEvents discards follow-up events arriving within the debounce window
// so one save triggers one execution.
func drainEvents(watcher *fsnotify.Watcher) {
	timer := time.NewTimer(debounceWindow)
	defer timer.Stop()
	for {
		select {
		case <-watcher.Events:
		case <-timer.C:
			return
		}
	}
}

func (s *Session) runWatchedFile(path string, execution int) {
	fmt.Fprintf(s.out, "--- Execution #%d ---\n", execution)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(s.out, "Error: cannot open file: %s\n", path)
		return
	}
	defer f.Close()

	s.RunScript(f)
	fmt.Fprintln(s.out, "--- End of execution ---")
}
