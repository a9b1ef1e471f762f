package watch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/LegacyCodeHQ/compresolve/cmd/resolve"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":    true,
	".idea":   true,
	".vscode": true,
}

// printer writes a resolution only when it differs from the previous one.
type printer struct {
	mu     sync.Mutex
	last   []byte
	format string
	out    io.Writer
	errOut io.Writer
}

func (p *printer) publish(session *resolve.Session, requests []string) {
	entries, err := session.ResolveAll(requests)
	if err != nil {
		fmt.Fprintf(p.errOut, "resolve error: %v\n", err)
		return
	}

	var buf bytes.Buffer
	if err := resolve.Write(&buf, p.format, entries); err != nil {
		fmt.Fprintf(p.errOut, "write error: %v\n", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if bytes.Equal(buf.Bytes(), p.last) {
		return
	}
	p.last = buf.Bytes()
	_, _ = p.out.Write(p.last)
}

// debouncer runs a function once triggers have settled for interval.
// After stop returns, no run is pending or in progress.
type debouncer struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	timer    *time.Timer
	interval time.Duration
	stopped  bool
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.interval, func() {
		defer d.wg.Done()
		fn()
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func watchAndResolve(ctx context.Context, session *resolve.Session, requests []string, format string, out, errOut io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	vendorDir := session.Config.VendorDir
	if err := addWatchDirs(watcher, session.Base, vendorDir); err != nil {
		return fmt.Errorf("failed to watch directories: %w", err)
	}

	p := &printer{format: format, out: out, errOut: errOut}
	p.publish(session, requests)

	d := &debouncer{interval: debounceInterval}
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantChange(event) {
				continue
			}
			session.Logger.Debug("filesystem change", "path", event.Name, "op", event.Op.String())

			d.trigger(func() {
				p.publish(session, requests)
			})

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name, vendorDir)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(errOut, "watcher error: %v\n", err)
		}
	}
}

// isRelevantChange keeps events that can change which files exist.
// Writes and permission changes cannot affect resolution.
func isRelevantChange(event fsnotify.Event) bool {
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func addWatchDirs(watcher *fsnotify.Watcher, root, vendorDir string) error {
	return addWatchDirsWithAdder(root, vendorDir, watcher.Add)
}

func addWatchDirsWithAdder(root, vendorDir string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (skippedDirs[d.Name()] || d.Name() == vendorDir) {
			return filepath.SkipDir
		}
		if err := add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path, vendorDir string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	name := filepath.Base(path)
	if info.IsDir() && !skippedDirs[name] && name != vendorDir {
		_ = addWatchDirs(watcher, path, vendorDir)
	}
}
