package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileStore persists keys as a JSON object in a single state file and
// watches the containing directory for external changes. Removing or
// emptying the file from another process counts as a clear and fires
// subscribers, mirroring a sibling instance logging out.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu     sync.RWMutex
	data   map[string]string
	subs   map[int]func()
	nextID int
	// selfWrites counts our own pending writes so the watcher can tell
	// them apart from external edits.
	selfWrites int

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// OpenFileStore loads (or creates) the state file at path and starts
// the external-change watcher.
func OpenFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	fs := &FileStore{
		path:   path,
		logger: logger,
		data:   make(map[string]string),
		subs:   make(map[int]func()),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: editors and sibling processes
	// replace the file by rename, which would silently drop a file
	// watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch state dir: %w", err)
	}
	fs.watcher = watcher

	go fs.run()
	return fs, nil
}

func (f *FileStore) load() error {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	data := make(map[string]string)
	if err := json.Unmarshal(raw, &data); err != nil {
		// A corrupt state file behaves like an empty one.
		f.logger.Warn("state file unreadable, starting empty", zap.String("path", f.path), zap.Error(err))
		return nil
	}
	f.data = data
	return nil
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.persistLocked()
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return f.persistLocked()
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	f.data = make(map[string]string)
	err := f.persistLocked()
	subs := f.subscribersLocked()
	f.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return err
}

func (f *FileStore) persistLocked() error {
	raw, err := json.Marshal(f.data)
	if err != nil {
		return err
	}
	f.selfWrites++
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		f.selfWrites--
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (f *FileStore) subscribersLocked() []func() {
	subs := make([]func(), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (f *FileStore) Subscribe(fn func()) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *FileStore) Close() error {
	close(f.stopCh)
	err := f.watcher.Close()
	<-f.doneCh
	return err
}

func (f *FileStore) run() {
	defer close(f.doneCh)
	for {
		select {
		case <-f.stopCh:
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			f.handleEvent(event)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("state watcher error", zap.Error(err))
		}
	}
}

func (f *FileStore) handleEvent(event fsnotify.Event) {
	f.mu.Lock()
	if f.selfWrites > 0 && event.Op.Has(fsnotify.Write) {
		f.selfWrites--
		f.mu.Unlock()
		return
	}

	hadToken := f.data[KeyAccessToken] != ""
	f.data = make(map[string]string)
	if !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		if err := f.load(); err != nil {
			f.logger.Warn("reload state file", zap.Error(err))
		}
	}
	cleared := hadToken && f.data[KeyAccessToken] == ""
	var subs []func()
	if cleared {
		subs = f.subscribersLocked()
	}
	f.mu.Unlock()

	if cleared {
		f.logger.Info("session state cleared externally", zap.String("path", f.path))
		for _, fn := range subs {
			fn()
		}
	}
}
