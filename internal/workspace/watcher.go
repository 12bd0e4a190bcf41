package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher invalidates declaration-cache entries when source files change on
// disk outside the editor. It never reparses anything itself; the next query
// that needs the file pays for the rescan.
type Watcher struct {
	fsw   *fsnotify.Watcher
	cache *DeclCache
	ext   string
	log   zerolog.Logger
	done  chan struct{}
}

func NewWatcher(root string, cache *DeclCache, ext string, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:   fsw,
		cache: cache,
		ext:   ext,
		log:   log,
		done:  make(chan struct{}),
	}

	// fsnotify is not recursive; register every directory under the root.
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fs.SkipDir
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				w.log.Warn().Err(err).Str("dir", path).Msg("watch failed")
			}
		}
		return nil
	})

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need registering so files created later are seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.fsw.Add(event.Name)
			return
		}
	}

	if !strings.HasSuffix(event.Name, w.ext) {
		return
	}

	uri := PathToURI(event.Name)
	w.cache.Invalidate(uri)
	w.log.Debug().Str("uri", uri).Str("op", event.Op.String()).Msg("cache invalidated")
}

// Close stops the watch loop.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
