package extract

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watchFrames counts frame files created in dir and reports the running
// total. The returned stop function closes the watcher and waits for the
// event loop to exit.
func watchFrames(dir, ext string, onFrame func(count int)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	suffix := "." + normalizeExt(ext)
	seen := make(map[string]struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				name := filepath.Base(event.Name)
				if !strings.HasPrefix(name, FramePrefix) || !strings.HasSuffix(name, suffix) {
					continue
				}
				if _, dup := seen[name]; dup {
					continue
				}
				seen[name] = struct{}{}
				onFrame(len(seen))
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = watcher.Close()
			wg.Wait()
		})
	}, nil
}
