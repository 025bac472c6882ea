package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("taikou5dxls.catalog")

// LoadCustomFile reads path and installs it as the custom catalog.
func LoadCustomFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load custom catalog %s: %w", path, err)
	}
	if err := SetCustom(data); err != nil {
		return fmt.Errorf("failed to load custom catalog %s: %w", path, err)
	}
	return nil
}

// Watch reloads the custom catalog at path whenever it changes, until ctx is
// done. onReload, if not nil, is called after every reload attempt with its
// result. A failed reload keeps the previous catalog.
//
// The parent directory is watched rather than the file itself so that editors
// that save by renaming a temporary file are handled.
func Watch(ctx context.Context, path string, onReload func(err error)) error {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				err := LoadCustomFile(path)
				if err != nil {
					log.Errorf("%s", err)
				} else {
					log.Infof("reloaded custom catalog %s", path)
				}
				if onReload != nil {
					onReload(err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warningf("catalog watcher: %s", err)
			}
		}
	}()
	return nil
}
