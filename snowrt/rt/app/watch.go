package app

import (
	"path/filepath"

	"github.com/gekko3d/snowfall"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads a config file when it changes on disk. Only the
// newest valid config is kept until the loop picks it up.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan snowfall.Config
	logger  snowfall.Logger
	done    chan struct{}
}

// WatchConfig watches the directory holding path, since editors often
// replace files instead of writing them in place.
func WatchConfig(path string, logger snowfall.Logger) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	w := &ConfigWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		updates: make(chan snowfall.Config, 1),
		logger:  snowfall.OrNop(logger).Named("config"),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *ConfigWatcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := snowfall.LoadConfig(w.path)
			if err != nil {
				w.logger.Warnf("ignoring config change: %v", err)
				continue
			}
			w.publish(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("config watcher: %v", err)
		}
	}
}

// publish replaces any config the loop has not consumed yet.
func (w *ConfigWatcher) publish(cfg snowfall.Config) {
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
}

func (w *ConfigWatcher) Updates() <-chan snowfall.Config { return w.updates }

func (w *ConfigWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
