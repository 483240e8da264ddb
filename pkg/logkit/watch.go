package logkit

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// WatchConfig watches a config file and re-runs Setup whenever its content
// changes. Invalid configs are rejected and logged without touching the live
// handle; the factory (if any) is reattached on every reload so the
// notification sink survives edits.
//
// Blocks until ctx is done. The initial Setup must have happened already;
// WatchConfig only reacts to changes.
func WatchConfig(ctx context.Context, path string, factory NotifierFactory) error {
	dir := filepath.Dir(path)
	file := filepath.Base(path)
	boot := bootstrap()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	var lastHash uint64

	// debounce to avoid reacting to partial writes
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		cfg, err := LoadConfig(path)
		if err != nil {
			boot.Warn().Err(err).Str("path", path).Msg("config reload parse failed")
			return
		}
		// Skip redundant reloads when content is unchanged.
		h := hashConfig(cfg)
		if h != 0 && h == lastHash {
			return
		}
		cfg.NewNotifier = factory
		if _, err := Setup(cfg); err != nil {
			boot.Warn().Err(err).Str("path", path).Msg("config rejected; keeping previous logging setup")
			return
		}
		lastHash = h
	}
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, reload)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Compare by basename (robust across absolute/relative paths).
			if strings.EqualFold(filepath.Base(ev.Name), file) {
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) != 0 {
					debounce()
				}
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if werr != nil {
				boot.Warn().Err(werr).Str("dir", dir).Msg("config watch error")
			}
		}
	}
}

// hashConfig returns a stable content hash of cfg. Empty/unmarshalable
// configs hash to 0, which always triggers a reload.
func hashConfig(cfg Config) uint64 {
	b, err := json.Marshal(cfg)
	if err != nil || len(b) == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
