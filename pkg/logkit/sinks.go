package logkit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// sinkSet is what the builder hands back to the orchestrator: leveled
// writers ready for fanout plus whatever needs closing on teardown.
type sinkSet struct {
	writers []io.Writer
	closers []io.Closer
	file    *rotatingFile
}

// buildSinks constructs the console and file sinks for the configured output
// mode, each bound to its threshold and the selected formatter. Validation
// has already run; the only failure left is the filesystem (cannot create the
// log directory), which is fatal because file output cannot proceed.
func buildSinks(cfg Config, f formatter) (*sinkSet, error) {
	level := ParseLevel(cfg.Level, zerolog.ErrorLevel)
	set := &sinkSet{}

	if cfg.Output == OutputTerminal || cfg.Output == OutputBoth {
		w := f.wrap(Stdout())
		set.writers = append(set.writers, leveled(w, ParseLevel(cfg.TerminalLevel, level)))
	}

	if cfg.Output == OutputFile || cfg.Output == OutputBoth {
		if err := os.MkdirAll(cfg.LogsPath, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory %q: %w", cfg.LogsPath, err)
		}
		rf := newRotatingFile(filepath.Join(cfg.LogsPath, cfg.LogFilename), cfg.MaxBytes, *cfg.BackupCount)
		set.file = rf
		set.closers = append(set.closers, rf)
		set.writers = append(set.writers, leveled(f.wrap(rf), ParseLevel(cfg.FileLevel, level)))
	}

	return set, nil
}

// leveled binds a writer to a minimum severity.
func leveled(w io.Writer, min Level) zerolog.LevelWriter {
	lw, ok := w.(zerolog.LevelWriter)
	if !ok {
		lw = zerolog.LevelWriterAdapter{Writer: w}
	}
	return &zerolog.FilteredLevelWriter{Writer: lw, Level: min}
}

// rotatingFile wraps lumberjack with a byte-accurate size trigger.
// lumberjack's own threshold is megabyte-grained; we track written bytes
// ourselves and rotate just before the active file would exceed maxBytes,
// leaving backup naming, eviction and file handling to lumberjack.
//
// backups == 0 disables rotation entirely and lets the file grow, matching
// the backbone semantics the rest of the config surface assumes.
type rotatingFile struct {
	mu       sync.Mutex
	lj       *lumberjack.Logger
	maxBytes int64
	backups  int
	size     int64
}

// ljMaxSizeMB keeps lumberjack's own megabyte-grained trigger from ever
// firing: every rotation decision belongs to rotatingFile, including the
// backups == 0 case where there must be none at all.
const ljMaxSizeMB = 1 << 30

func newRotatingFile(path string, maxBytes int64, backups int) *rotatingFile {
	rf := &rotatingFile{
		lj: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    ljMaxSizeMB,
			MaxBackups: backups,
		},
		maxBytes: maxBytes,
		backups:  backups,
	}
	if fi, err := os.Stat(path); err == nil {
		rf.size = fi.Size()
	}
	return rf
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// size > 0 keeps an oversize single record from rotating an empty file.
	if r.backups > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxBytes {
		if err := r.lj.Rotate(); err != nil {
			return 0, err
		}
		r.size = 0
	}
	n, err := r.lj.Write(p)
	r.size += int64(n)
	return n, err
}

// Rotate forces a rotation regardless of size (used by the cron schedule).
func (r *rotatingFile) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lj.Rotate(); err != nil {
		return err
	}
	r.size = 0
	return nil
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lj.Close()
}

// Stdout returns the console sink destination.
func Stdout() io.Writer { return os.Stdout }

var stderr io.Writer = os.Stderr

// Stderr returns the fallback destination for bootstrap diagnostics.
func Stderr() io.Writer { return stderr }
