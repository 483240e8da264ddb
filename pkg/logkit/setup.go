package logkit

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Handle owns one configured sink set. It stays valid until Close, even if
// another handle replaces it as the package default.
type Handle struct {
	cfg  Config
	root zerolog.Logger
	boot zerolog.Logger

	hidden map[string]struct{}
	sinks  int

	file    *rotatingFile
	notify  *notifySink
	cron    *cron.Cron
	closers []io.Closer

	closeOnce sync.Once
}

var defaultHandle atomic.Pointer[Handle]

// bootstrap is where setup problems surface before (or instead of) the
// pipeline being configured.
func bootstrap() zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: Stderr(), TimeFormat: consoleTimeFormat}
	return zerolog.New(cw).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// Configure validates cfg and builds a Handle owning the resulting sinks.
// It never touches package-level state; use Setup for that.
//
// Validation failures return a *ConfigError before any sink is constructed.
// A missing log directory that cannot be created is fatal. A notification
// sink that cannot be constructed is not: the error is logged and setup
// continues without it.
func Configure(cfg Config) (*Handle, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Global zerolog knobs. Set only after validation passes.
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}

	boot := bootstrap()

	needsFile := cfg.Output == OutputFile || cfg.Output == OutputBoth
	if needsFile && strings.TrimSpace(cfg.LogFilename) == "" {
		cfg.LogFilename = defaultLogFilename
		boot.Warn().Str("log_filename", defaultLogFilename).Msg("no log filename provided; using default")
	}

	f := selectFormatter(cfg.UseJSON, *cfg.UseColor, cfg.LogFormat)

	set, err := buildSinks(cfg, f)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		cfg:     cfg,
		boot:    boot,
		file:    set.file,
		closers: set.closers,
	}
	writers := set.writers

	if cfg.Journal {
		if journalAvailable() {
			writers = append(writers, leveled(journalWriter{}, ParseLevel(cfg.Level, zerolog.ErrorLevel)))
		} else {
			boot.Warn().Msg("journal sink requested but systemd journal is not available; skipping")
		}
	}

	if cfg.Notify {
		if cfg.NewNotifier == nil {
			boot.Warn().Err(ErrNotifierUnavailable).Msg("notifications enabled but no notifier client is wired; skipping")
		} else if n, err := cfg.NewNotifier(cfg.NotifyToken, cfg.NotifyChannel); err != nil {
			// Partial success: the rest of the pipeline still comes up.
			boot.Error().Err(err).Msg("notification sink setup failed; continuing without it")
		} else {
			h.notify = newNotifySink(n, f, cfg, boot)
			h.closers = append(h.closers, h.notify)
			writers = append(writers, h.notify)
		}
	}

	if len(writers) == 0 {
		// Output enum guarantees at least one sink; keep a guard anyway.
		writers = append(writers, leveled(f.wrap(Stdout()), ParseLevel(cfg.Level, zerolog.ErrorLevel)))
	}
	h.sinks = len(writers)

	mw := zerolog.MultiLevelWriter(writers...)
	root := zerolog.New(mw).
		Level(ParseLevel(cfg.Level, zerolog.ErrorLevel)).
		With().Timestamp().Caller().Logger()

	if len(cfg.KeywordFilters) > 0 {
		root = root.Hook(keywordHook{keywords: cfg.KeywordFilters})
	}
	if cfg.AddContext && len(cfg.ContextInfo) > 0 {
		root = root.Hook(newContextHook(cfg.ContextInfo))
	}
	h.root = root

	// Announced via boot so a keyword filter cannot swallow the notices.
	h.hidden = make(map[string]struct{}, len(cfg.HideLogs))
	for _, name := range cfg.HideLogs {
		h.hidden[name] = struct{}{}
		boot.Info().Str("component", name).Msg("component logs forced to ERROR level")
	}

	if spec := strings.TrimSpace(cfg.RotateEvery); spec != "" && h.file != nil {
		sched, _ := cron.ParseStandard(spec) // validated already
		c := cron.New()
		c.Schedule(sched, cron.FuncJob(func() {
			if err := h.file.Rotate(); err != nil {
				boot.Error().Err(err).Msg("scheduled rotation failed")
			}
		}))
		c.Start()
		h.cron = c
	}

	root.Info().Msg("logging configured")
	return h, nil
}

// Setup is Configure plus installation as the package default. The previous
// default, if any, is closed: orchestration fully replaces the prior sink
// set, it never accumulates. Safe to call repeatedly, but calls must be
// serialized by the caller.
func Setup(cfg Config) (*Handle, error) {
	h, err := Configure(cfg)
	if err != nil {
		return nil, err
	}
	if old := defaultHandle.Swap(h); old != nil {
		_ = old.Close()
	}
	if *h.cfg.CatchPanics {
		h.InstallCrashLogger()
	}
	return h, nil
}

// Default returns the current package default handle, creating a
// console-only bootstrap handle if Setup has not run yet.
func Default() *Handle {
	if h := defaultHandle.Load(); h != nil {
		return h
	}
	h := &Handle{root: bootstrap(), boot: bootstrap(), sinks: 1}
	if defaultHandle.CompareAndSwap(nil, h) {
		return h
	}
	return defaultHandle.Load()
}

// Logger returns the root logger.
func (h *Handle) Logger() zerolog.Logger { return h.root }

// Component returns a named logger. Components listed in HideLogs get their
// threshold forced to ERROR regardless of the global level.
func (h *Handle) Component(name string) zerolog.Logger {
	l := h.root.With().Str("logger", name).Logger()
	if _, ok := h.hidden[name]; ok {
		l = l.Level(zerolog.ErrorLevel)
	}
	return l
}

// SinkCount reports how many sinks are attached.
func (h *Handle) SinkCount() int { return h.sinks }

// Rotate forces a file rotation if a file sink is attached.
func (h *Handle) Rotate() error {
	if h.file == nil {
		return nil
	}
	return h.file.Rotate()
}

// Close stops the rotation schedule and the notification worker and closes
// the file sink. Idempotent.
func (h *Handle) Close() error {
	var err error
	h.closeOnce.Do(func() {
		if h.cron != nil {
			<-h.cron.Stop().Done()
		}
		for _, c := range h.closers {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
