package logkit

import (
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Output destinations. "both" attaches console and file sinks.
const (
	OutputTerminal = "terminal"
	OutputFile     = "file"
	OutputBoth     = "both"
)

const defaultLogFilename = "default.log"

// Config is a read-only snapshot of the logging setup. It is validated once
// by Configure/Setup and never mutated afterwards.
//
// Pointer fields (BackupCount, UseColor, CatchPanics) distinguish "omitted"
// (use the default) from an explicit zero value.
type Config struct {
	// Level is the global default threshold (DEBUG, INFO, WARNING, ERROR,
	// CRITICAL). Unknown names fall back to ERROR.
	Level string `json:"level,omitempty"`

	// HideLogs forces the named components to an effective ERROR threshold,
	// regardless of Level. See Handle.Component.
	HideLogs []string `json:"hide_logs,omitempty"`

	// Output selects the sink set: "terminal", "file" or "both".
	Output string `json:"output,omitempty"`

	// LogsPath is the directory for the file sink, created recursively if
	// absent. Default "logs".
	LogsPath string `json:"logs_path,omitempty"`

	// LogFilename names the rotating log file. When file output is requested
	// without a filename, Setup defaults it to "default.log" and warns.
	LogFilename string `json:"log_filename,omitempty"`

	// MaxBytes triggers rotation when the active file would exceed it.
	// Must be positive. Default 1 MiB.
	MaxBytes int64 `json:"max_bytes,omitempty"`

	// BackupCount bounds retained rotated files (oldest evicted first).
	// Must be non-negative; 0 disables rotation and lets the file grow.
	// Default 3.
	BackupCount *int `json:"backup_count,omitempty"`

	// TerminalLevel / FileLevel override the per-sink threshold; empty
	// inherits Level.
	TerminalLevel string `json:"terminal_level,omitempty"`
	FileLevel     string `json:"file_level,omitempty"`

	// LogFormat is a space-separated list of console line parts, e.g.
	// "time level caller message". Unknown part names are handed to the
	// console writer untouched (it renders them as fields). Ignored when
	// UseJSON is set.
	LogFormat string `json:"log_format,omitempty"`

	// UseJSON forces the raw structured rendering for every sink. Takes
	// precedence over UseColor and LogFormat.
	UseJSON bool `json:"use_json,omitempty"`

	// KeywordFilters is a substring allow-list on the raw message: when
	// non-empty, a record is kept only if at least one entry appears in it.
	KeywordFilters []string `json:"keyword_filters,omitempty"`

	// UseColor wraps the severity label in an ANSI color for non-JSON
	// output. Default true.
	UseColor *bool `json:"use_color,omitempty"`

	// CatchPanics registers the handle as the process crash logger so a
	// deferred RecoverPanics() routes panics through it at CRITICAL.
	// Default true. Last Setup wins.
	CatchPanics *bool `json:"catch_panics,omitempty"`

	// AddContext enables ContextInfo injection.
	AddContext bool `json:"add_context,omitempty"`

	// ContextInfo fields are written onto every record when AddContext is
	// set. Keys colliding with backbone field names shadow them.
	ContextInfo map[string]string `json:"context_info,omitempty"`

	// Journal additionally attaches a systemd journal sink when the journal
	// socket is reachable (Linux only; skipped with a warning elsewhere).
	Journal bool `json:"journal,omitempty"`

	// RotateEvery is an optional cron expression forcing a file rotation on
	// schedule, independent of size.
	RotateEvery string `json:"rotate_every,omitempty"`

	// Notify enables the chat notification sink. Requires NotifyToken and
	// NotifyChannel, plus a NotifierFactory wired in code.
	Notify        bool   `json:"notify,omitempty"`
	NotifyToken   string `json:"notify_token,omitempty"`
	NotifyChannel string `json:"notify_channel,omitempty"`

	// NotifyMinLevel raises the notification threshold above its hard INFO
	// floor. NotifyRatePerSec bounds sends per second (default 1).
	NotifyMinLevel   string `json:"notify_min_level,omitempty"`
	NotifyRatePerSec int    `json:"notify_rate_per_sec,omitempty"`

	// NewNotifier constructs the external chat client. Nil means the
	// capability is absent: Notify degrades with a warning. Not part of the
	// file config surface.
	NewNotifier NotifierFactory `json:"-"`
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = "ERROR"
	}
	if strings.TrimSpace(c.Output) == "" {
		c.Output = OutputBoth
	}
	if strings.TrimSpace(c.LogsPath) == "" {
		c.LogsPath = "logs"
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = 1 << 20
	}
	if c.BackupCount == nil {
		n := 3
		c.BackupCount = &n
	}
	if c.UseColor == nil {
		b := true
		c.UseColor = &b
	}
	if c.CatchPanics == nil {
		b := true
		c.CatchPanics = &b
	}
	if c.NotifyRatePerSec <= 0 {
		c.NotifyRatePerSec = 1
	}
	return c
}

// validate runs after withDefaults. Any violation aborts Configure before a
// single sink is built.
func (c Config) validate() error {
	switch c.Output {
	case OutputTerminal, OutputFile, OutputBoth:
	default:
		return configErr("output", "must be terminal, file or both, got "+strconv.Quote(c.Output))
	}
	if c.MaxBytes <= 0 {
		return configErr("max_bytes", "must be a positive integer")
	}
	if *c.BackupCount < 0 {
		return configErr("backup_count", "must be a non-negative integer")
	}
	if c.Notify {
		if strings.TrimSpace(c.NotifyToken) == "" || strings.TrimSpace(c.NotifyChannel) == "" {
			return configErr("notify", "notifications enabled but token/channel credentials are missing")
		}
	}
	if s := strings.TrimSpace(c.RotateEvery); s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			return configErr("rotate_every", err.Error())
		}
	}
	return nil
}
