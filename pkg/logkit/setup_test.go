package logkit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func bptr(b bool) *bool { return &b }
func iptr(n int) *int   { return &n }

func readLog(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(b)
}

func TestSinkSetPerOutput(t *testing.T) {
	tests := []struct {
		output string
		sinks  int
	}{
		{OutputTerminal, 1},
		{OutputFile, 1},
		{OutputBoth, 2},
	}
	for _, tt := range tests {
		cfg := Config{
			Output:      tt.output,
			LogsPath:    t.TempDir(),
			LogFilename: "test.log",
		}
		h, err := Configure(cfg)
		if err != nil {
			t.Fatalf("Configure(%q) error: %v", tt.output, err)
		}
		if h.SinkCount() != tt.sinks {
			t.Fatalf("Configure(%q) sinks = %d, want %d", tt.output, h.SinkCount(), tt.sinks)
		}
		if err := h.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
}

func TestSetupIdempotent(t *testing.T) {
	cfg := Config{
		Output:      OutputBoth,
		LogsPath:    t.TempDir(),
		LogFilename: "test.log",
	}
	h1, err := Setup(cfg)
	if err != nil {
		t.Fatalf("first Setup: %v", err)
	}
	h2, err := Setup(cfg)
	if err != nil {
		t.Fatalf("second Setup: %v", err)
	}
	defer h2.Close()
	if h1.SinkCount() != h2.SinkCount() {
		t.Fatalf("sink count changed across Setup calls: %d vs %d", h1.SinkCount(), h2.SinkCount())
	}
	if Default() != h2 {
		t.Fatal("Default() is not the most recent handle")
	}
}

func TestThresholdEnforcement(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "WARNING",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		UseColor:    bptr(false),
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	log.Info().Msg("info should be suppressed")
	log.Warn().Msg("warning should appear")

	out := readLog(t, filepath.Join(dir, "test.log"))
	if strings.Contains(out, "info should be suppressed") {
		t.Errorf("INFO record emitted below WARNING threshold:\n%s", out)
	}
	if !strings.Contains(out, "warning should appear") {
		t.Errorf("WARNING record missing:\n%s", out)
	}
}

func TestPerSinkFileLevel(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "DEBUG",
		FileLevel:   "ERROR",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		UseColor:    bptr(false),
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	log.Debug().Msg("debug stays out of the file")
	log.Error().Msg("error lands in the file")

	out := readLog(t, filepath.Join(dir, "test.log"))
	if strings.Contains(out, "debug stays out of the file") {
		t.Errorf("file sink ignored its own threshold:\n%s", out)
	}
	if !strings.Contains(out, "error lands in the file") {
		t.Errorf("ERROR record missing from file:\n%s", out)
	}
}

func TestKeywordFilter(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:          "DEBUG",
		Output:         OutputFile,
		LogsPath:       dir,
		LogFilename:    "test.log",
		UseColor:       bptr(false),
		KeywordFilters: []string{"example"},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	log.Info().Msg("no match here")
	log.Info().Msg("this is an example message")

	out := readLog(t, filepath.Join(dir, "test.log"))
	if strings.Contains(out, "no match here") {
		t.Errorf("record without keyword was emitted:\n%s", out)
	}
	if !strings.Contains(out, "this is an example message") {
		t.Errorf("record with keyword was suppressed:\n%s", out)
	}
}

func TestContextInjection(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "DEBUG",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		UseColor:    bptr(false),
		AddContext:  true,
		ContextInfo: map[string]string{"user_id": "12345"},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	log.Info().Msg("context test")

	out := readLog(t, filepath.Join(dir, "test.log"))
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.Contains(line, "user_id=12345") {
			t.Errorf("record missing injected context: %q", line)
		}
	}
}

func TestContextDisabledWithoutFlag(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "DEBUG",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		UseColor:    bptr(false),
		ContextInfo: map[string]string{"user_id": "12345"},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	log.Info().Msg("context test")
	if strings.Contains(readLog(t, filepath.Join(dir, "test.log")), "user_id") {
		t.Error("context injected although add_context is disabled")
	}
}

func TestRotationBySize(t *testing.T) {
	dir := t.TempDir()
	backups := 2
	h, err := Configure(Config{
		Level:       "DEBUG",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		MaxBytes:    400,
		BackupCount: iptr(backups),
		UseJSON:     true,
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	filler := strings.Repeat("x", 120)
	log := h.Logger()
	for i := 0; i < 30; i++ {
		log.Info().Int("i", i).Str("filler", filler).Msg("rotation test")
	}

	// Backup eviction is asynchronous; poll for a settled state.
	deadline := time.Now().Add(3 * time.Second)
	for {
		n := countFiles(t, dir)
		if n >= 2 && n <= backups+1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("file count = %d, want between 2 and %d", n, backups+1)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestBackupCountZeroDisablesRotation(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "DEBUG",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		MaxBytes:    200,
		BackupCount: iptr(0),
		UseJSON:     true,
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	for i := 0; i < 20; i++ {
		log.Info().Str("filler", strings.Repeat("x", 100)).Msg("grow")
	}
	if n := countFiles(t, dir); n != 1 {
		t.Fatalf("file count = %d, want 1 (backup_count=0 must not rotate)", n)
	}
}

func TestForcedRotate(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "DEBUG",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		BackupCount: iptr(3),
		UseJSON:     true,
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	log.Info().Msg("before rotate")
	if err := h.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	log.Info().Msg("after rotate")

	deadline := time.Now().Add(3 * time.Second)
	for countFiles(t, dir) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("file count = %d after forced rotate, want >= 2", countFiles(t, dir))
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestHideLogsForcesError(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "DEBUG",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		UseColor:    bptr(false),
		HideLogs:    []string{"chatty"},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	chatty := h.Component("chatty")
	chatty.Info().Msg("hidden info")
	chatty.Error().Msg("visible error")
	other := h.Component("other")
	other.Info().Msg("other info")

	out := readLog(t, filepath.Join(dir, "test.log"))
	if strings.Contains(out, "hidden info") {
		t.Errorf("hidden component emitted below ERROR:\n%s", out)
	}
	if !strings.Contains(out, "visible error") {
		t.Errorf("hidden component ERROR record missing:\n%s", out)
	}
	if !strings.Contains(out, "other info") {
		t.Errorf("unhidden component record missing:\n%s", out)
	}
}

func TestHideLogsNoticeBypassesKeywordFilter(t *testing.T) {
	var buf bytes.Buffer
	old := stderr
	stderr = &buf
	defer func() { stderr = old }()

	dir := t.TempDir()
	h, err := Configure(Config{
		Level:          "DEBUG",
		Output:         OutputFile,
		LogsPath:       dir,
		LogFilename:    "test.log",
		UseColor:       bptr(false),
		KeywordFilters: []string{"example"},
		HideLogs:       []string{"chatty"},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	// Make sure the log file exists before reading it back.
	log := h.Logger()
	log.Info().Msg("example touch")

	if !strings.Contains(buf.String(), "component logs forced to ERROR level") {
		t.Errorf("hide_logs notice swallowed by keyword filter:\n%s", buf.String())
	}
	if out := readLog(t, filepath.Join(dir, "test.log")); strings.Contains(out, "forced to ERROR level") {
		t.Errorf("hide_logs notice leaked into the filtered pipeline:\n%s", out)
	}
}

func TestMissingFilenameDefaults(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:    "DEBUG",
		Output:   OutputFile,
		LogsPath: dir,
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()

	log := h.Logger()
	log.Info().Msg("default filename")
	if _, err := os.Stat(filepath.Join(dir, "default.log")); err != nil {
		t.Fatalf("default.log not created: %v", err)
	}
}

func TestLogsPathCreatedRecursively(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	h, err := Configure(Config{
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("log directory not created: %v", err)
	}
}

func TestRecoverPanicsLogsAndRepanics(t *testing.T) {
	dir := t.TempDir()
	h, err := Configure(Config{
		Level:       "DEBUG",
		Output:      OutputFile,
		LogsPath:    dir,
		LogFilename: "test.log",
		UseColor:    bptr(false),
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer h.Close()
	h.InstallCrashLogger()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("RecoverPanics swallowed the panic")
			}
		}()
		func() {
			defer RecoverPanics()
			panic("boom")
		}()
	}()

	out := readLog(t, filepath.Join(dir, "test.log"))
	if !strings.Contains(out, "uncaught panic") || !strings.Contains(out, "boom") {
		t.Errorf("panic not routed through crash logger:\n%s", out)
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}
