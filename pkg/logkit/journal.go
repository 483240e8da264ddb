package logkit

import (
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journalWriter forwards records to the systemd journal with a mapped
// priority. Only attached when the journal socket is reachable.
type journalWriter struct{}

func journalAvailable() bool { return journal.Enabled() }

func (journalWriter) Write(p []byte) (int, error) {
	return journalWriter{}.WriteLevel(zerolog.InfoLevel, p)
}

func (journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	var pri journal.Priority
	switch {
	case level >= zerolog.FatalLevel:
		pri = journal.PriCrit
	case level >= zerolog.ErrorLevel:
		pri = journal.PriErr
	case level >= zerolog.WarnLevel:
		pri = journal.PriWarning
	case level >= zerolog.InfoLevel:
		pri = journal.PriInfo
	default:
		pri = journal.PriDebug
	}
	if err := journal.Send(strings.TrimSpace(string(p)), pri, nil); err != nil {
		return 0, err
	}
	return len(p), nil
}
