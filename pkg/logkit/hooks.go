package logkit

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// contextHook writes a fixed set of key/value pairs onto every record. It
// never suppresses a record. Keys that collide with backbone field names
// shadow them at parse time; that is accepted behavior, not detected.
type contextHook struct {
	fields map[string]string
	keys   []string
}

func newContextHook(info map[string]string) contextHook {
	fields := make(map[string]string, len(info))
	keys := make([]string, 0, len(info))
	for k, v := range info {
		fields[k] = v
		keys = append(keys, k)
	}
	// Deterministic field order.
	sort.Strings(keys)
	return contextHook{fields: fields, keys: keys}
}

func (h contextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	for _, k := range h.keys {
		e.Str(k, h.fields[k])
	}
}

// keywordHook keeps a record only if at least one configured substring
// appears in its raw message.
type keywordHook struct {
	keywords []string
}

func (h keywordHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	for _, kw := range h.keywords {
		if strings.Contains(msg, kw) {
			return
		}
	}
	e.Discard()
}
