package logkit

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Severity label colors for console output.
const (
	colorGreen   = "\x1b[92m"
	colorBlue    = "\x1b[94m"
	colorYellow  = "\x1b[93m"
	colorRed     = "\x1b[91m"
	colorMagenta = "\x1b[95m"
	colorReset   = "\x1b[0m"
)

var levelColors = map[string]string{
	"trace": colorGreen,
	"debug": colorGreen,
	"info":  colorBlue,
	"warn":  colorYellow,
	"error": colorRed,
	"fatal": colorMagenta,
	"panic": colorMagenta,
}

// formatter is the single rendering selected for every sink. Precedence is
// strict: JSON > color > plain.
type formatter struct {
	json  bool
	color bool
	parts []string
}

func selectFormatter(useJSON, useColor bool, logFormat string) formatter {
	if useJSON {
		return formatter{json: true}
	}
	return formatter{color: useColor, parts: strings.Fields(logFormat)}
}

// noColor strips the color codes while keeping the rest of the rendering.
// Used by sinks whose destination cannot display ANSI sequences.
func (f formatter) noColor() formatter {
	f.color = false
	return f
}

// wrap binds the formatter to a destination. JSON mode passes the backbone's
// native stream through untouched; text modes interpose a console writer.
func (f formatter) wrap(w io.Writer) io.Writer {
	if f.json {
		return w
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: consoleTimeFormat,
		NoColor:    !f.color,
	}
	if len(f.parts) > 0 {
		cw.PartsOrder = f.parts
	}
	if f.color {
		cw.FormatLevel = colorLevel
	} else {
		cw.FormatLevel = plainLevel
	}
	return cw
}

func colorLevel(i interface{}) string {
	s, _ := i.(string)
	label := levelLabel(s)
	if c, ok := levelColors[s]; ok {
		return c + label + colorReset
	}
	return label
}

func plainLevel(i interface{}) string {
	s, _ := i.(string)
	return levelLabel(s)
}
