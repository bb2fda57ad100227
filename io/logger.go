package carpio

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"
)

// LogLevel is the severity of a record.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelSuccess
	LevelWarning
	LevelError

	numLevels
)

var levelNames = [numLevels]string{"DEBUG", "INFO", "SUCCESS", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < 0 || l >= numLevels {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// tag is the bracketed default prefix, e.g. "[WARN]".
func (l LogLevel) tag() string { return "[" + l.String() + "]" }

// LogFormat selects how a record is laid out.
type LogFormat int

const (
	LogFormatTagged LogFormat = iota // "[ERROR] message"
	LogFormatPlain                   // message only
	LogFormatCustom                  // text/template, see WithTemplate
)

// Record is the data a custom template is executed with.
type Record struct {
	Level   LogLevel
	Prefix  string
	Time    string
	Message string
}

// Logger writes levelled records through an IOManager. Errors, warnings and
// debug traces go to the error stream; the rest go to the output stream.
type Logger struct {
	io       *IOManager
	format   LogFormat
	tmpl     *template.Template
	prefixes [numLevels]string
	minLevel LogLevel
	theme    Theme

	withTime     bool
	timeFormat   string
	errorsStderr bool
	noColor      bool
}

// NewLogger creates a tagged logger at LevelInfo. Debug records are dropped
// until WithLevel(LevelDebug) is called.
func NewLogger(io *IOManager) *Logger {
	l := &Logger{
		io:           io,
		minLevel:     LevelInfo,
		theme:        DefaultTheme(io),
		timeFormat:   "15:04:05",
		errorsStderr: true,
	}
	l.resetPrefixes()
	return l
}

func (l *Logger) resetPrefixes() {
	for level := range numLevels {
		l.prefixes[level] = level.tag()
	}
}

// WithFormat switches between tagged and plain output. Tagged restores the
// default prefixes.
func (l *Logger) WithFormat(format LogFormat) *Logger {
	l.format = format
	if format == LogFormatTagged {
		l.resetPrefixes()
	}
	return l
}

// WithTemplate formats records with a text/template over Record, for example
// "{{.Time}} {{.Level}}: {{.Message}}". A template that does not parse leaves
// the logger unchanged.
func (l *Logger) WithTemplate(text string) *Logger {
	tmpl, err := template.New("record").Parse(text)
	if err != nil {
		return l
	}
	l.tmpl = tmpl
	l.format = LogFormatCustom
	return l
}

// SetPrefix replaces the tag written before records of level.
func (l *Logger) SetPrefix(level LogLevel, prefix string) *Logger {
	if level >= 0 && level < numLevels {
		l.prefixes[level] = prefix
	}
	return l
}

// WithLevel sets the lowest level that is written.
func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.minLevel = level
	return l
}

// WithTimestamp adds a bracketed time after the prefix.
func (l *Logger) WithTimestamp(enabled bool) *Logger {
	l.withTime = enabled
	return l
}

// WithTimeFormat sets the time layout used by timestamps and {{.Time}}.
func (l *Logger) WithTimeFormat(layout string) *Logger {
	l.timeFormat = layout
	return l
}

// ErrorsToStderr controls whether errors, warnings and debug records go to
// the error stream.
func (l *Logger) ErrorsToStderr(enabled bool) *Logger {
	l.errorsStderr = enabled
	return l
}

// WithColor turns level colouring on or off for this logger only. The
// IOManager's own colour policy still applies when enabled.
func (l *Logger) WithColor(enabled bool) *Logger {
	l.noColor = !enabled
	return l
}

// WithTheme sets the colours used per level.
func (l *Logger) WithTheme(theme Theme) *Logger {
	l.theme = theme
	return l
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(level LogLevel) bool { return level >= l.minLevel }

// Log writes one record. format is used literally when no args are given, so
// messages that already contain user tokens are safe to pass through.
func (l *Logger) Log(level LogLevel, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	fmt.Fprintln(l.writer(level), l.colorize(level, l.render(level, msg)))
}

func (l *Logger) render(level LogLevel, msg string) string {
	rec := Record{Level: level, Message: msg}
	if level >= 0 && level < numLevels {
		rec.Prefix = l.prefixes[level]
	}

	if l.format == LogFormatCustom && l.tmpl != nil {
		rec.Time = time.Now().Format(l.timeFormat)
		var sb strings.Builder
		if err := l.tmpl.Execute(&sb, rec); err != nil {
			return msg
		}
		return sb.String()
	}

	if strings.TrimSpace(msg) == "" {
		return msg
	}
	var sb strings.Builder
	if rec.Prefix != "" && l.format == LogFormatTagged {
		sb.WriteString(rec.Prefix)
		sb.WriteByte(' ')
	}
	if l.withTime {
		sb.WriteByte('[')
		sb.WriteString(time.Now().Format(l.timeFormat))
		sb.WriteString("] ")
	}
	sb.WriteString(msg)
	return sb.String()
}

func (l *Logger) colorize(level LogLevel, text string) string {
	if l.noColor || !l.io.SupportsColor() {
		return text
	}
	return NewStyle().Fg(l.theme.For(level)).Sprint(l.io, text)
}

func (l *Logger) writer(level LogLevel) io.Writer {
	if l.errorsStderr && (level == LevelError || level == LevelWarning || level == LevelDebug) {
		return l.io.Err()
	}
	return l.io.Out()
}

func (l *Logger) Debug(format string, args ...any)   { l.Log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)    { l.Log(LevelInfo, format, args...) }
func (l *Logger) Success(format string, args ...any) { l.Log(LevelSuccess, format, args...) }
func (l *Logger) Warning(format string, args ...any) { l.Log(LevelWarning, format, args...) }
func (l *Logger) Error(format string, args ...any)   { l.Log(LevelError, format, args...) }
