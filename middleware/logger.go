package middleware

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/dzonerzy/go-carp/internal/pool"
)

var dispatchInfoPool = pool.NewPoolWithReset(
	func() *DispatchInfo {
		return &DispatchInfo{Args: make([]string, 0, 4)}
	},
	func(info *DispatchInfo) {
		info.Option = ""
		info.Token = ""
		clear(info.Args)
		info.Args = info.Args[:0]
		info.StartTime = time.Time{}
		info.Duration = 0
		info.Error = nil
	},
)

// Logger creates a middleware that logs every handler dispatch
func Logger(options ...MiddlewareOption) Middleware {
	config := newConfig(options)

	return func(next HandlerFunc) HandlerFunc {
		return func(d Dispatch) error {
			writer := config.output()
			if config.LogLevel == LogLevelNone || writer == nil {
				return next(d)
			}

			info := dispatchInfoPool.Get()
			defer dispatchInfoPool.Put(info)

			info.Option = d.Option()
			info.Token = d.Token()
			// handler args are borrowed; copy them before the handler runs
			info.Args = append(info.Args, d.Args()...)
			info.StartTime = time.Now()

			if config.LogLevel >= LogLevelDebug {
				logDispatch(writer, config, info, "START")
			}

			err := next(d)

			info.Duration = time.Since(info.StartTime)
			info.Error = err

			logDispatch(writer, config, info, getLogLevel(err))

			return err
		}
	}
}

// LoggerWithWriter creates a logger middleware that writes to a specific writer
func LoggerWithWriter(writer io.Writer, options ...MiddlewareOption) Middleware {
	return Logger(append(options, WithWriter(writer))...)
}

func getLogLevel(err error) string {
	if err != nil {
		return "ERROR"
	}
	return "SUCCESS"
}

func logDispatch(writer io.Writer, config *MiddlewareConfig, info *DispatchInfo, level string) {
	if !shouldLog(config.LogLevel, level) {
		return
	}

	switch config.LogFormat {
	case LogFormatJSON:
		writeJSONLog(writer, info, level, config)
	default:
		writeTextLog(writer, info, level, config)
	}
}

func shouldLog(configLevel LogLevel, messageLevel string) bool {
	switch messageLevel {
	case "ERROR":
		return configLevel >= LogLevelError
	case "START":
		return configLevel >= LogLevelDebug
	default:
		return configLevel >= LogLevelInfo
	}
}

// writeTextLog writes a human-readable text log entry with minimal allocations
func writeTextLog(writer io.Writer, info *DispatchInfo, level string, config *MiddlewareConfig) {
	buf := pool.GetBuffer(256)
	defer pool.PutBuffer(buf)

	*buf = append(*buf, '[')
	*buf = info.StartTime.AppendFormat(*buf, "2006-01-02 15:04:05")
	*buf = append(*buf, "] "...)
	*buf = append(*buf, level...)
	*buf = append(*buf, " option="...)
	*buf = append(*buf, info.Option...)
	*buf = append(*buf, " token="...)
	*buf = append(*buf, info.Token...)

	if info.Duration > 0 {
		*buf = append(*buf, " duration="...)
		*buf = append(*buf, info.Duration.String()...)
	}

	if config.IncludeArgs && len(info.Args) > 0 {
		*buf = append(*buf, " args="...)
		for i, arg := range info.Args {
			if i > 0 {
				*buf = append(*buf, ' ')
			}
			*buf = append(*buf, arg...)
		}
	}

	if info.Error != nil {
		*buf = append(*buf, " error=\""...)
		*buf = append(*buf, info.Error.Error()...)
		*buf = append(*buf, '"')
	}

	*buf = append(*buf, '\n')

	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	writer.Write(*buf)
}

// writeJSONLog writes a structured JSON log entry with minimal allocations
func writeJSONLog(writer io.Writer, info *DispatchInfo, level string, config *MiddlewareConfig) {
	buf := pool.GetBuffer(512)
	defer pool.PutBuffer(buf)

	*buf = append(*buf, `{"timestamp":"`...)
	*buf = info.StartTime.AppendFormat(*buf, time.RFC3339)
	*buf = append(*buf, `","level":"`...)
	*buf = append(*buf, level...)
	*buf = append(*buf, `","option":`...)
	*buf = appendJSONString(*buf, info.Option)
	*buf = append(*buf, `,"token":`...)
	*buf = appendJSONString(*buf, info.Token)

	if info.Duration > 0 {
		*buf = append(*buf, `,"duration_ms":`...)
		*buf = strconv.AppendInt(*buf, info.Duration.Milliseconds(), 10)
	}

	if config.IncludeArgs && len(info.Args) > 0 {
		*buf = append(*buf, `,"args":[`...)
		for i, arg := range info.Args {
			if i > 0 {
				*buf = append(*buf, ',')
			}
			*buf = appendJSONString(*buf, arg)
		}
		*buf = append(*buf, ']')
	}

	if info.Error != nil {
		*buf = append(*buf, `,"error":`...)
		*buf = appendJSONString(*buf, info.Error.Error())
	}

	*buf = append(*buf, '}', '\n')

	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	writer.Write(*buf)
}

func appendJSONString(buf []byte, s string) []byte {
	enc, _ := json.Marshal(s)
	return append(buf, enc...)
}

// DebugLogger creates a logger with debug level (logs everything)
func DebugLogger() Middleware {
	return Logger(WithLogLevel(LogLevelDebug))
}

// ErrorLogger creates a logger with error level (logs only errors)
func ErrorLogger() Middleware {
	return Logger(WithLogLevel(LogLevelError))
}

// JSONLogger creates a logger that outputs JSON format
func JSONLogger() Middleware {
	return Logger(WithLogFormat(LogFormatJSON))
}
