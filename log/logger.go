package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xiaoyuanzhu-com/debug-viewer/config"
)

var (
	logger     zerolog.Logger
	loggerLock sync.RWMutex
)

func init() {
	cfg := config.Get()
	Configure(cfg.Env, cfg.LogLevel, os.Stdout)
}

// Configure replaces the process logger. Development gets a console layout
// with kitchen-clock timestamps; any other env writes one JSON object per line.
// Unknown levels fall back to info.
func Configure(env, level string, out io.Writer) {
	w := out
	if strings.EqualFold(env, "development") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	l := zerolog.New(w).Level(parseLogLevel(level)).With().Timestamp().Logger()

	loggerLock.Lock()
	logger = l
	loggerLock.Unlock()
}

// SetOutput redirects output and keeps the level (tests send it to io.Discard)
func SetOutput(w io.Writer) {
	loggerLock.Lock()
	logger = logger.Output(w)
	loggerLock.Unlock()
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the process logger
func Logger() zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

func Debug() *zerolog.Event {
	l := Logger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}

// Fatal exits the process after the event is written
func Fatal() *zerolog.Event {
	l := Logger()
	return l.Fatal()
}

// httpErrorWriter turns net/http's internal error lines into warn events
type httpErrorWriter struct{}

func (httpErrorWriter) Write(p []byte) (int, error) {
	Warn().Str("source", "net/http").Msg(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// StdErrorLogger is meant for http.Server.ErrorLog (TLS handshake failures,
// panics in handlers, hijack errors). It follows later Configure calls.
func StdErrorLogger() *stdlog.Logger {
	return stdlog.New(httpErrorWriter{}, "", 0)
}
