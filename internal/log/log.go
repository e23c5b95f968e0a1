package log

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var logger = newLogger("hearts")

func newLogger(prefix string) *log.Logger {
	l := log.New(os.Stdout)
	l.SetPrefix(prefix)
	l.SetReportTimestamp(true)
	l.SetTimeFormat(time.DateTime)
	return l
}

// InitLog replaces the process logger. Unknown levels fall back to info.
func InitLog(appName string, logLevel string) {
	l := newLogger(appName)
	l.SetReportCaller(true)

	switch strings.ToLower(logLevel) {
	case "debug":
		l.SetLevel(log.DebugLevel)
	case "warn":
		l.SetLevel(log.WarnLevel)
	case "error":
		l.SetLevel(log.ErrorLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
	logger = l
}

func Fatal(format string, args ...any) {
	logger.Helper()
	logger.Fatalf(format, args...)
}

func Info(format string, args ...any) {
	logger.Helper()
	logger.Infof(format, args...)
}

func Warn(format string, args ...any) {
	logger.Helper()
	logger.Warnf(format, args...)
}

func Error(format string, args ...any) {
	logger.Helper()
	logger.Errorf(format, args...)
}

func Debug(format string, args ...any) {
	logger.Helper()
	logger.Debugf(format, args...)
}
