package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus logger
type Logger struct {
	*logrus.Logger
	app string
}

// NewLogger creates a JSON logger writing to stderr, so command output on
// stdout stays clean.
func NewLogger(app, level string) *Logger {
	return New(app, level, os.Stderr)
}

// New creates a JSON logger writing to out.
func New(app, level string, out io.Writer) *Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Logger: log, app: app}
}

// Component tags every entry with the app and the emitting component.
func (l *Logger) Component(name string) *logrus.Entry {
	return l.WithFields(logrus.Fields{"app": l.app, "component": name})
}

// WithRunID adds the pipeline run id to logger
func (l *Logger) WithRunID(runID string) *logrus.Entry {
	return l.WithFields(logrus.Fields{"app": l.app, "run_id": runID})
}
