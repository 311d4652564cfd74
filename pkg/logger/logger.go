package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Logger
}

// Options controls logger construction.
type Options struct {
	Verbose bool
	JSON    bool
	// Output defaults to stderr so reports written to stdout stay parseable.
	Output io.Writer
}

func NewLogger(verbose bool) *Logger {
	return New(Options{Verbose: verbose})
}

func New(opts Options) *Logger {
	log := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Logger: log}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Options{Output: io.Discard})
}

// ForTarget scopes log entries to one target.
func (l *Logger) ForTarget(id string) *logrus.Entry {
	return l.WithField("target", id)
}
