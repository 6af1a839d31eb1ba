package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a text logger on stderr at the named level. Unknown levels fall back to info.
func New(level string) *logrus.Logger {
	return NewWithOutput(os.Stderr, level)
}

func NewWithOutput(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// WithRunID tags every entry of one analysis run.
func WithRunID(logger logrus.FieldLogger) *logrus.Entry {
	return logger.WithField("run_id", uuid.NewString())
}

func LogError(logger logrus.FieldLogger, msg string, err error) {
	logger.Errorf("%s: %v", msg, err)
}

func LogFatal(logger logrus.FieldLogger, msg string, err error) {
	logger.Fatalf("%s: %v", msg, err)
}

func LogWarn(logger logrus.FieldLogger, msg string) {
	logger.Warn(msg)
}

func LogInfo(logger logrus.FieldLogger, msg string) {
	logger.Info(msg)
}
