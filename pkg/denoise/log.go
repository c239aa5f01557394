package denoise

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a structured logrus logger for a filter instance. level
// is one of "debug", "info", "warn", "error" (default "info"); output is
// "stdout" or a file path.
func NewLogger(level, output string) *logrus.Logger {
	logger := logrus.New()

	switch level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if output == "" || output == "stdout" {
		logger.SetOutput(os.Stdout)
	} else {
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logger.SetOutput(file)
		} else {
			logger.SetOutput(os.Stdout)
			logger.Warnf("denoise: failed to open log file %s, using stdout", output)
		}
	}

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	return logger
}

// defaultLogger is the logger every filter logs through: filter
// constructors take no logger or entry, so filters always use this
// package-level logrus.New() instance, tagged per filter by defaultEntry.
var defaultLogger = logrus.New()

func defaultEntry(component string) *logrus.Entry {
	return defaultLogger.WithField("component", component)
}
