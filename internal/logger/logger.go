// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init sets up the standard logger: level from the LOG_LEVEL environment
// variable (default info) and a timestamped text formatter.
func Init() *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(levelStr)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// With returns an entry tagged with the originating component.
func With(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
