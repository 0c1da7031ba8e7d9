package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger for the given environment.
func Setup(env, level string) {
	logrus.SetOutput(os.Stdout)

	if env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}
