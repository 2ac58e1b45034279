// Package logging configures the logrus logger of ds3231ctl.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Component is attached to every entry returned by Logger.
const Component = "ds3231ctl"

var log = logrus.New()

// Setup sends log output to out at the given level. Quiet raises the level to
// warn, so only problems are reported.
func Setup(out io.Writer, level string, quiet bool) error {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		if lvl, err = logrus.ParseLevel(level); err != nil {
			return err
		}
	}
	if quiet && lvl > logrus.WarnLevel {
		lvl = logrus.WarnLevel
	}
	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// Logger returns the configured logger.
func Logger() *logrus.Entry {
	return log.WithField("component", Component)
}
