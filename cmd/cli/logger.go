package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// InitLogger parses the level string and configures the global logrus logger.
// An unknown level is an error.
func InitLogger(logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	return nil
}
