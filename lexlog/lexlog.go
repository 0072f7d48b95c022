// Package lexlog is the engine's process-wide logger. It plays the same role
// as the teacher's own logger package (a thin wrapper other packages reach
// for instead of fmt.Println/log.Printf), backed by charmbracelet/log instead
// of encoding/json-to-a-file.
package lexlog

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	once   sync.Once
	logger *log.Logger
)

// Init configures the process-wide logger. Safe to call multiple times; only
// the first call takes effect, matching the teacher's sync.Once init idiom.
func Init(level log.Level) {
	once.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          "lexime",
		})
	})
}

func L() *log.Logger {
	if logger == nil {
		Init(log.WarnLevel)
	}
	return logger
}

func Debugf(format string, args ...interface{}) { L().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { L().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { L().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { L().Errorf(format, args...) }

// With returns a sub-logger carrying the given key/value pairs, the way the
// teacher tags debug lines with the surface/reading under inspection.
func With(kv ...interface{}) *log.Logger {
	return L().With(kv...)
}
