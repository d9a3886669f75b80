package logging

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/logutils"
)

// Levels is the full set of log levels the daemon understands, ordered from
// most to least verbose.
var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERR"}

var (
	filter *logutils.LevelFilter
	once   sync.Once
)

func setup() {
	filter = &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: "INFO",
		Writer:   os.Stderr,
	}
	log.SetOutput(filter)
	log.SetFlags(log.LstdFlags)
}

// SetLevel sets the minimum level at which log messages are written. An
// unrecognized level leaves the filter at its current setting.
func SetLevel(level string) {
	once.Do(setup)

	l := logutils.LogLevel(strings.ToUpper(level))
	for _, valid := range Levels {
		if l == valid {
			filter.SetMinLevel(l)
			return
		}
	}

	Error("logging: ignoring unknown log level %q", level)
}

// Debug logs a message at the DEBUG level.
func Debug(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf("[DEBUG] "+format, v...)
}

// Info logs a message at the INFO level.
func Info(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf("[INFO] "+format, v...)
}

// Warning logs a message at the WARN level.
func Warning(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf("[WARN] "+format, v...)
}

// Error logs a message at the ERR level.
func Error(format string, v ...interface{}) {
	once.Do(setup)
	log.Printf("[ERR] "+format, v...)
}
