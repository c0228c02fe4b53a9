package logger

import (
	"log"
)

// Logger is a lightweight leveled logger backed by Go's log package.
// Debug output is gated on the verbose flag; Info and Error always print.
type Logger struct {
	verbose bool
}

// New creates a Logger.
func New(verbose bool) *Logger {
	return &Logger{verbose: verbose}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	log.Println("[DEBUG]", msg, fields)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	log.Println("[INFO]", msg, fields)
}

func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	log.Println("[ERROR]", msg, err, fields)
}
