package logging

import (
	"io"
	"log"
	"os"
)

var out io.Writer = os.Stdout

// New returns a logger whose lines start with "<component>: ".
func New(component string) *log.Logger {
	prefix := ""
	if component != "" {
		prefix = component + ": "
	}
	return log.New(out, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Discard is used by tests and by callers that pass a nil logger.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func OrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

func Truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
