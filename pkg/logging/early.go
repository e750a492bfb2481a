package logging

import (
	"fmt"
	"io"
	"os"
)

// EarlyLog writes plain lines before the structured logger exists, e.g. when
// the config file cannot be read.
type EarlyLog struct {
	out    io.Writer
	prefix string
}

func NewEarlyLog(serviceName string) *EarlyLog {
	return NewEarlyLogTo(os.Stderr, serviceName)
}

func NewEarlyLogTo(out io.Writer, serviceName string) *EarlyLog {
	return &EarlyLog{out: out, prefix: serviceName}
}

func (l *EarlyLog) Error(msg string, args ...interface{}) {
	l.write("ERROR", msg, args...)
}

func (l *EarlyLog) Warn(msg string, args ...interface{}) {
	l.write("WARN", msg, args...)
}

func (l *EarlyLog) Info(msg string, args ...interface{}) {
	l.write("INFO", msg, args...)
}

func (l *EarlyLog) write(level, msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	if l.prefix != "" {
		fmt.Fprintf(l.out, "%s [%s] %s\n", level, l.prefix, line)
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", level, line)
}
