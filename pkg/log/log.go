// Package log adds a thin wrapper around logrus. Debug messages are dropped
// before any fields are built unless debug logging was enabled.
package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var (
	l     = logrus.New()
	debug = false
)

// SetDebug controls debug logging.
func SetDebug(to bool) {
	debug = to
	if to {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
}

// SetJSON switches between JSON and human-readable text output.
func SetJSON(to bool) {
	if to {
		l.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetOutput sets the output.
func SetOutput(to io.Writer) {
	l.SetOutput(to)
}

// Fields is a map of logging fields.
type Fields map[string]interface{}

// LogFields implements Fielder for Fields.
func (f Fields) LogFields() Fields {
	return f
}

// A Fielder provides Fields via the LogFields method.
type Fielder interface {
	LogFields() Fields
}

type errFielder struct {
	e error
}

func (e errFielder) LogFields() Fields {
	return Fields{
		"error": e.e.Error(),
		"type":  fmt.Sprintf("%T", e.e),
	}
}

// Err wraps an error so it can be passed as a Fielder.
func Err(e error) Fielder {
	return errFielder{e}
}

// merge combines the Fields of several Fielders into a fresh map. Keys of
// the first Fielder are kept as is, keys of the nth subsequent Fielder are
// prefixed with "n.".
func merge(fielders []Fielder) logrus.Fields {
	fields := logrus.Fields{}
	for i, f := range fielders {
		if f == nil {
			continue
		}
		prefix := ""
		if i > 0 {
			prefix = fmt.Sprint(i, ".")
		}
		for k, v := range f.LogFields() {
			fields[prefix+k] = v
		}
	}
	return fields
}

func entry(fielders []Fielder) *logrus.Entry {
	return l.WithFields(merge(fielders))
}

// Debug logs at the debug level if debug logging is enabled.
func Debug(v interface{}, fielders ...Fielder) {
	if debug {
		entry(fielders).Debug(v)
	}
}

// Info logs at the info level.
func Info(v interface{}, fielders ...Fielder) {
	entry(fielders).Info(v)
}

// Warn logs at the warning level.
func Warn(v interface{}, fielders ...Fielder) {
	entry(fielders).Warn(v)
}

// Error logs at the error level.
func Error(v interface{}, fielders ...Fielder) {
	entry(fielders).Error(v)
}

// Fatal logs at the fatal level and exits with a status code != 0.
func Fatal(v interface{}, fielders ...Fielder) {
	entry(fielders).Fatal(v)
}
