// Package logging decouples the application from a concrete logging
// framework. Components depend on the Logger interface; main wires in the
// logrus adapter, tests wire in the recorder.
package logging

// Logger is the structured logging surface used throughout the module.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a logger with an error field attached.
	WithError(err error) Logger
	// WithField returns a logger with one field attached.
	WithField(key string, value interface{}) Logger
	// WithFields returns a logger with several fields attached.
	WithFields(fields ...Field) Logger

	// Fatal logs and exits the program.
	Fatal(msg string, fields ...Field)
}

// Field is a key-value pair giving context to a log message.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for constructing a Field at a call site.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
