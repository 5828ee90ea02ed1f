package logging

import "sync"

// Entry is one recorded log call.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Recorder is a Logger that captures entries for test assertions.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	fields  []Field
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Entries returns a copy of everything logged so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// HasMessage reports whether any entry carries the given message.
func (r *Recorder) HasMessage(msg string) bool {
	for _, e := range r.Entries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func (r *Recorder) record(level, msg string, fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make(map[string]interface{}, len(r.fields)+len(fields))
	for _, f := range r.fields {
		all[f.Key] = f.Value
	}
	for _, f := range fields {
		all[f.Key] = f.Value
	}
	r.entries = append(r.entries, Entry{Level: level, Message: msg, Fields: all})
}

func (r *Recorder) Debug(msg string, fields ...Field) { r.record("debug", msg, fields) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.record("info", msg, fields) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.record("warn", msg, fields) }
func (r *Recorder) Error(msg string, fields ...Field) { r.record("error", msg, fields) }

// Fatal records the entry but does not exit; tests must keep running.
func (r *Recorder) Fatal(msg string, fields ...Field) { r.record("fatal", msg, fields) }

func (r *Recorder) WithError(err error) Logger {
	return r.WithField("error", err)
}

func (r *Recorder) WithField(key string, value interface{}) Logger {
	return r.WithFields(Field{Key: key, Value: value})
}

func (r *Recorder) WithFields(fields ...Field) Logger {
	return &chained{parent: r, fields: append(append([]Field{}, r.fields...), fields...)}
}

// chained forwards records to the root recorder with extra fields.
type chained struct {
	parent *Recorder
	fields []Field
}

func (c *chained) Debug(msg string, fields ...Field) {
	c.parent.record("debug", msg, append(c.fields, fields...))
}
func (c *chained) Info(msg string, fields ...Field) {
	c.parent.record("info", msg, append(c.fields, fields...))
}
func (c *chained) Warn(msg string, fields ...Field) {
	c.parent.record("warn", msg, append(c.fields, fields...))
}
func (c *chained) Error(msg string, fields ...Field) {
	c.parent.record("error", msg, append(c.fields, fields...))
}
func (c *chained) Fatal(msg string, fields ...Field) {
	c.parent.record("fatal", msg, append(c.fields, fields...))
}
func (c *chained) WithError(err error) Logger {
	return c.WithField("error", err)
}
func (c *chained) WithField(key string, value interface{}) Logger {
	return &chained{parent: c.parent, fields: append(append([]Field{}, c.fields...), Field{Key: key, Value: value})}
}
func (c *chained) WithFields(fields ...Field) Logger {
	return &chained{parent: c.parent, fields: append(append([]Field{}, c.fields...), fields...)}
}
