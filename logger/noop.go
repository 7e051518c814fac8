package logger

import "time"

// NoopLogger discards all log events. It is the default logger for
// components that were not given one.
type NoopLogger struct{}

var _ Logger = NoopLogger{}

// NewNoop returns a logger that discards everything.
func NewNoop() NoopLogger { return NoopLogger{} }

func (NoopLogger) Info() LogEvent                     { return noopEvent{} }
func (NoopLogger) Error() LogEvent                    { return noopEvent{} }
func (NoopLogger) Debug() LogEvent                    { return noopEvent{} }
func (NoopLogger) Warn() LogEvent                     { return noopEvent{} }
func (NoopLogger) WithFields(_ map[string]any) Logger { return NoopLogger{} }

type noopEvent struct{}

func (noopEvent) Msg(string)                        {}
func (noopEvent) Msgf(string, ...any)               {}
func (noopEvent) Err(error) LogEvent                { return noopEvent{} }
func (noopEvent) Str(string, string) LogEvent       { return noopEvent{} }
func (noopEvent) Int(string, int) LogEvent          { return noopEvent{} }
func (noopEvent) Int64(string, int64) LogEvent      { return noopEvent{} }
func (noopEvent) Dur(string, time.Duration) LogEvent { return noopEvent{} }
func (noopEvent) Interface(string, any) LogEvent    { return noopEvent{} }
