package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/security"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/rs/zerolog"
)

// LogEvent represents a log event that will be written to sinks
type LogEvent struct {
	Level     types.Level
	Message   string
	Fields    map[string]any
	Timestamp time.Time
}

// Sink defines the interface for log output destinations
type Sink interface {
	Write(event *LogEvent) error
	io.Closer
}

// Router decodes zerolog JSON lines, redacts them, and fans them out to sinks.
type Router struct {
	mu       sync.Mutex
	sinks    []Sink
	redactor *security.Redactor
}

var _ io.Writer = (*Router)(nil)

func NewRouter(sinks ...Sink) *Router {
	return &Router{sinks: sinks}
}

// SetRedactor installs the redactor applied to every following event.
func (r *Router) SetRedactor(red *security.Redactor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redactor = red
}

func (r *Router) Write(p []byte) (n int, err error) {
	var zerologOutput map[string]any
	if err := json.Unmarshal(p, &zerologOutput); err != nil {
		fmt.Fprintf(os.Stderr, "Router: Error unmarshaling log line: %v, data: %s\n", err, string(p))
		return len(p), nil
	}

	evt := decodeEvent(zerologOutput)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.redact(evt)
	for _, sink := range r.sinks {
		if err := sink.Write(evt); err != nil {
			fmt.Fprintf(os.Stderr, "Router: Error writing to sink: %v\n", err)
		}
	}

	return len(p), nil
}

func decodeEvent(zerologOutput map[string]any) *LogEvent {
	evt := &LogEvent{
		Level:  types.InfoLevel,
		Fields: make(map[string]any),
	}

	if lvlStr, ok := zerologOutput[zerolog.LevelFieldName].(string); ok {
		if zlLevel, err := zerolog.ParseLevel(lvlStr); err == nil {
			evt.Level = ConvertZerologLevel(zlLevel)
		}
	}
	if msg, ok := zerologOutput[zerolog.MessageFieldName].(string); ok {
		evt.Message = msg
	}
	evt.Timestamp = time.Now()
	if tsStr, ok := zerologOutput[zerolog.TimestampFieldName].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, tsStr); err == nil {
			evt.Timestamp = ts
		}
	}

	for k, v := range zerologOutput {
		switch k {
		case zerolog.LevelFieldName, zerolog.MessageFieldName, zerolog.TimestampFieldName:
			continue
		}
		evt.Fields[k] = v
	}
	return evt
}

func (r *Router) redact(evt *LogEvent) {
	if r.redactor == nil {
		return
	}

	evt.Message = r.redactor.Redact(evt.Message)
	for k, v := range evt.Fields {
		evt.Fields[k] = r.redactValue(v)
	}
}

func (r *Router) redactValue(v any) any {
	switch val := v.(type) {
	case string:
		return r.redactor.Redact(val)
	case map[string]any:
		for k, inner := range val {
			val[k] = r.redactValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = r.redactValue(inner)
		}
		return val
	default:
		return v
	}
}

func ConvertZerologLevel(zl zerolog.Level) types.Level {
	switch zl {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return types.DebugLevel
	case zerolog.InfoLevel:
		return types.InfoLevel
	case zerolog.WarnLevel:
		return types.WarnLevel
	case zerolog.ErrorLevel:
		return types.ErrorLevel
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return types.FatalLevel
	default:
		return types.InfoLevel
	}
}

func (r *Router) AddSink(sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, sink)
}

func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
