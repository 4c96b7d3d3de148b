package sinks

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/InNoobWeTrust/web-automator/pkg/log"
	"github.com/InNoobWeTrust/web-automator/pkg/types"
	"github.com/fatih/color"
)

// ConsoleSink prints `[LEVEL time] domain: message` lines.
type ConsoleSink struct {
	out      io.Writer
	minLevel types.Level
}

func NewConsoleSink(minLevel types.Level) *ConsoleSink {
	return &ConsoleSink{out: os.Stdout, minLevel: minLevel}
}

// NewConsoleSinkTo writes to w instead of stdout.
func NewConsoleSinkTo(w io.Writer, minLevel types.Level) *ConsoleSink {
	return &ConsoleSink{out: w, minLevel: minLevel}
}

var levelColorMap = map[types.Level]*color.Color{
	types.DebugLevel: color.New(color.FgCyan),
	types.InfoLevel:  color.New(color.FgGreen),
	types.WarnLevel:  color.New(color.FgYellow),
	types.ErrorLevel: color.New(color.FgRed),
	types.FatalLevel: color.New(color.FgRed, color.Bold),
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	if event.Level < c.minLevel {
		return nil
	}

	domain := getStringField(event.Fields, "domain")
	action := getStringField(event.Fields, "action")
	errorMsg := getStringField(event.Fields, "error")
	levelStr := strings.ToUpper(levelToString(event.Level))
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}

	label := domain
	if label == "" {
		label = "automator"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s %s] %s: ", levelFmt(levelStr), timestampStr, color.CyanString(label))
	if action != "" {
		fmt.Fprintf(&b, "[%s] ", color.BlueString(action))
	}
	b.WriteString(event.Message)
	if errorMsg != "" {
		if event.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(errorMsg)
	}

	_, err := fmt.Fprintln(c.out, b.String())
	return err
}

// Helper to safely get string field from LogEvent.Fields
func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}

// Helper to convert types.Level to string
func levelToString(l types.Level) string {
	switch l {
	case types.DebugLevel:
		return "debug"
	case types.InfoLevel:
		return "info"
	case types.WarnLevel:
		return "warn"
	case types.ErrorLevel:
		return "error"
	case types.FatalLevel:
		return "fatal"
	default:
		return "unknown"
	}
}

func (c *ConsoleSink) Close() error {
	return nil // Console doesn't need closing
}
