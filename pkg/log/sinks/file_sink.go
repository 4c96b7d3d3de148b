package sinks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/InNoobWeTrust/web-automator/pkg/log"
)

// FileSink appends every event as one JSON object per line.
type FileSink struct {
	file *os.File
}

// NewFileSink creates path, and its parent directory, truncating any
// previous content.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory for %q: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}
	return &FileSink{file: f}, nil
}

func (fs *FileSink) Path() string {
	return fs.file.Name()
}

func (fs *FileSink) Write(event *log.LogEvent) error {
	logEntry := make(map[string]any, len(event.Fields)+3)
	for k, v := range event.Fields {
		logEntry[k] = v
	}
	logEntry["level"] = levelToString(event.Level)
	logEntry["time"] = event.Timestamp
	logEntry["message"] = event.Message

	data, err := json.Marshal(logEntry)
	if err != nil {
		return fmt.Errorf("failed to marshal log event for file sink: %w", err)
	}

	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to file sink: %w", err)
	}

	return nil
}

func (fs *FileSink) Close() error {
	if fs.file != nil {
		return fs.file.Close()
	}
	return nil
}
