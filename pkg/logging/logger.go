// Package logging provides the structured leveled logger used across parcel.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level is a logging severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a case-insensitive level name.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// Format selects the wire shape of emitted log lines.
type Format int

const (
	TextFormat Format = iota
	JSONFormat
)

// Entry is a single emitted log line.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	Caller    string         `json:"caller,omitempty"`
}

// Logger is a structured logger with an optional component tag.
type Logger struct {
	mu         sync.RWMutex
	level      Level
	format     Format
	output     io.Writer
	showCaller bool
	component  string
}

// Config configures a Logger.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	ShowCaller bool
	Component  string
}

// DefaultConfig returns text logging to stdout at info level.
func DefaultConfig() *Config {
	return &Config{
		Level:  InfoLevel,
		Format: TextFormat,
		Output: os.Stdout,
	}
}

// New creates a Logger from config, falling back to DefaultConfig when nil.
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	return &Logger{
		level:      config.Level,
		format:     config.Format,
		output:     config.Output,
		showCaller: config.ShowCaller,
		component:  config.Component,
	}
}

// ConfigureFromSettings builds a Logger from string-typed settings, the way
// a config file or CLI flags would supply them.
//
//	level:    "debug" | "info" | "warn" | "error"
//	format:   "text" | "json"
//	output:   "console" | "file" | "both"
//	filename: required for "file" and "both"
func ConfigureFromSettings(level, format, output, filename string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var f Format
	switch format {
	case "json":
		f = JSONFormat
	case "text", "":
		f = TextFormat
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	var w io.Writer
	switch output {
	case "console", "":
		w = os.Stdout
	case "file":
		if filename == "" {
			return nil, fmt.Errorf("log file path required when output is 'file'")
		}
		if w, err = fileOutput(filename); err != nil {
			return nil, err
		}
	case "both":
		if filename == "" {
			return nil, fmt.Errorf("log file path required when output is 'both'")
		}
		fw, err := fileOutput(filename)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stdout, fw)
	default:
		return nil, fmt.Errorf("invalid log output: %s", output)
	}

	return New(&Config{Level: lvl, Format: f, Output: w}), nil
}

func fileOutput(filename string) (io.Writer, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// WithComponent returns a copy of the logger tagged with a component name,
// e.g. "splitter" or "traversal".
func (l *Logger) WithComponent(component string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Logger{level: l.level, format: l.format, output: l.output, showCaller: l.showCaller, component: component}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) IsEnabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) log(level Level, message string, fields map[string]any) {
	if !l.IsEnabled(level) {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entry := Entry{Timestamp: time.Now(), Level: level.String(), Message: message, Fields: fields}
	if l.component != "" {
		if entry.Fields == nil {
			entry.Fields = make(map[string]any, 1)
		}
		entry.Fields["component"] = l.component
	}
	if l.showCaller {
		if _, file, line, ok := runtime.Caller(3); ok {
			entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}

	var out string
	if l.format == JSONFormat {
		data, _ := json.Marshal(entry)
		out = string(data) + "\n"
	} else {
		out = formatText(entry)
	}
	l.output.Write([]byte(out))
}

func formatText(entry Entry) string {
	parts := []string{entry.Timestamp.Format("2006-01-02 15:04:05"), fmt.Sprintf("[%s]", entry.Level)}
	if entry.Caller != "" {
		parts = append(parts, fmt.Sprintf("(%s)", entry.Caller))
	}
	parts = append(parts, entry.Message)
	result := strings.Join(parts, " ")

	if len(entry.Fields) > 0 {
		var fieldParts []string
		for k, v := range entry.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, v))
		}
		result += fmt.Sprintf(" [%s]", strings.Join(fieldParts, " "))
	}
	return result + "\n"
}

func (l *Logger) Debug(message string, fields ...map[string]any) { l.logv(DebugLevel, message, fields) }
func (l *Logger) Info(message string, fields ...map[string]any)  { l.logv(InfoLevel, message, fields) }
func (l *Logger) Warn(message string, fields ...map[string]any)  { l.logv(WarnLevel, message, fields) }
func (l *Logger) Error(message string, fields ...map[string]any) { l.logv(ErrorLevel, message, fields) }

func (l *Logger) logv(level Level, message string, fields []map[string]any) {
	var f map[string]any
	if len(fields) > 0 {
		f = fields[0]
	}
	l.log(level, message, f)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(DebugLevel, fmt.Sprintf(format, args...), nil) }
func (l *Logger) Infof(format string, args ...any)  { l.log(InfoLevel, fmt.Sprintf(format, args...), nil) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(WarnLevel, fmt.Sprintf(format, args...), nil) }
func (l *Logger) Errorf(format string, args ...any) { l.log(ErrorLevel, fmt.Sprintf(format, args...), nil) }
