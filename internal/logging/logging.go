// Package logging provides structured, level-filtered logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	runID     string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		runID:     l.runID,
	}
}

// WithRunID returns a new logger that tags every line with the run ID.
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		runID:     runID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.runID != "" {
		fieldStr += " run=" + l.runID
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// ToolCall logs a tool invocation.
func (l *Logger) ToolCall(agent, tool string) {
	// Don't log args to avoid leaking generated content - just tool name
	l.Info("tool_call", map[string]interface{}{
		"agent": agent,
		"tool":  tool,
	})
}

// ToolResult logs a tool result.
func (l *Logger) ToolResult(agent, tool string, duration time.Duration) {
	l.Debug("tool_result", map[string]interface{}{
		"agent":    agent,
		"tool":     tool,
		"duration": duration.String(),
	})
}

// SecurityWarning logs a security-related warning.
func (l *Logger) SecurityWarning(msg string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["security"] = true
	l.Warn(msg, fields)
}

// PhaseStart logs the start of a pipeline phase.
func (l *Logger) PhaseStart(phase, artifact string) {
	l.Info("phase_start", map[string]interface{}{
		"phase":    phase,
		"artifact": artifact,
	})
}

// PhaseComplete logs the completion of a pipeline phase.
func (l *Logger) PhaseComplete(phase string, duration time.Duration, result string) {
	l.Info("phase_complete", map[string]interface{}{
		"phase":    phase,
		"duration": duration.String(),
		"result":   result,
	})
}

// PipelineStart logs the start of a pipeline run.
func (l *Logger) PipelineStart(requirement, workspace string) {
	l.Info("pipeline_start", map[string]interface{}{
		"requirement": requirement,
		"workspace":   workspace,
	})
}

// PipelineComplete logs the completion of a pipeline run.
func (l *Logger) PipelineComplete(workspace string, duration time.Duration, status string) {
	l.Info("pipeline_complete", map[string]interface{}{
		"workspace": workspace,
		"duration":  duration.String(),
		"status":    status,
	})
}

// KeyRotation logs a credential rotation after a rate-limit hit.
func (l *Logger) KeyRotation(agent string, from, to, total, hits, maxHits int) {
	l.Warn("key_rotation", map[string]interface{}{
		"agent":     agent,
		"from_key":  fmt.Sprintf("%d/%d", from+1, total),
		"to_key":    fmt.Sprintf("%d/%d", to+1, total),
		"rate_hits": fmt.Sprintf("%d/%d", hits, maxHits),
	})
}

// PoolExhausted logs a full-pool exhaustion backoff.
func (l *Logger) PoolExhausted(agent string, keys, cycle int, wait time.Duration) {
	l.Warn("pool_exhausted", map[string]interface{}{
		"agent": agent,
		"keys":  keys,
		"cycle": cycle,
		"wait":  wait.Truncate(time.Millisecond).String(),
	})
}

// MalformedToolCall logs a malformed tool-call correction attempt.
func (l *Logger) MalformedToolCall(agent string, attempt, max int) {
	l.Warn("malformed_tool_call", map[string]interface{}{
		"agent":   agent,
		"attempt": fmt.Sprintf("%d/%d", attempt, max),
	})
}
