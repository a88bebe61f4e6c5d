// Package: github.com/Foxenfurter/foxSpectralSphere/foxSphereLog
// filename foxSphereLog.go
// Package provides the optional diagnostic logger threaded through the
// demo command and any caller that wants visibility into table
// construction and transform calls, in the same append-only, mutex-guarded
// style as the library's original audio logger, extended with structured
// per-entry fields so a log line carries the geometry (nlon/nlat/ntrunc)
// and operation an entry came from rather than just a free-text message.
package foxSphereLog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Logger struct {
	mu           sync.Mutex
	LogFile      *os.File
	DebugEnabled bool
	InstanceID   string
}

const (
	Info       = "Info"
	Debug      = "Debug"
	Error      = "Error"
	Warn       = "Warn"
	FatalError = "FatalError"
)

// Fields carries the structured context for a single log entry - the
// geometry and operation a diagnostic came from, not just a free-text
// message. Keys are rendered in sorted order so entries are diffable.
type Fields map[string]any

// NewLogger opens logFilePath for append and tags every entry with
// instanceID, generating a fresh UUID if the caller doesn't supply one.
func NewLogger(logFilePath, instanceID string, debugEnabled bool) (*Logger, error) {
	logFile, err := os.OpenFile(
		filepath.Clean(logFilePath),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return nil, fmt.Errorf("foxSphereLog:NewLogger: failed to create log file: %w", err)
	}

	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	return &Logger{
		LogFile:      logFile,
		InstanceID:   instanceID,
		DebugEnabled: debugEnabled,
	}, nil
}

// Log writes a plain, field-free entry. Kept for simple cases where there
// is nothing structured worth attaching.
func (l *Logger) Log(logType, description string) {
	l.LogFields(logType, description, nil)
}

// LogFields writes description tagged with logType and instance id, followed
// by fields rendered as sorted key=value pairs.
func (l *Logger) LogFields(logType, description string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if logType == Debug && !l.DebugEnabled {
		return
	}

	logEntry := fmt.Sprintf("%s %s [%s] %s%s\n",
		time.Now().Format("2006-01-02 15:04:05.999999"),
		l.InstanceID,
		logType,
		description,
		renderFields(fields),
	)

	if _, err := l.LogFile.WriteString(logEntry); err != nil {
		log.Printf("LOG ERROR: Failed to write log entry: %v", err)
	}
}

func renderFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

// Simplified helper methods, field-free.
func (l *Logger) Debug(description string) { l.Log(Debug, description) }
func (l *Logger) Info(description string)  { l.Log(Info, description) }
func (l *Logger) Warn(description string)  { l.Log(Warn, description) }
func (l *Logger) Error(description string) { l.Log(Error, description) }

// Field-carrying counterparts, used wherever a call site has structured
// geometry or operation context worth attaching to the entry.
func (l *Logger) DebugFields(description string, fields Fields) { l.LogFields(Debug, description, fields) }
func (l *Logger) InfoFields(description string, fields Fields)  { l.LogFields(Info, description, fields) }
func (l *Logger) WarnFields(description string, fields Fields)  { l.LogFields(Warn, description, fields) }
func (l *Logger) ErrorFields(description string, fields Fields) { l.LogFields(Error, description, fields) }

func (l *Logger) FatalError(description string) {
	l.Log(FatalError, description)
	l.Close()
	os.Exit(1)
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.LogFile != nil {
		if err := l.LogFile.Close(); err != nil {
			log.Printf("LOG ERROR: Failed to close log file: %v", err)
		}
		l.LogFile = nil
	}
}
