package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

type Logger struct {
	level       Level
	infoLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
}

// New returns a Logger writing all levels to w.
func New(level string, w io.Writer) *Logger {
	flags := log.Ldate | log.Ltime
	return &Logger{
		level:       ParseLevel(level),
		infoLogger:  log.New(w, "INFO: ", flags),
		errorLogger: log.New(w, "ERROR: ", flags),
		debugLogger: log.New(w, "DEBUG: ", flags|log.Lshortfile),
	}
}

func NewDiscard() *Logger {
	return New(string(LevelError), io.Discard)
}

func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Info(format string, v ...any) {
	if l.level == LevelError {
		return
	}
	l.infoLogger.Printf(format, v...)
}

func (l *Logger) Error(format string, v ...any) {
	l.errorLogger.Printf(format, v...)
}

func (l *Logger) Debug(format string, v ...any) {
	if l.level != LevelDebug {
		return
	}
	l.debugLogger.Output(2, fmt.Sprintf(format, v...))
}
