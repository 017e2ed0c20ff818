// Package logging implements the process-wide logger spec.md §6 treats as
// an external collaborator: levels {debug, info, warn, error}, a single
// thread-safe variadic Write(level, fmt, ...) entry point, synchronous by
// default or batched onto a background goroutine when a queue size is
// configured, and file rotation on day change or a per-file line cap.
// Grounded on nabbar-golib/logger's logrus-hook design (logger/level.go,
// logger/hookfile.go): a logrus.Logger wrapped by our own level enum and a
// custom io.Writer hook that tracks the day stamp and line count.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level mirrors nabbar-golib/logger's Level enum, trimmed to the four
// levels spec.md §6 names.
type Level uint8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Config configures a Logger.
type Config struct {
	// MinLevel suppresses messages below this level.
	MinLevel Level
	// FilePath, if set, rotates output to dated/line-capped files
	// (see rotatingFile). Empty means stderr only.
	FilePath string
	// MaxLinesPerFile triggers rotation once a file passes this many
	// lines, in addition to day-change rotation. Zero disables the cap.
	MaxLinesPerFile int
	// QueueSize, if > 0, makes Write non-blocking: messages are pushed
	// onto a bounded channel drained by a background goroutine instead
	// of being formatted and flushed synchronously.
	QueueSize int
}

// Logger is the process-wide, thread-safe logger.
type Logger struct {
	base  *logrus.Logger
	min   Level
	queue chan entry
	wg    sync.WaitGroup
}

type entry struct {
	level Level
	msg   string
}

// New constructs a Logger per cfg.
func New(cfg Config) *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	base.SetLevel(logrus.DebugLevel) // filtering happens in Logger.min

	if cfg.FilePath != "" {
		base.SetOutput(newRotatingFile(cfg.FilePath, cfg.MaxLinesPerFile))
	} else {
		base.SetOutput(os.Stderr)
	}

	l := &Logger{base: base, min: cfg.MinLevel}
	if cfg.QueueSize > 0 {
		l.queue = make(chan entry, cfg.QueueSize)
		l.wg.Add(1)
		go l.drain()
	}
	return l
}

func (l *Logger) drain() {
	defer l.wg.Done()
	for e := range l.queue {
		l.emit(e.level, e.msg)
	}
}

func (l *Logger) emit(level Level, msg string) {
	l.base.Log(level.logrusLevel(), msg)
}

// Write is the single, thread-safe entry point every subsystem logs
// through.
func (l *Logger) Write(level Level, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.queue != nil {
		select {
		case l.queue <- entry{level: level, msg: msg}:
		default:
			// Queue full: fall back to synchronous emission rather than
			// drop the message or block the caller indefinitely.
			l.emit(level, msg)
		}
		return
	}
	l.emit(level, msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.Write(DebugLevel, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.Write(InfoLevel, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.Write(WarnLevel, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.Write(ErrorLevel, format, args...) }

// AccessLog emits one line per request: method, target, status, bytes,
// peer address, following the access-log format the original
// webserver1.1/log.cpp carried (supplemented per SPEC_FULL.md §9).
func (l *Logger) AccessLog(peer, method, target string, status int, bytes int64) {
	l.Infof("%s %q %q %d %d", peer, method, target, status, bytes)
}

// Close stops the background drain goroutine, if any, flushing whatever
// is left in the queue first, and closes the rotating log file if one is
// in use. It never closes os.Stderr.
func (l *Logger) Close() error {
	if l.queue != nil {
		close(l.queue)
		l.wg.Wait()
	}
	if rf, ok := l.base.Out.(*rotatingFile); ok {
		return rf.Close()
	}
	return nil
}
