package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes one colored line per event, tagged with a level and a category.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

func New(level string) *Logger {
	return NewWithWriter(color.Output, level)
}

func NewWithWriter(w io.Writer, level string) *Logger {
	return &Logger{out: w, level: ParseLevel(level)}
}

// Nop discards everything. Services fall back to it when no logger is injected.
func Nop() *Logger {
	return &Logger{out: io.Discard, level: LevelError + 1}
}

func (l *Logger) Close() error {
	if f, ok := l.out.(*os.File); ok && f != os.Stdout && f != os.Stderr {
		return f.Close()
	}
	return nil
}

var (
	debugTag   = color.New(color.FgHiBlack).SprintFunc()
	infoTag    = color.New(color.FgCyan).SprintFunc()
	warnTag    = color.New(color.FgYellow).SprintFunc()
	errorTag   = color.New(color.FgRed, color.Bold).SprintFunc()
	processTag = color.New(color.FgGreen).SprintFunc()
	categoryFg = color.New(color.FgMagenta).SprintFunc()
)

func (l *Logger) write(level Level, tag, category, msg string) {
	if l == nil || level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), tag, categoryFg(category), msg)
}

func (l *Logger) Debug(category, msg string) { l.write(LevelDebug, debugTag("DEBUG"), category, msg) }
func (l *Logger) Info(category, msg string)  { l.write(LevelInfo, infoTag("INFO "), category, msg) }
func (l *Logger) Warn(category, msg string)  { l.write(LevelWarn, warnTag("WARN "), category, msg) }
func (l *Logger) Error(category, msg string) { l.write(LevelError, errorTag("ERROR"), category, msg) }

func (l *Logger) Fatal(category, msg string) {
	l.write(LevelError, errorTag("FATAL"), category, msg)
	os.Exit(1)
}

func (l *Logger) LogProcess(category, msg string) {
	l.write(LevelInfo, processTag("PROC "), category, msg)
}

func (l *Logger) LogDatabase(op, db, msg string) {
	l.Info("DATABASE", fmt.Sprintf("%s %s: %s", op, db, msg))
}

func (l *Logger) LogKafka(op, topic, msg string) {
	l.Info("KAFKA", fmt.Sprintf("%s %s: %s", op, topic, msg))
}

func (l *Logger) LogPayment(op string, paymentID int64, msg string) {
	l.Info("PAYMENT", fmt.Sprintf("%s payment=%d: %s", op, paymentID, msg))
}

func (l *Logger) LogBooking(op, reference, msg string) {
	l.Info("BOOKING", fmt.Sprintf("%s %s: %s", op, reference, msg))
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.Info("API", fmt.Sprintf("%s %s - %s (%s)", method, path, status, duration))
}

func (l *Logger) LogSecurity(event, msg string) {
	l.Warn("SECURITY", fmt.Sprintf("%s: %s", event, msg))
}
