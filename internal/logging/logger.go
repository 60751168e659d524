// Package logging provides config-driven, categorized diagnostic logging
// for the interpreter itself. It is entirely separate from the
// script-visible emit/side-effect queue (see package outcome): this
// package is for the implementation's own tracing (parse errors, dispatch
// ambiguity, scheduler stalls), gated by a debug-mode toggle so an
// embedding host pays nothing in production.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot       Category = "boot"       // interpreter construction, config load
	CategoryParser     Category = "parser"     // lexing/parsing
	CategoryTransform  Category = "transform"  // raw tree -> typed AST lowering
	CategoryEval       Category = "eval"       // evaluator core
	CategoryObject     Category = "object"     // christening, inherit, mixin
	CategoryDispatch   Category = "dispatch"   // multiple dispatch engine
	CategoryQuery      Category = "query"      // View/query engine
	CategoryMetaprog   Category = "metaprog"   // inject/splice expansion
	CategoryScheduler  Category = "scheduler"  // cooperative task scheduler
	CategoryHostBridge Category = "hostbridge" // scheme resolution, import, render
)

// Options configures the logging package. Defined locally (rather than
// importing package config) to avoid an import cycle, since config
// itself logs through this package during Load.
type Options struct {
	DebugMode  bool
	Level      string // debug, info, warn, error
	Categories map[string]bool
}

var (
	mu   sync.RWMutex
	opts Options
	zl   *zap.SugaredLogger
)

func init() {
	// Safe no-op default until Configure is called.
	opts = Options{DebugMode: false}
	zl = zap.NewNop().Sugar()
}

// Configure (re)builds the underlying zap logger from Options. Safe to
// call multiple times; the latest call wins.
func Configure(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	opts = o
	if !o.DebugMode {
		zl = zap.NewNop().Sugar()
		return nil
	}

	level := zapcore.InfoLevel
	switch o.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zl = built.Sugar()
	return nil
}

// IsDebugMode reports whether debug logging is enabled at all.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled reports whether a category should emit log lines.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()

	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Logger is a category-scoped logging handle.
type Logger struct {
	category Category
	enabled  bool
}

// Get returns a logger scoped to category. The returned Logger is a
// no-op if the category (or debug mode overall) is disabled.
func Get(category Category) *Logger {
	return &Logger{category: category, enabled: IsCategoryEnabled(category)}
}

func (l *Logger) sugared() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return zl.With("category", string(l.category))
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.sugared().Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.sugared().Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.sugared().Warnf(format, args...)
}

// Error always logs regardless of category gating — interpreter-level
// errors worth surfacing to an embedding host's logs are not optional.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugared().Errorf(format, args...)
}

// Boot/Parser/Eval/... are convenience functions mirroring Get(cat).Info
// without requiring the caller to hold a Logger.

func Boot(format string, args ...interface{})       { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{})  { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})   { Get(CategoryBoot).Warn(format, args...) }
func BootError(format string, args ...interface{})  { Get(CategoryBoot).Error(format, args...) }

func Parser(format string, args ...interface{})      { Get(CategoryParser).Info(format, args...) }
func ParserDebug(format string, args ...interface{}) { Get(CategoryParser).Debug(format, args...) }

func Transform(format string, args ...interface{})      { Get(CategoryTransform).Info(format, args...) }
func TransformDebug(format string, args ...interface{}) { Get(CategoryTransform).Debug(format, args...) }

func Eval(format string, args ...interface{})      { Get(CategoryEval).Info(format, args...) }
func EvalDebug(format string, args ...interface{}) { Get(CategoryEval).Debug(format, args...) }
func EvalWarn(format string, args ...interface{})  { Get(CategoryEval).Warn(format, args...) }

func Object(format string, args ...interface{})      { Get(CategoryObject).Info(format, args...) }
func ObjectDebug(format string, args ...interface{}) { Get(CategoryObject).Debug(format, args...) }

func Dispatch(format string, args ...interface{})      { Get(CategoryDispatch).Info(format, args...) }
func DispatchDebug(format string, args ...interface{}) { Get(CategoryDispatch).Debug(format, args...) }
func DispatchWarn(format string, args ...interface{})  { Get(CategoryDispatch).Warn(format, args...) }

func Query(format string, args ...interface{})      { Get(CategoryQuery).Info(format, args...) }
func QueryDebug(format string, args ...interface{}) { Get(CategoryQuery).Debug(format, args...) }

func Metaprog(format string, args ...interface{})      { Get(CategoryMetaprog).Info(format, args...) }
func MetaprogDebug(format string, args ...interface{}) { Get(CategoryMetaprog).Debug(format, args...) }

func Scheduler(format string, args ...interface{})      { Get(CategoryScheduler).Info(format, args...) }
func SchedulerDebug(format string, args ...interface{}) { Get(CategoryScheduler).Debug(format, args...) }
func SchedulerWarn(format string, args ...interface{})  { Get(CategoryScheduler).Warn(format, args...) }

func HostBridge(format string, args ...interface{})      { Get(CategoryHostBridge).Info(format, args...) }
func HostBridgeDebug(format string, args ...interface{}) { Get(CategoryHostBridge).Debug(format, args...) }
func HostBridgeWarn(format string, args ...interface{})  { Get(CategoryHostBridge).Warn(format, args...) }
func HostBridgeError(format string, args ...interface{}) { Get(CategoryHostBridge).Error(format, args...) }

// Timer helps measure operation duration for performance-sensitive paths
// (dispatch ranking, query materialization).
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold, else debug.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
