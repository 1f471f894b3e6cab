package logging

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errUnpairedKey stands in for the value of a trailing key passed without one.
var errUnpairedKey = fmt.Errorf("unpaired log key")

// impl fans entries out to its appenders. Subloggers and WithFields copies share the appender
// slice as it was when they were made.
type impl struct {
	name  string
	level AtomicLevel
	utc   bool

	fields    []zapcore.Field
	appenders []Appender
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

// Sublogger starts at the parent's current level but can be changed on its own afterwards.
func (imp *impl) Sublogger(subname string) Logger {
	child := imp.clone()
	child.level = NewAtomicLevelAt(imp.level.Get())
	if imp.name != "" {
		child.name = imp.name + "." + subname
	} else {
		child.name = subname
	}
	return child
}

// WithFields shares the parent's level, so a request logger follows SetLevel on the server logger.
func (imp *impl) WithFields(keysAndValues ...interface{}) Logger {
	child := imp.clone()
	child.fields = append(append(make([]zapcore.Field, 0, len(imp.fields)+len(keysAndValues)/2),
		imp.fields...), toFields(keysAndValues)...)
	return child
}

func (imp *impl) clone() *impl {
	return &impl{
		name:      imp.name,
		level:     imp.level,
		utc:       imp.utc,
		fields:    imp.fields,
		appenders: imp.appenders,
	}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

// logAt renders and writes an entry when level is enabled. It must be called directly by the
// exported level methods for the caller lookup to land on their caller.
func (imp *impl) logAt(level Level, render func() string, keysAndValues []interface{}) {
	if level < imp.level.Get() {
		return
	}
	msg := render()
	entry, fields := imp.newEntry(level, msg, keysAndValues)
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Write(entry, fields))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func (imp *impl) newEntry(level Level, msg string, keysAndValues []interface{}) (zapcore.Entry, []zapcore.Field) {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     callerOfLogger(),
	}
	if imp.utc {
		entry.Time = entry.Time.UTC()
	}
	fields := imp.fields
	if len(keysAndValues) > 0 {
		fields = append(append(make([]zapcore.Field, 0, len(imp.fields)+len(keysAndValues)/2),
			imp.fields...), toFields(keysAndValues)...)
	}
	return entry, fields
}

// toFields pairs up alternating keys and values. Keys are rendered with %v.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var value interface{} = errUnpairedKey
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		fields = append(fields, zap.Any(key, value))
	}
	return fields
}

func sprint(args []interface{}) func() string {
	return func() string { return fmt.Sprint(args...) }
}

func sprintf(template string, args []interface{}) func() string {
	return func() string { return fmt.Sprintf(template, args...) }
}

func constant(msg string) func() string {
	return func() string { return msg }
}

func (imp *impl) Debug(args ...interface{}) { imp.logAt(DEBUG, sprint(args), nil) }

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.logAt(DEBUG, sprintf(template, args), nil)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.logAt(DEBUG, constant(msg), keysAndValues)
}

func (imp *impl) Info(args ...interface{}) { imp.logAt(INFO, sprint(args), nil) }

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.logAt(INFO, sprintf(template, args), nil)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.logAt(INFO, constant(msg), keysAndValues)
}

func (imp *impl) Warn(args ...interface{}) { imp.logAt(WARN, sprint(args), nil) }

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.logAt(WARN, sprintf(template, args), nil)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.logAt(WARN, constant(msg), keysAndValues)
}

func (imp *impl) Error(args ...interface{}) { imp.logAt(ERROR, sprint(args), nil) }

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.logAt(ERROR, sprintf(template, args), nil)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.logAt(ERROR, constant(msg), keysAndValues)
}

// callerOfLogger returns the file and line that called a level method, e.g.
// "logging/impl_test.go:36". The frames skipped are callerOfLogger, newEntry, logAt and the level
// method.
func callerOfLogger() zapcore.EntryCaller {
	const skip = 4
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	caller := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
