package logging

import "time"

// Package-level helpers for the hot categories, matching call sites like
// logging.Session("...") and logging.EngineDebug("...").

// Session logs at info level to the session category.
func Session(format string, args ...interface{}) { Get(CategorySession).Info(format, args...) }

// SessionDebug logs at debug level to the session category.
func SessionDebug(format string, args ...interface{}) { Get(CategorySession).Debug(format, args...) }

// Engine logs at info level to the engine category.
func Engine(format string, args ...interface{}) { Get(CategoryEngine).Info(format, args...) }

// EngineDebug logs at debug level to the engine category.
func EngineDebug(format string, args ...interface{}) { Get(CategoryEngine).Debug(format, args...) }

// EngineWarn logs at warn level to the engine category.
func EngineWarn(format string, args ...interface{}) { Get(CategoryEngine).Warn(format, args...) }

// Gateway logs at info level to the gateway category.
func Gateway(format string, args ...interface{}) { Get(CategoryGateway).Info(format, args...) }

// GatewayError logs at error level to the gateway category.
func GatewayError(format string, args ...interface{}) { Get(CategoryGateway).Error(format, args...) }

// StoreDebug logs at debug level to the store category.
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

// StoreWarn logs at warn level to the store category.
func StoreWarn(format string, args ...interface{}) { Get(CategoryStore).Warn(format, args...) }

// Timer measures the duration of an operation for performance logging.
type Timer struct {
	category Category
	name     string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(c Category, name string) *Timer {
	return &Timer{category: c, name: name, start: time.Now()}
}

// Stop logs the elapsed duration at debug level.
func (t *Timer) Stop() {
	Get(t.category).Debug("%s took %v", t.name, time.Since(t.start))
}
