// Package clog provides the logging facade used by every package in loom.
//
// It mirrors cayley's clog package: callers log through a small interface
// rather than a concrete logging package, and verbosity is controlled with
// a simple integer level instead of a configuration object threaded through
// every constructor.
package clog

import "github.com/golang/glog"

// Logger is the clog logging interface. The default implementation forwards
// to glog; tests can install a recording Logger with SetLogger.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type glogLogger struct{}

func (glogLogger) Infof(format string, args ...interface{})    { glog.Infof(format, args...) }
func (glogLogger) Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func (glogLogger) Errorf(format string, args ...interface{})   { glog.Errorf(format, args...) }

var logger Logger = glogLogger{}

// SetLogger installs a custom Logger, replacing the glog-backed default.
func SetLogger(l Logger) {
	if l == nil {
		l = glogLogger{}
	}
	logger = l
}

var verbosity int

// V reports whether the current clog verbosity is at or above level.
func V(level int) bool { return verbosity >= level }

// SetV sets the clog verbosity level.
func SetV(level int) { verbosity = level }

// Infof logs an informational message.
func Infof(format string, args ...interface{}) { logger.Infof(format, args...) }

// Warningf logs a warning message.
func Warningf(format string, args ...interface{}) { logger.Warningf(format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
