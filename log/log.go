/*
 * jacovm - A Java virtual machine core
 * Package log exposes java.util.logging-style level names (SEVERE,
 * WARNING, INFO, FINE, FINEST) as the public API, and backs it with
 * github.com/sirupsen/logrus so formatting, timestamps, and output
 * routing are not hand rolled.
 */
package log

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Level is one of the java.util.logging-flavored severities used across
// the VM's call sites (log.Log(msg, log.FINE) etc.).
type Level int

const (
	SEVERE Level = iota
	WARNING
	INFO
	CLASS
	FINE
	FINEST
)

var levelToLogrus = map[Level]logrus.Level{
	SEVERE:  logrus.ErrorLevel,
	WARNING: logrus.WarnLevel,
	INFO:    logrus.InfoLevel,
	CLASS:   logrus.InfoLevel,
	FINE:    logrus.DebugLevel,
	FINEST:  logrus.TraceLevel,
}

var (
	logger   = logrus.New()
	initOnce sync.Once
)

// Init sets up the default formatter; call once at VM startup. Safe to
// call more than once (idempotent).
func Init() {
	initOnce.Do(func() {
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
			DisableColors:    true,
		})
		logger.SetLevel(logrus.InfoLevel)
	})
}

// SetLogLevel changes the minimum level that will be emitted.
func SetLogLevel(level Level) error {
	lvl, ok := levelToLogrus[level]
	if !ok {
		return ErrInvalidLogLevel
	}
	logger.SetLevel(lvl)
	return nil
}

// ErrInvalidLogLevel is returned by SetLogLevel for an out-of-range Level.
var ErrInvalidLogLevel = errors.New("log: invalid log level")

// Log emits msg at level and returns an error only if the level is invalid.
func Log(msg string, level Level) error {
	lvl, ok := levelToLogrus[level]
	if !ok {
		return ErrInvalidLogLevel
	}
	logger.Log(lvl, msg)
	return nil
}
