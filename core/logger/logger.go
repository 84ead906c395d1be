// Package logger defines the logging contract used across the decision
// pipeline. The concrete implementation lives in infra/logger so that core
// packages stay free of output concerns.
package logger

// Logger exposes levelled logging. The *f variants format like fmt.Printf;
// the *w variants attach structured fields, which is what the classifier and
// dispatcher use to record decision context.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
