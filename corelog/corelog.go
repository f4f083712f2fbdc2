// Package corelog is the ambient logging facade used across the object
// and encoding core, shaped after pdfcpu's pkg/log: a small Logger
// capability interface plus package-level named loggers that default to
// discarding output until a caller wires a backend in.
package corelog

import "go.uber.org/zap"

// Logger is the capability every backend must provide. Modeled directly
// on pdfcpu's log.Logger interface so call sites read the same way.
type Logger interface {
	Printf(format string, args ...interface{})
	Println(args ...interface{})
}

// Trace, Debug and Info are the three logging categories. Within this
// module only the LZW encoder logs, through Trace; Debug and Info have
// no call sites here. All three start out nil (disabled), matching pdfcpu's default of no
// logging until SetDefaultLoggers or a custom backend is installed.
var (
	Trace Logger
	Debug Logger
	Info  Logger
)

// zapLogger adapts *zap.SugaredLogger to the Logger capability.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (z zapLogger) Printf(format string, args ...interface{}) { z.s.Infof(format, args...) }
func (z zapLogger) Println(args ...interface{})               { z.s.Info(args...) }

// SetDefaultLoggers installs a production zap.Logger for Trace, Debug,
// and Info.
func SetDefaultLoggers() error {
	l, err := zap.NewProduction()
	if err != nil {
		return err
	}
	s := l.Sugar()
	Trace = zapLogger{s}
	Debug = zapLogger{s}
	Info = zapLogger{s}
	return nil
}

// DisableLoggers turns every package-level logger back off.
func DisableLoggers() {
	Trace, Debug, Info = nil, nil, nil
}
