package logs

import (
	"io"
	"log"
)

type LoggerOption func(*log.Logger) *log.Logger

// ByLogger derives a logger from l with options.
//
// Options may modify the given logger. Pass Copied() first to keep l as it is.
func ByLogger(l *log.Logger, opt ...LoggerOption) *log.Logger {
	if l == nil {
		l = Discard()
	}
	for _, o := range opt {
		l = o(l)
	}
	return l
}

func Copied() LoggerOption {
	return func(l *log.Logger) *log.Logger {
		return log.New(l.Writer(), l.Prefix(), l.Flags())
	}
}

func WithPrefix(pre string) LoggerOption {
	return func(l *log.Logger) *log.Logger {
		l.SetPrefix(pre)
		return l
	}
}

// Discard returns a logger writing nothing.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
