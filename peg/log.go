package peg

// Logger is the minimal logging surface the engine calls into for
// left-recursion grow-loop tracing. It is satisfied by
// github.com/mister-walter/esrap/log.Logger (a logrus wrapper); engines
// built without a logger attached pay nothing for it.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
