package main

import (
	"github.com/mister-walter/esrap/internal/tracer"
	esraplog "github.com/mister-walter/esrap/log"
	"github.com/mister-walter/esrap/peg"
)

// installTracing turns on tracing for every rule currently attached to reg
// and installs a fresh tracer.Session as its hooks, returning the session
// so the caller can drain its entries after the parse completes.
func installTracing(reg *peg.Registry, logger esraplog.Logger) *tracer.Session {
	session := tracer.NewSession(logger)
	reg.SetHooks(session)
	reg.EnableTraceAll(true)
	return session
}
