package log

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
)

func getLogger(w io.Writer) Logger {
	logger := New()
	logger.SetOutput(w)
	logger.SetJSONFormatter()
	return logger
}

func assertResult(t *testing.T, actual, expected any) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	var fields Fields

	logger := getLogger(&buf)
	logger.Info("hello")

	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertResult(t, fields["level"], "info")
	assertResult(t, fields["msg"], "hello")
}

func TestDebugRequiresLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := getLogger(&buf)

	logger.Debugf("hello %v", "world")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be suppressed at default Info level, got %q", buf.String())
	}

	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	logger.Debugf("hello %v", "world")

	var fields Fields
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertResult(t, fields["level"], "debug")
	assertResult(t, fields["msg"], "hello world")
}

func TestSetLevelRejectsUnknownLevel(t *testing.T) {
	logger := New()
	if err := logger.SetLevel("not-a-level"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestWithFieldIncludesKey(t *testing.T) {
	var buf bytes.Buffer
	var fields Fields

	logger := getLogger(&buf)
	logger.WithField("rule", "digit").Info("entered")

	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertResult(t, fields["rule"], "digit")
}

func TestAsPegLoggerSatisfiesMinimalInterface(t *testing.T) {
	var buf bytes.Buffer
	logger := getLogger(&buf)
	pl := AsPegLogger(logger)

	pl.Warnf("shadowed alternative %q", "foobar")
	if buf.Len() == 0 {
		t.Fatalf("expected AsPegLogger's Warnf to reach the underlying logger")
	}
}
