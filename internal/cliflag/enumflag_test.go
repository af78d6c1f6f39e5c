package cliflag

import (
	"strings"
	"testing"
)

func TestEnumFlag(t *testing.T) {
	flag := NewEnumFlag("foo", []string{"foo", "bar", "baz"})

	if flag.String() != "foo" {
		t.Fatalf("expected default value to be foo but got: %v", flag.String())
	}

	if err := flag.Set("bar"); err != nil {
		t.Fatalf("unexpected error on set: %v", err)
	}
	if flag.String() != "bar" {
		t.Fatalf("expected value to be bar but got: %v", flag.String())
	}

	if !strings.Contains(flag.Type(), "foo,bar,baz") {
		t.Fatalf("expected flag type to contain foo,bar,baz but got: %v", flag.Type())
	}

	if err := flag.Set("deadbeef"); err == nil {
		t.Fatalf("expected error from set")
	}
}
