// Package cliflag provides small pflag.Value implementations shared by the
// esrap CLI's subcommands.
package cliflag

import (
	"fmt"
	"strings"
)

// EnumFlag implements pflag.Value so a flag only accepts one of a fixed set
// of string values, reporting the allowed set on mismatch rather than
// silently accepting anything.
type EnumFlag struct {
	value string
	vs    []string
}

// NewEnumFlag returns an EnumFlag defaulting to defaultValue, accepting any
// of vs.
func NewEnumFlag(defaultValue string, vs []string) *EnumFlag {
	return &EnumFlag{value: defaultValue, vs: vs}
}

func (f *EnumFlag) String() string {
	if f == nil {
		return ""
	}
	return f.value
}

func (f *EnumFlag) Set(s string) error {
	for _, v := range f.vs {
		if v == s {
			f.value = s
			return nil
		}
	}
	return fmt.Errorf("invalid value %q, must be one of [%s]", s, strings.Join(f.vs, ", "))
}

func (f *EnumFlag) Type() string {
	return strings.Join(f.vs, ",")
}
