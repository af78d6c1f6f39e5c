package peg

import "testing"

// Function-terminal protocol (spec.md §4.5): success iff flag == true, or
// flag is absent/false and endPosition is nil or strictly > position.
func TestFunctionTerminalProtocol(t *testing.T) {
	cases := map[string]struct {
		fn      TerminalFunc
		wantOk  bool
		wantPos int
	}{
		"explicit true flag, no endPosition advances nothing but succeeds": {
			fn:      func(text string, pos, end int) (any, *int, any) { return "v", nil, true },
			wantOk:  true,
			wantPos: 3,
		},
		"nil flag with endPosition beyond pos succeeds": {
			fn:      func(text string, pos, end int) (any, *int, any) { return "v", IntPtr(pos + 2), nil },
			wantOk:  true,
			wantPos: 5,
		},
		"false flag with endPosition not beyond pos fails": {
			fn:      func(text string, pos, end int) (any, *int, any) { return nil, IntPtr(pos), false },
			wantOk:  false,
		},
		"string flag is a failure with string detail": {
			fn:      func(text string, pos, end int) (any, *int, any) { return nil, nil, "nope" },
			wantOk:  false,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := NewFunctionTerminal("f", tc.fn)
			res := evalFunctionTerminal(e, "hello", 3, 5)
			if res.IsOk() != tc.wantOk {
				t.Fatalf("IsOk() = %v, want %v (result: %+v)", res.IsOk(), tc.wantOk, res)
			}
			if tc.wantOk && res.Position != tc.wantPos {
				t.Fatalf("Position = %d, want %d", res.Position, tc.wantPos)
			}
		})
	}

	t.Run("string flag detail is carried on FailedParse", func(t *testing.T) {
		e := NewFunctionTerminal("f", func(text string, pos, end int) (any, *int, any) { return nil, nil, "custom reason" })
		res := evalFunctionTerminal(e, "hello", 0, 5)
		fp, ok := res.Kind().(*FailedParse)
		if !ok {
			t.Fatalf("expected *FailedParse, got %T", res.Kind())
		}
		if fp.Detail != "custom reason" {
			t.Fatalf("Detail = %v, want %q", fp.Detail, "custom reason")
		}
	})
}
