package stdlib

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/width"

	"github.com/coucya/rolscript/internal/object"
)

// newTerm builds the `term` module (SPEC_FULL.md §11.3): TTY
// detection the same way the teacher's builtins_term.go gates ANSI
// output, and display-width measurement for column alignment of
// East-Asian wide runes.
func newTerm(rt *object.Runtime) *object.Module {
	m := rt.NewModule("term", nil)
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	set(rt, m, "is_tty", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		return rt.Bool(isTTY), nil
	})
	set(rt, m, "width", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		s, err := expectString(args, 0, "term.width")
		if err != nil {
			return nil, err
		}
		total := 0
		for _, r := range s {
			p := width.LookupRune(r)
			switch p.Kind() {
			case width.EastAsianWide, width.EastAsianFullwidth:
				total += 2
			default:
				total += 1
			}
		}
		return rt.Int(int64(total)), nil
	})
	set(rt, m, "fg", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		code, err := expectInt(args, 0, "term.fg")
		if err != nil {
			return nil, err
		}
		s, err := expectString(args, 1, "term.fg")
		if err != nil {
			return nil, err
		}
		if !isTTY {
			return rt.String(s), nil
		}
		return rt.String(colorize(code, s)), nil
	})
	rt.MarkInitialized(m)
	return m
}

func colorize(code int64, s string) string {
	return "\x1b[38;5;" + strconv.FormatInt(code, 10) + "m" + s + "\x1b[0m"
}
