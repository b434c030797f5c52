package stdlib

import (
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
)

// set installs a native function as an attribute of a module, the
// same SetAttr call compileTypeMember's named-method path uses for
// dynamic types, applied here to the statically-built stdlib modules.
func set(rt *object.Runtime, m *object.Module, name string, fn object.NativeFunc) {
	if err := object.SetAttr(rt, m, name, rt.NewNativeFunction(fn)); err != nil {
		panic(err)
	}
}

func expectString(args []object.Value, i int, who string) (string, error) {
	if i >= len(args) {
		return "", rerr.New(rerr.Type, "%s expects at least %d arguments, got %d", who, i+1, len(args))
	}
	s, ok := args[i].(*object.String)
	if !ok {
		return "", rerr.New(rerr.Type, "%s expects a string argument", who)
	}
	return s.Value, nil
}

func expectInt(args []object.Value, i int, who string) (int64, error) {
	if i >= len(args) {
		return 0, rerr.New(rerr.Type, "%s expects at least %d arguments, got %d", who, i+1, len(args))
	}
	n, ok := args[i].(*object.Int)
	if !ok {
		return 0, rerr.New(rerr.Type, "%s expects an int argument", who)
	}
	return n.Value, nil
}

// Install registers every stdlib module (SPEC_FULL.md §11.2-11.6) into
// rt's module cache so `import "io"` etc. resolve to a pre-populated
// Module rather than going through the filesystem Loader.
func Install(rt *object.Runtime) {
	newIO(rt)
	newTerm(rt)
	newDB(rt)
	newRPC(rt)
	newAST(rt)
}
