package ext

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
)

// hostFunc is a statically-known Go function this module knows how to
// wrap as a native script function. The registry stands in for the
// teacher's reflect-driven go/packages introspection: rather than
// generating and compiling binding code for an arbitrary import path,
// each entry here is a hand-written adapter for one concrete stdlib
// of the domain stack (SPEC_FULL.md §11.1).
type hostFunc func(rt *object.Runtime, args []object.Value) (object.Value, error)

var registry = map[string]map[string]hostFunc{
	"github.com/google/uuid": {
		"New": func(rt *object.Runtime, args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return nil, rerr.New(rerr.Type, "uuid.new expects 0 arguments, got %d", len(args))
			}
			return rt.String(uuid.New().String()), nil
		},
		"Parse": func(rt *object.Runtime, args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, rerr.New(rerr.Type, "uuid.parse expects 1 argument, got %d", len(args))
			}
			s, ok := args[0].(*object.String)
			if !ok {
				return nil, rerr.New(rerr.Type, "uuid.parse expects a string argument")
			}
			id, err := uuid.Parse(s.Value)
			if err != nil {
				return nil, rerr.Wrap(rerr.Runtime, err, "uuid.parse")
			}
			return rt.String(id.String()), nil
		},
	},
	"github.com/dustin/go-humanize": {
		"Bytes": func(rt *object.Runtime, args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, rerr.New(rerr.Type, "fmt.bytes expects 1 argument, got %d", len(args))
			}
			n, ok := args[0].(*object.Int)
			if !ok {
				return nil, rerr.New(rerr.Type, "fmt.bytes expects an int argument")
			}
			return rt.String(humanize.Bytes(uint64(n.Value))), nil
		},
		"Comma": func(rt *object.Runtime, args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return nil, rerr.New(rerr.Type, "fmt.comma expects 1 argument, got %d", len(args))
			}
			n, ok := args[0].(*object.Int)
			if !ok {
				return nil, rerr.New(rerr.Type, "fmt.comma expects an int argument")
			}
			return rt.String(humanize.Comma(n.Value)), nil
		},
	},
}

// DefaultManifest is the manifest shipped with rolscript, naming the
// two host libraries SPEC_FULL.md §11.1 binds by default.
const DefaultManifest = `
deps:
  - pkg: github.com/google/uuid
    as: uuid
    bind:
      - func: New
        as: new
      - func: Parse
        as: parse
  - pkg: github.com/dustin/go-humanize
    as: fmt
    bind:
      - func: Bytes
        as: bytes
      - func: Comma
        as: comma
`

// Install builds one Module value per Dep in cfg and installs it into
// rt's globals under Dep.As, ready for `import` or direct global
// lookup. Each Module is also registered in the module cache under
// Dep.Pkg by NewModule, so it is pre-populated rather than lazily
// loaded through a loader.
func Install(rt *object.Runtime, cfg *Config) error {
	for _, dep := range cfg.Deps {
		funcs, ok := registry[dep.Pkg]
		if !ok {
			return rerr.New(rerr.Runtime, "ext: no binding registry for package %q", dep.Pkg)
		}
		mod := rt.NewModule(dep.Pkg, nil)
		for _, bind := range dep.Bind {
			hf, ok := funcs[bind.Func]
			if !ok {
				return rerr.New(rerr.Runtime, "ext: package %q has no bindable func %q", dep.Pkg, bind.Func)
			}
			fn := rt.NewNativeFunction(hf)
			if err := object.SetAttr(rt, mod, bind.As, fn); err != nil {
				return err
			}
		}
		rt.MarkInitialized(mod)
		rt.Globals[dep.As] = mod
	}
	return nil
}
