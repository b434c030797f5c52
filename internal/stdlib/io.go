// Package stdlib implements the thin standard-library modules of
// SPEC_FULL.md §11: io, term, db, rpc and the ast debug dump. Each
// module is a plain *object.Module pre-populated with native
// functions and installed into the loader's module cache under a
// fixed canonical name, so `import "io"` etc. resolve without ever
// touching the filesystem loader.
package stdlib

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
)

var stdin = bufio.NewReader(os.Stdin)

// newIO builds the `io` module (SPEC_FULL.md §11.2): stdin/stdout,
// line-oriented CSV (grounded on the teacher's builtins_csv.go, which
// also reaches for the stdlib encoding/csv) and YAML encode/decode
// (grounded on the teacher's builtins_yaml.go).
func newIO(rt *object.Runtime) *object.Module {
	m := rt.NewModule("io", nil)
	set(rt, m, "write", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		for i, a := range args {
			if i > 0 {
				fmt.Print(" ")
			}
			s, err := object.Str(rt, a)
			if err != nil {
				return nil, err
			}
			fmt.Print(s)
		}
		return rt.Null(), nil
	})
	set(rt, m, "write_line", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		for i, a := range args {
			if i > 0 {
				fmt.Print(" ")
			}
			s, err := object.Str(rt, a)
			if err != nil {
				return nil, err
			}
			fmt.Print(s)
		}
		fmt.Println()
		return rt.Null(), nil
	})
	set(rt, m, "read_line", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		if len(args) != 0 {
			return nil, rerr.New(rerr.Type, "io.read_line expects 0 arguments, got %d", len(args))
		}
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return rt.Null(), nil
		}
		return rt.String(strings.TrimRight(line, "\r\n")), nil
	})
	set(rt, m, "csv_parse", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		s, err := expectString(args, 0, "io.csv_parse")
		if err != nil {
			return nil, err
		}
		reader := csv.NewReader(strings.NewReader(s))
		records, err := reader.ReadAll()
		if err != nil {
			return nil, rerr.Wrap(rerr.Runtime, err, "io.csv_parse")
		}
		rows := make([]object.Value, len(records))
		for i, row := range records {
			cells := make([]object.Value, len(row))
			for j, cell := range row {
				cells[j] = rt.String(cell)
			}
			rows[i] = rt.Array(cells)
		}
		return rt.Array(rows), nil
	})
	set(rt, m, "csv_write", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, rerr.New(rerr.Type, "io.csv_write expects 1 argument, got %d", len(args))
		}
		rows, ok := args[0].(*object.Array)
		if !ok {
			return nil, rerr.New(rerr.Type, "io.csv_write expects an array of arrays")
		}
		var sb strings.Builder
		w := csv.NewWriter(&sb)
		for _, rowVal := range rows.Elements {
			row, ok := rowVal.(*object.Array)
			if !ok {
				return nil, rerr.New(rerr.Type, "io.csv_write expects an array of arrays")
			}
			cells := make([]string, len(row.Elements))
			for j, c := range row.Elements {
				s, err := object.Str(rt, c)
				if err != nil {
					return nil, err
				}
				cells[j] = s
			}
			if err := w.Write(cells); err != nil {
				return nil, rerr.Wrap(rerr.Runtime, err, "io.csv_write")
			}
		}
		w.Flush()
		return rt.String(sb.String()), nil
	})
	set(rt, m, "yaml_decode", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		s, err := expectString(args, 0, "io.yaml_decode")
		if err != nil {
			return nil, err
		}
		var data any
		if err := yaml.Unmarshal([]byte(s), &data); err != nil {
			return nil, rerr.Wrap(rerr.Runtime, err, "io.yaml_decode")
		}
		return fromYAML(rt, data)
	})
	set(rt, m, "yaml_encode", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, rerr.New(rerr.Type, "io.yaml_encode expects 1 argument, got %d", len(args))
		}
		data, err := toYAML(rt, args[0])
		if err != nil {
			return nil, err
		}
		out, err := yaml.Marshal(data)
		if err != nil {
			return nil, rerr.Wrap(rerr.Runtime, err, "io.yaml_encode")
		}
		return rt.String(string(out)), nil
	})
	rt.MarkInitialized(m)
	return m
}

// fromYAML mirrors the teacher's inferFromYaml (builtins_yaml.go):
// yaml.v3 decodes integers as `int`, unlike encoding/json's float64.
func fromYAML(rt *object.Runtime, v any) (object.Value, error) {
	switch x := v.(type) {
	case nil:
		return rt.Null(), nil
	case bool:
		return rt.Bool(x), nil
	case int:
		return rt.Int(int64(x)), nil
	case int64:
		return rt.Int(x), nil
	case float64:
		return rt.Float(x), nil
	case string:
		return rt.String(x), nil
	case []any:
		elems := make([]object.Value, len(x))
		for i, e := range x {
			sv, err := fromYAML(rt, e)
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return rt.Array(elems), nil
	case map[string]any:
		mv := rt.Map()
		for k, e := range x {
			sv, err := fromYAML(rt, e)
			if err != nil {
				return nil, err
			}
			if err := object.SetItem(rt, mv, rt.String(k), sv); err != nil {
				return nil, err
			}
		}
		return mv, nil
	default:
		return nil, rerr.New(rerr.Type, "io.yaml_decode: unsupported YAML node %T", v)
	}
}

// toYAML converts a script Value into a plain Go value yaml.Marshal
// can encode, the inverse of fromYAML.
func toYAML(rt *object.Runtime, v object.Value) (any, error) {
	switch x := v.(type) {
	case *object.Null:
		return nil, nil
	case *object.Bool:
		return x.Value, nil
	case *object.Int:
		return x.Value, nil
	case *object.Float:
		return x.Value, nil
	case *object.String:
		return x.Value, nil
	case *object.Array:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			gv, err := toYAML(rt, e)
			if err != nil {
				return nil, err
			}
			out[i] = gv
		}
		return out, nil
	case *object.Map:
		out := map[string]any{}
		err := x.Each(func(k, v object.Value) error {
			ks, ok := k.(*object.String)
			if !ok {
				return rerr.New(rerr.Type, "io.yaml_encode: map keys must be strings")
			}
			gv, err := toYAML(rt, v)
			if err != nil {
				return err
			}
			out[ks.Value] = gv
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, rerr.New(rerr.Type, "io.yaml_encode: cannot encode value of type %T", v)
	}
}
