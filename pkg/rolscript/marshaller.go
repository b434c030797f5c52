package rolscript

import (
	"reflect"

	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
)

// Marshaller converts between script Values and Go values via
// reflect, grounded on the teacher's pkg/embed/marshaller.go.
type Marshaller struct{}

func NewMarshaller() *Marshaller { return &Marshaller{} }

// ToValue converts a Go value into a script Value.
func (m *Marshaller) ToValue(rt *object.Runtime, v any) (object.Value, error) {
	if v == nil {
		return rt.Null(), nil
	}
	switch x := v.(type) {
	case object.Value:
		return x, nil
	case bool:
		return rt.Bool(x), nil
	case string:
		return rt.String(x), nil
	case int:
		return rt.Int(int64(x)), nil
	case int32:
		return rt.Int(int64(x)), nil
	case int64:
		return rt.Int(x), nil
	case float32:
		return rt.Float(float64(x)), nil
	case float64:
		return rt.Float(x), nil
	case []any:
		elems := make([]object.Value, len(x))
		for i, e := range x {
			sv, err := m.ToValue(rt, e)
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return rt.Array(elems), nil
	case map[string]any:
		mv := rt.Map()
		for k, e := range x {
			sv, err := m.ToValue(rt, e)
			if err != nil {
				return nil, err
			}
			if err := object.SetItem(rt, mv, rt.String(k), sv); err != nil {
				return nil, err
			}
		}
		return mv, nil
	default:
		return nil, rerr.New(rerr.Type, "cannot convert Go value of type %T to a script value", v)
	}
}

// FromValue converts a script Value into its natural Go
// representation (string, int64, float64, bool, []any, nil).
func (m *Marshaller) FromValue(v object.Value) (any, error) {
	if v == nil {
		return nil, nil
	}
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
			gv, err := m.FromValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = gv
		}
		return out, nil
	case *object.Tuple:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			gv, err := m.FromValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = gv
		}
		return out, nil
	default:
		return v, nil
	}
}

// FromValueAs converts v to a Go value assignable to target, used by
// the native-binding call path where the target parameter type is
// known ahead of time (mirrors the teacher's targetType-aware
// FromValue overload).
func (m *Marshaller) FromValueAs(v object.Value, target reflect.Type) (any, error) {
	gv, err := m.FromValue(v)
	if err != nil {
		return nil, err
	}
	if gv == nil {
		return reflect.Zero(target).Interface(), nil
	}
	rv := reflect.ValueOf(gv)
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface(), nil
	}
	return gv, nil
}
