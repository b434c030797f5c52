package vm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coucya/rolscript/internal/compiler"
	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/parser"
	"github.com/coucya/rolscript/internal/vm"
)

// run parses, compiles and executes src as a top-level module body,
// mirroring the teacher's parse/compile/run test helper in
// internal/vm/vm_test.go.
func run(t *testing.T, src string) (*object.Runtime, object.Value) {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)

	code, err := compiler.Compile(prog)
	require.NoError(t, err)

	rt := object.NewRuntime(heap.DefaultAllocator{})
	v := vm.New(rt)
	m := rt.NewModule("<test>", nil)
	val, err := v.RunProgram(code, m)
	require.NoError(t, err)
	return rt, val
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"1 + 2", 3},
		{"2 * 3 + 4", 10},
		{"2 * (3 + 4)", 14},
		{"10 - 3 - 2", 5},
		{"2 ** 10", 1024},
		{"6 / 2", 3},
		{"7 % 2", 1},
		{"1 << 4", 16},
		{"256 >> 4", 16},
	}
	for _, c := range cases {
		_, val := run(t, c.src)
		i, ok := val.(*object.Int)
		require.True(t, ok, "expected Int for %q", c.src)
		require.Equal(t, c.want, i.Value, c.src)
	}
}

// TestDivisionExactnessDecidesIntVsFloat exercises spec.md §6's "/
// returns int when exact, else float" and §8's boundary behaviours for
// `/`, `**` and shifts.
func TestDivisionExactnessDecidesIntVsFloat(t *testing.T) {
	_, val := run(t, "6 / 2")
	i, ok := val.(*object.Int)
	require.True(t, ok, "exact quotient must stay Int")
	require.Equal(t, int64(3), i.Value)

	_, val = run(t, "7 / 2")
	f, ok := val.(*object.Float)
	require.True(t, ok, "inexact quotient must promote to Float")
	require.Equal(t, 3.5, f.Value)
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	prog, err := parser.ParseProgram("1 / 0")
	require.NoError(t, err)
	code, err := compiler.Compile(prog)
	require.NoError(t, err)
	rt := object.NewRuntime(heap.DefaultAllocator{})
	v := vm.New(rt)
	m := rt.NewModule("<test>", nil)
	_, err = v.RunProgram(code, m)
	require.Error(t, err, "1 / 0 must raise a Runtime error, not return +Inf")
}

func TestPowerWithNegativeExponentPromotesToFloat(t *testing.T) {
	_, val := run(t, "2 ** -1")
	f, ok := val.(*object.Float)
	require.True(t, ok, "a negative exponent must promote to Float")
	require.Equal(t, 0.5, f.Value)
}

func TestNegativeShiftCountIsRuntimeError(t *testing.T) {
	for _, src := range []string{"1 << -1", "1 >> -1"} {
		prog, err := parser.ParseProgram(src)
		require.NoError(t, err)
		code, err := compiler.Compile(prog)
		require.NoError(t, err)
		rt := object.NewRuntime(heap.DefaultAllocator{})
		v := vm.New(rt)
		m := rt.NewModule("<test>", nil)
		_, err = v.RunProgram(code, m)
		require.Error(t, err, "%q must raise a Runtime error for a negative shift count", src)
	}
}

func TestComparisons(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"1 < 2", true},
		{"2 < 1", false},
		{"2 <= 2", true},
		{"3 == 3", true},
		{"3 != 3", false},
		{"1 < 2 && 2 < 3", true},
		{"1 < 2 || 2 > 3", true},
		{"1 > 2 || 2 > 3", false},
	}
	for _, c := range cases {
		_, val := run(t, c.src)
		b, ok := val.(*object.Bool)
		require.True(t, ok, "expected Bool for %q", c.src)
		require.Equal(t, c.want, b.Value, c.src)
	}
}

func TestVariablesAndAssignment(t *testing.T) {
	_, val := run(t, `
		x = 1;
		x = x + 1;
		x = x + 1;
		x
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(3), i.Value)
}

func TestIfExpr(t *testing.T) {
	_, val := run(t, `
		x = 10;
		if (x > 5) { "big" } else { "small" }
	`)
	s, ok := val.(*object.String)
	require.True(t, ok)
	require.Equal(t, "big", s.Value)
}

func TestWhileLoop(t *testing.T) {
	_, val := run(t, `
		i = 0;
		sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		sum
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(10), i.Value)
}

func TestForLoopOverArray(t *testing.T) {
	_, val := run(t, `
		sum = 0;
		for (x : [1, 2, 3, 4]) {
			sum = sum + x;
		}
		sum
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(10), i.Value)
}

func TestFunctionAndClosure(t *testing.T) {
	_, val := run(t, `
		function make_adder(n) {
			function adder(x) {
				return x + n;
			}
			return adder;
		}
		add5 = make_adder(5);
		add5(10)
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(15), i.Value)
}

func TestRecursiveFunction(t *testing.T) {
	_, val := run(t, `
		function fact(n) {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
		fact(6)
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(720), i.Value)
}

func TestTypeWithMethod(t *testing.T) {
	_, val := run(t, `
		type Counter {
			function [new](start) {
				this.n = start;
			}
			function bump(amount) {
				this.n = this.n + amount;
				return this.n;
			}
		}
		c = Counter(0);
		c.bump(2);
		c.bump(3)
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(5), i.Value)
}

func TestPublicModuleAttribute(t *testing.T) {
	rt, val := run(t, `
		public x = 42;
		x
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(42), i.Value)

	m, ok := rt.Modules["<test>"]
	require.True(t, ok)
	attr, err := object.GetAttr(rt, m, "x")
	require.NoError(t, err)
	ai, ok := attr.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(42), ai.Value)
}

func TestArrayIndexAssign(t *testing.T) {
	_, val := run(t, `
		arr = [1, 2, 3];
		arr[1] = 99;
		arr[1]
	`)
	i, ok := val.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(99), i.Value)
}
