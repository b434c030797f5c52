package object

import "github.com/coucya/rolscript/internal/rerr"

func unsupportedConcat(a, b Value) error {
	return rerr.Unsupported("+", TypeOf(a).Name, TypeOf(b).Name)
}

func unsupportedIndex(self Value) error {
	return rerr.Unsupported("[]", TypeOf(self).Name)
}

func indexOutOfRange(i, n int64) error {
	return rerr.New(rerr.OutOfRange, "index %d out of range for length %d", i, n)
}

func rerrKeyError(key Value) error {
	return rerr.New(rerr.OutOfRange, "key not found: %q", TypeOf(key).Name)
}

func rerrNoAttr(owner, name string) error {
	return rerr.Runtimef("no attribute %q on %q", name, owner)
}

func rerrArgCount(name string, want, got int) error {
	return rerr.New(rerr.Type, "%s expects %d argument(s), got %d", name, want, got)
}
