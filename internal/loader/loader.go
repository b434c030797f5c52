// Package loader implements the default filesystem-backed
// object.Loader (spec.md §4.8): canonical module names are
// slash-separated paths relative to a root directory, resolved to
// source files by probing config.SourceFileExtensions in order.
// Grounded on the teacher's internal/utils path-resolution helpers
// (ResolveImportPath/ExtractModuleName/GetModuleDir).
package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/coucya/rolscript/internal/compiler"
	"github.com/coucya/rolscript/internal/config"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/parser"
	"github.com/coucya/rolscript/internal/rerr"
)

// FS resolves and loads modules from a directory tree rooted at Root.
type FS struct {
	Root string
}

// NewFS builds an FS loader rooted at root.
func NewFS(root string) *FS {
	return &FS{Root: root}
}

// Normalize resolves name against the requester's own canonical name
// when name starts with "." (a relative import), mirroring the
// teacher's ResolveImportPath; an absolute dotted package name passes
// through unchanged.
func (f *FS) Normalize(requesterCanonicalName, name string) (string, error) {
	if name == "" {
		return "", rerr.New(rerr.Runtime, "empty module name")
	}
	if strings.HasPrefix(name, ".") {
		baseDir := moduleDir(requesterCanonicalName)
		if baseDir != "." && baseDir != "" {
			return filepath.ToSlash(filepath.Join(baseDir, name)), nil
		}
		return filepath.ToSlash(filepath.Clean(name)), nil
	}
	return filepath.ToSlash(filepath.Clean(name)), nil
}

// moduleDir returns the directory context for a canonical module name
// (the teacher's GetModuleDir): a name with no recognised source
// extension is itself treated as a directory.
func moduleDir(canonicalName string) string {
	if hasSourceExt(canonicalName) {
		return filepath.Dir(canonicalName)
	}
	return canonicalName
}

func hasSourceExt(name string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Load reads, parses and compiles canonicalName's source file,
// returning it wrapped as a zero-argument, zero-capture closure
// (spec.md §4.8 "a parsed-and-compiled top-level closure"); RunProgram
// binds `this` to the fresh Module object at call time.
func (f *FS) Load(rt *object.Runtime, canonicalName string) (object.Value, error) {
	path, err := f.resolvePath(canonicalName)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.Wrap(rerr.Runtime, err, "reading module %q", canonicalName)
	}
	prog, err := parser.ParseProgram(string(src))
	if err != nil {
		return nil, err
	}
	code, err := compiler.Compile(prog)
	if err != nil {
		return nil, err
	}
	return rt.NewClosure(code, nil), nil
}

func (f *FS) resolvePath(canonicalName string) (string, error) {
	base := filepath.Join(f.Root, filepath.FromSlash(canonicalName))
	for _, ext := range config.SourceFileExtensions {
		p := base + ext
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", rerr.New(rerr.Runtime, "module %q not found under %s", canonicalName, f.Root)
}
