// Command rolscript is the file-runner + REPL driver over the
// embedding API (SPEC_FULL.md §10), in the shape of the teacher's
// cmd/funxy/main.go: flag parsing via the standard flag package,
// mattn/go-isatty to decide whether to show a colored interactive
// prompt.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/coucya/rolscript/pkg/rolscript"
)

func main() {
	debug := flag.Bool("debug", false, "print VM trace diagnostics to stderr")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		runREPL(*debug)
		return
	}
	if err := runFile(args[0], *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFile(path string, debug bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	vm := rolscript.New(filepath.Dir(path))
	defer vm.Close()
	if debug {
		vm.SetTrace(func(msg string) { fmt.Fprintln(os.Stderr, "[trace]", msg) })
	}
	_, err = vm.EvalNamed(moduleNameOf(path), string(src))
	return err
}

func moduleNameOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

// runREPL reads stdin line by line, evaluating each line as a fresh
// script. Colored prompts only appear on a real terminal (spec.md
// §10 "mattn/go-isatty to decide whether to show a colored prompt").
func runREPL(debug bool) {
	vm := rolscript.New("")
	defer vm.Close()
	if debug {
		vm.SetTrace(func(msg string) { fmt.Fprintln(os.Stderr, "[trace]", msg) })
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	prompt := "> "
	if interactive {
		prompt = "\x1b[36mrol>\x1b[0m "
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print(prompt)
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		val, err := vm.Eval(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Printf("%v\n", val)
	}
}
