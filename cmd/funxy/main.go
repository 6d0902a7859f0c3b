// Command funxy is the compiler driver: it reads one or more source
// files, type-checks and stages them, and emits or runs the resulting
// JavaScript.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/typeforge/tfc/internal/checker"
	"github.com/typeforge/tfc/internal/cluster"
	"github.com/typeforge/tfc/internal/clustercache"
	"github.com/typeforge/tfc/internal/config"
	"github.com/typeforge/tfc/internal/diag"
	"github.com/typeforge/tfc/internal/frontend"
	"github.com/typeforge/tfc/internal/jsprint"
)

// cacheAdapter satisfies cluster.Cache over a *clustercache.Cache,
// translating its Entry-shaped Get/Put into cluster.Rewrite's bare
// holes/mapping pair. A nil *clustercache.Cache (cache disabled, or
// failed to open) degrades to an always-miss cache, since
// (*clustercache.Cache).Get/Put are themselves nil-receiver safe.
type cacheAdapter struct {
	c *clustercache.Cache
}

func (a cacheAdapter) Get(signature string) ([]cluster.Path, []int, bool) {
	entry, ok := a.c.Get(signature)
	if !ok {
		return nil, nil, false
	}
	return entry.Holes, entry.Mapping, true
}

func (a cacheAdapter) Put(signature string, holes []cluster.Path, mapping []int) {
	a.c.Put(signature, clustercache.Entry{Holes: holes, Mapping: mapping})
}

const (
	exitOK        = 0
	exitUserError = 1
	exitUsage     = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitUsage
	}

	switch args[0] {
	case "compile":
		return runCompile(args[1:])
	case "check":
		return runCheck(args[1:])
	case "run":
		return runRun(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "funxy: unknown subcommand %q\n", args[0])
		usage()
		return exitUsage
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: funxy <compile|check|run> [-v] [-o <out>] <file> [<file>...]")
}

type options struct {
	verbose bool
	out     string
	files   []string
}

func parseOptions(args []string, allowOut bool) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v", "-verbose":
			opts.verbose = true
		case "-o":
			if !allowOut {
				return opts, fmt.Errorf("-o is only valid with compile")
			}
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("-o requires an argument")
			}
			opts.out = args[i]
		default:
			opts.files = append(opts.files, args[i])
		}
	}
	if len(opts.files) == 0 {
		return opts, fmt.Errorf("no input files given")
	}
	if opts.out != "" && len(opts.files) != 1 {
		return opts, fmt.Errorf("-o requires exactly one input file")
	}
	return opts, nil
}

func colorize() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func runCompile(args []string) int {
	opts, err := parseOptions(args, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy:", err)
		usage()
		return exitUsage
	}
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy: loading config:", err)
		return exitUserError
	}

	results, ok := compileFiles(opts.files, cfg, opts.verbose)
	if !ok {
		return exitUserError
	}

	for i, js := range results {
		if opts.out != "" {
			if err := os.WriteFile(opts.out, []byte(js), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, "funxy: writing output:", err)
				return exitUserError
			}
			continue
		}
		if len(results) > 1 {
			fmt.Printf("// %s\n", opts.files[i])
		}
		fmt.Print(js)
	}
	return exitOK
}

func runCheck(args []string) int {
	opts, err := parseOptions(args, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy:", err)
		usage()
		return exitUsage
	}
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy: loading config:", err)
		return exitUserError
	}
	if _, ok := compileFiles(opts.files, cfg, opts.verbose); !ok {
		return exitUserError
	}
	return exitOK
}

func runRun(args []string) int {
	opts, err := parseOptions(args, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy:", err)
		usage()
		return exitUsage
	}
	if len(opts.files) != 1 {
		fmt.Fprintln(os.Stderr, "funxy: run takes exactly one file")
		return exitUsage
	}
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy: loading config:", err)
		return exitUserError
	}
	results, ok := compileFiles(opts.files, cfg, opts.verbose)
	if !ok {
		return exitUserError
	}

	nodePath, err := exec.LookPath("node")
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy: run requires node on PATH:", err)
		return exitUserError
	}
	tmp, err := os.CreateTemp("", "funxy-run-*.js")
	if err != nil {
		fmt.Fprintln(os.Stderr, "funxy: creating temp file:", err)
		return exitUserError
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(results[0]); err != nil {
		fmt.Fprintln(os.Stderr, "funxy: writing temp file:", err)
		return exitUserError
	}
	tmp.Close()

	cmd := exec.Command(nodePath, tmp.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return exitUserError
	}
	return exitOK
}

// compileFiles runs parse -> check -> stage -> print over files
// concurrently, one evaluator per file per §5, fanning out with errgroup.
// A failure does not stop the other files' compilations, which run to
// completion; Wait reports the first error. It returns the rendered JS for
// every file in input order, or ok=false if any file failed (the
// failure's diagnostic is already printed to stderr by then).
func compileFiles(files []string, cfg config.Config, verbose bool) ([]string, bool) {
	cache, err := clustercache.Open(cfg.CachePath)
	if err != nil || !cfg.CacheEnabled {
		// A cache we can't open, or that the config disabled, degrades to
		// "no cache" per §4.11; it is never a reason to fail a compile.
		if cache != nil {
			cache.Close()
		}
		cache = nil
	}
	defer cache.Close()

	results := make([]string, len(files))
	var g errgroup.Group
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			js, usedFuel, err := compileOne(f, cfg, cache)
			if err != nil {
				printDiagnostic(f, err)
				return err
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "funxy: %s: used %s of %s steps\n",
					f, humanize.Comma(int64(usedFuel)), humanize.Comma(int64(cfg.Fuel)))
			}
			results[i] = js
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false
	}
	return results, true
}

func compileOne(file string, cfg config.Config, cache *clustercache.Cache) (js string, usedFuel int, err error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return "", 0, err
	}
	prog, err := frontend.Parse(file, string(src))
	if err != nil {
		return "", 0, err
	}

	c := checker.New(cfg.Fuel)
	checked, err := c.Check(prog)
	if err != nil {
		return "", 0, err
	}

	residual, err := cluster.Rewrite(checked.Residual, cacheAdapter{cache})
	if err != nil {
		return "", 0, err
	}

	return jsprint.Program(residual), cfg.Fuel - c.Ev.RemainingFuel(), nil
}

func printDiagnostic(file string, err error) {
	if dg, ok := err.(*diag.Diagnostic); ok {
		_ = colorize() // reserved for ANSI wrapping; Render itself is plain
		src, _ := os.ReadFile(file)
		fmt.Fprintln(os.Stderr, diag.Render(dg, string(src)))
		return
	}
	fmt.Fprintf(os.Stderr, "funxy: %s: %v\n", file, err)
}
