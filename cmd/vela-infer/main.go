package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/velalang/vela/internal/config"
	"github.com/velalang/vela/internal/ir"
	"github.com/velalang/vela/internal/pipeline"
	"github.com/velalang/vela/internal/types"
)

const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
)

func main() {
	var (
		outPath    = flag.String("o", "", "write the typed-program bundle to this path")
		configPath = flag.String("config", "", "path to vela.yaml (default: search upward from the input file)")
		trace      = flag.Bool("trace", false, "print fixpoint iteration summaries")
		maxIter    = flag.Int("max-iterations", 0, "override the fixpoint iteration bound")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vela-infer [flags] <program.yaml>\n\n")
		fmt.Fprintf(os.Stderr, "Runs type inference over a lowered program and prints the result.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	opts, err := loadOptions(inputPath, *configPath)
	if err != nil {
		fail(err)
	}
	if *trace {
		opts.Trace = true
	}
	if *maxIter > 0 {
		opts.MaxIterations = *maxIter
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fail(err)
	}
	prog, err := ir.DecodeProgram(data)
	if err != nil {
		fail(err)
	}

	ctx := pipeline.Default().Run(pipeline.NewContext(prog, opts, inputPath))
	for _, e := range ctx.Errors {
		fmt.Fprintln(os.Stderr, "error:", e)
	}
	if len(ctx.Errors) > 0 {
		os.Exit(1)
	}

	printReport(ctx)

	if *outPath != "" {
		bundleData, err := ctx.Bundle.Serialize()
		if err != nil {
			fail(err)
		}
		path := *outPath
		if filepath.Ext(path) == "" {
			path += config.BundleFileExt
		}
		if err := os.WriteFile(path, bundleData, 0o644); err != nil {
			fail(err)
		}
		fmt.Printf("wrote %s (%d bytes, build %s)\n", path, len(bundleData), ctx.Bundle.BuildID)
	}
}

func loadOptions(inputPath, configPath string) (config.Options, error) {
	if configPath != "" {
		return config.LoadOptions(configPath)
	}
	found, err := config.FindOptions(filepath.Dir(inputPath))
	if err != nil || found == "" {
		return config.DefaultOptions(), err
	}
	return config.LoadOptions(found)
}

// printReport renders the inference result: function signatures with local
// types, global types, and the method table ordered by specificity.
func printReport(ctx *pipeline.Context) {
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	paint := func(color, s string) string {
		if !useColor {
			return s
		}
		return color + s + colorReset
	}

	fmt.Println(paint(colorBold, "Functions:"))
	for _, fi := range ctx.Typed.Functions {
		params := make([]string, len(fi.Sig.Params))
		for i, name := range fi.Sig.Params {
			params[i] = name + " :: " + paint(colorCyan, typeLabel(fi.Sig.Types[i]))
		}
		fmt.Printf("  %s(%s) -> %s\n",
			fi.Fn.Name, strings.Join(params, ", "), paint(colorCyan, typeLabel(fi.Sig.Return)))
		for _, name := range sortedKeys(fi.Locals) {
			fmt.Printf("    %s %s :: %s\n",
				paint(colorGray, "local"), name, typeLabel(fi.Locals[name]))
		}
	}

	if len(ctx.Typed.Globals) > 0 {
		fmt.Println(paint(colorBold, "Globals:"))
		for _, name := range sortedKeys(ctx.Typed.Globals) {
			fmt.Printf("  %s :: %s\n", name, paint(colorCyan, typeLabel(ctx.Typed.Globals[name])))
		}
	}

	if ctx.Methods.Names() > 0 {
		fmt.Println(paint(colorBold, "Methods:"))
		names := make(map[string]bool)
		for _, fi := range ctx.Typed.Functions {
			if names[fi.Fn.Name] {
				continue
			}
			names[fi.Fn.Name] = true
			for _, c := range ctx.Methods.Candidates(fi.Fn.Name) {
				sig := make([]string, len(c.Params))
				for i, p := range c.Params {
					sig[i] = typeLabel(p)
				}
				fmt.Printf("  %s(%s) %s\n", c.Name, strings.Join(sig, ", "),
					paint(colorGray, fmt.Sprintf("specificity %d", c.Specificity)))
			}
		}
	}
}

func typeLabel(t types.Type) string {
	if t == nil {
		return "Any"
	}
	return t.String()
}

func sortedKeys(m map[string]types.Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "vela-infer:", err)
	os.Exit(1)
}
