package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/diagxml"
	"github.com/csc-go/compiler/internal/lexer"
	"github.com/csc-go/compiler/internal/parser"
	"github.com/csc-go/compiler/internal/resolver"
	"github.com/csc-go/compiler/pkg/csc"
	"github.com/csc-go/compiler/pkg/token"
)

var (
	target     string
	debug      bool
	mainClass  string
	outPath    string
	references []string
	defines    []string
	xmlOut     bool
	quietStage string
)

var compileCmd = &cobra.Command{
	Use:   "compile SOURCE",
	Short: "compile a single source file to a bytecode assembly",
	Long:  "compile lexes, parses, resolves, and emits SOURCE through the RuntimeTypeFactory backend, mirroring the reference compiler's /target, /debug, /main, /out, /reference, /define, /xml, and /_Q flags.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&target, "target", "console", "output kind: console, windows, or library")
	compileCmd.Flags().BoolVar(&debug, "debug", false, "emit debug info")
	compileCmd.Flags().StringVar(&mainClass, "main", "", "class hosting the Main entry point")
	compileCmd.Flags().StringVar(&outPath, "out", "", "output assembly path")
	compileCmd.Flags().StringArrayVar(&references, "reference", nil, "referenced assembly (repeatable)")
	compileCmd.Flags().StringArrayVar(&defines, "define", nil, "preprocessor symbol (repeatable)")
	compileCmd.Flags().BoolVar(&xmlOut, "xml", false, "emit an XML dump of the diagnostics (no AST or symbol tables) alongside the output")
	compileCmd.Flags().StringVar(&quietStage, "_Q", "", "halt after a pipeline stage for debugging: Lexer, Parser, or Resolve")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyConfigDefaults(cmd, cfg)

	if target != "console" && target != "windows" && target != "library" {
		return &usageError{fmt.Sprintf("invalid /target %q: want console, windows, or library", target)}
	}

	sourcePath := args[0]
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return &usageError{fmt.Sprintf("reading %q: %v", sourcePath, err)}
	}
	src := string(data)

	if quietStage != "" {
		return runQuietStage(sourcePath, src, quietStage)
	}

	out := outPath
	if out == "" {
		out = defaultOutputPath(sourcePath, target)
	}

	diags := diag.NewSink()
	_, runErr := csc.Compile(src, csc.Options{
		FileName:     sourcePath,
		AssemblyName: strings.TrimSuffix(filepath.Base(out), filepath.Ext(out)),
		OutputPath:   out,
		MainClass:    mainClass,
	}, diags)
	if runErr != nil {
		return &internalError{runErr.Error()}
	}

	if xmlOut {
		xmlPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".xml"
		f, err := os.Create(xmlPath)
		if err != nil {
			return &internalError{fmt.Sprintf("creating %q: %v", xmlPath, err)}
		}
		defer f.Close()
		if err := diagxml.Write(f, diags); err != nil {
			return &internalError{err.Error()}
		}
	}

	if diags.HasErrors() {
		fmt.Fprint(os.Stderr, diags.Format())
		return &compileError{fmt.Sprintf("%d diagnostic(s)", len(diags.Diagnostics()))}
	}
	return nil
}

// applyConfigDefaults fills in from cfg every flag the user did not pass on
// the command line (its Changed is false), without overriding a flag the
// user passed explicitly.
func applyConfigDefaults(cmd *cobra.Command, cfg *fileConfig) {
	if cfg == nil {
		return
	}
	flags := cmd.Flags()
	if !flags.Changed("target") && cfg.Target != "" {
		target = cfg.Target
	}
	if !flags.Changed("debug") && cfg.Debug {
		debug = cfg.Debug
	}
	if !flags.Changed("main") && cfg.Main != "" {
		mainClass = cfg.Main
	}
	if !flags.Changed("out") && cfg.Out != "" {
		outPath = cfg.Out
	}
	if !flags.Changed("reference") && len(cfg.References) > 0 {
		references = cfg.References
	}
	if !flags.Changed("define") && len(cfg.Defines) > 0 {
		defines = cfg.Defines
	}
	if !flags.Changed("xml") && cfg.XML {
		xmlOut = cfg.XML
	}
}

// defaultOutputPath derives the output assembly name from the source file
// per spec §6: an exe for console/windows targets, a dll for library.
func defaultOutputPath(sourcePath, target string) string {
	ext := ".exe"
	if target == "library" {
		ext = ".dll"
	}
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	return base + ext
}

// runQuietStage implements /_Q: run the pipeline only through the named
// stage and report what it found, without emitting anything.
func runQuietStage(sourcePath, src, stage string) error {
	diags := diag.NewSink()
	l := lexer.New(sourcePath, src, diags)

	switch stage {
	case "Lexer":
		n := 0
		for {
			tok := l.NextToken()
			n++
			if tok.Type == token.EOF {
				break
			}
		}
		fmt.Printf("lexer: %d token(s), %d diagnostic(s)\n", n, len(diags.Diagnostics()))
		return nil
	case "Parser":
		l = lexer.New(sourcePath, src, diags)
		p := parser.New(l, diags)
		prog := p.Parse()
		fmt.Printf("parser: %d namespace(s), %d diagnostic(s)\n", len(prog.Namespaces), len(diags.Diagnostics()))
		return nil
	case "Resolve":
		l = lexer.New(sourcePath, src, diags)
		p := parser.New(l, diags)
		prog := p.Parse()
		if diags.HasErrors() {
			fmt.Printf("resolve: skipped, %d parse diagnostic(s)\n", len(diags.Diagnostics()))
			return nil
		}
		res := resolver.New(diags).Run(prog)
		fmt.Printf("resolve: %d type(s) resolved, %d diagnostic(s)\n", len(res.TypeSym)+len(res.EnumSym), len(diags.Diagnostics()))
		return nil
	default:
		return &usageError{fmt.Sprintf("invalid /_Q stage %q: want Lexer, Parser, or Resolve", stage)}
	}
}
