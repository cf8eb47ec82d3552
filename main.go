package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"logo_go/pkg/analysis"
	"logo_go/pkg/codegen"
	"logo_go/pkg/config"
	"logo_go/pkg/draw"
	"logo_go/pkg/eval"
	"logo_go/pkg/logo"
	"logo_go/pkg/parser"
)

var (
	outputFile = flag.String("o", "", "Output SVG file (default: <source>.svg, or stdout with -e)")
	evalExpr   = flag.String("e", "", "Run program text from the command line")
	configFile = flag.String("config", "", "YAML configuration file")
	seed       = flag.Uint64("seed", 0, "Seed for pick and random (default: from config, else random)")
	checkOnly  = flag.Bool("check", false, "Check the program without running it")
	verbose    = flag.Bool("v", false, "Verbose output")
	locale     = flag.String("lang", "en", "Language tag used to format the run summary")
)

const historyFile = ".logo_history"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Logo - turtle graphics to SVG\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <source> [destination]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s square.logo square.svg            # Render a file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -e 'repeat 4 [ fd 100 rt 90 ]'    # Render to stdout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -check spiral.logo                # Static check only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s                                   # Interactive REPL\n", os.Args[0])
	}
	flag.Parse()
	os.Exit(run())
}

func run() int {
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg = cfg.WithSeed(*seed)
		}
	})

	var input, source, destination string
	switch {
	case *evalExpr != "":
		input = *evalExpr
		if flag.NArg() > 0 {
			destination = flag.Arg(0)
		}
	case flag.NArg() > 0:
		source = flag.Arg(0)
		data, err := os.ReadFile(source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			return 1
		}
		input = string(data)
		if flag.NArg() > 1 {
			destination = flag.Arg(1)
		} else {
			destination = strings.TrimSuffix(source, filepath.Ext(source)) + ".svg"
		}
	default:
		return runREPL(cfg, logger)
	}
	if *outputFile != "" {
		destination = *outputFile
	}

	if *checkOnly {
		return check(input)
	}

	res, err := logo.Run(context.Background(), input, cfg, logo.WithLogger(logger), logo.WithStdout(os.Stdout))
	if err != nil {
		fmt.Fprintln(os.Stderr, parser.Snippet(err, input))
		return 1
	}
	if *verbose {
		logger.Debug("parsed", slog.String("program", res.Program.String()))
	}

	if err := writeOutput(destination, res.SVG); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return 1
	}
	if destination != "" {
		summarize(os.Stderr, res, destination)
	}
	return 0
}

func check(input string) int {
	prog, err := logo.Parse(input, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, parser.Snippet(err, input))
		return 1
	}
	diags := analysis.Check(prog)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if analysis.HasErrors(diags) {
		return 1
	}
	return 0
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func summarize(w io.Writer, res *logo.Result, destination string) {
	tag, err := language.Parse(*locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	var lines int
	for _, c := range res.Commands {
		if c.Kind == draw.KForward || c.Kind == draw.KBack {
			lines++
		}
	}
	p.Fprintf(w, "%d draw commands (%d moves, seed %d) written to %s\n",
		len(res.Commands), lines, res.Seed, destination)
}

func runREPL(cfg *config.Config, logger *slog.Logger) int {
	fmt.Println("Logo REPL - turtle graphics")
	fmt.Println("Type :help for commands, :quit to exit")
	fmt.Println()

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := logo.NewSession(cfg)
	var drawing []draw.Command

	for {
		code, ok := readByParseProbe(ln, session.Env(), "logo> ", "  ... ")
		if !ok {
			fmt.Println()
			return 0
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(code, ":") {
			fields := strings.Fields(code)
			switch fields[0] {
			case ":quit", ":exit":
				return 0
			case ":help":
				fmt.Println("Commands:")
				fmt.Println("  :save FILE  - write the session drawing as SVG")
				fmt.Println("  :clear      - forget the session drawing")
				fmt.Println("  :quit       - exit the REPL")
				fmt.Println()
				fmt.Println("Examples:")
				fmt.Println("  repeat 4 [ fd 100 rt 90 ]")
				fmt.Println("  to sq :n repeat 4 [ fd :n rt 90 ] end")
			case ":save":
				if len(fields) != 2 {
					fmt.Println("usage: :save FILE")
					continue
				}
				svg, err := codegen.RenderSVG(drawing, cfg.SVGCanvas())
				if err == nil {
					err = os.WriteFile(fields[1], svg, 0o644)
				}
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				fmt.Printf("wrote %d commands to %s\n", len(drawing), fields[1])
			case ":clear":
				drawing = nil
			default:
				fmt.Println("unknown command. Type :help for commands.")
			}
			continue
		}

		res, err := session.Run(context.Background(), code,
			logo.WithLogger(logger), logo.WithStdout(os.Stdout), logo.WithoutSVG())
		if err != nil {
			fmt.Fprintln(os.Stderr, parser.Snippet(err, code))
			continue
		}
		for _, d := range analysis.Check(res.Program) {
			if d.Severity == analysis.Warning {
				fmt.Fprintln(os.Stderr, d)
			}
		}
		for _, c := range res.Commands {
			fmt.Println(c)
		}
		if v := res.Value; v != nil && !eval.IsNothing(v) && !eval.IsReturn(v) {
			fmt.Println(v)
		}
		drawing = append(drawing, res.Commands...)
	}
}

// readByParseProbe keeps reading lines while the accumulated text fails to
// parse only because it ends too early.
func readByParseProbe(ln *liner.State, env *eval.Env, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || strings.TrimSpace(src) == "" {
			return src, true
		}
		_, perr := logo.Parse(src, env)
		if perr != nil && parser.IsIncomplete(perr, src) {
			continue
		}
		return src, true
	}
}
