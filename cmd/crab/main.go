package main

import (
	"context"
	goerrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sambeau/crabscript/config"
	"github.com/sambeau/crabscript/pkg/crab/crab"
	"github.com/sambeau/crabscript/pkg/crab/evaluator"
	"github.com/sambeau/crabscript/pkg/crab/parser"
	"github.com/sambeau/crabscript/pkg/crab/repl"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv))
}

// flags holds the parsed command line
type flags struct {
	help          bool
	version       bool
	eval          string
	check         bool
	watch         bool
	configPath    string
	restrictRead  string
	noRead        bool
	restrictWrite string
	noWrite       bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	f := &flags{}
	fs := flag.NewFlagSet("crab", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printHelp(stderr) }

	// Display flags
	fs.BoolVar(&f.help, "h", false, "Show help message")
	fs.BoolVar(&f.help, "help", false, "Show help message")
	fs.BoolVar(&f.version, "V", false, "Show version information")
	fs.BoolVar(&f.version, "version", false, "Show version information")

	// Evaluation flags
	fs.StringVar(&f.eval, "e", "", "Evaluate code string")
	fs.StringVar(&f.eval, "eval", "", "Evaluate code string")
	fs.BoolVar(&f.check, "check", false, "Check syntax without executing")
	fs.BoolVar(&f.watch, "watch", false, "Rerun the script whenever it changes")
	fs.StringVar(&f.configPath, "config", "", "Path to crab.yaml")

	// Security flags
	fs.StringVar(&f.restrictRead, "restrict-read", "", "Comma-separated read blacklist paths")
	fs.BoolVar(&f.noRead, "no-read", false, "Deny all file reads")
	fs.StringVar(&f.restrictWrite, "restrict-write", "", "Comma-separated write blacklist paths")
	fs.BoolVar(&f.noWrite, "no-write", false, "Deny all file writes")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// run is main without the process around it. It returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	f, rest, err := parseFlags(args, stderr)
	if err != nil {
		if goerrors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.help {
		printHelp(stdout)
		return 0
	}
	if f.version {
		fmt.Fprintf(stdout, "crab version %s\n", crab.Version)
		return 0
	}

	cfg, err := config.Load(f.configPath, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	policy, err := buildSecurityPolicy(f, cfg.Security)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	maxRead, _ := cfg.Security.MaxReadBytes()

	output, closeOutput, err := openOutput(cfg.Logging.Output, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeOutput()

	opts := []crab.Option{
		crab.WithLogger(crab.SplitLogger(output, stderr)),
		crab.WithSecurity(policy),
		crab.WithStdin(stdin),
		crab.WithMaxReadSize(maxRead),
	}

	// Mode dispatch
	switch {
	case f.eval != "":
		return executeInline(f.eval, rest, stdout, stderr, opts)
	case f.check:
		if len(rest) == 0 {
			fmt.Fprintln(stderr, "Error: --check requires at least one file")
			return 2
		}
		return checkFiles(rest, stderr)
	case len(rest) > 0 && f.watch:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := watchScript(ctx, rest[0], cfg.Watch.Debounce, stdout, stderr, func() {
			executeFile(rest[0], rest[1:], stderr, opts)
		})
		if err != nil {
			fmt.Fprintf(stderr, "[WATCH ERROR] %v\n", err)
			return 1
		}
		return 0
	case len(rest) > 0:
		return executeFile(rest[0], rest[1:], stderr, opts)
	default:
		repl.StartWithConfig(stdin, stdout, crab.Version, repl.Config{
			HistoryFile: cfg.REPL.HistoryFile,
			Prompt:      cfg.REPL.Prompt,
			Options:     []crab.Option{crab.WithSecurity(policy), crab.WithMaxReadSize(maxRead)},
		})
		return 0
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `crab - CrabScript interpreter version %s

Usage:
  crab [options] [file] [args...]
  crab -e "code" [args...]
  crab --check <file>...
  crab --watch <file> [args...]

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information

Evaluation Options:
  -e, --eval <code>     Evaluate code string and print its value
  --check               Check syntax without executing (can specify multiple files)
  --watch               Run the file again each time it is saved
  --config <path>       Use this config file instead of crab.yaml

Security Options:
  --restrict-read=PATHS     Deny reading from comma-separated paths
  --no-read                 Deny all file reads
  --restrict-write=PATHS    Deny writing to comma-separated paths
  --no-write                Deny all file writes

Examples:
  crab                          Start interactive REPL
  crab script.crab              Execute a CrabScript file
  crab -e "add(1, 2)"           Evaluate inline code (outputs: 3)
  crab -e 'argv()' foo bar      Evaluate code with arguments
  crab --check *.crab           Check multiple files
  crab --no-write script.crab   Deny all writes
`, crab.Version)
}

// executeInline runs code from -e and prints its value unless it is none
func executeInline(code string, args []string, stdout, stderr io.Writer, opts []crab.Option) int {
	opts = append(opts, crab.WithArgs(args), crab.WithFilename("<eval>"))
	result, err := crab.Exec(code, opts...)
	if err != nil {
		printError(stderr, "<eval>", err)
		return 1
	}
	if result != nil && result.Type() != evaluator.NONE_VAL {
		fmt.Fprintln(stdout, result.Inspect())
	}
	return 0
}

func executeFile(filename string, scriptArgs []string, stderr io.Writer, opts []crab.Option) int {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file '%s': %v\n", filename, err)
		return 1
	}

	opts = append(opts, crab.WithArgs(scriptArgs), crab.WithFilename(filename))
	if _, err := crab.Exec(string(source), opts...); err != nil {
		printError(stderr, filename, err)
		return 1
	}
	return 0
}

// checkFiles parses each file and reports every one that fails
func checkFiles(files []string, stderr io.Writer) int {
	exitCode := 0
	for _, filename := range files {
		source, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading %s: %v\n", filename, err)
			exitCode = 1
			continue
		}
		if err := crab.Check(string(source), crab.WithFilename(filename)); err != nil {
			printError(stderr, filename, err)
			exitCode = 1
		}
	}
	return exitCode
}

// printError prints a parse or runtime error with structured formatting
func printError(stderr io.Writer, filename string, err error) {
	var perr *parser.ParseError
	if goerrors.As(err, &perr) {
		fmt.Fprintln(stderr, perr.Structured().WithFile(filename).PrettyString())
		return
	}
	var rerr *evaluator.RuntimeError
	if goerrors.As(err, &rerr) {
		e := rerr.Err
		if e.File == "" {
			e = e.WithFile(filename)
		}
		fmt.Fprintln(stderr, e.PrettyString())
		return
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

// openOutput picks the writer script output goes to
func openOutput(output string, stdout, stderr io.Writer) (io.Writer, func(), error) {
	switch output {
	case "", "stdout":
		return stdout, func() {}, nil
	case "stderr":
		return stderr, func() {}, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// buildSecurityPolicy creates a SecurityPolicy from the config file and
// command-line flags. Flags add to what the config sets.
func buildSecurityPolicy(f *flags, sec config.SecurityConfig) (*evaluator.SecurityPolicy, error) {
	policy := &evaluator.SecurityPolicy{
		NoRead:        f.noRead || sec.NoRead,
		NoWrite:       f.noWrite || sec.NoWrite,
		RestrictRead:  sec.RestrictRead,
		RestrictWrite: sec.RestrictWrite,
	}

	// Parse restrict lists
	if f.restrictRead != "" {
		paths, err := parseAndResolvePaths(f.restrictRead)
		if err != nil {
			return nil, fmt.Errorf("invalid --restrict-read: %s", err)
		}
		policy.RestrictRead = append(policy.RestrictRead, paths...)
	}

	if f.restrictWrite != "" {
		paths, err := parseAndResolvePaths(f.restrictWrite)
		if err != nil {
			return nil, fmt.Errorf("invalid --restrict-write: %s", err)
		}
		policy.RestrictWrite = append(policy.RestrictWrite, paths...)
	}

	return policy, nil
}

// parseAndResolvePaths parses comma-separated paths and resolves them to absolute paths
func parseAndResolvePaths(pathList string) ([]string, error) {
	parts := strings.Split(pathList, ",")
	resolved := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		// Expand home directory
		if strings.HasPrefix(p, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("cannot expand ~: %s", err)
			}
			p = filepath.Join(home, p[2:])
		}

		absPath, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %s", p, err)
		}

		resolved = append(resolved, filepath.Clean(absPath))
	}

	return resolved, nil
}
