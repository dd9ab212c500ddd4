package repl

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/crabscript/pkg/crab/crab"
	"github.com/sambeau/crabscript/pkg/crab/evaluator"
	"github.com/sambeau/crabscript/pkg/crab/parser"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

const CRAB_LOGO = `
█▀▀ █▀█ ▄▀█ █▄▄
█▄▄ █▀▄ █▀█ █▄█ `

// Keywords offered by tab completion alongside the registry's natives
var keywords = []string{
	"let", "const", "fn", "ret", "if", "elif", "else", "while", "for", "in",
	"args", "true", "false", "none",
}

// Config holds the settings Start reads from the config file.
type Config struct {
	// HistoryFile defaults to .crab_history in the temp directory.
	HistoryFile string
	// Prompt defaults to PROMPT.
	Prompt string
	// Options are passed to every session the REPL creates.
	Options []crab.Option
}

// REPL evaluates input lines against a persistent session. It does no
// terminal handling, so Start drives it from liner and tests drive it
// directly.
type REPL struct {
	out     io.Writer
	opts    []crab.Option
	session *crab.Session
	buffer  strings.Builder
}

// New creates a REPL writing results, errors and script output to out.
func New(out io.Writer, opts ...crab.Option) *REPL {
	r := &REPL{
		out:  out,
		opts: append([]crab.Option{crab.WithLogger(crab.WriterLogger(out))}, opts...),
	}
	r.reset()
	return r
}

func (r *REPL) reset() {
	r.session = crab.NewSession(r.opts...)
	r.buffer.Reset()
}

// Pending reports whether an unfinished multi-line input is buffered.
func (r *REPL) Pending() bool {
	return r.buffer.Len() > 0
}

// Abort drops any buffered input.
func (r *REPL) Abort() {
	r.buffer.Reset()
}

// Feed handles one line of input. It returns the complete input once it has
// been evaluated, or "" while more lines are needed, and reports whether
// the user asked to quit.
func (r *REPL) Feed(line string) (complete string, quit bool) {
	trimmed := strings.TrimSpace(line)

	if !r.Pending() {
		switch {
		case trimmed == "exit" || trimmed == "quit":
			fmt.Fprintln(r.out, "Goodbye!")
			return "", true
		case strings.HasPrefix(trimmed, ":"):
			r.command(trimmed)
			return "", false
		case trimmed == "":
			return "", false
		}
	}

	if r.Pending() {
		r.buffer.WriteString("\n")
	}
	r.buffer.WriteString(line)

	input := r.buffer.String()
	if needsMoreInput(input) {
		return "", false
	}
	r.buffer.Reset()

	r.eval(input)
	return input, false
}

func (r *REPL) eval(input string) {
	result, err := r.session.Eval(input)
	if err != nil {
		printError(r.out, err)
		return
	}
	if result != nil && result.Type() != evaluator.NONE_VAL {
		fmt.Fprintln(r.out, result.Inspect())
	}
}

// command handles REPL meta-commands that start with ':'
func (r *REPL) command(cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "REPL Commands:")
		fmt.Fprintln(r.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(r.out, "  :names          List the built-in functions")
		fmt.Fprintln(r.out, "  :vars           List the top-level names declared so far")
		fmt.Fprintln(r.out, "  :clear          Start again with an empty scope")
		fmt.Fprintln(r.out, "  exit, quit      Exit the REPL")

	case ":names":
		printColumns(r.out, r.session.Registry().Names())

	case ":vars":
		names := r.session.Names()
		if len(names) == 0 {
			fmt.Fprintln(r.out, "(no variables)")
			return
		}
		sort.Strings(names)
		printColumns(r.out, names)

	case ":clear":
		r.reset()
		fmt.Fprintln(r.out, "Scope cleared")

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}

// Complete returns completion suggestions for the last word of line.
func (r *REPL) Complete(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if last := line[len(line)-1]; last == ' ' || last == '\t' || last == '(' || last == ',' {
		return nil
	}

	start := strings.LastIndexFunc(line, func(c rune) bool {
		return !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
	}) + 1
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	seen := map[string]bool{}
	var matches []string
	add := func(name string) {
		if !seen[name] && strings.HasPrefix(name, word) {
			seen[name] = true
			matches = append(matches, head+name)
		}
	}
	for _, kw := range keywords {
		add(kw)
	}
	for _, name := range r.session.Names() {
		add(name)
	}
	for _, name := range r.session.Registry().Complete(word) {
		add(name)
	}
	sort.Strings(matches)
	return matches
}

// Start starts the REPL with line editing, history, and tab completion
func Start(in io.Reader, out io.Writer, version string) {
	StartWithConfig(in, out, version, Config{})
}

// StartWithConfig is Start with settings from the config file.
func StartWithConfig(in io.Reader, out io.Writer, version string, cfg Config) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	opts := cfg.Options
	if in != nil {
		opts = append([]crab.Option{crab.WithStdin(in)}, opts...)
	}
	r := New(out, opts...)
	line.SetCompleter(r.Complete)

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".crab_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = PROMPT
	}

	fmt.Fprintf(out, "%s", CRAB_LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	for {
		current := prompt
		if r.Pending() {
			current = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(current)
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if r.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				r.Abort()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		complete, quit := r.Feed(input)
		if quit {
			return
		}
		if strings.TrimSpace(complete) != "" {
			line.AppendHistory(complete)
		}
	}
}

// needsMoreInput checks if the input has unclosed braces, brackets or
// parentheses. Strings, characters and // comments are skipped.
func needsMoreInput(input string) bool {
	depth := 0
	for i := 0; i < len(input); i++ {
		switch ch := input[i]; ch {
		case '"', '\'':
			i = skipQuoted(input, i)
			if i < 0 {
				// An unterminated string is a parse error, not a continuation
				return false
			}
		case '/':
			if i+1 < len(input) && input[i+1] == '/' {
				for i < len(input) && input[i] != '\n' {
					i++
				}
			}
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}
	return depth > 0
}

// skipQuoted returns the index of the quote closing the one at start, or -1
// if the line ends first.
func skipQuoted(input string, start int) int {
	quote := input[start]
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case quote:
			return i
		case '\n':
			return -1
		}
	}
	return -1
}

// printError prints a parse or runtime error with structured formatting
func printError(out io.Writer, err error) {
	var perr *parser.ParseError
	if goerrors.As(err, &perr) {
		io.WriteString(out, perr.Structured().PrettyString())
		io.WriteString(out, "\n")
		return
	}
	var rerr *evaluator.RuntimeError
	if goerrors.As(err, &rerr) {
		io.WriteString(out, rerr.Err.PrettyString())
		io.WriteString(out, "\n")
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}

// printColumns prints names four to a line
func printColumns(out io.Writer, names []string) {
	const perLine = 4
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	for i, n := range names {
		fmt.Fprintf(out, "  %-*s", width, n)
		if (i+1)%perLine == 0 || i == len(names)-1 {
			fmt.Fprintln(out)
		}
	}
}
