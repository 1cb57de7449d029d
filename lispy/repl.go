package lispy

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sort"
	"strings"
)

// CallCounts tallies calls by function name through the pre and
// post hooks.
type CallCounts struct {
	Pre  map[string]int
	Post map[string]int
}

func NewCallCounts() *CallCounts {
	return &CallCounts{
		Pre:  make(map[string]int),
		Post: make(map[string]int),
	}
}

func (c *CallCounts) PreHook(env *Lispy, name string, args []Sexp) {
	c.Pre[name] += 1
}

func (c *CallCounts) PostHook(env *Lispy, name string, retval Sexp) {
	c.Post[name] += 1
}

func (c *CallCounts) Install(env *Lispy) {
	env.AddPreHook(c.PreHook)
	env.AddPostHook(c.PostHook)
}

func (c *CallCounts) Report(w io.Writer) {
	show := func(label string, m map[string]int) {
		fmt.Fprintln(w, label)
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "\t%s: %d\n", name, m[name])
		}
	}
	show("Pre:", c.Pre)
	show("Post:", c.Post)
}

func getLine(reader *bufio.Reader) (string, error) {
	line := make([]byte, 0)
	for {
		linepart, hasMore, err := reader.ReadLine()
		if err != nil {
			return "", err
		}
		line = append(line, linepart...)
		if !hasMore {
			break
		}
	}
	return string(line), nil
}

var continuationPrompt = "... "

func (pr *Prompter) readLine(env *Lispy, reader *bufio.Reader, noLiner bool, prompt *string) (string, error) {
	if !noLiner {
		return pr.Getline(prompt)
	}
	if prompt == nil {
		fmt.Fprint(env.Out, pr.prompt)
	} else {
		fmt.Fprint(env.Out, *prompt)
	}
	return getLine(reader)
}

// getExpressionWithLiner keeps reading continuation lines while the
// input stops inside an open bracket or string. Lines starting with
// '.' are repl commands and come back unparsed. liner reads Stdin
// only; with noLiner we read from reader.
func (pr *Prompter) getExpressionWithLiner(env *Lispy, reader *bufio.Reader, noLiner bool) (line string, xs []Sexp, err error) {
	line, err = pr.readLine(env, reader, noLiner, nil)
	if err != nil {
		return "", nil, err
	}
	if strings.HasPrefix(strings.TrimSpace(line), ".") {
		return line, nil, nil
	}

	for {
		env.parser.ResetAddNewInput(bytes.NewBufferString(line))
		xs, err = env.parser.ParseTokens()
		switch err {
		case nil:
			return line, xs, nil
		case ErrMoreInputNeeded:
			nextline, err := pr.readLine(env, reader, noLiner, &continuationPrompt)
			if err != nil {
				return "", nil, err
			}
			line += "\n" + nextline
		default:
			return "", nil, fmt.Errorf("Error on line %d: %v", env.parser.Linenum(), err)
		}
	}
}

// processDotCommand runs one repl command. It reports whether the
// repl should exit.
func processDotCommand(env *Lispy, parts []string) (quit bool) {
	first := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = parts[1]
	}
	out := env.Out

	needArg := func() bool {
		if arg == "" {
			fmt.Fprintf(out, "%s needs a file or name argument.\n", first)
			return false
		}
		return true
	}

	switch first {
	case ".quit":
		return true
	case ".ls":
		fmt.Fprint(out, env.root.Show(0, "Scope", true))
	case ".gls":
		fmt.Fprint(out, env.root.Show(0, "Scope", false))
	case ".verb":
		Verbose = !Verbose
		fmt.Fprintf(out, "verbose: %v.\n", Verbose)
	case ".debug":
		env.SetTrace(true)
		fmt.Fprintf(out, "call tracing on.\n")
	case ".undebug":
		env.SetTrace(false)
		fmt.Fprintf(out, "call tracing off.\n")
	case ".dump":
		if !needArg() {
			break
		}
		s, err := env.DumpBinding(arg)
		if err != nil {
			fmt.Fprintln(out, toSexpError(first, err).SexpString())
			break
		}
		fmt.Fprintln(out, s)
	case ".save":
		if !needArg() {
			break
		}
		if err := env.SaveSnapshotFile(arg); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			break
		}
		fmt.Fprintf(out, "saved snapshot to '%s'.\n", arg)
	case ".restore":
		if !needArg() {
			break
		}
		n, err := env.RestoreSnapshotFile(arg)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			break
		}
		fmt.Fprintf(out, "restored %d bindings from '%s'.\n", n, arg)
	case ".export":
		if !needArg() {
			break
		}
		if err := env.ExportFile(arg); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			break
		}
		fmt.Fprintf(out, "exported bindings to '%s'.\n", arg)
	case ".import":
		if !needArg() {
			break
		}
		n, err := env.ImportFile(arg)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			break
		}
		fmt.Fprintf(out, "imported %d bindings from '%s'.\n", n, arg)
	default:
		fmt.Fprintf(out, "unknown command '%s'.\n", first)
	}
	return false
}

// replLoop reads and evaluates until .quit or end of input. Under
// cfg.NoLiner lines come from reader instead of the terminal.
func replLoop(env *Lispy, cfg *LispyConfig, pr *Prompter, reader *bufio.Reader) error {
	for {
		line, xs, err := pr.getExpressionWithLiner(env, reader, cfg.NoLiner)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			fmt.Fprintln(env.Out, err)
			env.Clear()
			continue
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		if strings.HasPrefix(parts[0], ".") {
			if processDotCommand(env, parts) {
				return nil
			}
			continue
		}

		res := env.EvalExpressions(xs)
		fmt.Fprintln(env.Out, res.SexpString())
	}
}

func Repl(env *Lispy, cfg *LispyConfig) {
	var reader *bufio.Reader
	if cfg.NoLiner {
		// reader is used if one wishes to drop the liner library.
		// Useful for not full terminal env, like under test.
		reader = bufio.NewReader(os.Stdin)
	}

	if !cfg.Quiet {
		if cfg.Sandboxed {
			fmt.Fprintf(env.Out, "lispy [sandbox mode] version %s\n", Version())
		} else {
			fmt.Fprintf(env.Out, "lispy version %s\n", Version())
		}
		fmt.Fprintf(env.Out, "press tab to get completion suggestions. Ctrl-d or .quit to exit.\n")
	}

	var pr *Prompter
	if !cfg.NoLiner {
		pr = NewPrompter(cfg.Prompt)
		defer pr.Close()
	} else {
		pr = &Prompter{prompt: cfg.Prompt}
	}

	if err := replLoop(env, cfg, pr, reader); err != nil {
		fmt.Fprintln(env.Out, err)
	}
}

// runScript loads fname one top-level expression at a time. It
// reports whether the script ran without an Error value.
func runScript(env *Lispy, fname string, cfg *LispyConfig) bool {
	file, err := os.Open(fname)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	defer file.Close()

	env.StopOnError = true
	res, err := env.LoadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if IsError(res) {
		fmt.Fprintln(env.Out, res.SexpString())
		return false
	}
	return true
}

// like main() for a standalone repl, now in library. It returns the
// process exit code; profiles are flushed before it returns.
func ReplMain(cfg *LispyConfig) int {
	var env *Lispy
	if cfg.Sandboxed {
		env = NewLispySandbox()
	} else {
		env = NewLispy()
	}
	Verbose = cfg.Verbose
	env.SetTrace(cfg.Trace)

	if cfg.CpuProfile != "" {
		f, err := os.Create(cfg.CpuProfile)
		if err != nil {
			fmt.Println(err)
			return -1
		}
		defer f.Close()
		err = pprof.StartCPUProfile(f)
		if err != nil {
			fmt.Println(err)
			return -1
		}
		defer pprof.StopCPUProfile()
	}

	if cfg.MemProfile != "" {
		defer writeMemProfile(cfg.MemProfile)
	}

	var counts *CallCounts
	if cfg.CountFuncCalls {
		counts = NewCallCounts()
		counts.Install(env)
		defer counts.Report(env.Out)
	}

	if cfg.LoadSnapshot != "" {
		n, err := env.RestoreSnapshotFile(cfg.LoadSnapshot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error restoring '%s': %v\n", cfg.LoadSnapshot, err)
			return 1
		}
		VPrintf("restored %d bindings from '%s'\n", n, cfg.LoadSnapshot)
	}

	if cfg.Command != "" {
		res, err := env.EvalString(cfg.Command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintln(env.Out, res.SexpString())
		if IsError(res) && cfg.ExitOnFailure {
			return 1
		}
		return 0
	}

	runRepl := true
	args := cfg.Flags.Args()
	if len(args) > 0 {
		runRepl = false
		if !runScript(env, args[0], cfg) {
			if cfg.ExitOnFailure {
				return -1
			}
			runRepl = true
		}
	}
	if runRepl {
		Repl(env, cfg)
	}
	return 0
}

func writeMemProfile(fn string) {
	f, err := os.Create(fn)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	err = pprof.Lookup("heap").WriteTo(f, 1)
	if err != nil {
		fmt.Println(err)
	}
}
