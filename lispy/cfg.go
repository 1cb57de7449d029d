package lispy

import (
	"flag"
	"fmt"
)

// configure a lispy repl
type LispyConfig struct {
	CpuProfile     string
	MemProfile     string
	ExitOnFailure  bool
	CountFuncCalls bool
	Flags          *flag.FlagSet
	Command        string
	Sandboxed      bool
	Quiet          bool
	Trace          bool
	Verbose        bool

	// binary snapshot to restore before anything else runs
	LoadSnapshot string

	// liner bombs under emacs, avoid it with this flag.
	NoLiner bool
	Prompt  string // default "lispy> "
}

func NewLispyConfig(cmdname string) *LispyConfig {
	return &LispyConfig{
		Flags: flag.NewFlagSet(cmdname, flag.ExitOnError),
	}
}

// call DefineFlags before myflags.Parse()
func (c *LispyConfig) DefineFlags() {
	c.Flags.StringVar(&c.CpuProfile, "cpuprofile", "", "write cpu profile to file")
	c.Flags.StringVar(&c.MemProfile, "memprofile", "", "write mem profile to file")
	c.Flags.BoolVar(&c.ExitOnFailure, "exitonfail", false, "exit on failure instead of starting repl")
	c.Flags.BoolVar(&c.CountFuncCalls, "countcalls", false, "count how many times each function is run")
	c.Flags.StringVar(&c.Command, "c", "", "expressions to evaluate")
	c.Flags.BoolVar(&c.Sandboxed, "sandbox", false, "run sandboxed; disallow functions that write outside the interpreter")
	c.Flags.BoolVar(&c.Quiet, "quiet", false, "start repl without printing the version/mode/help banner")
	c.Flags.BoolVar(&c.Trace, "trace", false, "trace every function call (very verbose)")
	c.Flags.BoolVar(&c.Verbose, "v", false, "verbose internal logging")
	c.Flags.BoolVar(&c.NoLiner, "noliner", false, "read plain lines from stdin, without line editing or history")
	c.Flags.StringVar(&c.Prompt, "prompt", "", "repl prompt")
	c.Flags.StringVar(&c.LoadSnapshot, "load", "", "restore bindings from this snapshot file (see .save)")
}

// call c.ValidateConfig() after myflags.Parse()
func (c *LispyConfig) ValidateConfig() error {
	if c.Prompt == "" {
		c.Prompt = "lispy> "
	}
	if c.Command != "" && c.Flags.NArg() > 0 {
		return fmt.Errorf("-c cannot be combined with a script argument")
	}
	return nil
}
