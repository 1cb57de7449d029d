package lispy

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

type PreHook func(*Lispy, string, []Sexp)
type PostHook func(*Lispy, string, Sexp)

// Lispy is one interpreter: a root scope that lives as long as the
// Lispy does, the reader, and the call hooks. It is not safe for
// concurrent use.
type Lispy struct {
	parser *Parser
	root   *Scope
	funcs  map[string]LispyBuiltin
	before []PreHook
	after  []PostHook

	debugExec bool

	// Out receives the output of print and of the repl.
	Out io.Writer

	// StopOnError makes LoadString and LoadFile quit at the first
	// top-level expression that evaluates to an Error.
	StopOnError bool
}

func NewLispy() *Lispy {
	return NewLispyWithFuncs(AllBuiltinFunctions())
}

// NewLispySandbox returns a new *Lispy instance that does not allow
// the user to get to the outside world.
func NewLispySandbox() *Lispy {
	return NewLispyWithFuncs(SandboxSafeFunctions())
}

// NewLispyWithFuncs returns a new *Lispy instance with access to only the given builtin functions
func NewLispyWithFuncs(funcs map[string]LispyBuiltin) *Lispy {
	env := &Lispy{
		parser: NewParser(),
		root:   NewScope("global"),
		funcs:  make(map[string]LispyBuiltin),
		Out:    os.Stdout,
	}
	env.root.IsGlobal = true

	for name, function := range funcs {
		env.AddFunction(name, function)
	}
	return env
}

func (env *Lispy) Root() *Scope {
	return env.root
}

func (env *Lispy) AddFunction(name string, function LispyBuiltin) {
	env.funcs[name] = function
	env.AddGlobal(name, MakeBuiltin(name, function))
}

func (env *Lispy) AddGlobal(name string, obj Sexp) {
	env.root.BindLocal(name, obj)
}

// Builtin returns the native function registered under name.
func (env *Lispy) Builtin(name string) (*SexpFunction, bool) {
	fn, ok := env.funcs[name]
	if !ok {
		return nil, false
	}
	return MakeBuiltin(name, fn), true
}

func (env *Lispy) FindObject(name string) (Sexp, bool) {
	obj, err := env.root.Lookup(name)
	if err != nil {
		return nil, false
	}
	return obj, true
}

func (env *Lispy) AddPreHook(fun PreHook) {
	env.before = append(env.before, fun)
}

func (env *Lispy) AddPostHook(fun PostHook) {
	env.after = append(env.after, fun)
}

func (env *Lispy) SetTrace(on bool) {
	env.debugExec = on
}

func (env *Lispy) ParseStream(stream io.RuneScanner) ([]Sexp, error) {
	env.parser.ResetAddNewInput(stream)
	exprs, err := env.parser.ParseTokens()
	if err != nil {
		return nil, fmt.Errorf("Error on line %d: %w", env.parser.Linenum(), err)
	}
	return exprs, nil
}

func (env *Lispy) ParseString(str string) ([]Sexp, error) {
	return env.ParseStream(bytes.NewBufferString(str))
}

// EvalExpressions treats xs as the children of one S-expression,
// the way a line typed at the prompt is read.
func (env *Lispy) EvalExpressions(xs []Sexp) Sexp {
	return env.Eval(env.root, MakeSexpr(xs))
}

// EvalString parses str and evaluates it as a single S-expression.
// The error return is only for input that could not be read.
func (env *Lispy) EvalString(str string) (Sexp, error) {
	xs, err := env.ParseString(str)
	if err != nil {
		return nil, err
	}
	return env.EvalExpressions(xs), nil
}

// LoadExpressions evaluates each expression in turn at top level
// and returns the last result.
func (env *Lispy) LoadExpressions(xs []Sexp) Sexp {
	var res Sexp = MakeSexpr(nil)
	for _, x := range xs {
		res = env.Eval(env.root, x)
		if env.StopOnError && IsError(res) {
			return res
		}
	}
	return res
}

func (env *Lispy) LoadStream(stream io.RuneScanner) (Sexp, error) {
	xs, err := env.ParseStream(stream)
	if err != nil {
		return nil, err
	}
	return env.LoadExpressions(xs), nil
}

func (env *Lispy) LoadString(str string) (Sexp, error) {
	return env.LoadStream(bytes.NewBufferString(str))
}

func (env *Lispy) LoadFile(file io.Reader) (Sexp, error) {
	return env.LoadStream(bufio.NewReader(file))
}

// Clear drops any half read input left in the reader.
func (env *Lispy) Clear() {
	env.parser.Reset()
}
