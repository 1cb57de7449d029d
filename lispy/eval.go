package lispy

import (
	"fmt"
	"runtime"
)

// Eval reduces x in scope. It never fails in the Go sense:
// every problem comes back as an Error value.
func (env *Lispy) Eval(scope *Scope, x Sexp) Sexp {
	switch e := x.(type) {
	case *SexpSymbol:
		val, err := scope.Lookup(e.name)
		if err != nil {
			return toSexpError(e.name, err)
		}
		return val
	case *SexpSexpr:
		return env.evalSexpr(scope, e)
	}
	return x
}

func (env *Lispy) evalSexpr(scope *Scope, x *SexpSexpr) Sexp {
	switch len(x.Val) {
	case 0:
		return x
	case 1:
		return env.Eval(scope, x.Val[0])
	}

	vals := make([]Sexp, len(x.Val))
	for i, child := range x.Val {
		vals[i] = env.Eval(scope, child)
	}
	for _, v := range vals {
		if e, isErr := v.(*SexpError); isErr {
			return e
		}
	}

	fn, ok := vals[0].(*SexpFunction)
	if !ok {
		return NotAFunctionError(vals[0].Kind())
	}
	return env.Call(scope, fn, vals[1:])
}

// Call applies fn to already evaluated args on behalf of the
// calling scope.
func (env *Lispy) Call(scope *Scope, fn *SexpFunction, args []Sexp) Sexp {
	name := fn.Name()
	for _, prehook := range env.before {
		prehook(env, name, args)
	}
	if env.debugExec {
		TSPrintf("call %s %s\n", name, MakeQexpr(args).SexpString())
	}

	var res Sexp
	if fn.IsBuiltin() {
		res = env.callBuiltin(scope, fn, args)
	} else {
		res = env.callLambda(scope, fn, args)
	}

	if env.debugExec {
		TSPrintf("  %s -> %s\n", name, res.SexpString())
	}
	for _, posthook := range env.after {
		posthook(env, name, res)
	}
	return res
}

func (env *Lispy) callBuiltin(scope *Scope, fn *SexpFunction, args []Sexp) (res Sexp) {
	// protect against panics in functions added through AddFunction
	defer func() {
		if recovered := recover(); recovered != nil {
			if env.debugExec {
				trace := make([]byte, 16384)
				trace = trace[:runtime.Stack(trace, false)]
				TSPrintf("panic in '%s':\n%s\n", fn.name, trace)
			}
			res = UserError(fmt.Sprintf("caught panic during call of '%s': '%v'", fn.name, recovered))
		}
	}()

	res, err := fn.builtin(env, scope, fn.name, args)
	if err != nil {
		return toSexpError(fn.name, err)
	}
	if res == nil {
		return MakeSexpr(nil)
	}
	return res
}

// callLambda binds args to formals in a fresh copy of the closure's
// scope. Too few args yields a new, partially applied closure over
// that copy; a full set evaluates the body with the copy chained to
// the calling scope.
func (env *Lispy) callLambda(scope *Scope, fn *SexpFunction, args []Sexp) Sexp {
	given := len(args)
	total := len(fn.formals.Val)

	frame := fn.scope.Clone()
	frame.Parent = nil
	formals := fn.formals.Val

	for len(args) > 0 && len(formals) > 0 {
		sym, ok := formals[0].(*SexpSymbol)
		if !ok {
			return WrongArgTypeError("\\", total-len(formals), formals[0].Kind(), KindSymbol)
		}
		formals = formals[1:]

		if sym.name == VariadicMarker {
			rest, err := variadicFormal(formals)
			if err != nil {
				return err
			}
			frame.BindLocal(rest.name, MakeQexpr(args))
			args = nil
			formals = nil
			break
		}

		frame.BindLocal(sym.name, args[0])
		args = args[1:]
	}

	if len(args) > 0 {
		return TooManyArgumentsError(given, total)
	}

	if len(formals) > 0 && isVariadicMarker(formals[0]) {
		rest, err := variadicFormal(formals[1:])
		if err != nil {
			return err
		}
		frame.BindLocal(rest.name, MakeQexpr(nil))
		formals = nil
	}

	if len(formals) == 0 {
		frame.Parent = scope
		return env.Eval(frame, MakeSexpr(fn.body.copyQ().Val))
	}

	return &SexpFunction{
		formals: MakeQexpr(copyAll(formals)),
		body:    fn.body.copyQ(),
		scope:   frame,
	}
}

func isVariadicMarker(x Sexp) bool {
	sym, ok := x.(*SexpSymbol)
	return ok && sym.name == VariadicMarker
}

// variadicFormal checks that exactly one symbol follows '&'.
func variadicFormal(rest []Sexp) (*SexpSymbol, *SexpError) {
	if len(rest) != 1 {
		return nil, MalformedVariadicError()
	}
	sym, ok := rest[0].(*SexpSymbol)
	if !ok {
		return nil, MalformedVariadicError()
	}
	return sym, nil
}
