package lispy

import (
	"fmt"
	"strings"
)

func ListFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	return MakeQexpr(args), nil
}

func EvalFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if err := checkNargs(name, args, 1); err != nil {
		return nil, err
	}
	q, err := qexprArg(name, args, 0)
	if err != nil {
		return nil, err
	}
	return env.Eval(scope, MakeSexpr(q.Val)), nil
}

// HeadTailFunction implements both head and tail.
func HeadTailFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if err := checkNargs(name, args, 1); err != nil {
		return nil, err
	}
	q, err := qexprArg(name, args, 0)
	if err != nil {
		return nil, err
	}
	if len(q.Val) == 0 {
		return nil, EmptyArgumentError(name)
	}
	if name == "head" {
		return headOf(q), nil
	}
	return tailOf(q), nil
}

func JoinFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	qs := make([]*SexpQexpr, len(args))
	for i := range args {
		q, err := qexprArg(name, args, i)
		if err != nil {
			return nil, err
		}
		qs[i] = q
	}
	return joinAll(qs), nil
}

func NumericFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if len(args) < 1 {
		return nil, WrongArgCountError(name, 0, 1)
	}
	op, ok := numericOpNames[name]
	if !ok {
		return nil, fmt.Errorf("unrecognized numeric operator '%s'", name)
	}
	nums, err := intArgs(name, args)
	if err != nil {
		return nil, err
	}
	return NumericFold(op, nums)
}

func EqualityFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if err := checkNargs(name, args, 2); err != nil {
		return nil, err
	}
	eq := Equal(args[0], args[1])
	if name == "!=" {
		eq = !eq
	}
	return boolToInt(eq), nil
}

func CompareFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if err := checkNargs(name, args, 2); err != nil {
		return nil, err
	}
	nums, err := intArgs(name, args)
	if err != nil {
		return nil, err
	}

	res := compareInt(nums[0], nums[1])
	cond := false
	switch name {
	case "<":
		cond = res < 0
	case ">":
		cond = res > 0
	case "<=":
		cond = res <= 0
	case ">=":
		cond = res >= 0
	default:
		return nil, fmt.Errorf("unrecognized comparison '%s'", name)
	}
	return boolToInt(cond), nil
}

func IfFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if err := checkNargs(name, args, 3); err != nil {
		return nil, err
	}
	cond, ok := args[0].(*SexpInt)
	if !ok {
		return nil, WrongArgTypeError(name, 0, args[0].Kind(), KindNumber)
	}
	then, err := qexprArg(name, args, 1)
	if err != nil {
		return nil, err
	}
	otherwise, err := qexprArg(name, args, 2)
	if err != nil {
		return nil, err
	}

	branch := otherwise
	if cond.Val != 0 {
		branch = then
	}
	return env.Eval(scope, MakeSexpr(branch.Val)), nil
}

// DefFunction implements def (bind in the root scope) and =
// (bind in the current scope). Nothing is bound unless every
// check passes.
func DefFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if len(args) < 1 {
		return nil, WrongArgCountError(name, 0, 1)
	}
	q, err := qexprArg(name, args, 0)
	if err != nil {
		return nil, err
	}
	syms, err := symbolList(name, q)
	if err != nil {
		return nil, err
	}
	vals := args[1:]
	if len(syms) != len(vals) {
		return nil, WrongArgCountError(name, len(vals), len(syms))
	}

	for i, sym := range syms {
		if name == "def" {
			scope.BindGlobal(sym.name, vals[i])
		} else {
			scope.BindLocal(sym.name, vals[i])
		}
	}
	return MakeSexpr(nil), nil
}

func LambdaFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if err := checkNargs(name, args, 2); err != nil {
		return nil, err
	}
	formals, err := qexprArg(name, args, 0)
	if err != nil {
		return nil, err
	}
	body, err := qexprArg(name, args, 1)
	if err != nil {
		return nil, err
	}
	if _, err := symbolList(name, formals); err != nil {
		return nil, err
	}
	return MakeLambda(formals, body), nil
}

// PrintFunction writes its args, space separated, to the
// interpreter's output.
func PrintFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.SexpString()
	}
	_, err := fmt.Fprintln(env.Out, strings.Join(parts, " "))
	if err != nil {
		return nil, err
	}
	return MakeSexpr(nil), nil
}

func ErrorFunction(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error) {
	if err := checkNargs(name, args, 1); err != nil {
		return nil, err
	}
	s, ok := args[0].(*SexpStr)
	if !ok {
		return nil, WrongArgTypeError(name, 0, args[0].Kind(), KindString)
	}
	return UserError(s.S), nil
}

// CoreFunctions cannot reach the world outside the interpreter.
func CoreFunctions() map[string]LispyBuiltin {
	return map[string]LispyBuiltin{
		"list":  ListFunction,
		"eval":  EvalFunction,
		"head":  HeadTailFunction,
		"tail":  HeadTailFunction,
		"join":  JoinFunction,
		"+":     NumericFunction,
		"-":     NumericFunction,
		"*":     NumericFunction,
		"/":     NumericFunction,
		"plus":  NumericFunction,
		"sub":   NumericFunction,
		"times": NumericFunction,
		"div":   NumericFunction,
		"==":    EqualityFunction,
		"!=":    EqualityFunction,
		">":     CompareFunction,
		">=":    CompareFunction,
		"<":     CompareFunction,
		"<=":    CompareFunction,
		"if":    IfFunction,
		"def":   DefFunction,
		"=":     DefFunction,
		"\\":    LambdaFunction,
		"error": ErrorFunction,
	}
}

func SystemFunctions() map[string]LispyBuiltin {
	return map[string]LispyBuiltin{
		"print": PrintFunction,
	}
}

func SandboxSafeFunctions() map[string]LispyBuiltin {
	return CoreFunctions()
}

func AllBuiltinFunctions() map[string]LispyBuiltin {
	all := CoreFunctions()
	for name, fn := range SystemFunctions() {
		all[name] = fn
	}
	return all
}
