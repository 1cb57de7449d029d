package lispy

import (
	"strconv"
	"strings"
)

// Sexp is the universal runtime value. The set of implementations
// is closed: only the types in this file (and SexpError) satisfy it.
type Sexp interface {
	SexpString() string
	Kind() Kind
	Copy() Sexp
	isSexp()
}

type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindError
	KindSymbol
	KindFunction
	KindSexpr
	KindQexpr
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindError:
		return "Error"
	case KindSymbol:
		return "Symbol"
	case KindFunction:
		return "Function"
	case KindSexpr:
		return "S-Expression"
	case KindQexpr:
		return "Q-Expression"
	}
	return "Unknown"
}

// VariadicMarker separates the positional formals of a lambda
// from the single formal that captures the remaining arguments.
const VariadicMarker = "&"

type SexpInt struct {
	Val int64
}

type SexpStr struct {
	S string
}

type SexpSymbol struct {
	name string
}

// SexpSexpr is an evaluable sequence: (f a b).
type SexpSexpr struct {
	Val []Sexp
}

// SexpQexpr is a quoted sequence: {a b c}. It is never
// evaluated unless retagged by eval, if, or a lambda call.
type SexpQexpr struct {
	Val []Sexp
}

// LispyBuiltin is the signature of every native function. The
// args have already been evaluated and belong to the builtin.
// A returned error becomes an Error value at the call site.
type LispyBuiltin func(env *Lispy, scope *Scope, name string, args []Sexp) (Sexp, error)

// SexpFunction is either a native builtin (builtin != nil) or a
// closure over formals, body and its own scope.
type SexpFunction struct {
	name    string
	builtin LispyBuiltin

	formals *SexpQexpr
	body    *SexpQexpr
	scope   *Scope
}

func MakeInt(i int64) *SexpInt {
	return &SexpInt{Val: i}
}

func MakeStr(s string) *SexpStr {
	return &SexpStr{S: s}
}

func MakeSymbol(name string) *SexpSymbol {
	return &SexpSymbol{name: name}
}

func MakeSexpr(xs []Sexp) *SexpSexpr {
	return &SexpSexpr{Val: xs}
}

func MakeQexpr(xs []Sexp) *SexpQexpr {
	return &SexpQexpr{Val: xs}
}

func MakeBuiltin(name string, fn LispyBuiltin) *SexpFunction {
	return &SexpFunction{name: name, builtin: fn}
}

// MakeLambda builds a closure owning a fresh, empty scope.
func MakeLambda(formals, body *SexpQexpr) *SexpFunction {
	return &SexpFunction{
		formals: formals,
		body:    body,
		scope:   NewScope("lambda"),
	}
}

func (*SexpInt) isSexp()      {}
func (*SexpStr) isSexp()      {}
func (*SexpSymbol) isSexp()   {}
func (*SexpSexpr) isSexp()    {}
func (*SexpQexpr) isSexp()    {}
func (*SexpFunction) isSexp() {}

func (*SexpInt) Kind() Kind      { return KindNumber }
func (*SexpStr) Kind() Kind      { return KindString }
func (*SexpSymbol) Kind() Kind   { return KindSymbol }
func (*SexpSexpr) Kind() Kind    { return KindSexpr }
func (*SexpQexpr) Kind() Kind    { return KindQexpr }
func (*SexpFunction) Kind() Kind { return KindFunction }

func (i *SexpInt) SexpString() string {
	return strconv.FormatInt(i.Val, 10)
}

func (s *SexpStr) SexpString() string {
	return strconv.Quote(s.S)
}

func (sym *SexpSymbol) SexpString() string {
	return sym.name
}

func (sym *SexpSymbol) Name() string {
	return sym.name
}

func (x *SexpSexpr) SexpString() string {
	return seqString(x.Val, '(', ')')
}

func (x *SexpQexpr) SexpString() string {
	return seqString(x.Val, '{', '}')
}

func seqString(xs []Sexp, open, close byte) string {
	var sb strings.Builder
	sb.WriteByte(open)
	for i, x := range xs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(x.SexpString())
	}
	sb.WriteByte(close)
	return sb.String()
}

func (sf *SexpFunction) SexpString() string {
	if sf.IsBuiltin() {
		return "<builtin>"
	}
	return "(\\ " + sf.formals.SexpString() + " " + sf.body.SexpString() + ")"
}

func (sf *SexpFunction) IsBuiltin() bool {
	return sf.builtin != nil
}

// Name is the builtin tag, or `\` for a closure.
func (sf *SexpFunction) Name() string {
	if sf.IsBuiltin() {
		return sf.name
	}
	return "\\"
}

func (sf *SexpFunction) Formals() *SexpQexpr { return sf.formals }
func (sf *SexpFunction) Body() *SexpQexpr    { return sf.body }
func (sf *SexpFunction) Scope() *Scope       { return sf.scope }

func (i *SexpInt) Copy() Sexp {
	return &SexpInt{Val: i.Val}
}

func (s *SexpStr) Copy() Sexp {
	return &SexpStr{S: s.S}
}

func (sym *SexpSymbol) Copy() Sexp {
	return &SexpSymbol{name: sym.name}
}

func (x *SexpSexpr) Copy() Sexp {
	return &SexpSexpr{Val: copyAll(x.Val)}
}

func (x *SexpQexpr) Copy() Sexp {
	return x.copyQ()
}

func (x *SexpQexpr) copyQ() *SexpQexpr {
	return &SexpQexpr{Val: copyAll(x.Val)}
}

func (sf *SexpFunction) Copy() Sexp {
	if sf.IsBuiltin() {
		return &SexpFunction{name: sf.name, builtin: sf.builtin}
	}
	return &SexpFunction{
		formals: sf.formals.copyQ(),
		body:    sf.body.copyQ(),
		scope:   sf.scope.Clone(),
	}
}

func copyAll(xs []Sexp) []Sexp {
	if xs == nil {
		return nil
	}
	cp := make([]Sexp, len(xs))
	for i, x := range xs {
		cp[i] = x.Copy()
	}
	return cp
}
