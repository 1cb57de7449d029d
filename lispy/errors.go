package lispy

import (
	"errors"
	"fmt"
)

type ErrKind int

const (
	ErrUser ErrKind = iota
	ErrUnboundSymbol
	ErrWrongArgCount
	ErrWrongArgType
	ErrEmptyArgument
	ErrDivisionByZero
	ErrMalformedVariadic
	ErrNotAFunction
	ErrTooManyArguments
	ErrInvalidNumberLiteral
)

var errKindNames = map[ErrKind]string{
	ErrUser:                 "User",
	ErrUnboundSymbol:        "UnboundSymbol",
	ErrWrongArgCount:        "WrongArgCount",
	ErrWrongArgType:         "WrongArgType",
	ErrEmptyArgument:        "EmptyArgument",
	ErrDivisionByZero:       "DivisionByZero",
	ErrMalformedVariadic:    "MalformedVariadic",
	ErrNotAFunction:         "NotAFunction",
	ErrTooManyArguments:     "TooManyArguments",
	ErrInvalidNumberLiteral: "InvalidNumberLiteral",
}

func (k ErrKind) String() string {
	if s, ok := errKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrKind(%d)", int(k))
}

// SexpError is the Error variant of Sexp. It carries a kind tag
// and the typed details of the failure; the message text is only
// produced by Error(). It also satisfies Go's error interface, so
// builtins can hand one back as their error return.
type SexpError struct {
	Code ErrKind

	Func  string // reporting builtin
	Name  string // unbound symbol
	Index int    // offending argument position

	Got  int
	Want int

	GotKind  Kind
	WantKind Kind

	Msg string // ErrUser text
}

func (*SexpError) isSexp() {}

func (*SexpError) Kind() Kind { return KindError }

func (e *SexpError) Copy() Sexp {
	cp := *e
	return &cp
}

func (e *SexpError) SexpString() string {
	return "Error: " + e.Error()
}

func (e *SexpError) Error() string {
	switch e.Code {
	case ErrUnboundSymbol:
		return fmt.Sprintf("Unbound Symbol '%s'", e.Name)
	case ErrWrongArgCount:
		return fmt.Sprintf("Function '%s' passed incorrect number of arguments. Got %d, Expected %d.",
			e.Func, e.Got, e.Want)
	case ErrWrongArgType:
		return fmt.Sprintf("Function '%s' passed incorrect type for argument %d. Got %s, Expected %s.",
			e.Func, e.Index, e.GotKind, e.WantKind)
	case ErrEmptyArgument:
		return fmt.Sprintf("Function '%s' passed {}!", e.Func)
	case ErrDivisionByZero:
		return "Division By Zero!"
	case ErrMalformedVariadic:
		return "'&' not followed by exactly one symbol"
	case ErrNotAFunction:
		return fmt.Sprintf("expression does not start with a function. Got %s, Expected %s.",
			e.GotKind, e.WantKind)
	case ErrTooManyArguments:
		return fmt.Sprintf("too many arguments: got %d, expected %d", e.Got, e.Want)
	case ErrInvalidNumberLiteral:
		return "invalid number"
	}
	return e.Msg
}

func UnboundSymbolError(name string) *SexpError {
	return &SexpError{Code: ErrUnboundSymbol, Name: name}
}

func WrongArgCountError(fn string, got, want int) *SexpError {
	return &SexpError{Code: ErrWrongArgCount, Func: fn, Got: got, Want: want}
}

func WrongArgTypeError(fn string, index int, got, want Kind) *SexpError {
	return &SexpError{Code: ErrWrongArgType, Func: fn, Index: index, GotKind: got, WantKind: want}
}

func EmptyArgumentError(fn string) *SexpError {
	return &SexpError{Code: ErrEmptyArgument, Func: fn}
}

func DivisionByZeroError() *SexpError {
	return &SexpError{Code: ErrDivisionByZero}
}

func MalformedVariadicError() *SexpError {
	return &SexpError{Code: ErrMalformedVariadic}
}

func NotAFunctionError(got Kind) *SexpError {
	return &SexpError{Code: ErrNotAFunction, GotKind: got, WantKind: KindFunction}
}

func TooManyArgumentsError(got, want int) *SexpError {
	return &SexpError{Code: ErrTooManyArguments, Got: got, Want: want}
}

func InvalidNumberError() *SexpError {
	return &SexpError{Code: ErrInvalidNumberLiteral}
}

func UserError(msg string) *SexpError {
	return &SexpError{Code: ErrUser, Msg: msg}
}

// toSexpError turns any Go error coming back from a builtin into
// an Error value.
func toSexpError(fn string, err error) *SexpError {
	var se *SexpError
	if errors.As(err, &se) {
		return se
	}
	return &SexpError{Code: ErrUser, Func: fn, Msg: fmt.Sprintf("%s: %v", fn, err)}
}

// IsError reports whether x is an Error value.
func IsError(x Sexp) bool {
	_, ok := x.(*SexpError)
	return ok
}
