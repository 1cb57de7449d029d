package lispy

// qexprArg fetches args[i] as a Q-expression or reports a type error
// on behalf of the builtin fn.
func qexprArg(fn string, args []Sexp, i int) (*SexpQexpr, error) {
	q, ok := args[i].(*SexpQexpr)
	if !ok {
		return nil, WrongArgTypeError(fn, i, args[i].Kind(), KindQexpr)
	}
	return q, nil
}

func intArgs(fn string, args []Sexp) ([]*SexpInt, error) {
	nums := make([]*SexpInt, len(args))
	for i, a := range args {
		n, ok := a.(*SexpInt)
		if !ok {
			return nil, WrongArgTypeError(fn, i, a.Kind(), KindNumber)
		}
		nums[i] = n
	}
	return nums, nil
}

// symbolList checks that every element of q is a symbol.
func symbolList(fn string, q *SexpQexpr) ([]*SexpSymbol, error) {
	syms := make([]*SexpSymbol, len(q.Val))
	for i, x := range q.Val {
		sym, ok := x.(*SexpSymbol)
		if !ok {
			return nil, WrongArgTypeError(fn, i, x.Kind(), KindSymbol)
		}
		syms[i] = sym
	}
	return syms, nil
}

func checkNargs(fn string, args []Sexp, want int) error {
	if len(args) != want {
		return WrongArgCountError(fn, len(args), want)
	}
	return nil
}

func headOf(q *SexpQexpr) *SexpQexpr {
	return MakeQexpr([]Sexp{q.Val[0]})
}

func tailOf(q *SexpQexpr) *SexpQexpr {
	rest := make([]Sexp, len(q.Val)-1)
	copy(rest, q.Val[1:])
	return MakeQexpr(rest)
}

func joinAll(qs []*SexpQexpr) *SexpQexpr {
	n := 0
	for _, q := range qs {
		n += len(q.Val)
	}
	joined := make([]Sexp, 0, n)
	for _, q := range qs {
		joined = append(joined, q.Val...)
	}
	return MakeQexpr(joined)
}
