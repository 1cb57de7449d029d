package lispy

import (
	"fmt"
)

type NumericOp int

const (
	Add NumericOp = iota
	Sub
	Mult
	Div
)

var numericOpNames = map[string]NumericOp{
	"+":     Add,
	"plus":  Add,
	"-":     Sub,
	"sub":   Sub,
	"*":     Mult,
	"times": Mult,
	"/":     Div,
	"div":   Div,
}

// NumericDo applies op to a and b. Overflow wraps.
func NumericDo(op NumericOp, a, b *SexpInt) (*SexpInt, error) {
	switch op {
	case Add:
		return MakeInt(a.Val + b.Val), nil
	case Sub:
		return MakeInt(a.Val - b.Val), nil
	case Mult:
		return MakeInt(a.Val * b.Val), nil
	case Div:
		if b.Val == 0 {
			return nil, DivisionByZeroError()
		}
		return MakeInt(a.Val / b.Val), nil
	}
	return nil, fmt.Errorf("unrecognized numeric operation %d", op)
}

// NumericFold left-folds op over nums. A single operand to Sub is
// negated.
func NumericFold(op NumericOp, nums []*SexpInt) (*SexpInt, error) {
	accum := MakeInt(nums[0].Val)
	if op == Sub && len(nums) == 1 {
		accum.Val = -accum.Val
		return accum, nil
	}
	var err error
	for _, n := range nums[1:] {
		accum, err = NumericDo(op, accum, n)
		if err != nil {
			return nil, err
		}
	}
	return accum, nil
}
