package lispy

// Equal is structural equality. A closure's captured scope is
// not part of its identity; only formals and body are compared.
func Equal(a, b Sexp) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *SexpInt:
		return x.Val == b.(*SexpInt).Val
	case *SexpStr:
		return x.S == b.(*SexpStr).S
	case *SexpSymbol:
		return x.name == b.(*SexpSymbol).name
	case *SexpError:
		return x.Error() == b.(*SexpError).Error()
	case *SexpSexpr:
		return equalSeq(x.Val, b.(*SexpSexpr).Val)
	case *SexpQexpr:
		return equalSeq(x.Val, b.(*SexpQexpr).Val)
	case *SexpFunction:
		y := b.(*SexpFunction)
		if x.IsBuiltin() || y.IsBuiltin() {
			return x.IsBuiltin() && y.IsBuiltin() && x.name == y.name
		}
		return equalSeq(x.formals.Val, y.formals.Val) && equalSeq(x.body.Val, y.body.Val)
	}
	return false
}

func equalSeq(a, b []Sexp) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func compareInt(a, b *SexpInt) int {
	if a.Val == b.Val {
		return 0
	}
	if a.Val < b.Val {
		return -1
	}
	return 1
}

func boolToInt(b bool) *SexpInt {
	if b {
		return MakeInt(1)
	}
	return MakeInt(0)
}
