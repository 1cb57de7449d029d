package lispy

import (
	"fmt"

	"github.com/shurcooL/go-goon"
)

// DumpValue shows the structure of x as a Go literal of the tree
// SexpToGo builds for it.
func DumpValue(x Sexp) string {
	return goon.Sdump(SexpToGo(x))
}

// DumpBinding dumps the value name is bound to, with its
// fingerprint.
func (env *Lispy) DumpBinding(name string) (string, error) {
	x, err := env.root.Lookup(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s  [%s, fingerprint %016x]\n%s",
		name, x.Kind(), Fingerprint(x), DumpValue(x)), nil
}
