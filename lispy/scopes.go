package lispy

import (
	"fmt"
	"sort"
	"strings"
)

// Scope is one frame of the environment chain. Parent is only
// followed for lookup and for finding the root; a Scope never
// owns its parent.
type Scope struct {
	Map      map[string]Sexp
	Name     string
	Parent   *Scope
	IsGlobal bool
}

func NewScope(name string) *Scope {
	return &Scope{
		Map:  make(map[string]Sexp),
		Name: name,
	}
}

// Lookup returns a copy of the value bound to name in this frame
// or the nearest ancestor that binds it.
func (s *Scope) Lookup(name string) (Sexp, error) {
	for cur := s; cur != nil; cur = cur.Parent {
		if x, ok := cur.Map[name]; ok {
			return x.Copy(), nil
		}
	}
	return nil, UnboundSymbolError(name)
}

func (s *Scope) BindLocal(name string, x Sexp) {
	s.Map[name] = x.Copy()
}

func (s *Scope) BindGlobal(name string, x Sexp) {
	s.Root().BindLocal(name, x)
}

func (s *Scope) Root() *Scope {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Clone keeps the parent link and deep copies every binding of
// this frame only.
func (s *Scope) Clone() *Scope {
	n := &Scope{
		Map:      make(map[string]Sexp, len(s.Map)),
		Name:     s.Name,
		Parent:   s.Parent,
		IsGlobal: s.IsGlobal,
	}
	for k, v := range s.Map {
		n.Map[k] = v.Copy()
	}
	return n
}

func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.Map))
	for k := range s.Map {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *Scope) Len() int {
	return len(s.Map)
}

// Show renders the bindings of this frame, sorted by name. With
// hideBuiltins the untouched native functions are left out.
func (s *Scope) Show(indent int, label string, hideBuiltins bool) string {
	rep := strings.Repeat(" ", indent)
	rep4 := strings.Repeat(" ", indent+4)
	str := fmt.Sprintf("%s %s  %s\n", rep, label, s.Name)
	shown := 0
	for _, name := range s.Names() {
		val := s.Map[name]
		if hideBuiltins && isPristineBuiltin(name, val) {
			continue
		}
		str += fmt.Sprintf("%s %s -> %s\n", rep4, name, val.SexpString())
		shown++
	}
	if shown == 0 {
		str += fmt.Sprintf("%s empty-scope: no symbols\n", rep4)
	}
	return str
}

// isPristineBuiltin is true when name is still bound to the
// native function registered under that same name.
func isPristineBuiltin(name string, x Sexp) bool {
	f, ok := x.(*SexpFunction)
	return ok && f.IsBuiltin() && f.name == name
}
