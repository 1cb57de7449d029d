package lispy

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"unicode/utf8"

	"github.com/ugorji/go/codec"
)

/*
 Conversion map

 lisp  <--(1)-->  Go map[string]interface{}  <--(2)-->  json / msgpack

 (1) SexpToGo() and GoToSexp(). Every value becomes a map with a
     "type" key holding its Kind name plus the fields of that kind.
     A String that is not valid UTF-8 goes base64 encoded under
     "bytes" instead of "val", since json would otherwise replace the
     bad bytes.
 (2) ugorji/go/codec, through the handles in codecHelper.

 ExportBindings/ImportBindings move whole root scopes with (1)+(2).
*/

const exportVersion = 1

type codecHelper struct {
	initialized bool
	mh          codec.MsgpackHandle
	jh          codec.JsonHandle
}

func (m *codecHelper) init() {
	if m.initialized {
		return
	}
	mapType := reflect.TypeOf(map[string]interface{}(nil))

	m.mh.MapType = mapType
	m.mh.RawToString = true
	m.mh.WriteExt = true
	m.mh.SignedInteger = true
	m.mh.Canonical = true

	m.jh.MapType = mapType
	m.jh.SignedInteger = true
	m.jh.Canonical = true
	m.initialized = true
}

var codecHelp codecHelper

func init() {
	codecHelp.init()
}

// SexpToGo turns x into a tree of maps, slices, strings and int64s.
func SexpToGo(x Sexp) interface{} {
	m := map[string]interface{}{"type": x.Kind().String()}
	switch e := x.(type) {
	case *SexpInt:
		m["val"] = e.Val
	case *SexpStr:
		if utf8.ValidString(e.S) {
			m["val"] = e.S
		} else {
			m["bytes"] = base64.StdEncoding.EncodeToString([]byte(e.S))
		}
	case *SexpSymbol:
		m["val"] = e.name
	case *SexpError:
		m["kind"] = e.Code.String()
		m["msg"] = e.Error()
		m["code"] = int64(e.Code)
		m["fields"] = map[string]interface{}{
			"func":     e.Func,
			"name":     e.Name,
			"index":    int64(e.Index),
			"got":      int64(e.Got),
			"want":     int64(e.Want),
			"gotKind":  int64(e.GotKind),
			"wantKind": int64(e.WantKind),
			"msg":      e.Msg,
		}
	case *SexpSexpr:
		m["val"] = seqToGo(e.Val)
	case *SexpQexpr:
		m["val"] = seqToGo(e.Val)
	case *SexpFunction:
		if e.IsBuiltin() {
			m["builtin"] = e.name
			break
		}
		m["formals"] = seqToGo(e.formals.Val)
		m["body"] = seqToGo(e.body.Val)
		m["env"] = scopeToGo(e.scope)
	}
	return m
}

func seqToGo(xs []Sexp) []interface{} {
	out := make([]interface{}, len(xs))
	for i, x := range xs {
		out[i] = SexpToGo(x)
	}
	return out
}

func scopeToGo(s *Scope) map[string]interface{} {
	out := make(map[string]interface{}, len(s.Map))
	for name, val := range s.Map {
		out[name] = SexpToGo(val)
	}
	return out
}

// GoToSexp reverses SexpToGo. Natives are looked up in env.
func GoToSexp(iface interface{}, env *Lispy) (Sexp, error) {
	m, ok := iface.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("GoToSexp: expected map, got %T", iface)
	}
	typ, _ := m["type"].(string)

	switch typ {
	case KindNumber.String():
		i, err := goToInt64(m["val"])
		if err != nil {
			return nil, err
		}
		return MakeInt(i), nil
	case KindString.String():
		if b, ok := m["bytes"]; ok {
			by, err := goToBytes(b)
			if err != nil {
				return nil, err
			}
			return MakeStr(string(by)), nil
		}
		s, err := goToString(m["val"])
		if err != nil {
			return nil, err
		}
		return MakeStr(s), nil
	case KindSymbol.String():
		s, err := goToString(m["val"])
		if err != nil {
			return nil, err
		}
		return MakeSymbol(s), nil
	case KindError.String():
		return goToError(m)
	case KindSexpr.String(), KindQexpr.String():
		xs, err := goToSeq(m["val"], env)
		if err != nil {
			return nil, err
		}
		if typ == KindSexpr.String() {
			return MakeSexpr(xs), nil
		}
		return MakeQexpr(xs), nil
	case KindFunction.String():
		if b, ok := m["builtin"]; ok {
			name, err := goToString(b)
			if err != nil {
				return nil, err
			}
			fn, ok := env.Builtin(name)
			if !ok {
				return nil, fmt.Errorf("GoToSexp: unknown builtin '%s'", name)
			}
			return fn, nil
		}
		formals, err := goToSeq(m["formals"], env)
		if err != nil {
			return nil, err
		}
		body, err := goToSeq(m["body"], env)
		if err != nil {
			return nil, err
		}
		scope, err := goToScope(m["env"], "lambda", env)
		if err != nil {
			return nil, err
		}
		return &SexpFunction{formals: MakeQexpr(formals), body: MakeQexpr(body), scope: scope}, nil
	}
	return nil, fmt.Errorf("GoToSexp: unrecognized type '%v'", m["type"])
}

func goToSeq(iface interface{}, env *Lispy) ([]Sexp, error) {
	if iface == nil {
		return nil, nil
	}
	arr, ok := iface.([]interface{})
	if !ok {
		return nil, fmt.Errorf("GoToSexp: expected array, got %T", iface)
	}
	xs := make([]Sexp, len(arr))
	for i, a := range arr {
		x, err := GoToSexp(a, env)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return xs, nil
}

func goToScope(iface interface{}, name string, env *Lispy) (*Scope, error) {
	s := NewScope(name)
	if iface == nil {
		return s, nil
	}
	m, ok := iface.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("GoToSexp: expected map of bindings, got %T", iface)
	}
	for k, v := range m {
		x, err := GoToSexp(v, env)
		if err != nil {
			return nil, fmt.Errorf("binding '%s': %w", k, err)
		}
		s.Map[k] = x
	}
	return s, nil
}

func goToError(m map[string]interface{}) (Sexp, error) {
	f, ok := m["fields"].(map[string]interface{})
	if !ok {
		// written by something other than SexpToGo: keep the text
		msg, _ := m["msg"].(string)
		return UserError(msg), nil
	}
	e := &SexpError{}
	code, err := goToInt64(m["code"])
	if err != nil {
		return nil, err
	}
	e.Code = ErrKind(code)

	ints := map[string]*int{"index": &e.Index, "got": &e.Got, "want": &e.Want}
	for k, p := range ints {
		i, err := goToInt64(f[k])
		if err != nil {
			return nil, err
		}
		*p = int(i)
	}
	gk, err := goToInt64(f["gotKind"])
	if err != nil {
		return nil, err
	}
	wk, err := goToInt64(f["wantKind"])
	if err != nil {
		return nil, err
	}
	e.GotKind, e.WantKind = Kind(gk), Kind(wk)
	e.Func, _ = f["func"].(string)
	e.Name, _ = f["name"].(string)
	e.Msg, _ = f["msg"].(string)
	return e, nil
}

// JSON numbers may come back as int64, uint64 or float64 depending
// on the handle and the value.
func goToInt64(iface interface{}) (int64, error) {
	switch v := iface.(type) {
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	}
	return 0, fmt.Errorf("GoToSexp: expected integer, got %T", iface)
}

func goToString(iface interface{}) (string, error) {
	switch v := iface.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("GoToSexp: expected string, got %T", iface)
}

func goToBytes(iface interface{}) ([]byte, error) {
	s, err := goToString(iface)
	if err != nil {
		return nil, err
	}
	by, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("GoToSexp: bad base64 in bytes: %v", err)
	}
	return by, nil
}

func GoToJson(iface interface{}) ([]byte, error) {
	var w bytes.Buffer
	enc := codec.NewEncoder(&w, &codecHelp.jh)
	err := enc.Encode(&iface)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func JsonToGo(json []byte) (interface{}, error) {
	var iface interface{}
	dec := codec.NewDecoderBytes(json, &codecHelp.jh)
	err := dec.Decode(&iface)
	if err != nil {
		return nil, err
	}
	VPrintf("decoded json type: %T\n", iface)
	return iface, nil
}

func GoToMsgpack(iface interface{}) ([]byte, error) {
	var w bytes.Buffer
	enc := codec.NewEncoder(&w, &codecHelp.mh)
	err := enc.Encode(&iface)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func MsgpackToGo(msgp []byte) (interface{}, error) {
	var iface interface{}
	dec := codec.NewDecoderBytes(msgp, &codecHelp.mh)
	err := dec.Decode(&iface)
	if err != nil {
		return nil, err
	}
	return iface, nil
}

// sexp -> json
func SexpToJson(x Sexp) ([]byte, error) {
	return GoToJson(SexpToGo(x))
}

// json -> sexp. env is needed to resolve builtins.
func JsonToSexp(json []byte, env *Lispy) (Sexp, error) {
	iface, err := JsonToGo(json)
	if err != nil {
		return nil, err
	}
	return GoToSexp(iface, env)
}

func SexpToMsgpack(x Sexp) ([]byte, error) {
	return GoToMsgpack(SexpToGo(x))
}

func MsgpackToSexp(msgp []byte, env *Lispy) (Sexp, error) {
	iface, err := MsgpackToGo(msgp)
	if err != nil {
		return nil, fmt.Errorf("MsgpackToSexp failed at MsgpackToGo step: '%s'", err)
	}
	return GoToSexp(iface, env)
}

// ExportFormat picks between the two interchange encodings.
type ExportFormat int

const (
	FormatJson ExportFormat = iota
	FormatMsgpack
)

// FormatForPath chooses msgpack for .mp and .msgpack files, json
// for anything else.
func FormatForPath(path string) ExportFormat {
	switch filepath.Ext(path) {
	case ".mp", ".msgpack":
		return FormatMsgpack
	}
	return FormatJson
}

// ExportBindings writes the user bindings of the root scope.
func (env *Lispy) ExportBindings(w io.Writer, format ExportFormat) error {
	doc := map[string]interface{}{
		"lispy":    int64(exportVersion),
		"bindings": scopeToGo(env.userBindings()),
	}
	var by []byte
	var err error
	if format == FormatMsgpack {
		by, err = GoToMsgpack(doc)
	} else {
		by, err = GoToJson(doc)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(by)
	return err
}

// ImportBindings reads a document written by ExportBindings and
// binds its names in the root scope. It returns how many were bound.
func (env *Lispy) ImportBindings(r io.Reader, format ExportFormat) (int, error) {
	by, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	var iface interface{}
	if format == FormatMsgpack {
		iface, err = MsgpackToGo(by)
	} else {
		iface, err = JsonToGo(by)
	}
	if err != nil {
		return 0, err
	}
	doc, ok := iface.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("import: expected a map at top level, got %T", iface)
	}
	if _, ok := doc["lispy"]; !ok {
		return 0, fmt.Errorf("import: missing 'lispy' version key")
	}
	scope, err := goToScope(doc["bindings"], "import", env)
	if err != nil {
		return 0, err
	}

	names := scope.Names()
	for _, name := range names {
		env.root.BindLocal(name, scope.Map[name])
	}
	return len(names), nil
}

func (env *Lispy) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return env.ExportBindings(f, FormatForPath(path))
}

func (env *Lispy) ImportFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return env.ImportBindings(f, FormatForPath(path))
}
