package lispy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tinylib/msgp/msgp"
)

// A snapshot file is one msgpack array:
//
//	[ "lispy-snapshot", version, blake2b-256(payload), payload ]
//
// where payload is the msgpack encoding of a Snapshot.
const (
	snapshotMagic   = "lispy-snapshot"
	snapshotVersion = 1
)

var ErrBadSnapshot = errors.New("not a lispy snapshot")
var ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

// value tags on the wire
const (
	tagInt uint8 = iota + 1
	tagStr
	tagErr
	tagSym
	tagSexpr
	tagQexpr
	tagBuiltin
	tagLambda
)

// Snapshot holds a set of bindings in msgp encodable form. Natives
// are written by name and resolved against funcs when read back.
type Snapshot struct {
	Bindings *Scope
	funcs    map[string]LispyBuiltin
}

func (sn *Snapshot) EncodeMsg(w *msgp.Writer) error {
	return encodeScope(w, sn.Bindings)
}

func (sn *Snapshot) DecodeMsg(r *msgp.Reader) (err error) {
	sn.Bindings, err = sn.decodeScope(r, "snapshot")
	return
}

func encodeScope(w *msgp.Writer, s *Scope) (err error) {
	err = w.WriteMapHeader(uint32(len(s.Map)))
	if err != nil {
		return
	}
	for _, name := range s.Names() {
		err = w.WriteString(name)
		if err != nil {
			return
		}
		err = EncodeSexp(w, s.Map[name])
		if err != nil {
			return
		}
	}
	return
}

// EncodeSexp writes x as a tagged msgpack array.
func EncodeSexp(w *msgp.Writer, x Sexp) (err error) {
	switch e := x.(type) {
	case *SexpInt:
		if err = writeTag(w, 2, tagInt); err != nil {
			return
		}
		return w.WriteInt64(e.Val)
	case *SexpStr:
		if err = writeTag(w, 2, tagStr); err != nil {
			return
		}
		return w.WriteString(e.S)
	case *SexpSymbol:
		if err = writeTag(w, 2, tagSym); err != nil {
			return
		}
		return w.WriteString(e.name)
	case *SexpError:
		if err = writeTag(w, 10, tagErr); err != nil {
			return
		}
		for _, i := range []int{int(e.Code), e.Index, e.Got, e.Want, int(e.GotKind), int(e.WantKind)} {
			if err = w.WriteInt64(int64(i)); err != nil {
				return
			}
		}
		for _, s := range []string{e.Func, e.Name, e.Msg} {
			if err = w.WriteString(s); err != nil {
				return
			}
		}
		return
	case *SexpSexpr:
		if err = writeTag(w, 2, tagSexpr); err != nil {
			return
		}
		return encodeSeq(w, e.Val)
	case *SexpQexpr:
		if err = writeTag(w, 2, tagQexpr); err != nil {
			return
		}
		return encodeSeq(w, e.Val)
	case *SexpFunction:
		if e.IsBuiltin() {
			if err = writeTag(w, 2, tagBuiltin); err != nil {
				return
			}
			return w.WriteString(e.name)
		}
		if err = writeTag(w, 4, tagLambda); err != nil {
			return
		}
		if err = EncodeSexp(w, e.formals); err != nil {
			return
		}
		if err = EncodeSexp(w, e.body); err != nil {
			return
		}
		return encodeScope(w, e.scope)
	}
	return fmt.Errorf("cannot encode value of type %T", x)
}

func writeTag(w *msgp.Writer, sz uint32, tag uint8) error {
	if err := w.WriteArrayHeader(sz); err != nil {
		return err
	}
	return w.WriteUint8(tag)
}

func encodeSeq(w *msgp.Writer, xs []Sexp) (err error) {
	err = w.WriteArrayHeader(uint32(len(xs)))
	if err != nil {
		return
	}
	for _, x := range xs {
		if err = EncodeSexp(w, x); err != nil {
			return
		}
	}
	return
}

func (sn *Snapshot) decodeScope(r *msgp.Reader, name string) (*Scope, error) {
	n, err := r.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	s := NewScope(name)
	for i := uint32(0); i < n; i++ {
		key, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		val, err := sn.DecodeSexp(r)
		if err != nil {
			return nil, fmt.Errorf("binding '%s': %w", key, err)
		}
		s.Map[key] = val
	}
	return s, nil
}

// DecodeSexp reads one value written by EncodeSexp.
func (sn *Snapshot) DecodeSexp(r *msgp.Reader) (Sexp, error) {
	sz, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if sz < 2 {
		return nil, ErrBadSnapshot
	}
	tag, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagInt:
		i, err := r.ReadInt64()
		if err != nil {
			return nil, err
		}
		return MakeInt(i), nil
	case tagStr, tagSym, tagBuiltin:
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		switch tag {
		case tagStr:
			return MakeStr(s), nil
		case tagSym:
			return MakeSymbol(s), nil
		}
		fn, ok := sn.funcs[s]
		if !ok {
			return nil, fmt.Errorf("unknown builtin '%s'", s)
		}
		return MakeBuiltin(s, fn), nil
	case tagErr:
		if sz != 10 {
			return nil, ErrBadSnapshot
		}
		var ints [6]int64
		for i := range ints {
			if ints[i], err = r.ReadInt64(); err != nil {
				return nil, err
			}
		}
		var strs [3]string
		for i := range strs {
			if strs[i], err = r.ReadString(); err != nil {
				return nil, err
			}
		}
		return &SexpError{
			Code:     ErrKind(ints[0]),
			Index:    int(ints[1]),
			Got:      int(ints[2]),
			Want:     int(ints[3]),
			GotKind:  Kind(ints[4]),
			WantKind: Kind(ints[5]),
			Func:     strs[0],
			Name:     strs[1],
			Msg:      strs[2],
		}, nil
	case tagSexpr, tagQexpr:
		xs, err := sn.decodeSeq(r)
		if err != nil {
			return nil, err
		}
		if tag == tagSexpr {
			return MakeSexpr(xs), nil
		}
		return MakeQexpr(xs), nil
	case tagLambda:
		if sz != 4 {
			return nil, ErrBadSnapshot
		}
		formals, err := sn.decodeQexpr(r)
		if err != nil {
			return nil, err
		}
		body, err := sn.decodeQexpr(r)
		if err != nil {
			return nil, err
		}
		scope, err := sn.decodeScope(r, "lambda")
		if err != nil {
			return nil, err
		}
		return &SexpFunction{formals: formals, body: body, scope: scope}, nil
	}
	return nil, fmt.Errorf("%w: unknown value tag %d", ErrBadSnapshot, tag)
}

func (sn *Snapshot) decodeSeq(r *msgp.Reader) ([]Sexp, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	xs := make([]Sexp, 0, n)
	for i := uint32(0); i < n; i++ {
		x, err := sn.DecodeSexp(r)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

func (sn *Snapshot) decodeQexpr(r *msgp.Reader) (*SexpQexpr, error) {
	x, err := sn.DecodeSexp(r)
	if err != nil {
		return nil, err
	}
	q, ok := x.(*SexpQexpr)
	if !ok {
		return nil, fmt.Errorf("%w: lambda part is %s, not Q-Expression", ErrBadSnapshot, x.Kind())
	}
	return q, nil
}

// userBindings copies the root bindings that differ from a freshly
// started interpreter.
func (env *Lispy) userBindings() *Scope {
	s := NewScope("snapshot")
	for name, val := range env.root.Map {
		if isPristineBuiltin(name, val) {
			continue
		}
		s.Map[name] = val.Copy()
	}
	return s
}

// SaveSnapshot writes the user bindings of the root scope to w.
func (env *Lispy) SaveSnapshot(w io.Writer) error {
	var payload bytes.Buffer
	err := msgp.Encode(&payload, &Snapshot{Bindings: env.userBindings()})
	if err != nil {
		return err
	}

	mw := msgp.NewWriter(w)
	if err = mw.WriteArrayHeader(4); err != nil {
		return err
	}
	if err = mw.WriteString(snapshotMagic); err != nil {
		return err
	}
	if err = mw.WriteInt64(snapshotVersion); err != nil {
		return err
	}
	if err = mw.WriteBytes(Blake2bSum256(payload.Bytes())); err != nil {
		return err
	}
	if err = mw.WriteBytes(payload.Bytes()); err != nil {
		return err
	}
	return mw.Flush()
}

// RestoreSnapshot reads a snapshot written by SaveSnapshot and binds
// every name in it in the root scope. Nothing is bound unless the
// whole snapshot reads back and its checksum matches.
func (env *Lispy) RestoreSnapshot(rd io.Reader) (int, error) {
	mr := msgp.NewReader(rd)
	sz, err := mr.ReadArrayHeader()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if sz != 4 {
		return 0, ErrBadSnapshot
	}
	magic, err := mr.ReadString()
	if err != nil || magic != snapshotMagic {
		return 0, ErrBadSnapshot
	}
	version, err := mr.ReadInt64()
	if err != nil {
		return 0, err
	}
	if version != snapshotVersion {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, version)
	}
	sum, err := mr.ReadBytes(nil)
	if err != nil {
		return 0, err
	}
	payload, err := mr.ReadBytes(nil)
	if err != nil {
		return 0, err
	}
	if !bytes.Equal(sum, Blake2bSum256(payload)) {
		return 0, ErrChecksumMismatch
	}

	sn := &Snapshot{funcs: env.funcs}
	if err = msgp.Decode(bytes.NewReader(payload), sn); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	for name, val := range sn.Bindings.Map {
		env.root.BindLocal(name, val)
	}
	VPrintf("restored %d bindings from snapshot\n", sn.Bindings.Len())
	return sn.Bindings.Len(), nil
}

func (env *Lispy) SaveSnapshotFile(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("error: cannot create snapshot file '%s': '%v'", fn, err)
	}
	defer f.Close()
	return env.SaveSnapshot(f)
}

func (env *Lispy) RestoreSnapshotFile(fn string) (int, error) {
	f, err := os.Open(fn)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return env.RestoreSnapshot(f)
}

// Fingerprint is a 64 bit BLAKE2b hash of the encoded form of x.
// Values that are Equal and contain no closures have the same
// fingerprint.
func Fingerprint(x Sexp) uint64 {
	var buf bytes.Buffer
	w := msgp.NewWriter(&buf)
	if err := EncodeSexp(w, x); err != nil {
		return 0
	}
	if err := w.Flush(); err != nil {
		return 0
	}
	return Blake2bUint64(buf.Bytes())
}
