package lispy

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

// sessionEnv builds an interpreter holding one binding of each
// interesting kind.
func sessionEnv() *Lispy {
	env := NewLispy()
	evalTo(env, `def {x s q} 5 "hi" {1 (+ 2 3) {}}`)
	evalTo(env, `def {add} (\ {a b} {+ a b})`)
	evalTo(env, "def {add1} (add 1)")
	evalTo(env, `def {rest} (\ {h & t} {t})`)
	evalTo(env, "def {plus2} +")
	env.AddGlobal("werr", WrongArgCountError("head", 2, 1))
	env.AddGlobal("uerr", UserError("oops"))
	return env
}

func checkSession(env *Lispy) {
	cv.So(evalTo(env, "x"), cv.ShouldEqual, "5")
	cv.So(evalTo(env, "s"), cv.ShouldEqual, `"hi"`)
	cv.So(evalTo(env, "q"), cv.ShouldEqual, "{1 (+ 2 3) {}}")
	cv.So(evalTo(env, "add 2 3"), cv.ShouldEqual, "5")
	cv.So(evalTo(env, "add1 4"), cv.ShouldEqual, "5")
	cv.So(evalTo(env, "rest 1 2 3"), cv.ShouldEqual, "{2 3}")
	cv.So(evalTo(env, "plus2 1 2"), cv.ShouldEqual, "3")

	werr, found := env.FindObject("werr")
	cv.So(found, cv.ShouldBeTrue)
	cv.So(werr, cv.ShouldResemble, WrongArgCountError("head", 2, 1))
	uerr, _ := env.FindObject("uerr")
	cv.So(uerr.SexpString(), cv.ShouldEqual, "Error: oops")
}

func Test050SnapshotRoundTrip(t *testing.T) {
	cv.Convey("a saved snapshot restores every user binding into a fresh interpreter", t, func() {
		var buf bytes.Buffer
		err := sessionEnv().SaveSnapshot(&buf)
		cv.So(err, cv.ShouldBeNil)

		env := NewLispy()
		n, err := env.RestoreSnapshot(bytes.NewReader(buf.Bytes()))
		cv.So(err, cv.ShouldBeNil)
		cv.So(n, cv.ShouldEqual, 9)
		checkSession(env)

		cv.Convey("and through a file", func() {
			fn := filepath.Join(t.TempDir(), "session.snap")
			cv.So(sessionEnv().SaveSnapshotFile(fn), cv.ShouldBeNil)
			env2 := NewLispy()
			n, err := env2.RestoreSnapshotFile(fn)
			cv.So(err, cv.ShouldBeNil)
			cv.So(n, cv.ShouldEqual, 9)
			checkSession(env2)
		})
	})
}

func Test051SnapshotRejectsDamage(t *testing.T) {
	cv.Convey("a damaged snapshot is refused and binds nothing", t, func() {
		var buf bytes.Buffer
		cv.So(sessionEnv().SaveSnapshot(&buf), cv.ShouldBeNil)
		by := buf.Bytes()
		by[len(by)-1] ^= 0xff

		env := NewLispy()
		_, err := env.RestoreSnapshot(bytes.NewReader(by))
		cv.So(err, cv.ShouldEqual, ErrChecksumMismatch)
		_, found := env.FindObject("x")
		cv.So(found, cv.ShouldBeFalse)

		_, err = env.RestoreSnapshot(bytes.NewReader([]byte("hello world")))
		cv.So(errors.Is(err, ErrBadSnapshot), cv.ShouldBeTrue)

		_, err = env.RestoreSnapshotFile(filepath.Join(t.TempDir(), "absent"))
		cv.So(os.IsNotExist(err), cv.ShouldBeTrue)
	})
}

func Test052SnapshotNeedsKnownBuiltins(t *testing.T) {
	cv.Convey("a native missing from the restoring interpreter fails the restore", t, func() {
		var buf bytes.Buffer
		env := NewLispy()
		evalTo(env, "def {p} print")
		cv.So(env.SaveSnapshot(&buf), cv.ShouldBeNil)

		sand := NewLispySandbox()
		_, err := sand.RestoreSnapshot(&buf)
		cv.So(err, cv.ShouldNotBeNil)
		_, found := sand.FindObject("p")
		cv.So(found, cv.ShouldBeFalse)
	})
}

func Test053Fingerprint(t *testing.T) {
	cv.Convey("equal values hash alike", t, func() {
		a := MakeQexpr([]Sexp{MakeInt(1), MakeStr("b")})
		cv.So(Fingerprint(a), cv.ShouldEqual, Fingerprint(a.Copy()))
		cv.So(Fingerprint(a), cv.ShouldNotEqual, Fingerprint(MakeQexpr([]Sexp{MakeInt(2), MakeStr("b")})))
		cv.So(Fingerprint(MakeInt(1)), cv.ShouldNotEqual, Fingerprint(MakeSymbol("1")))
		cv.So(len(Blake2bSum256([]byte("abc"))), cv.ShouldEqual, 32)
	})
}
