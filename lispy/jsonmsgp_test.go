package lispy

import (
	"bytes"
	"path/filepath"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test060JsonExportImport(t *testing.T) {
	cv.Convey("bindings exported as json import back into a fresh interpreter", t, func() {
		var buf bytes.Buffer
		cv.So(sessionEnv().ExportBindings(&buf, FormatJson), cv.ShouldBeNil)
		cv.So(buf.String(), cv.ShouldContainSubstring, `"type":"Number"`)

		env := NewLispy()
		n, err := env.ImportBindings(&buf, FormatJson)
		cv.So(err, cv.ShouldBeNil)
		cv.So(n, cv.ShouldEqual, 9)
		checkSession(env)

		cv.Convey("a String that is not valid UTF-8 keeps its exact bytes", func() {
			raw := NewLispy()
			raw.AddGlobal("s", MakeStr("\xff\x00ok\xfe"))
			var rbuf bytes.Buffer
			cv.So(raw.ExportBindings(&rbuf, FormatJson), cv.ShouldBeNil)
			cv.So(rbuf.String(), cv.ShouldContainSubstring, `"bytes"`)

			fresh := NewLispy()
			n, err := fresh.ImportBindings(&rbuf, FormatJson)
			cv.So(err, cv.ShouldBeNil)
			cv.So(n, cv.ShouldEqual, 1)
			s, found := fresh.FindObject("s")
			cv.So(found, cv.ShouldBeTrue)
			cv.So(s.(*SexpStr).S, cv.ShouldEqual, "\xff\x00ok\xfe")
			orig, _ := raw.FindObject("s")
			cv.So(Equal(orig, s), cv.ShouldBeTrue)
		})
	})
}

func Test061MsgpackExportImport(t *testing.T) {
	cv.Convey("bindings exported as msgpack import back into a fresh interpreter", t, func() {
		var buf bytes.Buffer
		cv.So(sessionEnv().ExportBindings(&buf, FormatMsgpack), cv.ShouldBeNil)

		env := NewLispy()
		n, err := env.ImportBindings(&buf, FormatMsgpack)
		cv.So(err, cv.ShouldBeNil)
		cv.So(n, cv.ShouldEqual, 9)
		checkSession(env)
	})
}

func Test062ExportFilesPickFormatByExtension(t *testing.T) {
	cv.Convey(".mp and .msgpack mean msgpack, anything else json", t, func() {
		cv.So(FormatForPath("a.mp"), cv.ShouldEqual, FormatMsgpack)
		cv.So(FormatForPath("dir/a.msgpack"), cv.ShouldEqual, FormatMsgpack)
		cv.So(FormatForPath("a.json"), cv.ShouldEqual, FormatJson)
		cv.So(FormatForPath("a"), cv.ShouldEqual, FormatJson)

		dir := t.TempDir()
		for _, name := range []string{"s.json", "s.mp"} {
			fn := filepath.Join(dir, name)
			cv.So(sessionEnv().ExportFile(fn), cv.ShouldBeNil)
			env := NewLispy()
			n, err := env.ImportFile(fn)
			cv.So(err, cv.ShouldBeNil)
			cv.So(n, cv.ShouldEqual, 9)
			checkSession(env)
		}
	})
}

func Test063SingleValueConversions(t *testing.T) {
	cv.Convey("single values survive json and msgpack", t, func() {
		env := NewLispy()
		vals := []Sexp{
			MakeInt(-42),
			MakeStr("multi\nline"),
			MakeStr("\xff\xfe"),
			MakeSymbol("sym"),
			MakeSexpr(nil),
			MakeQexpr([]Sexp{MakeInt(1), MakeQexpr([]Sexp{MakeSymbol("z")})}),
			TooManyArgumentsError(3, 2),
		}
		for _, v := range vals {
			js, err := SexpToJson(v)
			cv.So(err, cv.ShouldBeNil)
			back, err := JsonToSexp(js, env)
			cv.So(err, cv.ShouldBeNil)
			cv.So(Equal(back, v), cv.ShouldBeTrue)

			mp, err := SexpToMsgpack(v)
			cv.So(err, cv.ShouldBeNil)
			back, err = MsgpackToSexp(mp, env)
			cv.So(err, cv.ShouldBeNil)
			cv.So(Equal(back, v), cv.ShouldBeTrue)
		}

		cv.Convey("bad documents are reported, not panicked on", func() {
			_, err := JsonToSexp([]byte(`{"type":"Nope"}`), env)
			cv.So(err, cv.ShouldNotBeNil)
			_, err = JsonToSexp([]byte(`[1,2`), env)
			cv.So(err, cv.ShouldNotBeNil)
			_, err = env.ImportBindings(bytes.NewBufferString(`{"bindings":{}}`), FormatJson)
			cv.So(err, cv.ShouldNotBeNil)
		})
	})
}

func Test064DumpValue(t *testing.T) {
	cv.Convey(".dump shows the structure and fingerprint of a binding", t, func() {
		env := sessionEnv()
		s, err := env.DumpBinding("q")
		cv.So(err, cv.ShouldBeNil)
		cv.So(s, cv.ShouldContainSubstring, "Q-Expression")
		cv.So(s, cv.ShouldContainSubstring, "fingerprint")

		_, err = env.DumpBinding("nope")
		cv.So(err, cv.ShouldNotBeNil)
	})
}
