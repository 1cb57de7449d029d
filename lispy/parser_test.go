package lispy

import (
	"errors"
	"strings"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test020ReaderRoundTrips(t *testing.T) {
	cv.Convey("what the reader reads, the printer writes back", t, func() {
		env := NewLispy()
		for _, src := range []string{
			"(+ 1 {2 3})",
			`(def {s} "a\"b\n")`,
			"{}",
			"()",
			`(\ {x & xs} {join (list x) xs})`,
			"-17",
			"(- 4 -4)",
		} {
			xs, err := env.ParseString(src)
			cv.So(err, cv.ShouldBeNil)
			cv.So(len(xs), cv.ShouldEqual, 1)
			cv.So(xs[0].SexpString(), cv.ShouldEqual, src)
		}
	})
}

func Test021ReaderTokens(t *testing.T) {
	cv.Convey("comments, whitespace and several top-level expressions", t, func() {
		env := NewLispy()
		xs, err := env.ParseString("1 ; one\n\t(a b)   {c}\n")
		cv.So(err, cv.ShouldBeNil)
		cv.So(len(xs), cv.ShouldEqual, 3)
		cv.So(xs[0].Kind(), cv.ShouldEqual, KindNumber)
		cv.So(xs[1].Kind(), cv.ShouldEqual, KindSexpr)
		cv.So(xs[2].Kind(), cv.ShouldEqual, KindQexpr)

		xs, err = env.ParseString("-")
		cv.So(err, cv.ShouldBeNil)
		cv.So(xs[0].Kind(), cv.ShouldEqual, KindSymbol)

		cv.Convey("a number too big for int64 reads as the invalid number Error", func() {
			xs, err := env.ParseString("99999999999999999999")
			cv.So(err, cv.ShouldBeNil)
			cv.So(xs[0].SexpString(), cv.ShouldEqual, "Error: invalid number")
			cv.So(evalTo(env, "+ 1 99999999999999999999"), cv.ShouldEqual, "Error: invalid number")
		})
	})
}

func Test022ReaderIncompleteAndBadInput(t *testing.T) {
	cv.Convey("open brackets and strings ask for more input", t, func() {
		env := NewLispy()
		_, err := env.ParseString("(+ 1")
		cv.So(errors.Is(err, ErrMoreInputNeeded), cv.ShouldBeTrue)

		_, err = env.ParseString("{1 (2")
		cv.So(errors.Is(err, ErrMoreInputNeeded), cv.ShouldBeTrue)

		_, err = env.ParseString(`(print "abc`)
		cv.So(errors.Is(err, ErrMoreInputNeeded), cv.ShouldBeTrue)

		cv.Convey("unmatched closers and stray characters are syntax errors", func() {
			_, err := env.ParseString(")")
			cv.So(err, cv.ShouldNotBeNil)
			cv.So(errors.Is(err, ErrMoreInputNeeded), cv.ShouldBeFalse)

			_, err = env.ParseString("(1 2}")
			cv.So(err, cv.ShouldNotBeNil)

			_, err = env.ParseString("a.b")
			cv.So(err, cv.ShouldNotBeNil)
			cv.So(err.Error(), cv.ShouldContainSubstring, "Error on line 1")
		})
	})
}

func Test023LexerLineNumbers(t *testing.T) {
	cv.Convey("tokens carry the line they were read on", t, func() {
		p := NewParser()
		p.ResetAddNewInput(strings.NewReader("a\nb\n\nc"))
		tokens, err := p.lexer.Tokenize()
		cv.So(err, cv.ShouldBeNil)
		cv.So(len(tokens), cv.ShouldEqual, 4)
		cv.So(tokens[0].linenum, cv.ShouldEqual, 1)
		cv.So(tokens[1].linenum, cv.ShouldEqual, 2)
		cv.So(tokens[2].linenum, cv.ShouldEqual, 4)
		cv.So(tokens[3].typ, cv.ShouldEqual, TokenEnd)
	})
}
