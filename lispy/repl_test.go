package lispy

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

// runRepl drives the repl loop over input in noliner mode and
// returns everything it wrote.
func runRepl(env *Lispy, input string) string {
	var out bytes.Buffer
	env.Out = &out
	cfg := NewLispyConfig("test")
	cfg.DefineFlags()
	cfg.NoLiner = true
	cfg.ValidateConfig()

	pr := &Prompter{prompt: cfg.Prompt}
	err := replLoop(env, cfg, pr, bufio.NewReader(strings.NewReader(input)))
	if err != nil {
		fmt.Fprintln(&out, err)
	}
	return out.String()
}

func writeFile(fn, content string) {
	if err := os.WriteFile(fn, []byte(content), 0644); err != nil {
		panic(err)
	}
}

func Test070ReplEvaluatesLines(t *testing.T) {
	cv.Convey("the repl prints one result per line and continues open brackets", t, func() {
		env := NewLispy()
		out := runRepl(env, "+ 1 2\n(def {x}\n 5)\nx\n\"open\nstring\"\n")
		cv.So(out, cv.ShouldContainSubstring, "lispy> 3\n")
		cv.So(out, cv.ShouldContainSubstring, "... ()\n")
		cv.So(out, cv.ShouldContainSubstring, "lispy> 5\n")
		cv.So(out, cv.ShouldContainSubstring, `"open\nstring"`)
	})
}

func Test071ReplSurvivesBadInput(t *testing.T) {
	cv.Convey("a syntax error is reported and the next line still runs", t, func() {
		env := NewLispy()
		out := runRepl(env, ")\nhead {}\n* 6 7\n")
		cv.So(out, cv.ShouldContainSubstring, "Error on line 1")
		cv.So(out, cv.ShouldContainSubstring, "Error: Function 'head' passed {}!")
		cv.So(out, cv.ShouldContainSubstring, "42\n")
	})
}

func Test072ReplDotCommands(t *testing.T) {
	cv.Convey("dot commands list, dump, save, restore, export and import", t, func() {
		dir := t.TempDir()
		snap := filepath.Join(dir, "s.snap")
		js := filepath.Join(dir, "s.json")

		env := NewLispy()
		out := runRepl(env, strings.Join([]string{
			"def {answer} 42",
			".ls",
			".dump answer",
			".save " + snap,
			".export " + js,
			".dump",
			".nosuch",
			".quit",
			"+ 1 1",
		}, "\n"))
		cv.So(out, cv.ShouldContainSubstring, "answer -> 42")
		cv.So(out, cv.ShouldNotContainSubstring, "head ->")
		cv.So(out, cv.ShouldContainSubstring, "fingerprint")
		cv.So(out, cv.ShouldContainSubstring, "saved snapshot to")
		cv.So(out, cv.ShouldContainSubstring, "exported bindings to")
		cv.So(out, cv.ShouldContainSubstring, ".dump needs a file or name argument")
		cv.So(out, cv.ShouldContainSubstring, "unknown command '.nosuch'")
		cv.So(out, cv.ShouldNotContainSubstring, "lispy> 2")

		fresh := NewLispy()
		out = runRepl(fresh, ".restore "+snap+"\nanswer\n.gls\n")
		cv.So(out, cv.ShouldContainSubstring, "restored 1 bindings")
		cv.So(out, cv.ShouldContainSubstring, "lispy> 42")
		cv.So(out, cv.ShouldContainSubstring, "head -> <builtin>")

		fresh2 := NewLispy()
		out = runRepl(fresh2, ".import "+js+"\n+ answer 1\n")
		cv.So(out, cv.ShouldContainSubstring, "imported 1 bindings")
		cv.So(out, cv.ShouldContainSubstring, "43")

		out = runRepl(NewLispy(), ".restore "+filepath.Join(dir, "missing")+"\n")
		cv.So(out, cv.ShouldContainSubstring, "error:")
	})
}

func Test073ConfigFlags(t *testing.T) {
	cv.Convey("flags parse into LispyConfig and are validated", t, func() {
		cfg := NewLispyConfig("lispy")
		cfg.DefineFlags()
		err := cfg.Flags.Parse([]string{"-noliner", "-quiet", "-countcalls", "-c", "+ 1 2"})
		cv.So(err, cv.ShouldBeNil)
		cv.So(cfg.ValidateConfig(), cv.ShouldBeNil)
		cv.So(cfg.NoLiner, cv.ShouldBeTrue)
		cv.So(cfg.Quiet, cv.ShouldBeTrue)
		cv.So(cfg.CountFuncCalls, cv.ShouldBeTrue)
		cv.So(cfg.Command, cv.ShouldEqual, "+ 1 2")
		cv.So(cfg.Prompt, cv.ShouldEqual, "lispy> ")

		both := NewLispyConfig("lispy")
		both.DefineFlags()
		cv.So(both.Flags.Parse([]string{"-c", "1", "script.lspy"}), cv.ShouldBeNil)
		cv.So(both.ValidateConfig(), cv.ShouldNotBeNil)
	})
}

func Test074RunScript(t *testing.T) {
	cv.Convey("runScript loads a file and stops at the first Error", t, func() {
		dir := t.TempDir()
		good := filepath.Join(dir, "good.lspy")
		bad := filepath.Join(dir, "bad.lspy")
		writeFile(good, "(def {k} 3)\n(print (* k k))\n")
		writeFile(bad, "(def {k} 3)\n(head {})\n(def {after} 1)\n")

		cfg := NewLispyConfig("lispy")
		env := NewLispy()
		var out bytes.Buffer
		env.Out = &out
		cv.So(runScript(env, good, cfg), cv.ShouldBeTrue)
		cv.So(out.String(), cv.ShouldEqual, "9\n")

		env = NewLispy()
		env.Out = &out
		cv.So(runScript(env, bad, cfg), cv.ShouldBeFalse)
		cv.So(out.String(), cv.ShouldContainSubstring, "Error: Function 'head' passed {}!")
		_, found := env.FindObject("after")
		cv.So(found, cv.ShouldBeFalse)
	})
}

func Test075ReplMainFlushesProfiles(t *testing.T) {
	cv.Convey("ReplMain returns an exit code after writing both profiles", t, func() {
		dir := t.TempDir()
		run := func(label, command string) (int, string, string) {
			cpu := filepath.Join(dir, label+".cpu")
			mem := filepath.Join(dir, label+".mem")
			cfg := NewLispyConfig("lispy")
			cfg.DefineFlags()
			err := cfg.Flags.Parse([]string{
				"-cpuprofile", cpu, "-memprofile", mem, "-exitonfail", "-quiet", "-c", command,
			})
			cv.So(err, cv.ShouldBeNil)
			cv.So(cfg.ValidateConfig(), cv.ShouldBeNil)
			return ReplMain(cfg), cpu, mem
		}
		nonEmpty := func(fn string) bool {
			fi, err := os.Stat(fn)
			return err == nil && fi.Size() > 0
		}

		code, cpu, mem := run("ok", "+ 1 2")
		cv.So(code, cv.ShouldEqual, 0)
		cv.So(nonEmpty(cpu), cv.ShouldBeTrue)
		cv.So(nonEmpty(mem), cv.ShouldBeTrue)

		code, cpu, mem = run("fail", "head {}")
		cv.So(code, cv.ShouldEqual, 1)
		cv.So(nonEmpty(cpu), cv.ShouldBeTrue)
		cv.So(nonEmpty(mem), cv.ShouldBeTrue)
	})
}
