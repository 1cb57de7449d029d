/*
The lispy command line REPL. With a file argument it runs that
file instead.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/billyedmoore/BuildYourOwnLisp/lispy"
)

func usage(myflags *flag.FlagSet) {
	fmt.Printf("lispy command line help:\n")
	myflags.PrintDefaults()
	os.Exit(1)
}

func main() {
	cfg := lispy.NewLispyConfig("lispy")
	cfg.DefineFlags()
	err := cfg.Flags.Parse(os.Args[1:])
	if err == flag.ErrHelp {
		usage(cfg.Flags)
	}

	if err != nil {
		panic(err)
	}
	err = cfg.ValidateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lispy command line error: '%v'\n", err)
		usage(cfg.Flags)
	}

	// the library does all the heavy lifting.
	os.Exit(lispy.ReplMain(cfg))
}
