// Command exprdump is a diagnostic CLI over the fp façade: it parses an
// expression, optionally optimizes it, and prints the compiled bytecode
// mnemonically. It sits outside the tested core contract, same as the
// teacher's own CLI sits outside its interpreter core.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/mattn/go-isatty"

	"fpgo/fp"
)

func main() {
	vars := flag.String("vars", "", "comma-separated variable names")
	optimize := flag.Bool("optimize", false, "run the algebraic optimizer before dumping")
	verbose := flag.Bool("v", false, "dump the literal pool with github.com/kr/pretty")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: exprdump [-vars a,b] [-optimize] [-v] '<expr>'")
		os.Exit(2)
	}

	p := fp.NewFloat64()
	if err := p.Parse(flag.Arg(0), *vars, false); err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}
	if *optimize {
		p.Optimize()
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprint(out, "\033[36m")
		p.PrintBytecode(out)
		fmt.Fprint(out, "\033[0m")
	} else {
		p.PrintBytecode(out)
	}

	if *verbose {
		out.Flush()
		fmt.Println("--- literals ---")
		pretty.Println(p.Program().Literals)
	}
}
