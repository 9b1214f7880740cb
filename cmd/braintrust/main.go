// Command braintrust runs simulated expert panel discussions from the terminal.
//
//	braintrust chat -m mention -u Sam
//	braintrust ask -t "Is remote work permanent?" --rounds 2
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	if err := Run(os.Args[1:]); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
