// Command memsim is a trace-driven simulator of a two-level memory
// hierarchy: two independent set-associative L1 caches for instructions
// and data, backed by a stubbed L2.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/calvinalkan/memsim/internal/cli"
)

func main() {
	// cli.Run only ever reads PWD out of env, so there's no need to
	// collect the whole environment the way a multi-command CLI with
	// richer environment-driven config might.
	env := map[string]string{"PWD": os.Getenv("PWD")}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, sigCh)

	os.Exit(exitCode)
}
