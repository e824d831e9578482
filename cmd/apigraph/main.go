// Command apigraph compiles API definition directories into an
// intermediate representation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/apigraph/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		// Commands report on stdout in the chosen format; this is the short form.
		fmt.Fprintln(os.Stderr, "apigraph:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
