package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "textmux",
		Short: "Text command router and dispatcher",
		Long: `Textmux routes lines of text to command pipelines.

Commands are organized into named routers. Each route is a path of
literal and parameter segments, matched against the whitespace-split
tokens of the incoming line. A matched command runs its interceptor
chain and terminal handler, producing a result or a typed error.

The bundled demo router ships a small calculator, an echo command
and a help listing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		consoleCmd(),
		routesCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
