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

const banner = `
  ╦═╗┌─┐┌─┐┬  ┌─┐┬ ┬
  ╠╦╝├┤ ├┤ │  │ ││││
  ╩╚═└─┘└  ┴─┘└─┘└┴┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "reflow",
		Short: "Reactive state synchronization for Go",
		Long: `Reflow keeps a shared data graph and everything bound to it in sync.

The CLI runs a sync server over a state container: connected clients
subscribe to dotted paths, receive batched change notifications, and
push writes back over the same socket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Reflow ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
