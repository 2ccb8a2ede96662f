package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/slate/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬  ┌─┐┌┬┐┌─┐
  └─┐│  ├─┤ │ ├┤
  └─┘┴─┘┴ ┴ ┴ └─┘
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "slate",
		Short: "Compile and serve server-rendered markup templates",
		Long: `Slate compiles markup templates into string templates with dynamic
slots and renders them on the server.

  • Static subtrees fold to literal HTML at compile time
  • Awaited expressions resolve concurrently, in document order
  • Components write to <head> and <body> from anywhere in the tree
  • Hot reload development server`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	cmd.AddCommand(
		initCmd(),
		compileCmd(),
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)
	return cmd
}

// printBanner prints the slate banner.
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

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
