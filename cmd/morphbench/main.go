// Command morphbench compares the runtime of two image processing backends
// over sweeps of image size, structuring element size or mosaic tiling.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swdee/go-morphbench/config"
)

// logger is set up from the persistent flags before any command runs
var logger = slog.New(slog.DiscardHandler)

var rootCmd = &cobra.Command{
	Use:           "morphbench",
	Short:         "Benchmark morphological operations of two image processing backends",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		debug, _ := cmd.Flags().GetBool("debug")
		logger = newLogger(verbose, debug)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", config.DefaultPath, "Configuration file, ignored when it does not exist")
	pf.Bool("save-config", false, "Write the effective configuration back to the configuration file")
	pf.BoolP("verbose", "v", false, "Log debug messages")
	pf.Bool("debug", false, "Log debug messages with their source location")

	rootCmd.AddCommand(sweepCmd, mosaicCmd, checkCmd, plotCmd, monitorCmd, imagesCmd, listCmd)
}

// newLogger returns a text logger on stderr
func newLogger(verbose, debug bool) *slog.Logger {

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if verbose || debug {
		opts.Level = slog.LevelDebug
	}

	opts.AddSource = debug

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
