package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	mastSource string
	dashSource string
	noHistory  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mastdash",
		Short:         "Valve torque capability matrix from the MAST and Dashboard sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&mastSource, "mast", "", "MAST sheet source (URL, file or gsheets://id/range; default MAST_URL)")
	rootCmd.PersistentFlags().StringVar(&dashSource, "dash", "", "Dashboard sheet source (default DASH_URL)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Do not record loads and runs")

	rootCmd.AddCommand(
		newLoadCmd(),
		newQueryCmd(),
		newExportCmd(),
		newHistoryCmd(),
		newWatchCmd(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
