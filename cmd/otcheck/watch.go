package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck/pkg/adapters/fs"
	"github.com/aretw0/otcheck/pkg/adapters/lifecycle"
)

var watchFailures bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-validate cases as they change",
	Long: `Validate every case once, then print a line each time a case file is
written or removed. Stops on interrupt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, svc, err := openSuite(args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		events, err := suite.Watch(ctx, svc)
		if err != nil {
			return err
		}

		var opts []lifecycle.SourceOption
		if watchFailures {
			opts = append(opts, lifecycle.WithFilter(lifecycle.FailuresOnly))
		}
		src := lifecycle.NewSource(events, opts...)
		if err := src.Start(ctx); err != nil {
			return err
		}
		slog.Info("watching", "root", suite.Path)

		out := cmd.OutOrStdout()
		for e := range src.Events() {
			if ev, ok := e.(fs.Event); ok {
				printEvent(out, ev)
			}
		}
		return nil
	},
}

func printEvent(out io.Writer, e fs.Event) {
	ts := time.Unix(e.Timestamp, 0).Format(time.TimeOnly)
	fmt.Fprintf(out, "%s %s\n", ts, e)
	if e.Result != nil && e.Result.Err != nil {
		fmt.Fprintf(out, "         %s\n", e.Result.Error)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&checkPattern, "pattern", "", "Doublestar pattern selecting case files")
	watchCmd.Flags().BoolVar(&watchFailures, "failures", false, "Only print failing cases and removals")
}
