package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck"
)

var (
	applyContents string
	applyOps      string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Commit an operation log onto server contents",
	Long: `Apply the operation log to --contents and print the result. Unlike
validate, an out of bounds operation is an error.

Both --contents and --ops accept "-" for stdin or "@file".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		contents, err := readArg(applyContents, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read contents: %w", err)
		}
		ots, err := readArg(applyOps, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read operation log: %w", err)
		}

		svc, err := otcheck.New(options...)
		if err != nil {
			return err
		}

		ctx := context.Background()
		ops, err := svc.DecodeOps(ctx, ots)
		if err != nil {
			return err
		}
		out, err := svc.Apply(ctx, string(contents), ops)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVar(&applyContents, "contents", "", "Server contents")
	applyCmd.Flags().StringVar(&applyOps, "ops", "[]", "Encoded operation log")
}
