package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck"
	"github.com/aretw0/otcheck/pkg/codec"
)

var diffCase string

var diffCmd = &cobra.Command{
	Use:   "diff [old] [new]",
	Short: "Derive the operation log that turns old into new",
	Long: `Print the operation log, encoded in --format, that turns old into new.
Each argument accepts "-" for stdin or "@file".

With --case the log is stored as a passing case document instead, encoded
by the extension of the given path.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oldText, err := readArg(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		newText, err := readArg(args[1], cmd.InOrStdin())
		if err != nil {
			return err
		}

		svc, err := otcheck.New(options...)
		if err != nil {
			return err
		}
		ctx := context.Background()
		ops := svc.Diff(ctx, string(oldText), string(newText))

		if diffCase != "" {
			suite, err := otcheck.OpenSuite(".", options...)
			if err != nil {
				return err
			}
			cs := otcheck.Case{Start: string(oldText), End: string(newText), Ops: ops, Real: true}
			if err := suite.Save(ctx, diffCase, cs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Case '%s' saved.\n", diffCase)
			return nil
		}

		c, err := codec.ForFormat(resolved.Format, codec.Options{
			StrictKinds:   resolved.StrictKinds,
			StrictNumbers: resolved.StrictNumbers,
		})
		if err != nil {
			return err
		}
		data, err := c.EncodeOps(ops)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffCase, "case", "", "Store the log as a case document at this path")
}
