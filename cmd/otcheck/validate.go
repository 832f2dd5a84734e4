package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck"
)

var (
	validateStart string
	validateEnd   string
	validateOps   string
	validateReal  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a client's claim about an operation log",
	Long: `Replay the operation log over --start and print true when the computed
match against --end equals --real, false otherwise.

--ops takes the encoded log literally, "-" for stdin or "@file".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ots, err := readArg(validateOps, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read operation log: %w", err)
		}

		svc, err := otcheck.New(options...)
		if err != nil {
			return err
		}

		ok, err := svc.ValidateWire(context.Background(), validateStart, validateEnd, ots, validateReal)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateStart, "start", "", "Text the client started from")
	validateCmd.Flags().StringVar(&validateEnd, "end", "", "Text the client ended with")
	validateCmd.Flags().StringVar(&validateOps, "ops", "[]", "Encoded operation log")
	validateCmd.Flags().BoolVar(&validateReal, "real", false, "The client's claim that the log reproduces --end")
}
