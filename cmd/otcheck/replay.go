package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck"
	"github.com/aretw0/otcheck/pkg/core"
)

var (
	replayStart string
	replayOps   string
	replayJSON  bool
)

// replayOutput is what replay prints with --json.
type replayOutput struct {
	core.Replay
	Checksum uint32 `json:"crc32"`
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an operation log and show the final state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ots, err := readArg(replayOps, cmd.InOrStdin())
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
		r := svc.Replay(ctx, replayStart, ops)

		out := cmd.OutOrStdout()
		if replayJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(replayOutput{Replay: r, Checksum: core.Checksum(r.Buffer)})
		}

		fmt.Fprintf(out, "buffer:    %q\n", r.Buffer)
		fmt.Fprintf(out, "cursor:    %d\n", r.Cursor)
		fmt.Fprintf(out, "valid:     %t\n", r.Valid)
		if !r.Valid {
			fmt.Fprintf(out, "failed at: %d (%s)\n", r.FailedAt, ops[r.FailedAt])
		}
		fmt.Fprintf(out, "crc32:     %08x\n", core.Checksum(r.Buffer))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVar(&replayStart, "start", "", "Text to replay over")
	replayCmd.Flags().StringVar(&replayOps, "ops", "[]", "Encoded operation log")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Output in JSON format")
}
