package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck"
	"github.com/aretw0/otcheck/internal/platform"
)

var (
	checkPattern string
	checkJSON    bool
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate every stored case of a suite",
	Long: `Validate the case documents under dir. Without dir, the suite root is
searched upwards from the working directory (.otcheck or .git), falling back
to the working directory itself.

Exits non-zero when a case disagrees with its claim or fails to decode.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, svc, err := openSuite(args)
		if err != nil {
			return err
		}

		results, err := suite.Run(context.Background(), svc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range results {
			if !r.Passed() {
				failed++
			}
		}

		if checkJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				switch {
				case r.Err != nil:
					fmt.Fprintf(out, "ERROR %s: %s\n", r.Path, r.Error)
				case !r.Verdict.Agrees:
					fmt.Fprintf(out, "FAIL  %s: computed %t, claimed %t\n", r.Path, r.Verdict.Result, r.Verdict.Real)
				default:
					fmt.Fprintf(out, "ok    %s\n", r.Path)
				}
			}
			fmt.Fprintf(out, "%d cases, %d failed\n", len(results), failed)
		}

		if failed > 0 {
			return errCheckFailed
		}
		return nil
	},
}

// openSuite resolves the suite directory and builds the service for it.
func openSuite(args []string) (*otcheck.Suite, *otcheck.Service, error) {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		dir = wd
		if root, err := platform.FindRoot(wd); err == nil {
			dir = root
		}
	}

	opts := options
	if checkPattern != "" {
		opts = append(opts[:len(opts):len(opts)], otcheck.WithPattern(checkPattern))
	}

	suite, err := otcheck.OpenSuite(dir, opts...)
	if err != nil {
		return nil, nil, err
	}
	svc, err := otcheck.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return suite, svc, nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkPattern, "pattern", "", "Doublestar pattern selecting case files")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
}
