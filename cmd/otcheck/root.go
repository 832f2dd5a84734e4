package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck"
	"github.com/aretw0/otcheck/internal/platform"
)

var (
	verbose       bool
	format        string
	strictKinds   bool
	strictNumbers bool
	skipBound     string
	noCache       bool

	// resolved merges the environment with the flags set on the command line.
	resolved platform.EnvConfig
	// options is assembled from resolved before each command.
	options []otcheck.Option
)

// errCheckFailed makes the process exit non-zero without printing a message;
// the command already reported what failed.
var errCheckFailed = errors.New("check failed")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "otcheck",
	Short: "A validator for operational-transformation operation logs",
	Long: `otcheck replays skip/delete/insert operation logs over a start text and
checks a client's claim about whether the log reproduces its end text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)

		cfg, err := platform.LoadEnv()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("format") {
			cfg.Format = format
		}
		if flags.Changed("strict-kinds") {
			cfg.StrictKinds = strictKinds
		}
		if flags.Changed("strict-numbers") {
			cfg.StrictNumbers = strictNumbers
		}
		if flags.Changed("skip-bound") {
			cfg.SkipBound = skipBound
		}
		if flags.Changed("no-cache") {
			cfg.NoCache = noCache
		}

		envOpts, err := cfg.Options()
		if err != nil {
			return err
		}
		resolved = cfg
		options = append(envOpts, otcheck.WithLogger(logger))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&format, "format", "json", "Wire format of operation logs (json, yaml, toml)")
	rootCmd.PersistentFlags().BoolVar(&strictKinds, "strict-kinds", false, "Reject operations of an unknown kind")
	rootCmd.PersistentFlags().BoolVar(&strictNumbers, "strict-numbers", false, "Decode JSON numbers without float conversion")
	rootCmd.PersistentFlags().StringVar(&skipBound, "skip-bound", "legacy", "Skip bound check (legacy, exact)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Do not read or write the verdict index")
}
